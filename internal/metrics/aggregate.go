package metrics

import (
	"fmt"
	"strconv"
	"tailpost/internal/calc"
	"tailpost/internal/global"
	"time"
)

// Combines all matching metric values into a single summary metric.
// Supported aggregation types: sum, min, max, avg, tmean (10% trimmed mean).
// Errors when no metrics match or any matched value is non-numeric.
func (registry *Registry) Aggregate(aggType string, name string, namespacePrefix []string, start, end time.Time) (result Metric, err error) {
	matches := registry.Search(name, namespacePrefix, start, end)
	if len(matches) == 0 {
		err = fmt.Errorf("no metrics matched name '%s'", name)
		return
	}

	values := make([]float64, 0, len(matches))
	for _, metric := range matches {
		var value float64
		value, err = numericValue(metric.Value.Raw)
		if err != nil {
			err = fmt.Errorf("metric '%s' in namespace '%v': %v", metric.Name, metric.Namespace, err)
			return
		}
		values = append(values, value)
	}

	var aggregated float64
	switch aggType {
	case global.MetricSum:
		for _, value := range values {
			aggregated += value
		}
	case global.MetricMin:
		aggregated = values[0]
		for _, value := range values[1:] {
			if value < aggregated {
				aggregated = value
			}
		}
	case global.MetricMax:
		aggregated = values[0]
		for _, value := range values[1:] {
			if value > aggregated {
				aggregated = value
			}
		}
	case global.MetricAvg:
		for _, value := range values {
			aggregated += value
		}
		aggregated /= float64(len(values))
	case global.MetricTMean:
		aggregated = calc.TrimmedMeanFloat64(values, 0.10)
	default:
		err = fmt.Errorf("unknown aggregation type '%s'", aggType)
		return
	}

	result = Metric{
		Name:        name,
		Description: fmt.Sprintf("Aggregation (%s) over %d metrics", aggType, len(values)),
		Namespace:   namespacePrefix,
		Type:        Summary,
		Timestamp:   time.Now(),
		Value: MetricValue{
			Raw:  aggregated,
			Unit: matches[0].Value.Unit,
		},
	}
	return
}

// Coerces the raw metric value into a float for aggregation math
func numericValue(raw interface{}) (value float64, err error) {
	switch typed := raw.(type) {
	case uint64:
		value = float64(typed)
	case int64:
		value = float64(typed)
	case int:
		value = float64(typed)
	case float64:
		value = typed
	case float32:
		value = float64(typed)
	case string:
		value, err = strconv.ParseFloat(typed, 64)
		if err != nil {
			err = fmt.Errorf("value '%s' is not numeric", typed)
		}
	default:
		err = fmt.Errorf("value type %T is not numeric", raw)
	}
	return
}
