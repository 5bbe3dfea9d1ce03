// Numeric helpers shared by the scaling and aggregation paths
package calc

import "sort"

type number interface {
	~uint64 | ~float64
}

// Mean of the middle of the distribution. The given fraction of samples
// is dropped from each end after sorting. Division follows the element
// type, so integer inputs produce a truncated mean.
func trimmedMean[T number](values []T, trimFraction float64) (mean T) {
	if trimFraction < 0 {
		trimFraction = 0
	}

	n := len(values)
	if n == 0 {
		return
	}

	sorted := make([]T, n)
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	drop := int(float64(n) * trimFraction)
	if drop*2 >= n {
		// Always keep at least one sample
		drop = (n - 1) / 2
	}

	kept := sorted[drop : n-drop]

	var sum T
	for _, value := range kept {
		sum += value
	}

	mean = sum / T(len(kept))
	return
}

// Trimmed mean over counter style samples, truncating division
func TrimmedMeanUint64(values []uint64, trimPercent float64) (mean uint64) {
	mean = trimmedMean(values, trimPercent)
	return
}

// Trimmed mean over duration style samples
func TrimmedMeanFloat64(values []float64, trimPercent float64) (mean float64) {
	mean = trimmedMean(values, trimPercent)
	return
}
