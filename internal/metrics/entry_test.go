package metrics

import (
	"testing"
	"time"
)

// Seeds a registry with three one-minute slices of pipeline-shaped
// samples. Returned slice timestamps are ordered oldest first.
func seedRegistry(t *testing.T) (registry *Registry, slices []time.Time) {
	t.Helper()

	registry = New()
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	const interval = time.Minute

	type sample struct {
		name string
		desc string
		ns   []string
		raw  interface{}
		unit string
		kind MetricType
	}

	batches := [][]sample{
		{
			{"depth", "queue depth", []string{"Relay", "Ingest", "Stdout", "Queue"}, uint64(12), "count", Gauge},
			{"depth", "queue depth", []string{"Relay", "Delivery", "Queue"}, 3, "count", Gauge},
			{"send_duration", "time to deliver one record", []string{"Relay", "Delivery", "Worker"}, 42.5, "ms", Summary},
		},
		{
			{"depth", "queue depth", []string{"Relay", "Ingest", "Stdout", "Queue"}, int64(24), "count", Gauge},
			{"lines_read", "lines read from watched file", []string{"Relay", "Ingest", "Watcher", "0"}, uint64(100), "count", Counter},
			{"send_duration", "time to deliver one record", []string{"Relay", "Delivery", "Worker"}, "58", "us", Summary},
		},
		{
			{"depth", "queue depth", []string{"Relay", "Ingest", "Stdout", "Queue"}, -2, "count", Gauge},
			{"wedged", "stuck worker flag", []string{"Relay", "Delivery", "Worker"}, struct{}{}, "count", Gauge},
		},
	}

	for i, batch := range batches {
		timeSlice := registry.NewTimeSlice(base.Add(time.Duration(i)*interval), interval)
		slices = append(slices, timeSlice)

		stored := make([]Metric, 0, len(batch))
		for _, s := range batch {
			stored = append(stored, Metric{
				Name:        s.name,
				Description: s.desc,
				Namespace:   s.ns,
				Type:        s.kind,
				Timestamp:   timeSlice,
				Value: MetricValue{
					Raw:      s.raw,
					Unit:     s.unit,
					Interval: interval,
				},
			})
		}
		registry.Add(timeSlice, stored)
	}
	return
}

func TestRegistry_NewTimeSliceRounding(t *testing.T) {
	registry := New()

	now := time.Date(2026, 6, 1, 8, 0, 42, 123, time.UTC)

	first := registry.NewTimeSlice(now, time.Minute)
	second := registry.NewTimeSlice(now.Add(10*time.Second), time.Minute)

	if !first.Equal(second) {
		t.Fatalf("same interval produced two slices: %v vs %v", first, second)
	}
	if first.Second() != 0 || first.Nanosecond() != 0 {
		t.Fatalf("slice not rounded to interval: %v", first)
	}
}

func TestRegistry_AddRequiresOpenSlice(t *testing.T) {
	registry := New()

	orphan := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	registry.Add(orphan, []Metric{{Name: "depth"}})

	if got := registry.Search("", nil, time.Time{}, time.Time{}); len(got) != 0 {
		t.Fatalf("expected no stored metrics, got %d", len(got))
	}
}

func TestRegistry_AddOverwritesWithinSlice(t *testing.T) {
	registry := New()

	timeSlice := registry.NewTimeSlice(time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), time.Minute)

	write := func(raw uint64) {
		registry.Add(timeSlice, []Metric{{
			Name:      "depth",
			Namespace: []string{"Relay", "Ingest"},
			Type:      Gauge,
			Timestamp: timeSlice,
			Value:     MetricValue{Raw: raw, Unit: "count"},
		}})
	}
	write(5)
	write(9)

	results := registry.Search("depth", nil, time.Time{}, time.Time{})
	if len(results) != 1 {
		t.Fatalf("expected one sample per series per slice, got %d", len(results))
	}
	if results[0].Value.Raw != uint64(9) {
		t.Fatalf("expected later write to win, got %v", results[0].Value.Raw)
	}
}
