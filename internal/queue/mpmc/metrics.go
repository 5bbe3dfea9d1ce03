package mpmc

import (
	"sync/atomic"
	"tailpost/internal/metrics"
	"time"
)

type MetricStorage struct {
	Depth atomic.Uint64 // Items currently queued
	Bytes atomic.Uint64 // Byte sum of queued item payloads

	PushAttempts   atomic.Uint64 // all Push calls, successful or not
	PushSuccess    atomic.Uint64 // slot claims that won
	PushCASRetries atomic.Uint64 // turn matched but another producer claimed first
	PushFull       atomic.Uint64 // pushes rejected on a full ring
	PushSeqAhead   atomic.Uint64 // producer observed a slot not yet consumed

	PopAttempts    atomic.Uint64 // all Pop calls, successful or not
	PopSuccess     atomic.Uint64 // slot claims that won
	PopCASRetries  atomic.Uint64 // turn matched but another consumer claimed first
	PopEmpty       atomic.Uint64 // pops that found an empty ring
	PopWaitSignals atomic.Uint64 // consumer wakeups from the wake channel
	PopSeqBehind   atomic.Uint64 // consumer observed another consumer ahead
}

func (handle *Queue[T]) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	rings := []*QueueInst[T]{handle.ActiveWrite.Load()}
	readRing := handle.ActiveRead.Load()
	// Mid migration both rings carry counters, fold them together
	if readRing != rings[0] {
		rings = append(rings, readRing)
	}

	combined := struct {
		Depth, Bytes                              uint64
		PushAttempts, PushSuccess, PushCASRetries uint64
		PushFull                                  uint64
		PopAttempts, PopSuccess, PopCASRetries    uint64
		PopEmpty                                  uint64
	}{}

	for _, ring := range rings {
		combined.Depth += ring.Metrics.Depth.Load()
		combined.Bytes += ring.Metrics.Bytes.Load()
		combined.PushAttempts += ring.Metrics.PushAttempts.Swap(0)
		combined.PushSuccess += ring.Metrics.PushSuccess.Swap(0)
		combined.PushCASRetries += ring.Metrics.PushCASRetries.Swap(0)
		combined.PushFull += ring.Metrics.PushFull.Swap(0)
		combined.PopAttempts += ring.Metrics.PopAttempts.Swap(0)
		combined.PopSuccess += ring.Metrics.PopSuccess.Swap(0)
		combined.PopCASRetries += ring.Metrics.PopCASRetries.Swap(0)
		combined.PopEmpty += ring.Metrics.PopEmpty.Swap(0)
	}

	recordTime := time.Now()

	add := func(name string, raw interface{}, unit string, metricType metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   rings[0].Namespace,
			Type:        metricType,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("depth", combined.Depth, "count", metrics.Gauge, "Current number of items in the queue")
	add("byte_sum", combined.Bytes, "bytes", metrics.Gauge, "Byte sum of all items in the queue")
	add("push_attempts", combined.PushAttempts, "count", metrics.Counter, "Total push attempts in the interval")
	add("push_success", combined.PushSuccess, "count", metrics.Counter, "Total push attempts that succeeded in the interval")
	add("push_cas_retries", combined.PushCASRetries, "count", metrics.Counter, "Sum of retries to push in the interval")
	add("push_full", combined.PushFull, "count", metrics.Counter, "Total pushes rejected due to a full queue in the interval")
	add("pop_attempts", combined.PopAttempts, "count", metrics.Counter, "Total pop attempts in the interval")
	add("pop_success", combined.PopSuccess, "count", metrics.Counter, "Total pop attempts that succeeded in the interval")
	add("pop_cas_retries", combined.PopCASRetries, "count", metrics.Counter, "Sum of retries to pop in the interval")
	add("pop_empty", combined.PopEmpty, "count", metrics.Counter, "Total pops that found the queue empty in the interval")

	return
}
