// Periodic harvest of per-component counters into the shared registry
package metrics

import (
	"context"
	"runtime/debug"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/internal/metrics"
	"tailpost/internal/relay/managers/delivery"
	"tailpost/internal/relay/managers/ingest"
	"tailpost/internal/relay/managers/mux"
	"time"
)

func New(ingestMgr *ingest.InstanceManager, muxMgr *mux.InstanceManager, deliveryMgr *delivery.InstanceManager, interval time.Duration, maximumMetricAge time.Duration) (new *Gatherer) {
	new = &Gatherer{
		Registry:  metrics.New(),
		Ingest:    ingestMgr,
		Mux:       muxMgr,
		Delivery:  deliveryMgr,
		Interval:  interval,
		Retention: maximumMetricAge,
	}
	return
}

func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)
	defer func() { ctx = logctx.RemoveLastCtxTag(ctx) }()

	lastRun := time.Now()

	// Ticking twice per interval keeps slice boundaries within half an
	// interval of the wall clock
	ticker := time.NewTicker(gatherer.Interval / 2)
	defer ticker.Stop()

	// Retention pass runs every thirtieth tick
	var tickCount int

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastRun) >= gatherer.Interval {
				timeSlice := gatherer.Registry.NewTimeSlice(now, gatherer.Interval)

				lastRun = now
				go gatherer.runIntervalTasks(ctx, timeSlice, gatherer.Interval)
			}

			tickCount++
			if tickCount >= 30 {
				gatherer.Registry.Prune(now, gatherer.Retention)
				tickCount = 0
			}
		}
	}
}

// Harvests counters from every pipeline stage into one time slice.
// Startup runs synchronously before the gatherer, so the stage managers
// exist by the time the first tick fires.
func (gatherer *Gatherer) runIntervalTasks(ctx context.Context, timeSlice time.Time, interval time.Duration) {
	// A collector panic must not take the pipeline down with it
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in relay metric collector thread: %v\n%s", fatalError, stack)
		}
	}()

	// File tails
	gatherer.Ingest.Mu.Lock()
	for _, inst := range gatherer.Ingest.FileSources {
		if inst == nil {
			// slot cleared mid-shutdown
			continue
		}
		m1 := inst.Worker.CollectMetrics(interval)
		gatherer.Registry.Add(timeSlice, m1)
	}

	// Stdin tail
	if gatherer.Ingest.StdinSource != nil {
		if gatherer.Ingest.StdinSource.Worker != nil {
			m0 := gatherer.Ingest.StdinSource.Worker.CollectMetrics(interval)
			gatherer.Registry.Add(timeSlice, m0)
		}
	}
	gatherer.Ingest.Mu.Unlock()

	// Stream queues and their forwarders
	m1 := gatherer.Mux.StdoutQueue.CollectMetrics(interval)
	gatherer.Registry.Add(timeSlice, m1)
	m2 := gatherer.Mux.StderrQueue.CollectMetrics(interval)
	gatherer.Registry.Add(timeSlice, m2)

	gatherer.Mux.Mu.Lock()
	for _, lane := range []*mux.Lane{gatherer.Mux.StdoutLane, gatherer.Mux.StderrLane} {
		if lane == nil {
			continue
		}
		m3 := lane.Worker.CollectMetrics(interval)
		gatherer.Registry.Add(timeSlice, m3)
	}
	gatherer.Mux.Mu.Unlock()

	// Delivery queue and the courier
	collection := gatherer.Delivery.InQueue.CollectMetrics(interval)
	gatherer.Registry.Add(timeSlice, collection)

	gatherer.Delivery.Mu.Lock()
	if gatherer.Delivery.Courier != nil {
		m4 := gatherer.Delivery.Courier.Worker.CollectMetrics(interval)
		gatherer.Registry.Add(timeSlice, m4)
	}
	gatherer.Delivery.Mu.Unlock()
}
