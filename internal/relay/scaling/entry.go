// Watches queue load to grow or shrink queue capacity within configured bounds.
// Worker counts never change: one forwarder per stream and a single delivery
// worker keep record order intact, so only queue capacity adapts to load.
package scaling

import (
	"context"
	"tailpost/internal/calc"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/internal/metrics"
	"tailpost/internal/queue/mpmc"
	"tailpost/internal/relay/shared"
	"tailpost/pkg/record"
	"time"
)

func New(metrics *metrics.Registry, interval time.Duration, managers shared.Managers) (new *Instance) {
	new = &Instance{
		MetricStore:  metrics,
		PollInterval: interval,
		Managers:     managers,
	}
	return
}

func (instance *Instance) Run(ctx context.Context) {
	ticker := time.NewTicker(instance.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Stream queues
			instance.Managers.Mux.StdoutQueue.ScaleCapacity(ctx)
			instance.Managers.Mux.StderrQueue.ScaleCapacity(ctx)

			// Delivery inbox
			instance.Managers.Delivery.InQueue.ScaleCapacity(ctx)

			warnOnDeliveryPressure(ctx, instance.MetricStore, instance.PollInterval, instance.Managers.Delivery.InQueue)
		}
	}
}

// The delivery inbox drains through a single worker, so a steadily climbing
// depth means the remote store cannot keep up with ingest. Surface that
// before the inbox hits its ceiling.
func warnOnDeliveryPressure(ctx context.Context, metricStore *metrics.Registry, interval time.Duration, inbox *mpmc.Queue[record.LogRecord]) {
	const pastNIntervals = 5

	// Depth samples covering the last few polling windows
	depths := metricStore.Search("depth", []string{global.NSRelay, global.NSmDelivery}, time.Now().Add(-time.Duration(pastNIntervals)*interval), time.Now())
	if len(depths) < pastNIntervals {
		// too young to call a trend
		return
	}

	// Search returns oldest first, Trend depends on that
	values := make([]uint64, 0, len(depths))
	for _, m := range depths {
		values = append(values, m.Value.Raw.(uint64))
	}

	queue := inbox.ActiveWrite.Load()
	rising, _ := mpmc.Trend(values, queue.Size)
	if rising {
		// Smoothed over the window so a single spike does not skew the report
		typicalDepth := calc.TrimmedMeanUint64(values, 0.10)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"delivery inbox is filling faster than the store accepts records (depth %d of %d)\n", typicalDepth, queue.Size)
	}
}
