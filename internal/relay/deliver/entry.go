// Submits finished records to the remote store, one at a time, with bounded retries
package deliver

import (
	"context"
	"fmt"
	"runtime/debug"
	"tailpost/internal/atomics"
	"tailpost/internal/externalio/beats"
	"tailpost/internal/externalio/store"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
	"time"

	"github.com/google/uuid"
)

func New(namespace []string, inQueue *mpmc.Queue[record.LogRecord], sink *store.Client, mirror *beats.OutModule, table string, retryLimit int, retryInterval time.Duration, fatal chan<- error) (new *Instance) {
	new = &Instance{
		Namespace:     append(namespace, global.NSWorker),
		inbox:         inQueue,
		sink:          sink,
		mirror:        mirror,
		table:         table,
		retryLimit:    retryLimit,
		retryInterval: retryInterval,
		fatal:         fatal,
		Metrics:       &MetricStorage{},
	}
	return
}

func (instance *Instance) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		giveUp := func() (stop bool) {
			// Recover to a logged error, the retry budget decides fatality
			defer func() {
				if fatalError := recover(); fatalError != nil {
					stack := debug.Stack()
					logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
						"panic in delivery worker thread: %v\n%s", fatalError, stack)
				}
			}()

			rec, ok := instance.inbox.Pop(ctx)
			if !ok {
				return
			}
			// Byte gauge decrements on the consumer side
			atomics.Subtract(&instance.inbox.ActiveWrite.Load().Metrics.Bytes, uint64(rec.Size()), 4)

			err := instance.submit(ctx, rec)
			if err != nil {
				if ctx.Err() != nil {
					// Interrupted by shutdown, not a delivery verdict
					return
				}

				// Surface to the daemon and stop taking records
				select {
				case instance.fatal <- err:
				default:
				}
				stop = true
				return
			}

			instance.mirrorRecord(ctx, rec)
			return
		}()
		if giveUp {
			return
		}
	}
}

// Attempts one record up to the configured total attempt count, pausing
// between consecutive attempts. Returns nil on success, the final error once
// every attempt is spent.
func (instance *Instance) submit(ctx context.Context, rec record.LogRecord) (err error) {
	taskID := uuid.NewString()

	for attempt := 1; attempt <= instance.retryLimit; attempt++ {
		err = instance.sink.Insert(ctx, instance.table, rec)
		if err == nil {
			if attempt > 1 {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
					"delivery task %s succeeded on attempt %d/%d\n", taskID, attempt, instance.retryLimit)
			}
			instance.Metrics.Delivered.Add(1)
			instance.Metrics.SumRecordBytes.Add(uint64(len(rec.Content)))
			logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
				"Delivered record (task %s, size %d)\n", taskID, len(rec.Content))
			return
		}

		instance.Metrics.FailedAttempts.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"delivery task %s attempt %d/%d failed: %v\n", taskID, attempt, instance.retryLimit, err)

		// Pause before the next attempt, never after the last
		if attempt < instance.retryLimit {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case <-time.After(instance.retryInterval):
			}
		}
	}

	instance.Metrics.Exhausted.Add(1)
	err = fmt.Errorf("record delivery failed after %d attempts (task %s): %v", instance.retryLimit, taskID, err)
	return
}

// Best effort fan out of an already delivered record. Mirror problems never
// affect the pipeline verdict.
func (instance *Instance) mirrorRecord(ctx context.Context, rec record.LogRecord) {
	if instance.mirror == nil {
		return
	}

	_, err := instance.mirror.Write(ctx, instance.table, rec)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"failed to mirror record to beats output: %v\n", err)
		return
	}
	instance.Metrics.Mirrored.Add(1)
}
