// Converts classified lines into store rows and feeds the delivery inbox
package forward

import (
	"context"
	"runtime/debug"
	"tailpost/internal/atomics"
	"tailpost/internal/global"
	"tailpost/internal/identity"
	"tailpost/internal/logctx"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
)

func New(namespace []string, inQueue *mpmc.Queue[record.Line], outQueue *mpmc.Queue[record.LogRecord], who identity.Identity) (new *Instance) {
	new = &Instance{
		Namespace: append(namespace, global.NSWorker),
		inbox:     inQueue,
		outbox:    outQueue,
		who:       who,
		Metrics:   &MetricStorage{},
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

		func() {
			// One bad line must not stall the stream, log and move on
			defer func() {
				if fatalError := recover(); fatalError != nil {
					stack := debug.Stack()
					logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
						"panic in forwarder worker thread: %v\n%s", fatalError, stack)
				}
			}()

			line, ok := instance.inbox.Pop(ctx)
			if !ok {
				return
			}
			// The queue byte gauge only learns about consumption here
			atomics.Subtract(&instance.inbox.ActiveWrite.Load().Metrics.Bytes, uint64(line.Size()), 4)

			rec := record.New(instance.who.UserID, instance.who.AgentID, line)
			instance.outbox.PushBlocking(ctx, rec, rec.Size())

			instance.Metrics.Forwarded.Add(1)
			instance.Metrics.SumLineBytes.Add(uint64(len(line.Content)))

			logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
				"Forwarded line (size %d) from '%s'\n", len(line.Content), line.Source)
		}()
	}
}
