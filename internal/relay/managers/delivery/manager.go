// Manages the delivery worker draining the record inbox into the remote store
package delivery

import (
	"context"
	"tailpost/internal/externalio/beats"
	"tailpost/internal/externalio/store"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
	"time"
)

// Builds the manager together with the inbox it will drain
func NewInstanceManager(ctx context.Context, inboxSize int, sink *store.Client, mirror *beats.OutModule, table string, retryLimit int, retryInterval time.Duration, fatal chan<- error, minQsize, maxQsize int) (new *InstanceManager, err error) {
	// Manager logs carry the delivery namespace tag
	ctx = logctx.AppendCtxTag(ctx, global.NSmDelivery)
	defer func() { ctx = logctx.RemoveLastCtxTag(ctx) }()

	inQueue, err := mpmc.New[record.LogRecord](logctx.GetTagList(ctx), uint64(inboxSize), minQsize, maxQsize)
	if err != nil {
		return
	}

	new = &InstanceManager{
		InQueue:       inQueue,
		sink:          sink,
		mirror:        mirror,
		table:         table,
		retryLimit:    retryLimit,
		retryInterval: retryInterval,
		fatal:         fatal,
		ctx:           ctx,
	}
	return
}
