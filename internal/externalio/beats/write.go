package beats

import (
	"context"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/pkg/record"
	"time"
)

// Fans one already accepted record out to the beats server. Field layout is
// ECS-shaped so stock filebeat pipelines ingest it without a custom decoder.
func (mod *OutModule) Write(ctx context.Context, table string, rec record.LogRecord) (logsSent int, err error) {
	if mod == nil {
		return
	}

	event := map[string]interface{}{
		"@timestamp": time.Now(),
		"message":    rec.Content,
		"host": map[string]interface{}{
			"name":     global.Hostname,
			"hostname": global.Hostname,
		},
		// The relay presents itself as the shipping agent
		"agent": map[string]interface{}{
			"name":    global.Hostname,
			"program": global.ProgBaseName,
			"version": global.ProgVersion,
			"type":    "filebeat",
			"pid":     global.PID,
		},
		"user": map[string]interface{}{
			"id": rec.UserID,
		},
		"log": map[string]interface{}{
			"stream": rec.Stream,
		},
		"event": map[string]interface{}{
			"dataset": table,
		},
	}

	// Session agent is optional
	if rec.AgentID != nil {
		event["labels"] = map[string]interface{}{
			"agent_id": *rec.AgentID,
		}
	}

	logsSent, err = mod.sink.Send([]interface{}{event})
	if err != nil {
		return
	}

	logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
		"Mirrored %s record to beats output (%d bytes)\n", rec.Stream, len(rec.Content))
	return
}
