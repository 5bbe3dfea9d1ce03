package mpmc

import (
	"context"
	"tailpost/internal/atomics"
	"tailpost/internal/global"
	"testing"
	"time"
)

func TestCollectMetrics(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		pushCount    int
		popCount     int
		bytesPerItem int
		wantDepth    uint64
		wantBytes    uint64
	}{
		{
			name:         "FullyDrained",
			pushCount:    5,
			popCount:     5,
			bytesPerItem: 10,
			wantDepth:    0,
			wantBytes:    0,
		},
		{
			name:         "PartiallyDrained",
			pushCount:    3,
			popCount:     2,
			bytesPerItem: 20,
			wantDepth:    1,
			wantBytes:    20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue, err := New[int]([]string{global.NSTest}, 8, 4, 16)
			if err != nil {
				t.Fatalf("queue creation failed: %v", err)
			}

			for i := 0; i < tt.pushCount; i++ {
				if !queue.Push(i) {
					t.Fatalf("push %d failed", i)
				}
				queue.ActiveWrite.Load().Metrics.Bytes.Add(uint64(tt.bytesPerItem))
			}

			for i := 0; i < tt.popCount; i++ {
				_, ok := queue.Pop(ctx)
				if !ok {
					t.Fatalf("pop %d failed", i)
				}
				// Consumers subtract the payload size after every pop
				atomics.Subtract(&queue.ActiveRead.Load().Metrics.Bytes, uint64(tt.bytesPerItem), 4)
			}

			collected := queue.CollectMetrics(time.Second)

			byName := map[string]uint64{}
			for _, metric := range collected {
				if value, ok := metric.Value.Raw.(uint64); ok {
					byName[metric.Name] = value
				}
			}

			if got := byName["depth"]; got != tt.wantDepth {
				t.Errorf("depth: got %d, want %d", got, tt.wantDepth)
			}
			if got := byName["byte_sum"]; got != tt.wantBytes {
				t.Errorf("byte_sum: got %d, want %d", got, tt.wantBytes)
			}
			if got := byName["push_attempts"]; got != uint64(tt.pushCount) {
				t.Errorf("push_attempts: got %d, want %d", got, tt.pushCount)
			}
			if got := byName["push_success"]; got != uint64(tt.pushCount) {
				t.Errorf("push_success: got %d, want %d", got, tt.pushCount)
			}
			if got := byName["pop_attempts"]; got != uint64(tt.popCount) {
				t.Errorf("pop_attempts: got %d, want %d", got, tt.popCount)
			}
			if got := byName["pop_success"]; got != uint64(tt.popCount) {
				t.Errorf("pop_success: got %d, want %d", got, tt.popCount)
			}
		})
	}
}

func TestCollectMetrics_CountersResetAfterRead(t *testing.T) {
	queue, err := New[int]([]string{global.NSTest}, 8, 4, 16)
	if err != nil {
		t.Fatalf("queue creation failed: %v", err)
	}

	queue.Push(1)
	queue.Pop(context.Background())

	first := queue.CollectMetrics(time.Second)
	second := queue.CollectMetrics(time.Second)

	firstByName := map[string]uint64{}
	for _, metric := range first {
		if value, ok := metric.Value.Raw.(uint64); ok {
			firstByName[metric.Name] = value
		}
	}
	if firstByName["push_attempts"] != 1 {
		t.Fatalf("first read should see the push, got %d", firstByName["push_attempts"])
	}

	// Interval counters drain on read, gauges do not
	for _, metric := range second {
		value, ok := metric.Value.Raw.(uint64)
		if !ok {
			continue
		}
		switch metric.Name {
		case "depth", "byte_sum":
		default:
			if value != 0 {
				t.Errorf("counter %s should reset after collection, got %d", metric.Name, value)
			}
		}
	}
}
