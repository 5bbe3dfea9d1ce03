package mpmc

import (
	"context"
	"tailpost/internal/global"
	"tailpost/internal/logctx"

	"github.com/pbnjay/memory"
)

// Grows the ring when it runs near full, shrinks it when it sits near
// empty, always within the configured floor and ceiling
func (handle *Queue[T]) ScaleCapacity(ctx context.Context) {
	ring := handle.ActiveWrite.Load()
	capacity := ring.Size
	depth := ring.Metrics.Depth.Load()

	// Size the next ring against what the host can actually spare
	availMem := memory.FreeMemory()
	queuedBytes := ring.Metrics.Bytes.Load()
	bytesPerItem := queuedBytes / uint64(capacity)
	grownMemEstimate := uint64(ceilPow2(capacity) * int(bytesPerItem))

	occupancy := float64(depth) / float64(capacity) * 100

	var grow, shrink bool
	if occupancy >= 90 {
		if capacity >= handle.ceiling {
			return
		}
		// Growing past free memory trades a full ring for an OOM kill
		if availMem > 0 && grownMemEstimate > availMem {
			return
		}

		grow = true
	} else if occupancy <= 2 {
		if capacity <= handle.floor {
			return
		}

		shrink = true
	}

	if grow {
		target := uint64(ceilPow2(capacity + 1))

		err := handle.resize(target)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"Failed to scale queue capacity: %v\n", err)
			return
		}
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Scaled up queue from %d to %d capacity\n", capacity, target)
	} else if shrink {
		target := uint64(floorPow2(capacity))

		err := handle.resize(target)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"Failed to scale queue capacity: %v\n", err)
			return
		}
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Scaled down queue from %d to %d capacity\n", capacity, target)
	}
}

// Smallest power of two at or above start
func ceilPow2(start int) (next int) {
	if start <= 1 {
		next = 1
		return
	}
	start--
	start |= start >> 1
	start |= start >> 2
	start |= start >> 4
	start |= start >> 8
	start |= start >> 16
	start |= start >> 32
	next = start + 1
	return
}

// Largest power of two strictly below the ceiling of start
func floorPow2(start int) (prev int) {
	if start == 0 {
		return
	}
	prev = ceilPow2(start) >> 1
	return
}

// Reads a window of queue depth samples and reports whether the load is
// consistently heading toward full or toward idle
func Trend(depthValues []uint64, queueSize int) (scaleUp bool, scaleDown bool) {
	sampleCount := len(depthValues)
	if sampleCount < 3 {
		return
	}

	// Watermarks: above the first occupancy is crowding, below the second
	// the ring is mostly air
	const upThresholdPct = 70.0
	const downThresholdPct = 15.0
	const requireConsistent = 3 // direction must hold this many samples

	// Occupancy of the newest sample decides which watermark applies
	latestPct := float64(depthValues[sampleCount-1]) / float64(queueSize) * 100

	// Walk the window newest to oldest counting how long the latest
	// direction holds: +1 growing, -1 shrinking, 0 flat
	direction := 0
	consistentCount := 1

	for i := sampleCount - 2; i >= 0 && consistentCount < requireConsistent; i-- {
		diff := int64(depthValues[i+1]) - int64(depthValues[i])

		var step int
		switch {
		case diff > 0:
			step = 1
		case diff < 0:
			step = -1
		default:
			step = 0
		}

		if direction == 0 {
			direction = step
			continue
		}

		if step == direction {
			consistentCount++
		} else {
			break
		}
	}

	if latestPct > upThresholdPct && direction > 0 && consistentCount >= requireConsistent {
		scaleUp = true
		return
	}

	if latestPct < downThresholdPct && direction < 0 && consistentCount >= requireConsistent {
		scaleDown = true
		return
	}

	return
}
