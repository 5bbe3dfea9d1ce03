package logctx

import (
	"strings"
	"time"
)

// Renders one event as "[timestamp] [tag/tag] [severity] message".
// Sections with no content disappear instead of printing empty brackets.
func (event Event) Format() (text string) {
	var parts []string
	if !event.Timestamp.IsZero() {
		parts = append(parts, "["+padTimestamp(event.Timestamp)+"]")
	}

	if len(event.Tags) > 0 {
		parts = append(parts, "["+strings.Join(event.Tags, "/")+"]")
	}

	if event.Severity != "" {
		parts = append(parts, "["+event.Severity+"]")
	}

	if event.Message != "" {
		parts = append(parts, event.Message)
	}

	text = strings.Join(parts, " ")
	// Trailing newline belongs to the caller's format string
	return
}

// Pads nanoseconds to nine digits so timestamps line up column for column.
// Timestamps without a fractional part keep their natural width.
func padTimestamp(timestamp time.Time) (formatted string) {
	formatted = timestamp.Format(time.RFC3339Nano)

	prefix, rest, hasFraction := strings.Cut(formatted, ".")
	if !hasFraction {
		return
	}

	// The fraction runs until the zone designator
	end := strings.IndexAny(rest, "Z+-")
	if end < 0 {
		return
	}
	nanos, zone := rest[:end], rest[end:]

	// RFC3339Nano trims trailing zeros, restore them on the right so the
	// numeric value survives
	for len(nanos) < 9 {
		nanos += "0"
	}

	formatted = prefix + "." + nanos + zone
	return
}
