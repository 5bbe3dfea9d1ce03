// Maps raw log lines onto stream channels
package classify

import (
	"encoding/json"
	"fmt"
	"strings"
	"tailpost/pkg/record"
)

// Variant selects how raw lines are interpreted during classification
type Variant string

const (
	Plain Variant = "plain"
	JSON  Variant = "json"
)

// Parses a format name from a path spec prefix
func ParseVariant(name string) (variant Variant, err error) {
	switch name {
	case "", string(Plain):
		variant = Plain
	case string(JSON):
		variant = JSON
	default:
		err = fmt.Errorf("unknown line format '%s'", name)
	}
	return
}

// Classifies one raw line into a channel-tagged content line.
// Plain lines always land on stdout unchanged. JSON lines must carry the
// structured envelope with a textual log field and a recognized stream name.
// A classification error means the line produces no output at all.
func (variant Variant) Classify(rawLine string) (line record.Line, err error) {
	switch variant {
	case Plain:
		line.Content = rawLine
		line.Channel = record.Stdout
	case JSON:
		line, err = classifyEnvelope(rawLine)
	default:
		err = fmt.Errorf("unknown line format '%s'", variant)
	}
	return
}

// Unwraps the structured JSON envelope around a single log line
func classifyEnvelope(rawLine string) (line record.Line, err error) {
	trimmed := strings.TrimSpace(rawLine)
	if !strings.HasPrefix(trimmed, "{") {
		err = fmt.Errorf("line is not a JSON object")
		return
	}

	var envelope record.Envelope
	err = json.Unmarshal([]byte(trimmed), &envelope)
	if err != nil {
		err = fmt.Errorf("invalid envelope JSON: %v", err)
		return
	}

	channel := record.Channel(envelope.Stream)
	if !channel.Valid() {
		err = fmt.Errorf("unrecognized stream '%s'", envelope.Stream)
		return
	}

	if envelope.Log == "" {
		// Records with empty content are never submitted
		err = fmt.Errorf("envelope log field is empty or missing")
		return
	}

	line.Content = envelope.Log
	line.Channel = channel
	return
}
