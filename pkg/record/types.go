package record

// Stream channel a log line is attributed to
type Channel string

const (
	Stdout Channel = "stdout"
	Stderr Channel = "stderr"
)

// Checks channel is one of the two deliverable streams
func (channel Channel) Valid() (ok bool) {
	ok = channel == Stdout || channel == Stderr
	return
}

// Structured JSON envelope wrapping a single log line (docker logging driver shape)
type Envelope struct {
	Log    string `json:"log"`
	Stream string `json:"stream"`
	Time   string `json:"time,omitempty"`
}

// Container for a single classified log line - fields are mandatory
type Line struct {
	Source  string // Originating file path (or the stdin marker)
	Content string
	Channel Channel
}

// Row shape inserted into the remote store table
type LogRecord struct {
	UserID  string  `json:"user_id"`
	AgentID *string `json:"agent_id"` // Remains null when no agent identity is present
	Content string  `json:"content"`
	Stream  string  `json:"stream"`
}
