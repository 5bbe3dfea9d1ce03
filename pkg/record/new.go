package record

// Builds the store row for a classified line using the identity resolved at startup
func New(userID string, agentID *string, line Line) (new LogRecord) {
	new = LogRecord{
		UserID:  userID,
		AgentID: agentID,
		Content: line.Content,
		Stream:  string(line.Channel),
	}
	return
}
