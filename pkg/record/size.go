package record

// Approximate heap footprint of the line: payload bytes plus one 16 byte
// string header per field. Queues charge this against their byte gauge.
func (line Line) Size() (bytes int) {
	bytes = len(line.Source) +
		len(line.Content) +
		len(line.Channel) +
		3*16
	return
}

// Approximate heap footprint of the record, counting the optional agent
// id only when one is attached.
func (logRecord LogRecord) Size() (bytes int) {
	bytes = len(logRecord.UserID) +
		len(logRecord.Content) +
		len(logRecord.Stream) +
		3*16 + // string headers
		8 // AgentID pointer slot
	if logRecord.AgentID != nil {
		bytes += len(*logRecord.AgentID) + 16
	}
	return
}
