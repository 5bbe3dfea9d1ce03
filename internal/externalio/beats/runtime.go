package beats

// Closes the connection to the beats server. Nil-safe.
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil || mod.sink == nil {
		return
	}
	err = mod.sink.Close()
	return
}
