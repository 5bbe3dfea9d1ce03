package stdin

// Closes standard input so a blocked read returns
func (mod *InModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	if mod.source != nil {
		err = mod.source.Close()
	}
	return
}
