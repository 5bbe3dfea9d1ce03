package file

import "golang.org/x/sys/unix"

// Detaches the inotify watch and closes the file. Safe to call twice.
func (mod *InModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	if mod.notifyFd > 0 {
		unix.InotifyRmWatch(mod.notifyFd, uint32(mod.watchDescriptor))
		unix.Close(mod.notifyFd)
		mod.notifyFd = -1
	}
	if mod.source != nil {
		err = mod.source.Close()
	}
	return
}
