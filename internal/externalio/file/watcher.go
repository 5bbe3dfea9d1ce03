package file

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"tailpost/internal/global"
	"tailpost/internal/logctx"

	"golang.org/x/sys/unix"
)

// Opens an inotify instance watching the given file for writes. Events queue
// in the kernel buffer until the event loop starts draining them.
func addWatch(filePath string) (fd int, watchDescriptor int, err error) {
	fd, err = unix.InotifyInit1(unix.IN_NONBLOCK)
	if err != nil {
		err = fmt.Errorf("failed to initialize inotify: %v", err)
		return
	}

	watchDescriptor, err = unix.InotifyAddWatch(fd, filePath, unix.IN_MODIFY|unix.IN_CLOSE_WRITE)
	if err != nil {
		unix.Close(fd)
		err = fmt.Errorf("failed to add log file '%s' to inotify watcher: %v", filePath, err)
		return
	}
	return
}

// Notifies the reader whenever the watched file is written to. Waits for
// events in bounded poll intervals so cancellation is observed even when the
// file never changes again.
func (mod *InModule) watch(ctx context.Context, fileHasChanged chan bool) {
	// One read can return a batch of packed events
	buf := make([]byte, unix.SizeofInotifyEvent+8192)
	pollSet := []unix.PollFd{{Fd: int32(mod.notifyFd), Events: unix.POLLIN}}

	for {
		if ctx.Err() != nil {
			return
		}

		// Bounded wait keeps the cancellation check alive
		pollSet[0].Revents = 0
		ready, err := unix.Poll(pollSet, 500)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if ctx.Err() == nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "error polling inotify descriptor: %v\n", err)
			}
			return
		}
		if ready == 0 {
			continue
		}

		bytesRead, err := unix.Read(mod.notifyFd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			if ctx.Err() == nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "error reading inotify event: %v\n", err)
			}
			return
		}
		if bytesRead < unix.SizeofInotifyEvent {
			continue
		}

		// Walk the packed events, each carries a variable length name field
		var offset uint32
		for offset <= uint32(bytesRead)-unix.SizeofInotifyEvent {
			var event unix.InotifyEvent

			eventBytes := buf[offset : offset+unix.SizeofInotifyEvent]
			reader := bytes.NewReader(eventBytes)
			err = binary.Read(reader, binary.LittleEndian, &event)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "failed to read event content: %v\n", err)
				break
			}

			if event.Mask&(unix.IN_MODIFY|unix.IN_CLOSE_WRITE) != 0 {
				select {
				case fileHasChanged <- true:
				default:
					// reader already has a wakeup pending
				}
			}

			offset += unix.SizeofInotifyEvent + event.Len
		}
	}
}
