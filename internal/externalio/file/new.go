package file

import (
	"fmt"
	"io"
	"os"
	"tailpost/internal/classify"
	"tailpost/internal/global"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
)

// Creates a new file input module positioned at the current end of the file.
// The file is created empty if it does not exist yet. Content already present
// is never read, only lines appended after this call. The inotify watch is
// registered here so the module is fully armed when this returns.
// An empty path yields a nil module and no error.
func NewInput(namespace []string, filePath string, format classify.Variant, stdout *mpmc.Queue[record.Line], stderr *mpmc.Queue[record.Line]) (module *InModule, err error) {
	if filePath == "" {
		return
	}

	file, err := os.OpenFile(filePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		err = fmt.Errorf("failed to open source file: %v", err)
		return
	}

	// Skip everything written before this module existed
	_, err = file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		err = fmt.Errorf("failed to seek to end of source file: %v", err)
		return
	}

	notifyFd, watchDescriptor, err := addWatch(filePath)
	if err != nil {
		file.Close()
		return
	}

	module = &InModule{
		Namespace:       append(namespace, global.NSoFile),
		source:          file,
		filePath:        filePath,
		format:          format,
		notifyFd:        notifyFd,
		watchDescriptor: watchDescriptor,
		outStdout:       stdout,
		outStderr:       stderr,
		metrics:         MetricStorage{},
	}

	return
}
