// Handles program lifecycle operations around the daemon (service manager readiness, reloads)
package lifecycle

import (
	"context"
	"fmt"
	"net"
	"os"
	"tailpost/internal/global"
	"tailpost/internal/logctx"

	"golang.org/x/sys/unix"
)

// Sends READY=1 once startup is complete.
func NotifyReady(ctx context.Context) (err error) {
	err = notify(ctx, "READY=1")
	return
}

// Sends STOPPING=1 when shutdown begins.
func NotifyStopping(ctx context.Context) (err error) {
	err = notify(ctx, "STOPPING=1")
	return
}

// Sends RELOADING=1 while a watch target rescan is in progress.
// Systemd pairs the reload with the following READY via the monotonic timestamp.
func NotifyReload(ctx context.Context) (err error) {
	usec, err := monotonicUsec()
	if err != nil {
		return
	}

	err = notify(ctx, fmt.Sprintf("RELOADING=1\nMONOTONIC_USEC=%d", usec))
	return
}

// Sends a free-form STATUS line for 'systemctl status' output.
func NotifyStatus(ctx context.Context, msg string) (err error) {
	err = notify(ctx, "STATUS="+msg)
	return
}

func monotonicUsec() (usec int64, err error) {
	var ts unix.Timespec
	err = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	if err != nil {
		return
	}

	usec = ts.Sec*1_000_000 + int64(ts.Nsec)/1_000
	return
}

// Delivers one sd_notify datagram. Without NOTIFY_SOCKET in the environment
// there is no service manager listening and the message is dropped.
func notify(ctx context.Context, msg string) (err error) {
	sockPath := os.Getenv("NOTIFY_SOCKET")
	if sockPath == "" {
		return
	}

	sockAddr := net.UnixAddr{
		Name: sockPath,
		Net:  "unixgram",
	}
	conn, err := net.DialUnix("unixgram", nil, &sockAddr)
	if err != nil {
		err = fmt.Errorf("notify dial failed: %v", err)
		return
	}
	defer conn.Close()

	_, err = conn.Write([]byte(msg))
	if err != nil {
		err = fmt.Errorf("notify write failed: %v", err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Sent service manager notification '%s'\n", msg)
	return
}
