//go:build darwin || linux

package cli

import (
	"time"

	"golang.org/x/sys/unix"
)

// inputPending waits up to window for more bytes on fd.
func inputPending(fd uintptr, window time.Duration) bool {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}

	ready, err := unix.Poll(fds, int(max(window, 0)/time.Millisecond))
	if err != nil || ready <= 0 {
		return false
	}

	return fds[0].Revents&unix.POLLIN != 0
}
