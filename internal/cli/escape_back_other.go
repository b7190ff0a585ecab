//go:build !darwin && !linux

package cli

import "time"

// Without poll every escape is taken as the start of a sequence, so Esc
// never navigates back.
func inputPending(uintptr, time.Duration) bool {
	return true
}
