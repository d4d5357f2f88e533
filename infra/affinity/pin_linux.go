//go:build linux

package affinity

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// PinThisThread locks the calling goroutine to its OS thread and binds
// that thread to the given core. The goroutine stays locked for its
// lifetime; only long-running loops should call this.
func PinThisThread(core int) error {
	if core < 0 || core >= NumCores() {
		return ErrInvalidCore
	}
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}
