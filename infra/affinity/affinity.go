// Package affinity pins goroutines' OS threads to CPU cores.
package affinity

import (
	"errors"
	"runtime"
)

var (
	// ErrNotSupported is returned on platforms without affinity control.
	ErrNotSupported = errors.New("affinity: not supported on this platform")
	// ErrInvalidCore is returned for core IDs outside [0, NumCores).
	ErrInvalidCore = errors.New("affinity: invalid core id")
)

// NumCores returns the number of logical CPUs.
func NumCores() int { return runtime.NumCPU() }
