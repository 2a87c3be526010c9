package compute

import "runtime"

type Backend interface {
	Name() string
	Available() bool
	// ParallelFor calls fn over disjoint ranges covering [0, n) and returns
	// once every call has finished.
	ParallelFor(n int, fn func(start, end int))
	Cleanup()
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

// AutoSelectBackend picks the CPU backend on multi-core machines and the
// serial backend otherwise.
func AutoSelectBackend() Backend {
	if runtime.NumCPU() > 1 {
		return NewCPUBackend()
	}
	return NewSerialBackend()
}

// ByName returns the backend called name, or the auto-selected one for
// "auto" and the empty string.
func ByName(name string) (Backend, bool) {
	switch name {
	case "", "auto":
		return AutoSelectBackend(), true
	case "cpu":
		return NewCPUBackend(), true
	case "serial":
		return NewSerialBackend(), true
	default:
		return nil, false
	}
}
