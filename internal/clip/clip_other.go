//go:build !darwin && !linux && !windows

package clip

// New returns a no-op backend on platforms without clipboard support.
func New() Backend {
	return &headlessBackend{watchCh: make(chan struct{})}
}
