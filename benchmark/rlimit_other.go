//go:build !linux && !windows
// +build !linux,!windows

package benchmark

// SetMaxResources is a no-op on platforms without a tuned implementation.
func SetMaxResources() error {
	return nil
}
