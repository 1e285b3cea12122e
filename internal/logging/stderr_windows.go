//go:build windows

package logging

// CaptureStderr is a no-op on Windows.
func CaptureStderr() (func(), error) {
	return func() {}, nil
}
