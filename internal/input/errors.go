package input

import "errors"

var (
	// ErrUnsupportedPlatform is returned by every Backend operation on
	// platforms without an input implementation.
	ErrUnsupportedPlatform = errors.New("input injection is not supported on this platform")

	// ErrInvalidWindow is returned when a handle no longer names a window.
	ErrInvalidWindow = errors.New("window handle is no longer valid")
)
