//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: character device not supported on this platform (requires Linux)")

// Line is not available on non-Linux platforms.
type Line struct{}

// RequestLine returns an error on non-Linux platforms.
func RequestLine(chip string, offset int) (*Line, error) {
	return nil, errUnsupported
}

func (l *Line) SetHigh() error { return errUnsupported }

func (l *Line) SetLow() error { return errUnsupported }

func (l *Line) IsHigh() (bool, error) { return false, errUnsupported }

func (l *Line) IsLow() (bool, error) { return false, errUnsupported }

func (l *Line) IsSetHigh() (bool, error) { return false, errUnsupported }

func (l *Line) IsSetLow() (bool, error) { return false, errUnsupported }

// Close is a no-op on non-Linux platforms.
func (l *Line) Close() error {
	return nil
}
