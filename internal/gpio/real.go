//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// lineHandle is the part of *gpiocdev.Line a Line uses once it is an output.
type lineHandle interface {
	Value() (int, error)
	SetValue(int) error
	Close() error
}

// Line drives a single output line through the Linux GPIO character device.
type Line struct {
	line      lineHandle
	offset    int
	commanded int
}

// RequestLine requests offset on chip and switches it to an output holding
// the level it currently has, so opening a line never toggles the load.
func RequestLine(chip string, offset int) (*Line, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsIs, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("request line %s:%d: %w", chip, offset, err)
	}
	v, err := l.Value()
	if err != nil {
		l.Close()
		return nil, fmt.Errorf("read line %s:%d: %w", chip, offset, err)
	}
	if err := l.Reconfigure(gpiocdev.AsOutput(v)); err != nil {
		l.Close()
		return nil, fmt.Errorf("reconfigure line %s:%d as output: %w", chip, offset, err)
	}
	return &Line{line: l, offset: offset, commanded: v}, nil
}

func (l *Line) SetHigh() error { return l.setValue(1) }

func (l *Line) SetLow() error { return l.setValue(0) }

func (l *Line) setValue(v int) error {
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set line %d: %w", l.offset, err)
	}
	l.commanded = v
	return nil
}

// IsHigh reads the level of the line from the kernel.
func (l *Line) IsHigh() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, fmt.Errorf("read line %d: %w", l.offset, err)
	}
	return v == 1, nil
}

func (l *Line) IsLow() (bool, error) {
	high, err := l.IsHigh()
	if err != nil {
		return false, err
	}
	return !high, nil
}

// IsSetHigh reports whether the line was last set high.
func (l *Line) IsSetHigh() (bool, error) { return l.commanded == 1, nil }

func (l *Line) IsSetLow() (bool, error) { return l.commanded == 0, nil }

// Close releases the line. What level the line holds afterwards is up to the
// kernel and the board, so callers that need a level must keep the line open.
func (l *Line) Close() error {
	if err := l.line.Close(); err != nil {
		return fmt.Errorf("close line %d: %w", l.offset, err)
	}
	return nil
}
