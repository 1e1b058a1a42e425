package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphPin drives a pin through periph.io. Pins are addressed by their
// periph name, e.g. "GPIO17".
type PeriphPin struct {
	p         pgpio.PinIO
	commanded pgpio.Level
}

// OpenPeriph initialises the periph host drivers and opens the named pin as
// an output holding its current level. host.Init is safe to call more than
// once.
func OpenPeriph(name string) (*PeriphPin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("periph pin %q not found", name)
	}
	return newPeriphPin(p)
}

func newPeriphPin(p pgpio.PinIO) (*PeriphPin, error) {
	pp := &PeriphPin{p: p}
	if err := pp.out(p.Read()); err != nil {
		return nil, err
	}
	return pp, nil
}

func (pp *PeriphPin) SetHigh() error { return pp.out(pgpio.High) }

func (pp *PeriphPin) SetLow() error { return pp.out(pgpio.Low) }

func (pp *PeriphPin) out(l pgpio.Level) error {
	if err := pp.p.Out(l); err != nil {
		return fmt.Errorf("set %s %s: %w", pp.p.Name(), l, err)
	}
	pp.commanded = l
	return nil
}

// IsHigh samples the pin. periph reads cannot fail.
func (pp *PeriphPin) IsHigh() (bool, error) { return pp.p.Read() == pgpio.High, nil }

func (pp *PeriphPin) IsLow() (bool, error) { return pp.p.Read() == pgpio.Low, nil }

func (pp *PeriphPin) IsSetHigh() (bool, error) { return pp.commanded == pgpio.High, nil }

func (pp *PeriphPin) IsSetLow() (bool, error) { return pp.commanded == pgpio.Low, nil }

// Close halts the pin.
func (pp *PeriphPin) Close() error {
	if err := pp.p.Halt(); err != nil {
		return fmt.Errorf("halt %s: %w", pp.p.Name(), err)
	}
	return nil
}
