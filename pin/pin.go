// Package pin defines the capabilities of a single digital I/O line and an
// adapter that inverts their logic level.
//
// A pin may support any subset of driving a level (Output), sensing a level
// (Input) and reading back the last commanded level (StatefulOutput).
// Drivers implement whichever of these they can; code that controls a pin
// depends only on the capability it needs.
package pin

// Output is a pin that can be driven high or low.
type Output interface {
	SetHigh() error
	SetLow() error
}

// Input is a pin whose level can be sensed.
type Input interface {
	IsHigh() (bool, error)
	IsLow() (bool, error)
}

// StatefulOutput is an output that can report the level it was last
// commanded to. This is the commanded level, not necessarily the level
// present on the line.
type StatefulOutput interface {
	Output
	IsSetHigh() (bool, error)
	IsSetLow() (bool, error)
}

// IO is a pin that is both an Output and an Input.
type IO interface {
	Output
	Input
}

// StatefulIO is a pin that is both a StatefulOutput and an Input.
type StatefulIO interface {
	StatefulOutput
	Input
}

// Set drives p high when high is true and low otherwise.
func Set(p Output, high bool) error {
	if high {
		return p.SetHigh()
	}
	return p.SetLow()
}

// Toggle drives p to the opposite of its last commanded level.
// If the readback fails the pin is not written.
func Toggle(p StatefulOutput) error {
	high, err := p.IsSetHigh()
	if err != nil {
		return err
	}
	return Set(p, !high)
}
