package gpio

// FakePin is a test double for a single line.
// It behaves like an output line whose level can be overridden by an external
// source with Drive.
type FakePin struct {
	// Level is the level present on the line.
	Level bool

	// Commanded is the level last written by SetHigh or SetLow.
	Commanded bool

	// SetError, if set, is returned by SetHigh and SetLow and the line is left unchanged.
	SetError error

	// ReadError, if set, is returned by every read.
	ReadError error

	// Calls records the methods invoked, in order.
	Calls []string

	// Closed tracks if Close was called.
	Closed bool

	driven bool
}

// NewFakePin creates a FakePin already set to the given level.
func NewFakePin(high bool) *FakePin {
	return &FakePin{Level: high, Commanded: high}
}

func (f *FakePin) SetHigh() error {
	return f.set("SetHigh", true)
}

func (f *FakePin) SetLow() error {
	return f.set("SetLow", false)
}

func (f *FakePin) set(call string, high bool) error {
	f.Calls = append(f.Calls, call)
	if f.SetError != nil {
		return f.SetError
	}
	f.Commanded = high
	if !f.driven {
		f.Level = high
	}
	return nil
}

func (f *FakePin) IsHigh() (bool, error) {
	return f.read("IsHigh", f.Level)
}

func (f *FakePin) IsLow() (bool, error) {
	return f.read("IsLow", !f.Level)
}

func (f *FakePin) IsSetHigh() (bool, error) {
	return f.read("IsSetHigh", f.Commanded)
}

func (f *FakePin) IsSetLow() (bool, error) {
	return f.read("IsSetLow", !f.Commanded)
}

func (f *FakePin) read(call string, v bool) (bool, error) {
	f.Calls = append(f.Calls, call)
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return v, nil
}

// Drive simulates an external source holding the line at the given level.
// Writes still update Commanded but no longer change Level until Release.
func (f *FakePin) Drive(high bool) {
	f.driven = true
	f.Level = high
}

// Release removes the external source; the line returns to the commanded level.
func (f *FakePin) Release() {
	f.driven = false
	f.Level = f.Commanded
}

// Close marks the pin as closed.
func (f *FakePin) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded calls and injected errors.
func (f *FakePin) Reset() {
	f.Calls = nil
	f.SetError = nil
	f.ReadError = nil
	f.Closed = false
}
