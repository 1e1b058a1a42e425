package pin

// The inverted adapters below forward every call to the wrapped pin with the
// level flipped. They hold no state of their own and return the wrapped pin's
// values and errors untouched.
//
// There is one adapter type per capability set, so an adapter only has the
// methods its wrapped pin has. Wrapping an adapter in another adapter
// restores the original polarity.

// InvertedOutput is an Output whose level is the opposite of P's.
type InvertedOutput[P Output] struct {
	pin P
}

// InvertOutput takes ownership of p and returns an inverted Output.
func InvertOutput[P Output](p P) *InvertedOutput[P] {
	return &InvertedOutput[P]{pin: p}
}

// SetHigh drives the wrapped pin low.
func (a *InvertedOutput[P]) SetHigh() error { return a.pin.SetLow() }

// SetLow drives the wrapped pin high.
func (a *InvertedOutput[P]) SetLow() error { return a.pin.SetHigh() }

// Unwrap returns the wrapped pin. The adapter must not be used afterwards.
func (a *InvertedOutput[P]) Unwrap() P {
	p := a.pin
	var zero P
	a.pin = zero
	return p
}

// InvertedInput is an Input that reads the opposite of P.
type InvertedInput[P Input] struct {
	pin P
}

// InvertInput takes ownership of p and returns an inverted Input.
func InvertInput[P Input](p P) *InvertedInput[P] {
	return &InvertedInput[P]{pin: p}
}

// IsHigh reports whether the wrapped pin is low.
func (a *InvertedInput[P]) IsHigh() (bool, error) { return a.pin.IsLow() }

// IsLow reports whether the wrapped pin is high.
func (a *InvertedInput[P]) IsLow() (bool, error) { return a.pin.IsHigh() }

// Unwrap returns the wrapped pin. The adapter must not be used afterwards.
func (a *InvertedInput[P]) Unwrap() P {
	p := a.pin
	var zero P
	a.pin = zero
	return p
}

// InvertedStatefulOutput is a StatefulOutput whose level is the opposite of P's.
type InvertedStatefulOutput[P StatefulOutput] struct {
	pin P
}

// InvertStatefulOutput takes ownership of p and returns an inverted StatefulOutput.
func InvertStatefulOutput[P StatefulOutput](p P) *InvertedStatefulOutput[P] {
	return &InvertedStatefulOutput[P]{pin: p}
}

func (a *InvertedStatefulOutput[P]) SetHigh() error { return a.pin.SetLow() }

func (a *InvertedStatefulOutput[P]) SetLow() error { return a.pin.SetHigh() }

// IsSetHigh reports whether the wrapped pin was last set low.
func (a *InvertedStatefulOutput[P]) IsSetHigh() (bool, error) { return a.pin.IsSetLow() }

// IsSetLow reports whether the wrapped pin was last set high.
func (a *InvertedStatefulOutput[P]) IsSetLow() (bool, error) { return a.pin.IsSetHigh() }

// Unwrap returns the wrapped pin. The adapter must not be used afterwards.
func (a *InvertedStatefulOutput[P]) Unwrap() P {
	p := a.pin
	var zero P
	a.pin = zero
	return p
}

// InvertedIO is an IO whose level is the opposite of P's in both directions.
type InvertedIO[P IO] struct {
	pin P
}

// InvertIO takes ownership of p and returns an inverted IO.
func InvertIO[P IO](p P) *InvertedIO[P] {
	return &InvertedIO[P]{pin: p}
}

func (a *InvertedIO[P]) SetHigh() error { return a.pin.SetLow() }

func (a *InvertedIO[P]) SetLow() error { return a.pin.SetHigh() }

func (a *InvertedIO[P]) IsHigh() (bool, error) { return a.pin.IsLow() }

func (a *InvertedIO[P]) IsLow() (bool, error) { return a.pin.IsHigh() }

// Unwrap returns the wrapped pin. The adapter must not be used afterwards.
func (a *InvertedIO[P]) Unwrap() P {
	p := a.pin
	var zero P
	a.pin = zero
	return p
}

// InvertedStatefulIO is a StatefulIO whose level is the opposite of P's in
// every direction, including readback.
type InvertedStatefulIO[P StatefulIO] struct {
	pin P
}

// InvertStatefulIO takes ownership of p and returns an inverted StatefulIO.
func InvertStatefulIO[P StatefulIO](p P) *InvertedStatefulIO[P] {
	return &InvertedStatefulIO[P]{pin: p}
}

func (a *InvertedStatefulIO[P]) SetHigh() error { return a.pin.SetLow() }

func (a *InvertedStatefulIO[P]) SetLow() error { return a.pin.SetHigh() }

func (a *InvertedStatefulIO[P]) IsHigh() (bool, error) { return a.pin.IsLow() }

func (a *InvertedStatefulIO[P]) IsLow() (bool, error) { return a.pin.IsHigh() }

func (a *InvertedStatefulIO[P]) IsSetHigh() (bool, error) { return a.pin.IsSetLow() }

func (a *InvertedStatefulIO[P]) IsSetLow() (bool, error) { return a.pin.IsSetHigh() }

// Unwrap returns the wrapped pin. The adapter must not be used afterwards.
func (a *InvertedStatefulIO[P]) Unwrap() P {
	p := a.pin
	var zero P
	a.pin = zero
	return p
}

// Invert wraps p in the adapter matching the capabilities p has, for callers
// that only hold p as an interface value. The result implements exactly those
// of Output, Input and StatefulOutput that p implements. ok is false if p
// implements none of them.
func Invert(p any) (inverted any, ok bool) {
	switch v := p.(type) {
	case StatefulIO:
		return InvertStatefulIO(v), true
	case IO:
		return InvertIO(v), true
	case StatefulOutput:
		return InvertStatefulOutput(v), true
	case Output:
		return InvertOutput(v), true
	case Input:
		return InvertInput(v), true
	}
	return nil, false
}
