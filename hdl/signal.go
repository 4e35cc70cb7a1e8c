// Package hdl defines the data model shared by the simulator: signals,
// value expressions, and clock domains.
package hdl

import "fmt"

// A Signal is a named carrier of an unsigned value of a fixed width. Signal
// identity is pointer identity; two signals that happen to share a name are
// still distinct wires.
type Signal struct {
	name  string
	width int
	init  uint64
}

// NewSignal creates a signal of the given width with an initial value of
// zero. Width must be between 1 and 64 bits.
func NewSignal(name string, width int) *Signal {
	if width < 1 || width > 64 {
		panic(fmt.Sprintf("signal %s: width must be in [1, 64], got %d",
			name, width))
	}

	return &Signal{name: name, width: width}
}

// WithInit sets the value the signal carries before the first assignment.
func (s *Signal) WithInit(init uint64) *Signal {
	s.init = init & s.Mask()
	return s
}

// Name returns the name of the signal.
func (s *Signal) Name() string {
	return s.name
}

// Width returns the width of the signal in bits.
func (s *Signal) Width() int {
	return s.width
}

// Init returns the initial value of the signal.
func (s *Signal) Init() uint64 {
	return s.init
}

// Mask returns the bit mask that keeps a value within the signal's width.
func (s *Signal) Mask() uint64 {
	if s.width == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << s.width) - 1
}
