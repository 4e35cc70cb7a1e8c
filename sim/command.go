package sim

import (
	"fmt"

	"github.com/silica-hdl/silica/hdl"
)

// A Command is one effect a suspended process requests from the driver. The
// set of commands is closed; yielding any other value is a usage error.
// Commands are immutable once yielded.
type Command interface {
	isCommand()
}

// ReadValue asks for the current value of Expr. The value becomes the
// response of the yield. Does not suspend the process.
type ReadValue struct {
	Expr hdl.Expr
}

// Assign evaluates RHS and commits the result to the signal LHS references.
// In a testbench process the driver returns to the kernel immediately so the
// write becomes visible to other processes within the same instant; in a
// design process interpretation continues without suspending.
type Assign struct {
	LHS hdl.Expr
	RHS hdl.Expr
}

// Tick suspends the process until the active edge of a clock domain.
// Exactly one of Domain and DomainName is set; a name is resolved against
// the process's domain bindings.
type Tick struct {
	Domain     *hdl.ClockDomain
	DomainName string
}

// Settle suspends the process until the next settle point: the next
// zero-duration re-evaluation step within the same instant. Not allowed in
// testbenches.
type Settle struct{}

// Delay suspends the process for Interval seconds. A nil interval is an
// indefinite wait, ended only by an explicit external wake.
type Delay struct {
	Interval *float64
}

// Passive marks the process as not keeping the simulation alive by itself.
type Passive struct{}

// Active reverts Passive.
type Active struct{}

func (ReadValue) isCommand() {}
func (Assign) isCommand()    {}
func (Tick) isCommand()      {}
func (Settle) isCommand()    {}
func (Delay) isCommand()     {}
func (Passive) isCommand()   {}
func (Active) isCommand()    {}

func (c ReadValue) String() string {
	return fmt.Sprintf("ReadValue(%v)", c.Expr)
}

func (c Assign) String() string {
	return fmt.Sprintf("Assign(%v, %v)", c.LHS, c.RHS)
}

func (c Tick) String() string {
	if c.Domain != nil {
		return fmt.Sprintf("Tick(%s)", c.Domain.Name())
	}
	return fmt.Sprintf("Tick(%q)", c.DomainName)
}

func (Settle) String() string {
	return "Settle"
}

func (c Delay) String() string {
	if c.Interval == nil {
		return "Delay(forever)"
	}
	return fmt.Sprintf("Delay(%v)", *c.Interval)
}

func (Passive) String() string {
	return "Passive"
}

func (Active) String() string {
	return "Active"
}
