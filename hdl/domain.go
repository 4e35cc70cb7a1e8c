package hdl

// Edge selects the clock transition a domain is sensitive to.
type Edge int

// The two clock edges.
const (
	EdgePos Edge = iota
	EdgeNeg
)

// A ClockDomain groups a clock signal, the edge it is sensitive to, and an
// optional reset signal. Domains are referenced by the simulator, never
// owned by it.
type ClockDomain struct {
	name       string
	Clk        *Signal
	ClkEdge    Edge
	Rst        *Signal
	AsyncReset bool
}

// NewClockDomain creates a positive-edge domain driven by clk.
func NewClockDomain(name string, clk *Signal) *ClockDomain {
	return &ClockDomain{name: name, Clk: clk, ClkEdge: EdgePos}
}

// WithNegEdge makes the domain sensitive to the falling edge of its clock.
func (d *ClockDomain) WithNegEdge() *ClockDomain {
	d.ClkEdge = EdgeNeg
	return d
}

// WithAsyncReset attaches rst as an asynchronous, active-high reset.
func (d *ClockDomain) WithAsyncReset(rst *Signal) *ClockDomain {
	d.Rst = rst
	d.AsyncReset = true
	return d
}

// WithSyncReset attaches rst as a synchronous, active-high reset.
func (d *ClockDomain) WithSyncReset(rst *Signal) *ClockDomain {
	d.Rst = rst
	d.AsyncReset = false
	return d
}

// Name returns the name of the domain.
func (d *ClockDomain) Name() string {
	return d.name
}
