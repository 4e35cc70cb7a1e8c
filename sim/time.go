// Package sim implements the process-scheduling core of the simulator: the
// command algebra, the process driver, and the event kernel.
package sim

import (
	"log"
	"math"
)

// VTimeInFs is a point on, or an interval of, the simulated timeline in
// integral femtoseconds. Command intervals are public API and are expressed
// in floating-point seconds; the timeline itself is integral.
type VTimeInFs int64

// HoldForever marks a wait with no expiry. A process holding forever is
// resumed only by an explicit external wake.
const HoldForever VTimeInFs = -1

// SecondsToFs converts a floating-point second count to femtoseconds,
// rounding to the nearest integral femtosecond.
func SecondsToFs(seconds float64) VTimeInFs {
	return VTimeInFs(math.Round(seconds * 1e15))
}

// Seconds converts a femtosecond count back to floating-point seconds.
func (t VTimeInFs) Seconds() float64 {
	return float64(t) * 1e-15
}

// Freq defines the type of frequency.
type Freq float64

// Defines the unit of frequency.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks.
func (f Freq) Period() VTimeInFs {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}
	return SecondsToFs(1.0 / float64(f))
}

// Cycle converts a time to the number of cycles passed since time 0.
func (f Freq) Cycle(time VTimeInFs) uint64 {
	return uint64(math.Round(time.Seconds() * float64(f)))
}
