package pattern

import "fmt"

// Event is a single timestamped value within one cycle of a Pattern.
// Start and Duration are in seconds relative to the cycle origin.
// Events are immutable once produced.
type Event struct {
	Value    any
	Start    float64
	Duration float64
}

// End returns the offset at which the event stops sounding.
func (e Event) End() float64 {
	return e.Start + e.Duration
}

func (e Event) String() string {
	return fmt.Sprintf("E(%v %g %g)", e.Value, e.Start, e.Duration)
}
