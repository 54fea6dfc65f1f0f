package pattern

import (
	"fmt"
	"math"
)

// Unbounded marks an infinite length or repeat count.
const Unbounded = -1

// eps absorbs float drift when comparing grid offsets
const eps = 1e-9

// Pattern is a replayable definition of a lazy event sequence together
// with the cycle length after which the sequence semantically repeats.
// A Pattern holds no mutable state: every call to Events starts a
// fresh, independent enumeration, so the same Pattern can be played
// from multiple streams without interference.
type Pattern struct {
	dur  float64                  // one cycle, math.Inf(1) when unbounded
	play func() func() (Event, bool) // fresh generator per call
}

// TotalDuration returns the length of one cycle, possibly +Inf.
func (p Pattern) TotalDuration() float64 {
	return p.dur
}

// Events starts a fresh enumeration of one cycle of the pattern.
func (p Pattern) Events() *Iterator {
	if p.play == nil {
		return &Iterator{next: func() (Event, bool) { return Event{}, false }}
	}
	return &Iterator{next: p.play()}
}

func (p Pattern) String() string {
	if math.IsInf(p.dur, 1) {
		return "pattern(inf)"
	}
	return fmt.Sprintf("pattern(%g)", p.dur)
}

// Iterator enumerates events lazily. Peek inspects the next event
// without consuming it; Next consumes it. Once exhausted it stays
// exhausted; obtain a new Iterator from the Pattern to restart.
type Iterator struct {
	next   func() (Event, bool)
	peeked bool
	ev     Event
	ok     bool
}

// Peek returns the next event without advancing.
func (it *Iterator) Peek() (Event, bool) {
	if !it.peeked {
		it.ev, it.ok = it.next()
		it.peeked = true
	}
	return it.ev, it.ok
}

// Next returns the next event and advances past it.
func (it *Iterator) Next() (Event, bool) {
	if it.peeked {
		it.peeked = false
		return it.ev, it.ok
	}
	return it.next()
}

// New builds a pattern from literal values, one unit-length event per
// value.
func New(values ...any) Pattern {
	vals := append([]any(nil), values...)
	return Pattern{
		dur: float64(len(vals)),
		play: func() func() (Event, bool) {
			i := 0
			return func() (Event, bool) {
				if i >= len(vals) {
					return Event{}, false
				}
				ev := Event{Value: vals[i], Start: float64(i), Duration: 1}
				i++
				return ev, true
			}
		},
	}
}

// P resamples the pattern onto a uniform grid of eventDur via
// sample-and-hold: each grid slot takes the value of the source event
// active at the slot's start. Total duration is preserved, rounded up
// to a whole slot. Used before scheduling so every parameter's events
// align on boundaries comparable across parameters.
func (p Pattern) P(eventDur float64) (Pattern, error) {
	if eventDur <= 0 {
		return Pattern{}, ErrInvalidDuration
	}
	src := p
	slots := Unbounded
	newDur := math.Inf(1)
	if !math.IsInf(src.dur, 1) {
		slots = int(math.Ceil(src.dur/eventDur - eps))
		newDur = float64(slots) * eventDur
	}
	return Pattern{
		dur: newDur,
		play: func() func() (Event, bool) {
			it := src.Events()
			cur, have := it.Next()
			i := 0
			return func() (Event, bool) {
				if slots >= 0 && i >= slots {
					return Event{}, false
				}
				if !have {
					return Event{}, false
				}
				t := float64(i) * eventDur
				for {
					nxt, ok := it.Peek()
					if !ok || nxt.Start > t+eps {
						break
					}
					cur, _ = it.Next()
				}
				i++
				return Event{Value: cur.Value, Start: t, Duration: eventDur}, true
			}
		},
	}, nil
}

// Seq repeats the pattern for the given number of full passes,
// Unbounded for an infinite repetition. Events of pass k are offset by
// k times the cycle length, so starts increase monotonically across
// passes. Zero passes yield an empty sequence.
func (p Pattern) Seq(repeats int) Pattern {
	src := p
	total := src.dur
	dur := math.Inf(1)
	if repeats >= 0 {
		if repeats == 0 {
			dur = 0
		} else if !math.IsInf(total, 1) {
			dur = float64(repeats) * total
		}
	}
	return Pattern{
		dur: dur,
		play: func() func() (Event, bool) {
			pass := 0
			it := src.Events()
			return func() (Event, bool) {
				// A zero-length source would loop forever under an
				// unbounded repeat; there is nothing to emit anyway.
				if total == 0 {
					return Event{}, false
				}
				for {
					if repeats >= 0 && pass >= repeats {
						return Event{}, false
					}
					if ev, ok := it.Next(); ok {
						// pass > 0 implies a finite total: only a
						// finite source can exhaust a pass.
						if pass > 0 {
							ev.Start += float64(pass) * total
						}
						return ev, true
					}
					// An unbounded source never ends a pass; if its
					// iterator ran dry there is nothing left to loop.
					if math.IsInf(total, 1) {
						return Event{}, false
					}
					pass++
					if repeats >= 0 && pass >= repeats {
						return Event{}, false
					}
					it = src.Events()
				}
			}
		},
	}
}
