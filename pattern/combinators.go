package pattern

import (
	"math"
	"math/rand"
)

// Series returns an arithmetic sequence of unit-length events:
// start, start+step, start+2*step, ... A negative length (Unbounded)
// never ends.
func Series(start, step float64, length int) Pattern {
	return generated(length, func(i int) any {
		return start + float64(i)*step
	})
}

// Geom returns a geometric sequence of unit-length events:
// start, start*grow, start*grow^2, ...
func Geom(start, grow float64, length int) Pattern {
	return generated(length, func(i int) any {
		return start * math.Pow(grow, float64(i))
	})
}

// Rand draws repeats independent uniform samples from list.
func Rand(list []any, repeats int) (Pattern, error) {
	if len(list) == 0 {
		return Pattern{}, ErrEmptyList
	}
	vals := append([]any(nil), list...)
	return generatedFresh(repeats, func() func(i int) any {
		return func(int) any {
			return vals[rand.Intn(len(vals))]
		}
	}), nil
}

// XRand draws repeats samples from list without immediate
// self-repetition across a full pass: the list is shuffled, the pass
// of len(list) draws is consumed, then it is reshuffled. Every item
// appears exactly once per pass.
func XRand(list []any, repeats int) (Pattern, error) {
	if len(list) == 0 {
		return Pattern{}, ErrEmptyList
	}
	vals := append([]any(nil), list...)
	return generatedFresh(repeats, func() func(i int) any {
		var order []int
		return func(i int) any {
			k := i % len(vals)
			if k == 0 {
				order = rand.Perm(len(vals))
			}
			return vals[order[k]]
		}
	}), nil
}

// Shuf picks one random permutation of list per enumeration and
// replays it identically for repeats full passes.
func Shuf(list []any, repeats int) (Pattern, error) {
	if len(list) == 0 {
		return Pattern{}, ErrEmptyList
	}
	vals := append([]any(nil), list...)
	n := repeats
	if n >= 0 {
		n *= len(vals)
	}
	return generatedFresh(n, func() func(i int) any {
		order := rand.Perm(len(vals))
		return func(i int) any {
			return vals[order[i%len(vals)]]
		}
	}), nil
}

// Sin returns quant evenly spaced samples of a sine over one period of
// length dur: sample i is an event of length dur/quant at offset
// i*(dur/quant) with value sin(2*pi*i/quant).
func Sin(quant int, dur float64) (Pattern, error) {
	if quant <= 0 || dur <= 0 {
		return Pattern{}, ErrInvalidDuration
	}
	return sampled(quant, dur, func(i int) float64 {
		return math.Sin(2 * math.Pi * float64(i) / float64(quant))
	}), nil
}

// Sin1 is Sin rescaled from [-1,1] to [0,1].
func Sin1(quant int, dur float64) (Pattern, error) {
	if quant <= 0 || dur <= 0 {
		return Pattern{}, ErrInvalidDuration
	}
	return sampled(quant, dur, func(i int) float64 {
		return (math.Sin(2*math.Pi*float64(i)/float64(quant)) + 1) / 2
	}), nil
}

// generated builds a pattern of unit-length events from a pure index
// function shared by every enumeration.
func generated(length int, value func(i int) any) Pattern {
	return generatedFresh(length, func() func(i int) any { return value })
}

// generatedFresh is like generated but calls setup once per
// enumeration, so randomness is drawn per Events invocation rather
// than per construction.
func generatedFresh(length int, setup func() func(i int) any) Pattern {
	dur := math.Inf(1)
	if length >= 0 {
		dur = float64(length)
	}
	return Pattern{
		dur: dur,
		play: func() func() (Event, bool) {
			value := setup()
			i := 0
			return func() (Event, bool) {
				if length >= 0 && i >= length {
					return Event{}, false
				}
				ev := Event{Value: value(i), Start: float64(i), Duration: 1}
				i++
				return ev, true
			}
		},
	}
}

// sampled builds a pattern of quant events of length dur/quant.
func sampled(quant int, dur float64, value func(i int) float64) Pattern {
	step := dur / float64(quant)
	return Pattern{
		dur: dur,
		play: func() func() (Event, bool) {
			i := 0
			return func() (Event, bool) {
				if i >= quant {
					return Event{}, false
				}
				ev := Event{Value: value(i), Start: float64(i) * step, Duration: step}
				i++
				return ev, true
			}
		},
	}
}
