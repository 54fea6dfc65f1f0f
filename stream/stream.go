package stream

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/italoadler/xi/pattern"
)

// ErrUnboundGate is returned when the gate parameter name does not
// exist in the current source mapping.
var ErrUnboundGate = errors.New("stream: gate parameter not bound in source")

// DefaultLatency is the look-ahead window: events due within this many
// seconds of a tick are emitted, carrying their exact target
// timestamp, so backends get lead time to schedule them precisely.
const DefaultLatency = 0.05

// DefaultEventDuration is the base grid all bound patterns are
// resampled to before scheduling.
const DefaultEventDuration = 1.0

// eps absorbs float drift in cycle arithmetic
const eps = 1e-9

// paramEnum is one parameter's compiled enumerator: an unbounded
// repetition of the resampled pattern plus that pattern's cycle length.
type paramEnum struct {
	it    *pattern.Iterator
	total float64
}

// soundObject tracks currently-sounding entities awaiting a gate-off,
// keyed in the stream by their end offset on the anchor timeline.
type soundObject struct {
	ids   []int
	cycle float64 // gate cycle length at registration, for re-anchoring
}

// Stream binds named parameters to patterns and, driven by a clock,
// turns them into gate-on/gate-off/state-change notifications. All
// mutation - user calls and tick processing alike - runs under one
// exclusive lock, so a tick never observes a half-installed source and
// a Set never races with gate bookkeeping.
type Stream struct {
	mu    sync.Mutex
	clock Clock

	source   map[string]pattern.Pattern
	gate     string
	eventDur float64
	latency  float64

	state    map[string]any
	enums    map[string]*paramEnum
	sounding map[float64]*soundObject
	baseTS   float64
	forward  bool // fast-forward pending after a rebuild
	nextID   int  // sound object ids are never reused

	playing   bool
	observers []Observer
}

// NewStream creates a stopped, unsubscribed stream bound to a clock.
func NewStream(clock Clock) *Stream {
	return &Stream{
		clock:    clock,
		eventDur: DefaultEventDuration,
		latency:  DefaultLatency,
		state:    make(map[string]any),
		sounding: make(map[float64]*soundObject),
	}
}

// AddObserver registers a backend consumer for this stream's
// notifications.
func (s *Stream) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Set replaces the source mapping wholesale and rebuilds every
// parameter's enumerator. A pending gate-off survives the rebuild; it
// fires at a time consistent with the pre-rebuild schedule translated
// into the new anchor.
func (s *Stream) Set(source map[string]pattern.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != "" && len(source) > 0 {
		if _, ok := source[s.gate]; !ok {
			return ErrUnboundGate
		}
	}
	s.source = make(map[string]pattern.Pattern, len(source))
	for name, p := range source {
		s.source[name] = p
	}
	return s.rebuild()
}

// SetGate designates the parameter whose value arity drives sound
// object creation.
func (s *Stream) SetGate(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.source) > 0 {
		if _, ok := s.source[name]; !ok {
			return ErrUnboundGate
		}
	}
	s.gate = name
	return s.rebuild()
}

// SetEventDuration changes the base event grid.
func (s *Stream) SetEventDuration(d float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		return pattern.ErrInvalidDuration
	}
	s.eventDur = d
	return s.rebuild()
}

// SetLatency changes the look-ahead window.
func (s *Stream) SetLatency(d float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		return pattern.ErrInvalidDuration
	}
	s.latency = d
	return nil
}

// Play subscribes the stream to its clock. Enumerators are re-anchored
// at the current clock time.
func (s *Stream) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return nil
	}
	if err := s.rebuild(); err != nil {
		return err
	}
	s.playing = true
	s.clock.Subscribe(s)
	return nil
}

// Stop unsubscribes from the clock and clears transient state. Pending
// sound objects are released with a final gate-off so backends are not
// left holding notes. Source, gate and event duration survive for a
// restart. No tick arrives after Stop returns.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return
	}
	s.playing = false
	s.clock.Unsubscribe(s)

	now := s.clock.Now()
	for _, end := range sortedOffsets(s.sounding) {
		s.emitGateOff(s.sounding[end].ids, now)
	}
	s.sounding = make(map[float64]*soundObject)
	s.state = make(map[string]any)
}

// IsPlaying reports whether the stream is subscribed to its clock.
func (s *Stream) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// State returns a snapshot of the last materialized value per
// parameter.
func (s *Stream) State() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(map[string]any, len(s.state))
	for k, v := range s.state {
		snap[k] = v
	}
	return snap
}

// Sounding returns the number of sound objects awaiting a gate-off.
func (s *Stream) Sounding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, so := range s.sounding {
		n += len(so.ids)
	}
	return n
}

// Gate returns the designated gate parameter name.
func (s *Stream) Gate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate
}

// rebuild recompiles every parameter's enumerator against the current
// source, gate and event duration. Tracked sound objects' end offsets
// are translated into the new anchor's coordinates so they survive
// the re-anchoring: finite-cycle entries reduce modulo their own
// cycle, unbounded ones keep their remaining time. Callers hold s.mu.
func (s *Stream) rebuild() error {
	now := s.clock.Now()
	elapsed := now - s.baseTS

	resound := make(map[float64]*soundObject, len(s.sounding))
	for end, so := range s.sounding {
		var e float64
		if so.cycle > 0 && !math.IsInf(so.cycle, 1) {
			e = math.Mod(end, so.cycle)
		} else {
			// an unbounded cycle has no modulus; position under the
			// new anchor restarts at zero, so the end moves back by
			// the time already elapsed under the old one
			e = end - elapsed
		}
		if prev, ok := resound[e]; ok {
			prev.ids = append(prev.ids, so.ids...)
		} else {
			resound[e] = so
		}
	}
	s.sounding = resound

	s.baseTS = now
	s.forward = true

	s.enums = make(map[string]*paramEnum, len(s.source))
	for name, p := range s.source {
		rp, err := p.P(s.eventDur)
		if err != nil {
			return err
		}
		s.enums[name] = &paramEnum{
			it:    rp.Seq(pattern.Unbounded).Events(),
			total: rp.TotalDuration(),
		}
	}
	return nil
}

// Notify is the tick handler invoked by the clock. It advances each
// parameter's enumerator, fires gate-offs due within the latency
// window before any gate-on, materializes due values into the state
// snapshot and reports the changed subset.
func (s *Stream) Notify(now float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing || len(s.enums) == 0 {
		return
	}

	changed := make(map[string]struct{})

	if s.forward {
		s.forwardEnums(now)
		s.forward = false
	}

	names := make([]string, 0, len(s.enums))
	for name := range s.enums {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		en := s.enums[name]
		cycleStart, pos := s.position(en.total, now)

		// Gate-offs always precede this tick's gate-on, so a backend
		// never sees a new sound object before the one it replaces has
		// been released, even at the same timestamp.
		if name == s.gate {
			for _, end := range sortedOffsets(s.sounding) {
				if end <= pos+s.latency+eps {
					s.emitGateOff(s.sounding[end].ids, cycleStart+end)
					delete(s.sounding, end)
				}
			}
		}

		ev, ok := en.it.Peek()
		if !ok || ev.Start > pos+s.latency+eps {
			continue
		}
		en.it.Next()

		if prev, exists := s.state[name]; !exists || !reflect.DeepEqual(prev, ev.Value) {
			changed[name] = struct{}{}
		}
		s.state[name] = ev.Value

		if name == s.gate {
			ids := s.allocate(ev.Value)
			for _, o := range s.observers {
				o.GateOn(ids, s.clock.At(cycleStart+ev.Start))
			}
			if prev, ok := s.sounding[ev.End()]; ok {
				prev.ids = append(prev.ids, ids...)
			} else {
				s.sounding[ev.End()] = &soundObject{ids: ids, cycle: en.total}
			}
		}
	}

	if len(changed) > 0 {
		snap := make(map[string]any, len(changed))
		for name := range changed {
			snap[name] = s.state[name]
		}
		for _, o := range s.observers {
			o.StateChange(snap)
		}
	}
}

// forwardEnums advances every enumerator past events already behind
// now, without notifications: events skipped over a rebuild are
// silently superseded. Callers hold s.mu.
func (s *Stream) forwardEnums(now float64) {
	for _, en := range s.enums {
		_, pos := s.position(en.total, now)
		for {
			ev, ok := en.it.Peek()
			if !ok || ev.Start >= pos-eps {
				break
			}
			en.it.Next()
		}
	}
}

// position returns the parameter-local absolute cycle start (baseTS
// rounded down to a multiple of the cycle length) and the elapsed
// position relative to it.
func (s *Stream) position(total, now float64) (cycleStart, pos float64) {
	if total <= 0 || math.IsInf(total, 1) {
		return s.baseTS, now - s.baseTS
	}
	cycleStart = math.Floor(s.baseTS/total+eps) * total
	return cycleStart, now - cycleStart
}

// allocate assigns fresh sound object ids for a gate value: one per
// member of a composite value (a chord), one for a scalar.
func (s *Stream) allocate(value any) []int {
	n := 1
	if vs, ok := value.([]any); ok {
		n = len(vs)
	}
	ids := make([]int, n)
	for i := range ids {
		ids[i] = s.nextID
		s.nextID++
	}
	return ids
}

// emitGateOff fans a gate-off out to all observers. Callers hold s.mu.
func (s *Stream) emitGateOff(ids []int, offset float64) {
	for _, o := range s.observers {
		o.GateOff(ids, s.clock.At(offset))
	}
}

// sortedOffsets returns the sounding table's keys in ascending order,
// for deterministic emission.
func sortedOffsets(m map[float64]*soundObject) []float64 {
	offs := make([]float64, 0, len(m))
	for off := range m {
		offs = append(offs, off)
	}
	sort.Float64s(offs)
	return offs
}

// String summarizes the stream. Formatting must never take down the
// tick path, so panics from odd parameter values are caught here.
func (s *Stream) String() (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = "stream(unprintable)"
		}
	}()
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.source))
	for name := range s.source {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "stream(gate=%s playing=%v", s.gate, s.playing)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, s.state[name])
	}
	b.WriteString(")")
	return b.String()
}
