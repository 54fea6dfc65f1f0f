package stream

import (
	"sort"
	"sync"
	"time"

	"github.com/italoadler/xi/debug"
)

// Session is a registry of named streams driven by one clock. The
// interactive monitor talks to a Session rather than to individual
// streams.
type Session struct {
	clock Clock

	mu        sync.Mutex
	streams   map[string]*Stream
	observers []Observer

	// UpdateChan signals the TUI that stream state changed. Capacity 1,
	// sends never block.
	UpdateChan chan struct{}
}

// NewSession creates an empty session over the given clock.
func NewSession(clock Clock) *Session {
	return &Session{
		clock:      clock,
		streams:    make(map[string]*Stream),
		UpdateChan: make(chan struct{}, 1),
	}
}

// Stream returns the named stream, creating it on first use with the
// session's observers attached.
func (s *Session) Stream(name string) *Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.streams[name]; ok {
		return st
	}
	st := NewStream(s.clock)
	for _, o := range s.observers {
		st.AddObserver(o)
	}
	st.AddObserver(updateObserver{s})
	s.streams[name] = st
	return st
}

// AddObserver attaches an observer to every current and future stream.
func (s *Session) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
	for _, st := range s.streams {
		st.AddObserver(o)
	}
}

// Names returns the stream names in sorted order.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.streams))
	for name := range s.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlayAll starts every stream that has a source bound.
func (s *Session) PlayAll() {
	for _, st := range s.snapshot() {
		if err := st.Play(); err != nil {
			debug.Log("session", "play: %v", err)
		}
	}
	s.notifyUpdate()
}

// StopAll stops every stream.
func (s *Session) StopAll() {
	for _, st := range s.snapshot() {
		st.Stop()
	}
	s.notifyUpdate()
}

func (s *Session) snapshot() []*Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Stream, 0, len(s.streams))
	for _, st := range s.streams {
		out = append(out, st)
	}
	return out
}

func (s *Session) notifyUpdate() {
	select {
	case s.UpdateChan <- struct{}{}:
	default:
	}
}

// updateObserver pokes the session's UpdateChan on any notification so
// the monitor redraws.
type updateObserver struct {
	s *Session
}

func (u updateObserver) GateOn(_ []int, _ time.Time)  { u.s.notifyUpdate() }
func (u updateObserver) GateOff(_ []int, _ time.Time) { u.s.notifyUpdate() }
func (u updateObserver) StateChange(_ map[string]any) {
	u.s.notifyUpdate()
}
