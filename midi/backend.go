package midi

import (
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/italoadler/xi/debug"
)

// Backend turns stream notifications into MIDI messages. Gate-on and
// gate-off carry target timestamps inside the look-ahead window, so
// each message is armed with a timer and sent at its exact time rather
// than at tick-detection time.
//
// Pitch and velocity come from the stream's "note" and "velocity"
// parameters, observed via StateChange. A chord value maps its i-th
// member to the i-th sound object id of the gate-on.
type Backend struct {
	mu      sync.Mutex
	send    func(gomidi.Message) error
	channel uint8

	notes    []uint8       // last materialized note value(s)
	velocity uint8         // last materialized velocity
	held     map[int]uint8 // sound object id -> sounding MIDI note
}

// NewBackend opens the first MIDI output port whose name contains
// portName (any port when empty) and targets the given channel (0-15).
func NewBackend(portName string, channel uint8) (*Backend, error) {
	out, err := FindOut(portName)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, err
	}
	return &Backend{
		send:     send,
		channel:  channel,
		notes:    []uint8{60},
		velocity: 100,
		held:     make(map[int]uint8),
	}, nil
}

// GateOn schedules a NoteOn per sound object id at the given time.
func (b *Backend) GateOn(ids []int, at time.Time) {
	ids = append([]int(nil), ids...)
	b.after(at, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, id := range ids {
			note := b.notes[i%len(b.notes)]
			b.held[id] = note
			if err := b.send(gomidi.NoteOn(b.channel, note, b.velocity)); err != nil {
				debug.Log("midi", "note on %d: %v", note, err)
			}
		}
	})
}

// GateOff schedules a NoteOff for each sound object's held note.
func (b *Backend) GateOff(ids []int, at time.Time) {
	ids = append([]int(nil), ids...)
	b.after(at, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, id := range ids {
			note, ok := b.held[id]
			if !ok {
				continue
			}
			delete(b.held, id)
			if err := b.send(gomidi.NoteOff(b.channel, note)); err != nil {
				debug.Log("midi", "note off %d: %v", note, err)
			}
		}
	})
}

// StateChange records the latest note/velocity values for subsequent
// gate-ons. Other parameters are ignored; MIDI has no use for them.
func (b *Backend) StateChange(changed map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := changed["note"]; ok {
		if notes := toNotes(v); len(notes) > 0 {
			b.notes = notes
		}
	}
	if v, ok := changed["velocity"]; ok {
		if n, ok := toNote(v); ok {
			b.velocity = n
		}
	}
}

// after runs fn at the target time, immediately if it already passed.
func (b *Backend) after(at time.Time, fn func()) {
	d := time.Until(at)
	if d <= 0 {
		fn()
		return
	}
	time.AfterFunc(d, fn)
}

func toNotes(v any) []uint8 {
	if vs, ok := v.([]any); ok {
		notes := make([]uint8, 0, len(vs))
		for _, m := range vs {
			if n, ok := toNote(m); ok {
				notes = append(notes, n)
			}
		}
		return notes
	}
	if n, ok := toNote(v); ok {
		return []uint8{n}
	}
	return nil
}

func toNote(v any) (uint8, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	default:
		return 0, false
	}
	if f < 0 || f > 127 {
		return 0, false
	}
	return uint8(f), true
}
