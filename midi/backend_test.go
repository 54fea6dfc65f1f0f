package midi

import (
	"reflect"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// capture collects messages in place of a real port sender
func capture(msgs *[]gomidi.Message) func(gomidi.Message) error {
	return func(m gomidi.Message) error {
		*msgs = append(*msgs, m)
		return nil
	}
}

func newTestBackend(msgs *[]gomidi.Message) *Backend {
	return &Backend{
		send:     capture(msgs),
		channel:  0,
		notes:    []uint8{60},
		velocity: 100,
		held:     make(map[int]uint8),
	}
}

// past timestamps make after() fire synchronously
var past = time.Now().Add(-time.Second)

func TestBackend_GateLifecycle(t *testing.T) {
	var msgs []gomidi.Message
	b := newTestBackend(&msgs)

	b.StateChange(map[string]any{"note": 62.0, "velocity": 90.0})
	b.GateOn([]int{0}, past)
	b.GateOff([]int{0}, past)

	want := []gomidi.Message{
		gomidi.NoteOn(0, 62, 90),
		gomidi.NoteOff(0, 62),
	}
	if !reflect.DeepEqual(msgs, want) {
		t.Errorf("messages = %v, want %v", msgs, want)
	}
	if len(b.held) != 0 {
		t.Errorf("held notes not released: %v", b.held)
	}
}

func TestBackend_ChordMapsMembersToIDs(t *testing.T) {
	var msgs []gomidi.Message
	b := newTestBackend(&msgs)

	b.StateChange(map[string]any{"note": []any{60.0, 64.0, 67.0}})
	b.GateOn([]int{0, 1, 2}, past)

	want := []gomidi.Message{
		gomidi.NoteOn(0, 60, 100),
		gomidi.NoteOn(0, 64, 100),
		gomidi.NoteOn(0, 67, 100),
	}
	if !reflect.DeepEqual(msgs, want) {
		t.Errorf("messages = %v, want %v", msgs, want)
	}

	// release the middle voice only
	msgs = nil
	b.GateOff([]int{1}, past)
	if !reflect.DeepEqual(msgs, []gomidi.Message{gomidi.NoteOff(0, 64)}) {
		t.Errorf("messages = %v, want NoteOff 64", msgs)
	}
}

func TestBackend_GateOffUnknownIDIsNoop(t *testing.T) {
	var msgs []gomidi.Message
	b := newTestBackend(&msgs)

	b.GateOff([]int{99}, past)
	if len(msgs) != 0 {
		t.Errorf("unexpected messages: %v", msgs)
	}
}

func TestToNote(t *testing.T) {
	cases := []struct {
		in   any
		want uint8
		ok   bool
	}{
		{60.0, 60, true},
		{float32(61), 61, true},
		{62, 62, true},
		{127.0, 127, true},
		{128.0, 0, false},
		{-1.0, 0, false},
		{"60", 0, false},
	}
	for _, tc := range cases {
		got, ok := toNote(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("toNote(%v) = %d,%v, want %d,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestToNotes_DropsUnusable(t *testing.T) {
	notes := toNotes([]any{60.0, "x", 64.0})
	if !reflect.DeepEqual(notes, []uint8{60, 64}) {
		t.Errorf("toNotes = %v, want [60 64]", notes)
	}
	if toNotes("nope") != nil {
		t.Error("expected nil for an unusable scalar")
	}
}
