package stream

import (
	"reflect"
	"testing"

	"github.com/italoadler/xi/pattern"
)

func TestSession_StreamIsLazyAndStable(t *testing.T) {
	s := NewSession(&fakeClock{})

	a := s.Stream("drums")
	b := s.Stream("drums")
	if a != b {
		t.Error("same name returned different streams")
	}
	if s.Stream("bass") == a {
		t.Error("different names shared a stream")
	}
}

func TestSession_NamesSorted(t *testing.T) {
	s := NewSession(&fakeClock{})
	s.Stream("zebra")
	s.Stream("alpha")
	s.Stream("mid")

	want := []string{"alpha", "mid", "zebra"}
	if got := s.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestSession_ObserverReachesFutureStreams(t *testing.T) {
	fc := &fakeClock{}
	s := NewSession(fc)
	rec := &recorder{}
	s.AddObserver(rec)

	st := s.Stream("melody")
	if err := st.Set(map[string]pattern.Pattern{
		"freq": pattern.Series(100, 10, 4),
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.Play(); err != nil {
		t.Fatal(err)
	}
	fc.tick(0)

	if len(rec.ofKind("state")) != 1 {
		t.Errorf("session observer missed notifications: %v", rec.records)
	}
}

func TestSession_PlayAllStopAll(t *testing.T) {
	fc := &fakeClock{}
	s := NewSession(fc)

	a := s.Stream("a")
	if err := a.Set(map[string]pattern.Pattern{
		"x": pattern.Series(0, 1, 4),
	}); err != nil {
		t.Fatal(err)
	}
	b := s.Stream("b")
	if err := b.Set(map[string]pattern.Pattern{
		"y": pattern.Series(0, 1, 4),
	}); err != nil {
		t.Fatal(err)
	}

	s.PlayAll()
	if !a.IsPlaying() || !b.IsPlaying() {
		t.Error("PlayAll left a stream stopped")
	}

	s.StopAll()
	if a.IsPlaying() || b.IsPlaying() {
		t.Error("StopAll left a stream playing")
	}
	if len(fc.subs) != 0 {
		t.Errorf("%d subscriptions left after StopAll", len(fc.subs))
	}
}

func TestSession_UpdateChanSignals(t *testing.T) {
	fc := &fakeClock{}
	s := NewSession(fc)

	st := s.Stream("a")
	if err := st.Set(map[string]pattern.Pattern{
		"x": pattern.Series(0, 1, 4),
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.Play(); err != nil {
		t.Fatal(err)
	}
	fc.tick(0)

	select {
	case <-s.UpdateChan:
	default:
		t.Error("no update signal after a tick with notifications")
	}
}
