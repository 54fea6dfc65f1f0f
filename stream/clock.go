package stream

import (
	"context"
	"sync"
	"time"

	"github.com/italoadler/xi/debug"
)

// Notifier is anything a Clock can drive. Streams implement it.
type Notifier interface {
	Notify(now float64)
}

// Clock supplies the time reference for streams: a monotonically
// increasing "now" in seconds, translation of a relative offset to an
// absolute schedulable timestamp, and periodic delivery of ticks to
// subscribed notifiers.
type Clock interface {
	Now() float64
	At(offset float64) time.Time
	Subscribe(n Notifier)
	Unsubscribe(n Notifier)
}

// Ticker is a Clock driven by a time.Ticker loop at a fixed
// resolution. The resolution bounds tick jitter, not event precision:
// backends schedule at the timestamps carried by notifications.
type Ticker struct {
	start time.Time
	res   time.Duration

	mu   sync.Mutex
	subs []Notifier
}

// DefaultResolution is the tick interval used when none is given.
const DefaultResolution = 10 * time.Millisecond

// NewTicker creates a clock ticking at the given resolution.
func NewTicker(res time.Duration) *Ticker {
	if res <= 0 {
		res = DefaultResolution
	}
	return &Ticker{
		start: time.Now(),
		res:   res,
	}
}

// Now returns seconds elapsed since the clock was created.
func (t *Ticker) Now() float64 {
	return time.Since(t.start).Seconds()
}

// At converts a relative offset on the clock's timeline to an
// absolute wall-clock time.
func (t *Ticker) At(offset float64) time.Time {
	return t.start.Add(time.Duration(offset * float64(time.Second)))
}

// Subscribe registers a notifier for ticks. Duplicate subscriptions
// are ignored.
func (t *Ticker) Subscribe(n Notifier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.subs {
		if s == n {
			return
		}
	}
	t.subs = append(t.subs, n)
}

// Unsubscribe removes a notifier. After it returns the notifier will
// not be ticked again.
func (t *Ticker) Unsubscribe(n Notifier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s == n {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			return
		}
	}
}

// Run drives subscribed notifiers until ctx is cancelled (blocking -
// run in goroutine). A panic out of one notifier drops that tick for
// that notifier only.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.res)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			subs := append([]Notifier(nil), t.subs...)
			t.mu.Unlock()

			now := t.Now()
			debug.LogEvery(1000, "clock", "tick now=%g subs=%d", now, len(subs))
			for _, s := range subs {
				t.tick(s, now)
			}
		}
	}
}

func (t *Ticker) tick(n Notifier, now float64) {
	defer func() {
		if r := recover(); r != nil {
			debug.Log("clock", "tick dropped at %g: %v", now, r)
		}
	}()
	n.Notify(now)
}
