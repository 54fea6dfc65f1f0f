package stream

import (
	"time"

	"github.com/italoadler/xi/debug"
)

// Observer consumes a stream's notifications: the birth and death of
// sound objects and snapshots of changed parameters. Backends (OSC,
// MIDI) implement it; so does the debug logger. Observers are invoked
// synchronously inside the tick and must not block.
type Observer interface {
	// GateOn announces sound objects to start at the given time.
	GateOn(ids []int, at time.Time)
	// GateOff announces sound objects to release at the given time.
	GateOff(ids []int, at time.Time)
	// StateChange carries the parameters whose values changed this
	// tick, and only those.
	StateChange(changed map[string]any)
}

// LogObserver writes every notification to the debug log. It is the
// logging side channel recast as an ordinary observer.
type LogObserver struct {
	Name string
}

func (o LogObserver) GateOn(ids []int, at time.Time) {
	debug.Log("gate", "%s on %v at %s", o.Name, ids, at.Format("15:04:05.000"))
}

func (o LogObserver) GateOff(ids []int, at time.Time) {
	debug.Log("gate", "%s off %v at %s", o.Name, ids, at.Format("15:04:05.000"))
}

func (o LogObserver) StateChange(changed map[string]any) {
	debug.Log("state", "%s %v", o.Name, changed)
}
