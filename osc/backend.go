// Package osc sends stream notifications to an OSC server (e.g. a
// SuperCollider synth) as bundles whose timetag is the notification's
// target timestamp.
package osc

import (
	"fmt"
	"sort"
	"time"

	goosc "github.com/chabad360/go-osc/osc"

	"github.com/italoadler/xi/debug"
)

// AddressPrefix is prepended to every outgoing OSC address.
const AddressPrefix = "/xi"

// Backend implements stream.Observer over a UDP OSC client.
type Backend struct {
	client *goosc.Client
}

// NewBackend creates a backend targeting host:port.
func NewBackend(host string, port int) *Backend {
	return &Backend{client: goosc.NewClient(host, port)}
}

// GateOn sends /xi/gate_on with the sound object ids, timetagged at.
func (b *Backend) GateOn(ids []int, at time.Time) {
	b.sendGate("/gate_on", ids, at)
}

// GateOff sends /xi/gate_off with the sound object ids, timetagged at.
func (b *Backend) GateOff(ids []int, at time.Time) {
	b.sendGate("/gate_off", ids, at)
}

func (b *Backend) sendGate(addr string, ids []int, at time.Time) {
	msg := goosc.NewMessage(AddressPrefix + addr)
	for _, id := range ids {
		msg.Append(int32(id))
	}
	bundle := goosc.NewBundle(at)
	bundle.Append(msg)
	if err := b.client.Send(bundle); err != nil {
		debug.Log("osc", "send %s: %v", addr, err)
	}
}

// StateChange sends /xi/state as alternating name, value arguments,
// in sorted parameter order.
func (b *Backend) StateChange(changed map[string]any) {
	names := make([]string, 0, len(changed))
	for name := range changed {
		names = append(names, name)
	}
	sort.Strings(names)

	msg := goosc.NewMessage(AddressPrefix + "/state")
	for _, name := range names {
		msg.Append(name)
		msg.Append(oscValue(changed[name]))
	}
	if err := b.client.Send(msg); err != nil {
		debug.Log("osc", "send state: %v", err)
	}
}

// oscValue narrows a parameter value to an OSC-representable argument.
func oscValue(v any) any {
	switch n := v.(type) {
	case float64:
		return float32(n)
	case float32, int32, int64, string, bool:
		return n
	case int:
		return int32(n)
	default:
		return fmt.Sprint(n)
	}
}
