package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/italoadler/xi/config"
	"github.com/italoadler/xi/debug"
	"github.com/italoadler/xi/midi"
	"github.com/italoadler/xi/osc"
	"github.com/italoadler/xi/pattern"
	"github.com/italoadler/xi/stream"
	"github.com/italoadler/xi/theme"
	"github.com/italoadler/xi/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Debug {
		debug.Enable()
		defer debug.Disable()
	}

	clock := stream.NewTicker(time.Duration(cfg.Clock.ResolutionMS) * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go clock.Run(ctx)

	session := stream.NewSession(clock)

	if cfg.OSC.Enabled {
		session.AddObserver(osc.NewBackend(cfg.OSC.Host, cfg.OSC.Port))
	}
	if cfg.MIDI.Enabled {
		backend, err := midi.NewBackend(cfg.MIDI.PortName, cfg.MIDI.Channel)
		if err != nil {
			fmt.Printf("midi: %v\n", err)
			fmt.Printf("available ports: %v\n", midi.OutPortNames())
			os.Exit(1)
		}
		session.AddObserver(backend)
		defer midi.Close()
	}

	if err := seedDemo(session, cfg.Clock.Latency); err != nil {
		fmt.Printf("demo: %v\n", err)
		os.Exit(1)
	}

	m := tui.NewModel(session, theme.Default())
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// seedDemo binds a couple of starter streams so the monitor has
// something to play before the user wires their own.
func seedDemo(session *stream.Session, latency float64) error {
	melody := session.Stream("melody")
	if latency > 0 {
		if err := melody.SetLatency(latency); err != nil {
			return err
		}
	}
	notes, err := pattern.XRand([]any{60.0, 63.0, 67.0, 70.0}, pattern.Unbounded)
	if err != nil {
		return err
	}
	if err := melody.SetGate("note"); err != nil {
		return err
	}
	if err := melody.Set(map[string]pattern.Pattern{
		"note":     notes,
		"velocity": pattern.New(100.0, 80.0, 90.0, 80.0),
	}); err != nil {
		return err
	}
	if err := melody.SetEventDuration(0.5); err != nil {
		return err
	}

	bass := session.Stream("bass")
	if latency > 0 {
		if err := bass.SetLatency(latency); err != nil {
			return err
		}
	}
	if err := bass.SetGate("note"); err != nil {
		return err
	}
	return bass.Set(map[string]pattern.Pattern{
		"note": pattern.Series(36, 2, 4),
	})
}
