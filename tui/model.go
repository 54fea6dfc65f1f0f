package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/italoadler/xi/stream"
	"github.com/italoadler/xi/theme"
)

// Model is the monitor shell: it renders every stream in the session
// and offers transport control. Pattern editing happens in code; the
// monitor only observes.
type Model struct {
	Session  *stream.Session
	Theme    *theme.Theme
	quitting bool
}

type UpdateMsg struct{}

func NewModel(session *stream.Session, th *theme.Theme) Model {
	return Model{
		Session: session,
		Theme:   th,
	}
}

// ListenForUpdates relays session update signals into the tea loop.
func ListenForUpdates(session *stream.Session) tea.Cmd {
	return func() tea.Msg {
		<-session.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Session)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Session.StopAll()
			return m, tea.Quit

		case "p":
			m.Session.PlayAll()

		case "s":
			m.Session.StopAll()
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Session)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	playStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())
	nameStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	var b strings.Builder
	b.WriteString(headerStyle.Render("xi"))
	b.WriteString(dimStyle.Render("  p play all / s stop all / q quit"))
	b.WriteString("\n\n")

	names := m.Session.Names()
	if len(names) == 0 {
		b.WriteString(dimStyle.Render("no streams"))
		b.WriteString("\n")
		return b.String()
	}

	for _, name := range names {
		st := m.Session.Stream(name)

		transport := dimStyle.Render("STOP")
		if st.IsPlaying() {
			transport = playStyle.Render("PLAY")
		}

		info := dimStyle.Render(fmt.Sprintf("gate=%s sounding=%d", st.Gate(), st.Sounding()))
		if st.IsPlaying() && st.Gate() == "" {
			// playing without a gate never produces sound objects
			info = warnStyle.Render(fmt.Sprintf("no gate sounding=%d", st.Sounding()))
		}

		b.WriteString(fmt.Sprintf("%s  %s  %s\n",
			transport,
			nameStyle.Render(name),
			info,
		))

		state := st.State()
		params := make([]string, 0, len(state))
		for p := range state {
			params = append(params, p)
		}
		sort.Strings(params)
		for _, p := range params {
			b.WriteString(dimStyle.Render(fmt.Sprintf("      %s = %v", p, state[p])))
			b.WriteString("\n")
		}
	}

	return b.String()
}
