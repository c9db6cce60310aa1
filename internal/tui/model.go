// Package tui drives the practice timer from the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hperssn/practicetimer/internal/domain"
	"github.com/hperssn/practicetimer/internal/leaderboard"
	"github.com/hperssn/practicetimer/internal/timer"
)

const eventBuffer = 16

type eventMsg timer.Event

type leaderboardMsg struct {
	entries []leaderboard.Entry
	err     error
}

// Model is the bubbletea model of the timer screen.
type Model struct {
	ctx      context.Context
	controls *timer.Controls
	keys     KeyMap

	events      <-chan timer.Event
	unsubscribe func()

	elapsed int
	state   domain.State
	entries []leaderboard.Entry
	err     error
}

func New(ctx context.Context, controls *timer.Controls) Model {
	events, unsubscribe := controls.Subscribe(eventBuffer)
	snap := controls.Timer().Snapshot()

	return Model{
		ctx:         ctx,
		controls:    controls,
		keys:        DefaultKeyMap(),
		events:      events,
		unsubscribe: unsubscribe,
		elapsed:     snap.Elapsed,
		state:       snap.State,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), loadLeaderboard(m.ctx, m.controls))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		m.elapsed = msg.Elapsed
		m.state = msg.State
		return m, waitForEvent(m.events)

	case leaderboardMsg:
		if msg.err != nil {
			slogctx.Warn(m.ctx, "Could not load leaderboard", "error", msg.err)
			return m, nil
		}
		m.entries = msg.entries
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsubscribe()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Play):
		m.apply(m.controls.Play(m.ctx))
		m.err = nil

	case key.Matches(msg, m.keys.Pause):
		m.apply(m.controls.Pause(m.ctx))

	case key.Matches(msg, m.keys.Reset):
		snap, err := m.controls.Reset(m.ctx)
		m.apply(snap)
		m.err = err
		if err == nil {
			return m, loadLeaderboard(m.ctx, m.controls)
		}
	}

	return m, nil
}

func (m *Model) apply(snap domain.Snapshot) {
	m.elapsed = snap.Elapsed
	m.state = snap.State
}

func (m Model) View() string {
	var b strings.Builder

	clock := ClockStyle.Render(leaderboard.FormatClock(m.elapsed))
	state := stateStyle(m.state == domain.StateRunning, m.state == domain.StatePaused).Render(string(m.state))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, clock, "  ", state))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render("unable to save session"))
		b.WriteString("\n\n")
	}

	if len(m.entries) > 0 {
		b.WriteString(TitleStyle.Render("Leaderboard"))
		b.WriteString("\n")
		for _, e := range m.entries {
			b.WriteString(EntryStyle.Render(fmt.Sprintf("%s: %s", e.Label, e.Text)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	help := make([]string, 0, len(m.keys.ShortHelp()))
	for _, k := range m.keys.ShortHelp() {
		help = append(help, fmt.Sprintf("%s %s", k.Help().Key, k.Help().Desc))
	}
	b.WriteString(HelpStyle.Render(strings.Join(help, " • ")))

	return b.String()
}

func waitForEvent(events <-chan timer.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func loadLeaderboard(ctx context.Context, controls *timer.Controls) tea.Cmd {
	return func() tea.Msg {
		history, err := controls.Timer().History(ctx)
		if err != nil {
			return leaderboardMsg{err: err}
		}

		board, ok := leaderboard.Compute(history)
		if !ok {
			return leaderboardMsg{}
		}
		return leaderboardMsg{entries: board.Entries()}
	}
}
