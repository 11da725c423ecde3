package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/lane-runner/internal/dda"
	"github.com/vovakirdan/lane-runner/internal/storage"
)

// Records layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show the profile sidebar
	sidebarWidth       = 24  // Width of the profile sidebar
	maxScores          = 100 // Max scores to load
)

// RecordsView selects the table shown by the records screen.
type RecordsView int

const (
	ViewSessions RecordsView = iota // Difficulty history, newest first
	ViewScores                      // Score log, best first
)

func (v RecordsView) String() string {
	if v == ViewScores {
		return "Top Scores"
	}
	return "Sessions"
}

// RecordsKeyMap defines the key bindings for the records screen.
type RecordsKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	SwitchView key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RecordsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.SwitchView, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k RecordsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.SwitchView, k.Quit},
	}
}

// DefaultRecordsKeyMap returns default key bindings.
func DefaultRecordsKeyMap() RecordsKeyMap {
	return RecordsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		SwitchView: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "left", "right", "h", "l"),
			key.WithHelp("tab", "switch view"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RecordsModel is the Bubble Tea model for browsing a player's history.
type RecordsModel struct {
	view        RecordsView
	stats       storage.Stats
	sessions    []table.Row
	scores      []table.Row
	table       table.Model
	help        help.Model
	keys        RecordsKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewRecordsModel loads the history of store and the best entries of
// scores. Either source may be nil.
func NewRecordsModel(store *storage.DataStore, scores *storage.ScoreLog, width, height int) RecordsModel {
	m := RecordsModel{
		keys:        DefaultRecordsKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	if store != nil {
		m.stats = store.Stats()
		m.sessions = SessionRows(store.History())
	}
	if scores != nil {
		if entries, err := scores.TopScores(maxScores); err == nil {
			m.scores = ScoreRows(entries)
		}
	}
	m.table = m.createTable()
	return m
}

// SessionRows formats difficulty records, newest first.
func SessionRows(history []storage.SessionRecord) []table.Row {
	rows := make([]table.Row, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		rows = append(rows, table.Row{
			r.Time().Format("Jan 02 15:04"),
			fmt.Sprintf("%d", r.Score),
			formatDuration(r.Duration),
			string(dda.TierFor(r.Params)),
			fmt.Sprintf("%.1f", r.Params.Speed),
			fmt.Sprintf("%.2fs", r.Metrics.ReactionTime),
		})
	}
	return rows
}

// ScoreRows formats score log entries in rank order.
func ScoreRows(entries []storage.ScoreEntry) []table.Row {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%d", e.Score),
			e.Tier,
			formatDuration(e.Duration),
			e.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

func formatDuration(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}

func (m *RecordsModel) columns() []table.Column {
	if m.view == ViewScores {
		return []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Score", Width: 8},
			{Title: "Tier", Width: 8},
			{Title: "Time", Width: 8},
			{Title: "Date", Width: 14},
		}
	}
	return []table.Column{
		{Title: "Date", Width: 14},
		{Title: "Score", Width: 8},
		{Title: "Time", Width: 8},
		{Title: "Tier", Width: 8},
		{Title: "Speed", Width: 6},
		{Title: "React", Width: 7},
	}
}

// createTable creates the table for the current view.
func (m *RecordsModel) createTable() table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	t.SetRows(m.rows())
	t.GotoTop()
	return t
}

func (m *RecordsModel) rows() []table.Row {
	if m.view == ViewScores {
		return m.scores
	}
	return m.sessions
}

// Init initializes the records model.
func (m RecordsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the records screen.
func (m RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.SwitchView):
			m.view = 1 - m.view
			m.table = m.createTable()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the records screen.
func (m RecordsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center,
		titleStyle.Render("LANE RUNNER - "+strings.ToUpper(m.view.String()))))
	b.WriteString("\n\n")

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(m.renderTableContent())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", panel))
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, panel))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderSidebar shows profile totals.
func (m RecordsModel) renderSidebar() string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	value := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))

	last := "never"
	if !m.stats.LastSession.IsZero() {
		last = m.stats.LastSession.Format("Jan 02 15:04")
	}
	lines := []string{
		"Profile",
		strings.Repeat("-", sidebarWidth-4),
		label.Render("High score  ") + value.Render(fmt.Sprintf("%d", m.stats.HighScore)),
		label.Render("Games       ") + value.Render(fmt.Sprintf("%d", m.stats.GamesPlayed)),
		label.Render("Play time   ") + value.Render(m.stats.TotalPlayTime.Round(time.Second).String()),
		label.Render("Last played ") + value.Render(last),
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// renderTableContent renders the table or an empty message.
func (m RecordsModel) renderTableContent() string {
	if len(m.rows()) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("Nothing recorded yet.\nPlay a game to fill this table!")
	}

	return m.table.View()
}

// RunRecords runs the records screen until the user quits.
func RunRecords(store *storage.DataStore, scores *storage.ScoreLog, width, height int) error {
	p := tea.NewProgram(
		NewRecordsModel(store, scores, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
