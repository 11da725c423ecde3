package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/core"
	"github.com/vovakirdan/lane-runner/internal/runner"
)

var (
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	bestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// Model is the Bubble Tea model running one player's game session.
type Model struct {
	session    *runner.GameSession
	player     *Player
	keys       *KeyMapper
	help       help.Model
	screen     *core.Screen
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	quitting   bool
}

// NewModel creates a model for player, starting on the title screen.
// The bottom terminal row is reserved for the footer.
func NewModel(player *Player, cfg core.RuntimeConfig, preset config.DifficultyPreset) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	session := player.NewSession(cfg, preset)
	session.Resize(cfg.ScreenW, fieldHeight(cfg.ScreenH))

	return Model{
		session:    session,
		player:     player,
		keys:       NewKeyMapper(),
		help:       help.New(),
		screen:     core.NewScreen(cfg.ScreenW, fieldHeight(cfg.ScreenH)),
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		gameState:  session.State(),
	}
}

func fieldHeight(h int) int {
	return max(h-1, 1)
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey queues actions for the next tick. Quitting mid-game records
// the game before the program exits.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Keys().Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.session.EndGame()
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleResize keeps the running game and only rescales rendering.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, fieldHeight(msg.Height))
	m.session.Resize(msg.Width, fieldHeight(msg.Height))
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	result := m.session.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()

	return m, tickCmd(m.config.TickRate)
}

// saveScreenshot writes the current frame into the player's data directory.
func (m *Model) saveScreenshot() {
	m.session.Render(m.screen)

	dir := filepath.Join(m.player.dataDir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.player.logger.Warn("cannot create screenshot directory", "error", err)
		return
	}

	filename := fmt.Sprintf("runner_%s.txt", time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600); err != nil {
		m.player.logger.Warn("cannot save screenshot", "error", err)
	}
}

// View renders the playfield and the footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.session.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + m.footer()
}

// footer shows the best score and key help on one line.
func (m Model) footer() string {
	best := max(m.player.HighScore(), m.gameState.Score)
	left := bestStyle.Render(fmt.Sprintf(" Best: %d ", best))
	m.help.Width = max(m.config.ScreenW-lipgloss.Width(left)-1, 0)
	return left + " " + footerStyle.Render(m.help.View(m.keys.Keys()))
}

// Run starts a local Bubble Tea program for player.
func Run(player *Player, cfg core.RuntimeConfig, preset config.DifficultyPreset) error {
	model := NewModel(player, cfg, preset)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
