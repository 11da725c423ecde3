package runner

import (
	"fmt"

	"github.com/vovakirdan/lane-runner/internal/core"
)

// Visual characters for rendering
const (
	PlayerChar   = '▲'
	ObstacleChar = '▓'
	CoinChar     = '●'
	LaneChar     = '┊'
)

// Render draws the current game state to the screen. Row 0 holds the HUD;
// the playfield is scaled into the remaining rows.
func (g *GameSession) Render(dst *core.Screen) {
	dst.Clear()
	w, h := dst.Width(), dst.Height()
	if w < Lanes*3 || h < 4 {
		dst.DrawText(0, 0, "window too small")
		return
	}

	laneW := w / Lanes
	for i := 1; i < Lanes; i++ {
		for y := 1; y < h; y++ {
			dst.SetColored(i*laneW, y, LaneChar, core.ColorGray)
		}
	}

	for _, c := range g.field.Coins() {
		if y, ok := g.row(c.Y, h); ok {
			dst.SetColored(laneCenter(c.Lane, laneW), y, CoinChar, core.ColorBrightYellow)
		}
	}
	for _, o := range g.field.Obstacles() {
		if y, ok := g.row(o.Y, h); ok {
			x := laneCenter(o.Lane, laneW)
			for dx := -1; dx <= 1; dx++ {
				dst.SetColored(x+dx, y, ObstacleChar, core.ColorRed)
			}
		}
	}
	if y, ok := g.row(float64(g.cfg.PlayerY), h); ok {
		dst.SetColored(laneCenter(g.lane, laneW), y, PlayerChar, core.ColorBrightGreen)
	}

	p := g.Params()
	dst.DrawText(1, 0, fmt.Sprintf(" Score: %d ", g.score))
	hud := fmt.Sprintf(" %s  Spd %.1f ", g.Tier(), p.Speed)
	dst.DrawTextColored(w-len([]rune(hud))-1, 0, hud, core.ColorCyan)

	switch {
	case g.phase == core.PhaseTitle:
		g.drawCenteredMessage(dst, "LANE RUNNER", "Press Space to start", core.ColorBrightGreen)
	case g.paused:
		g.drawCenteredMessage(dst, "PAUSED", "Press P to resume", core.ColorYellow)
	case g.phase == core.PhaseGameOver:
		g.drawCenteredMessage(dst, "GAME OVER", fmt.Sprintf("Score: %d  |  Press R to restart", g.score), core.ColorBrightRed)
	}
}

// row maps a logical y coordinate to a screen row below the HUD.
func (g *GameSession) row(y float64, screenH int) (int, bool) {
	if y < 0 || y >= float64(g.cfg.Height) {
		return 0, false
	}
	rows := screenH - 1
	return 1 + int(y*float64(rows)/float64(g.cfg.Height)), true
}

func laneCenter(lane, laneW int) int {
	return lane*laneW + laneW/2
}

// drawCenteredMessage draws a message box in the center of the screen.
func (g *GameSession) drawCenteredMessage(dst *core.Screen, title, subtitle string, titleColor core.Color) {
	w := dst.Width()
	h := dst.Height()

	boxW := max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH), core.ColorCyan)

	dst.DrawTextColored(boxX+(boxW-len([]rune(title)))/2, boxY+1, title, titleColor)
	dst.DrawText(boxX+(boxW-len([]rune(subtitle)))/2, boxY+3, subtitle)
}
