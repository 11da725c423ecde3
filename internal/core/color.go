package core

// Color is the foreground color of a screen cell. The platform layer maps
// each value to a terminal color.
type Color uint8

// Colors used by the runner's playfield and HUD.
const (
	ColorDefault      Color = iota
	ColorRed                // Obstacles
	ColorYellow             // Paused overlay
	ColorCyan               // HUD and message boxes
	ColorGray               // Lane separators
	ColorBrightGreen        // Player
	ColorBrightYellow       // Coins
	ColorBrightRed          // Game over overlay
)
