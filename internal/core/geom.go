// Package core holds the runner's engine-agnostic building blocks: input
// actions, runtime settings, geometry and a colored character buffer. It has
// no dependency on Bubble Tea so the simulation stays testable.
package core

import "cmp"

// Rect is an axis-aligned area of screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate one past the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate one past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Band is a closed vertical interval in logical pixels, such as the
// collision band around the player's row.
type Band struct {
	Top, Bottom float64
}

// BandAround returns the band of half-height half centered on y.
func BandAround(y, half float64) Band {
	return Band{Top: y - half, Bottom: y + half}
}

// Contains reports whether y lies inside the band.
func (b Band) Contains(y float64) bool {
	return y >= b.Top && y <= b.Bottom
}

// GapAbove returns how far y is above the band's top edge.
// The result is negative once y has reached the band.
func (b Band) GapAbove(y float64) float64 {
	return b.Top - y
}

// Passed reports whether y has moved beyond the band's bottom edge.
func (b Band) Passed(y float64) bool {
	return y > b.Bottom
}

// Clamp restricts a value to be within [lo, hi].
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return min(max(val, lo), hi)
}
