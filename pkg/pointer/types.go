// Package pointer maps head movements to screen coordinates.
package pointer

import "math"

// Point is a position on the screen in pixels.
type Point struct {
	X, Y float64
}

// Size defines the rectangular size of a screen.
type Size struct {
	CX, CY float64
}

// Center is the middle of the screen.
func (s Size) Center() Point {
	return Point{X: s.CX / 2, Y: s.CY / 2}
}

// IsZero indicates the size is unknown.
func (s Size) IsZero() bool {
	return s.CX <= 0 || s.CY <= 0
}

// Add is a helper to add Point.
func (p Point) Add(p1 Point) Point {
	return Point{X: p.X + p1.X, Y: p.Y + p1.Y}
}

// Round returns the nearest integer pixel.
func (p Point) Round() (x, y int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}
