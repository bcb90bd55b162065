package math3d

import "math"

// Vec2 represents a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Clamp01 returns a copy with both components clamped to [0, 1].
// NaN components clamp to 0.
func (a Vec2) Clamp01() Vec2 {
	return Vec2{clamp01(a.X), clamp01(a.Y)}
}

// FlipV returns the coordinate with V mirrored (v' = 1 - v).
// OBJ texture space has V=0 at the bottom, images have Y=0 at the top.
func (a Vec2) FlipV() Vec2 {
	return Vec2{a.X, 1 - a.Y}
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
