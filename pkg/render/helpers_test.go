package render

import (
	"math"
	"testing"

	"github.com/taigrr/texray/pkg/math3d"
	"github.com/taigrr/texray/pkg/models"
)

// Corner colors of the 2x2 test texture.
var (
	texTopLeft     = RGB(255, 0, 0)
	texTopRight    = RGB(0, 255, 0)
	texBottomLeft  = RGB(0, 0, 255)
	texBottomRight = RGB(255, 255, 0)
)

// quadTexture returns a 2x2 texture with a distinct color per pixel.
func quadTexture() *Texture {
	tex := NewTexture(2, 2)
	tex.SetPixel(0, 0, texTopLeft)
	tex.SetPixel(1, 0, texTopRight)
	tex.SetPixel(0, 1, texBottomLeft)
	tex.SetPixel(1, 1, texBottomRight)
	return tex
}

// triangleScene is the single axis-aligned triangle at z=-5.
func triangleScene() *models.Scene {
	s := models.NewScene("triangle")
	s.Vertices = []math3d.Vec3{
		math3d.V3(-1, -1, -5),
		math3d.V3(1, -1, -5),
		math3d.V3(0, 1, -5),
	}
	s.UVs = []math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0.5, 1)}
	s.Faces = []models.Face{{V: [3]int{0, 1, 2}, UV: [3]int{0, 1, 2}}}
	s.CalculateBounds()
	return s
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vecAlmostEqual(a, b math3d.Vec3, tol float64) bool {
	return almostEqual(a.X, b.X, tol) && almostEqual(a.Y, b.Y, tol) && almostEqual(a.Z, b.Z, tol)
}

func assertColor(t *testing.T, got, want Color) {
	t.Helper()
	if got != want {
		t.Errorf("color = %v, want %v", got, want)
	}
}
