package render

import (
	"math"

	"github.com/taigrr/texray/pkg/math3d"
	"github.com/taigrr/texray/pkg/models"
)

// Barycentric returns the weights (w0, w1, w2) of p with respect to triangle
// (a, b, c), packed as X, Y, Z. It reports false for zero-area or sliver
// triangles where the 2x2 system has no stable solution.
func Barycentric(p, a, b, c math3d.Vec3) (math3d.Vec3, bool) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	// denom = |v0|²|v1|² sin²θ; compare against the edge scale, not an absolute.
	if d00 == 0 || d11 == 0 || math.Abs(denom) <= Epsilon*d00*d11 {
		return math3d.Vec3{}, false
	}

	w1 := (d11*d20 - d01*d21) / denom
	w2 := (d00*d21 - d01*d20) / denom
	w0 := 1 - w1 - w2

	w := math3d.V3(w0, w1, w2)
	if !w.IsFinite() {
		return math3d.Vec3{}, false
	}
	return w, true
}

// InterpolateUV blends three texture coordinates with barycentric weights.
func InterpolateUV(w math3d.Vec3, uv0, uv1, uv2 math3d.Vec2) math3d.Vec2 {
	return math3d.V2(
		w.X*uv0.X+w.Y*uv1.X+w.Z*uv2.X,
		w.X*uv0.Y+w.Y*uv1.Y+w.Z*uv2.Y,
	)
}

// HitUV returns the texture coordinate at a hit in image orientation
// (V already flipped). It reports false when the face is degenerate.
func HitUV(scene *models.Scene, hit Hit) (math3d.Vec2, bool) {
	v0, v1, v2 := scene.Triangle(hit.Face)
	w, ok := Barycentric(hit.Point, v0, v1, v2)
	if !ok {
		return math3d.Vec2{}, false
	}

	uv0, uv1, uv2 := scene.TriangleUV(hit.Face)
	return InterpolateUV(w, uv0, uv1, uv2).FlipV(), true
}

// ShadeHit samples tex at the hit's interpolated texture coordinate.
func ShadeHit(scene *models.Scene, tex *Texture, hit Hit) (Color, bool) {
	uv, ok := HitUV(scene, hit)
	if !ok {
		return Color{}, false
	}
	return tex.Sample(uv), true
}
