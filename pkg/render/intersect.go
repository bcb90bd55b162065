package render

import (
	"math"

	"github.com/taigrr/texray/pkg/math3d"
	"github.com/taigrr/texray/pkg/models"
)

// Epsilon is the tolerance for parallel rays and self-intersection.
const Epsilon = 1e-7

// Intersection is the result of a ray/triangle test.
// Point, Normal, U and V are only meaningful when Hit is true.
type Intersection struct {
	Hit      bool
	Distance float64     // Signed distance t along the ray
	Point    math3d.Vec3 // World-space hit point
	Normal   math3d.Vec3 // Geometric normal, normalize(edge1 × edge2)
	U, V     float64     // Weights of v1 and v2 at the hit point
}

// IntersectTriangle runs the Möller–Trumbore test of ray against (v0, v1, v2).
// Both faces are hit. Rays parallel to the plane and hits at t <= Epsilon miss.
func IntersectTriangle(ray math3d.Ray, v0, v1, v2 math3d.Vec3) Intersection {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if math.Abs(a) < Epsilon {
		return Intersection{} // This ray is parallel to this triangle.
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return Intersection{}
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return Intersection{}
	}

	t := f * edge2.Dot(q)
	if t <= Epsilon {
		// Line intersection behind or at the origin, not a ray intersection.
		return Intersection{}
	}

	return Intersection{
		Hit:      true,
		Distance: t,
		Point:    ray.At(t),
		Normal:   edge1.Cross(edge2).Normalize(),
		U:        u,
		V:        v,
	}
}

// Hit is the nearest intersection together with the face that produced it.
type Hit struct {
	Intersection
	Face int // Index into Scene.Faces
}

// NearestHit tests every face of scene in order and keeps the smallest
// positive distance. On equal distances the earlier face wins.
func NearestHit(scene *models.Scene, ray math3d.Ray) (Hit, bool) {
	var best Hit
	found := false

	for i := range scene.Faces {
		v0, v1, v2 := scene.Triangle(i)
		in := IntersectTriangle(ray, v0, v1, v2)
		if in.Hit && (!found || in.Distance < best.Distance) {
			best = Hit{Intersection: in, Face: i}
			found = true
		}
	}

	return best, found
}
