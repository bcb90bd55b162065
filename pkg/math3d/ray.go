package math3d

// Ray is a half-line starting at Origin.
// Direction is expected to be unit length; generators are responsible for that.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a ray from an origin and a direction.
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point origin + direction*t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}
