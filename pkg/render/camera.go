package render

import (
	"github.com/taigrr/texray/pkg/math3d"
)

// Camera is a pinhole camera looking down -Z.
//
// Target and FOV are carried but not yet applied: rays are generated in a
// fixed axis-aligned camera space with a 90 degree vertical field of view.
type Camera struct {
	// Position in world space, the origin of every primary ray
	Position math3d.Vec3

	Target math3d.Vec3 // Look-at point (unused by ray generation)
	FOV    float64     // Vertical field of view in degrees (unused by ray generation)
}

// NewCamera creates a camera at position looking at target.
func NewCamera(position, target math3d.Vec3, fov float64) *Camera {
	return &Camera{
		Position: position,
		Target:   target,
		FOV:      fov,
	}
}

// LookAt records the point the camera should face.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Target = target
}

// SetFOV sets the field of view (in degrees).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
}

// GenerateRay returns the primary ray through the center of pixel (x, y) of a
// width x height image. Y=0 is the top row.
func (c *Camera) GenerateRay(x, y, width, height int) math3d.Ray {
	// Pixel center to normalized device coordinates [0,1]
	ndcX := (float64(x) + 0.5) / float64(width)
	ndcY := (float64(y) + 0.5) / float64(height)

	// NDC to screen space [-1,1], Y up
	screenX := 2*ndcX - 1
	screenY := 1 - 2*ndcY

	screenX *= float64(width) / float64(height)

	dir := math3d.V3(screenX, screenY, -1).Normalize()
	return math3d.NewRay(c.Position, dir)
}
