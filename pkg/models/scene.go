// Package models provides scene representation and mesh loading for texray.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/texray/pkg/math3d"
)

var (
	// ErrMalformed reports input that could not be parsed.
	ErrMalformed = errors.New("malformed mesh data")

	// ErrIndexOutOfRange reports a face referencing a missing vertex, UV or normal.
	ErrIndexOutOfRange = errors.New("face index out of range")
)

// Scene is a flat triangle mesh. Faces reference the attribute arrays by
// index, so the arrays must outlive any face lookup.
type Scene struct {
	Name     string
	Vertices []math3d.Vec3
	UVs      []math3d.Vec2
	Normals  []math3d.Vec3
	Faces    []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is a triangle with per-corner indices into Scene.Vertices,
// Scene.UVs and Scene.Normals.
type Face struct {
	V  [3]int // Indices into Scene.Vertices
	UV [3]int // Indices into Scene.UVs
	N  [3]int // Indices into Scene.Normals (parsed, not used for sampling)
}

// NewScene creates an empty scene.
func NewScene(name string) *Scene {
	return &Scene{
		Name:     name,
		Vertices: make([]math3d.Vec3, 0),
		UVs:      make([]math3d.Vec2, 0),
		Normals:  make([]math3d.Vec3, 0),
		Faces:    make([]Face, 0),
	}
}

// Validate checks that every face index is within its array. UV and normal
// indices are only checked when the scene carries UVs or normals at all.
func (s *Scene) Validate() error {
	for i, f := range s.Faces {
		for c := range 3 {
			if f.V[c] < 0 || f.V[c] >= len(s.Vertices) {
				return fmt.Errorf("%w: face %d corner %d: vertex %d of %d", ErrIndexOutOfRange, i, c, f.V[c], len(s.Vertices))
			}
			if len(s.UVs) > 0 && (f.UV[c] < 0 || f.UV[c] >= len(s.UVs)) {
				return fmt.Errorf("%w: face %d corner %d: uv %d of %d", ErrIndexOutOfRange, i, c, f.UV[c], len(s.UVs))
			}
			if len(s.Normals) > 0 && (f.N[c] < 0 || f.N[c] >= len(s.Normals)) {
				return fmt.Errorf("%w: face %d corner %d: normal %d of %d", ErrIndexOutOfRange, i, c, f.N[c], len(s.Normals))
			}
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (s *Scene) CalculateBounds() {
	if len(s.Vertices) == 0 {
		s.BoundsMin = math3d.Zero3()
		s.BoundsMax = math3d.Zero3()
		return
	}

	s.BoundsMin = s.Vertices[0]
	s.BoundsMax = s.Vertices[0]

	for _, v := range s.Vertices[1:] {
		s.BoundsMin = s.BoundsMin.Min(v)
		s.BoundsMax = s.BoundsMax.Max(v)
	}
}

// Center returns the center of the bounding box.
func (s *Scene) Center() math3d.Vec3 {
	return s.BoundsMin.Add(s.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (s *Scene) Size() math3d.Vec3 {
	return s.BoundsMax.Sub(s.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (s *Scene) TriangleCount() int {
	return len(s.Faces)
}

// VertexCount returns the number of vertices.
func (s *Scene) VertexCount() int {
	return len(s.Vertices)
}

// Triangle returns the three vertex positions of face i.
func (s *Scene) Triangle(i int) (v0, v1, v2 math3d.Vec3) {
	f := s.Faces[i]
	return s.Vertices[f.V[0]], s.Vertices[f.V[1]], s.Vertices[f.V[2]]
}

// TriangleUV returns the three texture coordinates of face i.
// Scenes without UVs yield zero coordinates.
func (s *Scene) TriangleUV(i int) (uv0, uv1, uv2 math3d.Vec2) {
	if len(s.UVs) == 0 {
		return
	}
	f := s.Faces[i]
	return s.UVs[f.UV[0]], s.UVs[f.UV[1]], s.UVs[f.UV[2]]
}

// ApplyTransform applies a transformation matrix to all vertices and normals.
// It is meant to run once, before rendering starts.
func (s *Scene) ApplyTransform(mat math3d.Mat4) {
	for i := range s.Vertices {
		s.Vertices[i] = mat.MulVec3(s.Vertices[i])
	}
	// Rotation part only; non-uniform scale would need the inverse transpose.
	for i := range s.Normals {
		s.Normals[i] = mat.MulVec3Dir(s.Normals[i]).Normalize()
	}
	s.CalculateBounds()
}

// FitTransform returns a transform that centers the scene at the origin and
// scales its largest dimension to size. Empty or flat-point scenes get the identity.
func (s *Scene) FitTransform(size float64) math3d.Mat4 {
	s.CalculateBounds()
	dims := s.Size()
	maxDim := max(dims.X, dims.Y, dims.Z)
	if maxDim <= 0 {
		return math3d.Identity()
	}
	scale := size / maxDim
	return math3d.ScaleUniform(scale).Mul(math3d.Translate(s.Center().Scale(-1)))
}

// Clone creates a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	clone := &Scene{
		Name:      s.Name,
		Vertices:  make([]math3d.Vec3, len(s.Vertices)),
		UVs:       make([]math3d.Vec2, len(s.UVs)),
		Normals:   make([]math3d.Vec3, len(s.Normals)),
		Faces:     make([]Face, len(s.Faces)),
		BoundsMin: s.BoundsMin,
		BoundsMax: s.BoundsMax,
	}
	copy(clone.Vertices, s.Vertices)
	copy(clone.UVs, s.UVs)
	copy(clone.Normals, s.Normals)
	copy(clone.Faces, s.Faces)
	return clone
}
