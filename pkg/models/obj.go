package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/texray/pkg/math3d"
)

// ParseError describes a malformed line in a mesh file.
type ParseError struct {
	Line int    // 1-based line number
	Text string // Offending line, trimmed
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	scene, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse obj %s: %w", path, err)
	}
	return scene, nil
}

// ParseOBJ reads v, vt, vn and f records into a Scene. Faces with more than
// three corners are fan-triangulated: (0,1,2), (0,2,3), ... Other record
// types are ignored. The scene is validated before it is returned.
func ParseOBJ(r io.Reader, name string) (*Scene, error) {
	scene := NewScene(name)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "v":
			var v math3d.Vec3
			v, err = parseVec3(fields[1:])
			scene.Vertices = append(scene.Vertices, v)
		case "vn":
			var n math3d.Vec3
			n, err = parseVec3(fields[1:])
			scene.Normals = append(scene.Normals, n)
		case "vt":
			var uv math3d.Vec2
			uv, err = parseVec2(fields[1:])
			scene.UVs = append(scene.UVs, uv)
		case "f":
			err = parseFace(scene, fields[1:])
		}
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if err := scene.Validate(); err != nil {
		return nil, err
	}
	scene.CalculateBounds()

	return scene, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d components, got %d", ErrMalformed, n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		out[i] = f
	}
	return out, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	f, err := parseFloats(fields, 3)
	if err != nil {
		return math3d.Vec3{}, err
	}
	return math3d.V3(f[0], f[1], f[2]), nil
}

// parseVec2 reads u and v; an optional w component is ignored.
func parseVec2(fields []string) (math3d.Vec2, error) {
	f, err := parseFloats(fields, 2)
	if err != nil {
		return math3d.Vec2{}, err
	}
	return math3d.V2(f[0], f[1]), nil
}

// corner is one v/vt/vn triple of a face, already converted to 0-based.
type corner struct {
	v, uv, n int
}

// parseFace appends the triangles of one face record.
func parseFace(scene *Scene, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: face needs at least 3 corners, got %d", ErrMalformed, len(fields))
	}

	corners := make([]corner, len(fields))
	for i, tok := range fields {
		c, err := parseCorner(tok)
		if err != nil {
			return err
		}
		corners[i] = c
	}

	for i := 1; i+1 < len(corners); i++ {
		a, b, c := corners[0], corners[i], corners[i+1]
		scene.Faces = append(scene.Faces, Face{
			V:  [3]int{a.v, b.v, c.v},
			UV: [3]int{a.uv, b.uv, c.uv},
			N:  [3]int{a.n, b.n, c.n},
		})
	}
	return nil
}

// parseCorner parses "i", "i/j", "i//k" or "i/j/k" (1-based).
// Missing or empty j and k default to index 0.
func parseCorner(tok string) (corner, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return corner{}, fmt.Errorf("%w: bad face corner %q", ErrMalformed, tok)
	}

	v, err := parseIndex(parts[0])
	if err != nil {
		return corner{}, err
	}
	c := corner{v: v}

	if len(parts) > 1 && parts[1] != "" {
		if c.uv, err = parseIndex(parts[1]); err != nil {
			return corner{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.n, err = parseIndex(parts[2]); err != nil {
			return corner{}, err
		}
	}
	return c, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad index %q", ErrMalformed, s)
	}
	return i - 1, nil
}
