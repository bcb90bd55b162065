package main

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/taigrr/texray/pkg/math3d"
	"github.com/taigrr/texray/pkg/render"
)

const (
	defaultMesh    = "cube.obj"
	defaultTexture = "texture.png"
	defaultOutput  = "output.png"
)

// defaultRotations turns the mesh 30 degrees about X, then 30 about Y.
var defaultRotations = []string{"30,1,0,0", "30,0,1,0"}

// flags holds raw command-line values before validation.
type flags struct {
	texture  string
	output   string
	width    int
	height   int
	camera   string
	target   string
	fov      float64
	rotate   []string
	noRotate bool
	fit      float64
	bg       string
	workers  int
	preview  bool
	quiet    bool
}

// config is the validated render job.
type config struct {
	meshPath    string
	texturePath string
	textureSet  bool // --texture given explicitly; overrides an embedded GLB texture
	outputPath  string

	width, height int
	camera        math3d.Vec3
	target        math3d.Vec3
	fov           float64
	rotations     []rotation
	fit           float64
	background    render.Color
	workers       int

	preview bool
	quiet   bool
}

// rotation is one glRotate-style step: angle in degrees about an axis.
type rotation struct {
	degrees float64
	axis    math3d.Vec3
}

func (r rotation) matrix() math3d.Mat4 {
	return math3d.GLRotate(r.degrees, r.axis.X, r.axis.Y, r.axis.Z)
}

// composeRotations folds the steps into one matrix that applies them to the
// mesh in the order given: the first rotation acts on the vertices first.
func composeRotations(rs []rotation) math3d.Mat4 {
	m := math3d.Identity()
	for _, r := range rs {
		m = r.matrix().Mul(m)
	}
	return m
}

// config validates f and resolves it into a render job.
func (f *flags) config(args []string, textureSet bool) (*config, error) {
	cfg := &config{
		meshPath:    defaultMesh,
		texturePath: f.texture,
		textureSet:  textureSet,
		outputPath:  f.output,
		width:       f.width,
		height:      f.height,
		fov:         f.fov,
		fit:         f.fit,
		workers:     f.workers,
		preview:     f.preview,
		quiet:       f.quiet,
	}
	if len(args) > 0 {
		cfg.meshPath = args[0]
	}

	if f.width <= 0 || f.height <= 0 {
		return nil, fmt.Errorf("invalid resolution %dx%d: width and height must be positive", f.width, f.height)
	}
	if f.workers < 0 {
		return nil, fmt.Errorf("invalid --workers %d: must be >= 0", f.workers)
	}
	if cfg.workers == 0 {
		cfg.workers = runtime.NumCPU()
	}
	if f.fit < 0 {
		return nil, fmt.Errorf("invalid --fit %g: must be >= 0", f.fit)
	}
	if f.texture == "" {
		return nil, errors.New("--texture must not be empty")
	}
	// Fail before loading anything if the result could not be written.
	if _, err := render.FormatFromPath(f.output); err != nil {
		return nil, fmt.Errorf("--output: %w", err)
	}

	var err error
	if cfg.camera, err = parseVec3(f.camera); err != nil {
		return nil, fmt.Errorf("--camera: %w", err)
	}
	if cfg.target, err = parseVec3(f.target); err != nil {
		return nil, fmt.Errorf("--target: %w", err)
	}
	if cfg.background, err = parseColor(f.bg); err != nil {
		return nil, fmt.Errorf("--bg: %w", err)
	}

	if !f.noRotate {
		for _, s := range f.rotate {
			r, err := parseRotation(s)
			if err != nil {
				return nil, fmt.Errorf("--rotate: %w", err)
			}
			cfg.rotations = append(cfg.rotations, r)
		}
	}

	return cfg, nil
}

// parseFloats splits a comma separated list of exactly n finite numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q: want %d comma separated values, got %d", s, n, len(parts))
	}
	vals := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%q: values must be finite", s)
		}
		vals[i] = v
	}
	return vals, nil
}

func parseVec3(s string) (math3d.Vec3, error) {
	v, err := parseFloats(s, 3)
	if err != nil {
		return math3d.Vec3{}, err
	}
	return math3d.V3(v[0], v[1], v[2]), nil
}

func parseColor(s string) (render.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return render.Color{}, fmt.Errorf("%q: want R,G,B", s)
	}
	var c [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return render.Color{}, fmt.Errorf("%q: channel %d must be 0-255", s, i)
		}
		c[i] = uint8(v)
	}
	return render.RGB(c[0], c[1], c[2]), nil
}

func parseRotation(s string) (rotation, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return rotation{}, err
	}
	r := rotation{degrees: v[0], axis: math3d.V3(v[1], v[2], v[3])}
	if r.axis.LenSq() == 0 {
		return rotation{}, fmt.Errorf("%q: axis must be non-zero", s)
	}
	return r, nil
}
