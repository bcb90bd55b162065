package main

import (
	"math"
	"runtime"
	"strings"
	"testing"

	"github.com/taigrr/texray/pkg/math3d"
	"github.com/taigrr/texray/pkg/render"
)

func defaultFlags() flags {
	return flags{
		texture: defaultTexture,
		output:  defaultOutput,
		width:   800,
		height:  600,
		camera:  "0,0,3",
		target:  "0,0,0",
		fov:     90,
		rotate:  defaultRotations,
		bg:      "0,0,0",
		workers: 1,
	}
}

func TestConfigDefaults(t *testing.T) {
	f := defaultFlags()
	cfg, err := f.config(nil, false)
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	if cfg.meshPath != "cube.obj" || cfg.texturePath != "texture.png" || cfg.outputPath != "output.png" {
		t.Errorf("paths = %q %q %q", cfg.meshPath, cfg.texturePath, cfg.outputPath)
	}
	if cfg.width != 800 || cfg.height != 600 {
		t.Errorf("resolution = %dx%d, want 800x600", cfg.width, cfg.height)
	}
	if cfg.camera != math3d.V3(0, 0, 3) {
		t.Errorf("camera = %v, want (0, 0, 3)", cfg.camera)
	}
	if cfg.background != render.ColorBlack {
		t.Errorf("background = %v, want black", cfg.background)
	}
	want := []rotation{
		{30, math3d.V3(1, 0, 0)},
		{30, math3d.V3(0, 1, 0)},
	}
	if len(cfg.rotations) != len(want) {
		t.Fatalf("rotations = %v, want %v", cfg.rotations, want)
	}
	for i := range want {
		if cfg.rotations[i] != want[i] {
			t.Errorf("rotation %d = %v, want %v", i, cfg.rotations[i], want[i])
		}
	}
}

func TestConfigOverrides(t *testing.T) {
	f := defaultFlags()
	f.noRotate = true
	f.workers = 0
	f.bg = "10, 20, 30"

	cfg, err := f.config([]string{"model.glb"}, true)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.meshPath != "model.glb" {
		t.Errorf("meshPath = %q", cfg.meshPath)
	}
	if !cfg.textureSet {
		t.Error("textureSet not carried through")
	}
	if len(cfg.rotations) != 0 {
		t.Errorf("--no-rotate left rotations %v", cfg.rotations)
	}
	if cfg.workers != runtime.NumCPU() {
		t.Errorf("workers = %d, want NumCPU", cfg.workers)
	}
	if cfg.background != render.RGB(10, 20, 30) {
		t.Errorf("background = %v", cfg.background)
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*flags)
		want   string
	}{
		{"zero width", func(f *flags) { f.width = 0 }, "resolution"},
		{"negative height", func(f *flags) { f.height = -1 }, "resolution"},
		{"negative workers", func(f *flags) { f.workers = -2 }, "--workers"},
		{"negative fit", func(f *flags) { f.fit = -1 }, "--fit"},
		{"empty texture", func(f *flags) { f.texture = "" }, "--texture"},
		{"bad output", func(f *flags) { f.output = "out.gif" }, "--output"},
		{"bad camera", func(f *flags) { f.camera = "0,0" }, "--camera"},
		{"bad target", func(f *flags) { f.target = "a,b,c" }, "--target"},
		{"bad bg", func(f *flags) { f.bg = "256,0,0" }, "--bg"},
		{"bad rotation", func(f *flags) { f.rotate = []string{"30,0,0,0"} }, "--rotate"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := defaultFlags()
			tc.modify(&f)
			_, err := f.config(nil, false)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestParseVec3(t *testing.T) {
	tests := []struct {
		in      string
		want    math3d.Vec3
		wantErr bool
	}{
		{"0,0,3", math3d.V3(0, 0, 3), false},
		{" -1.5 , 2e1, .25 ", math3d.V3(-1.5, 20, 0.25), false},
		{"1,2", math3d.Vec3{}, true},
		{"1,2,3,4", math3d.Vec3{}, true},
		{"1,x,3", math3d.Vec3{}, true},
		{"1,NaN,3", math3d.Vec3{}, true},
		{"1,2,Inf", math3d.Vec3{}, true},
		{"", math3d.Vec3{}, true},
	}
	for _, tc := range tests {
		got, err := parseVec3(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseVec3(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("parseVec3(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    render.Color
		wantErr bool
	}{
		{"0,0,0", render.ColorBlack, false},
		{"255,128,1", render.RGB(255, 128, 1), false},
		{"256,0,0", render.Color{}, true},
		{"-1,0,0", render.Color{}, true},
		{"1.5,0,0", render.Color{}, true},
		{"1,2", render.Color{}, true},
	}
	for _, tc := range tests {
		got, err := parseColor(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseColor(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("parseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseRotation(t *testing.T) {
	r, err := parseRotation("45,0,0,2")
	if err != nil {
		t.Fatal(err)
	}
	if r.degrees != 45 || r.axis != math3d.V3(0, 0, 2) {
		t.Errorf("rotation = %+v", r)
	}

	for _, bad := range []string{"45,0,0,0", "45,1,0", "x,1,0,0", "NaN,1,0,0"} {
		if _, err := parseRotation(bad); err == nil {
			t.Errorf("parseRotation(%q) succeeded", bad)
		}
	}
}

// Rotations act on the mesh in the order they are listed.
func TestComposeRotations(t *testing.T) {
	rs := []rotation{
		{90, math3d.V3(1, 0, 0)},
		{90, math3d.V3(0, 1, 0)},
	}
	m := composeRotations(rs)

	// X first: +Y -> +Z, then Y: +Z -> +X.
	got := m.MulVec3(math3d.V3(0, 1, 0))
	want := math3d.V3(1, 0, 0)
	if got.Distance(want) > 1e-12 {
		t.Errorf("composed rotation of +Y = %v, want %v", got, want)
	}

	if composeRotations(nil) != math3d.Identity() {
		t.Error("no rotations should give the identity")
	}
}

func TestComposeDefaultRotations(t *testing.T) {
	var rs []rotation
	for _, s := range defaultRotations {
		r, err := parseRotation(s)
		if err != nil {
			t.Fatal(err)
		}
		rs = append(rs, r)
	}
	m := composeRotations(rs)

	points := []math3d.Vec3{
		math3d.V3(0, 0, 1),
		math3d.V3(1, 0, 0),
		math3d.V3(-1, 1, 1),
	}
	for _, p := range points {
		step := p
		for _, r := range rs {
			step = r.matrix().MulVec3(step)
		}
		if got := m.MulVec3(p); got.Distance(step) > 1e-12 {
			t.Errorf("composed(%v) = %v, stepwise = %v", p, got, step)
		}
	}

	// 30 degrees about X, then 30 about Y.
	got := m.MulVec3(math3d.V3(0, 0, 1))
	want := math3d.V3(0.25*math.Sqrt(3), -0.5, 0.75)
	if got.Distance(want) > 1e-12 {
		t.Errorf("default rotation of +Z = %v, want %v", got, want)
	}
}
