package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestFramebufferPixels(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	if len(fb.Pixels) != 6 {
		t.Fatalf("len(Pixels) = %d, want 6", len(fb.Pixels))
	}

	fb.SetPixel(2, 1, ColorRed)
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(3, 0, ColorRed)
	fb.SetPixel(0, 2, ColorRed)

	assertColor(t, fb.GetPixel(2, 1), ColorRed)
	assertColor(t, fb.Pixels[5], ColorRed)
	assertColor(t, fb.GetPixel(5, 5), color.RGBA{})

	red := 0
	for _, p := range fb.Pixels {
		if p == ColorRed {
			red++
		}
	}
	if red != 1 {
		t.Errorf("%d red pixels, out-of-bounds writes must be ignored", red)
	}

	fb.Clear(ColorBlue)
	for i, p := range fb.Pixels {
		if p != ColorBlue {
			t.Fatalf("pixel %d = %v after Clear", i, p)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"output.png", FormatPNG, false},
		{"OUT.PNG", FormatPNG, false},
		{"a/b/c.jpg", FormatJPEG, false},
		{"c.jpeg", FormatJPEG, false},
		{"c.bmp", FormatBMP, false},
		{"c.tif", FormatTIFF, false},
		{"c.tiff", FormatTIFF, false},
		{"c.gif", "", true},
		{"noext", "", true},
	}
	for _, tc := range tests {
		got, err := FormatFromPath(tc.path)
		if (err != nil) != tc.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tc.path, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestFramebufferSave(t *testing.T) {
	src := NewFramebuffer(4, 3)
	for y := range src.Height {
		for x := range src.Width {
			src.SetPixel(x, y, RGB(uint8(x*60), uint8(y*100), 7))
		}
	}

	dir := t.TempDir()
	for _, name := range []string{"out.png", "out.bmp", "out.tiff"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := src.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}

			tex, err := LoadTexture(path)
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			for i, p := range src.Pixels {
				if tex.Pixels[i] != p {
					t.Errorf("pixel %d = %v, want %v", i, tex.Pixels[i], p)
				}
			}
		})
	}

	// JPEG is lossy; only check that it decodes at the right size.
	path := filepath.Join(dir, "out.jpg")
	if err := src.Save(path); err != nil {
		t.Fatalf("Save jpeg: %v", err)
	}
	tex, err := LoadTexture(path)
	if err != nil {
		t.Fatalf("reload jpeg: %v", err)
	}
	if tex.Width != 4 || tex.Height != 3 {
		t.Errorf("jpeg size = %dx%d, want 4x3", tex.Width, tex.Height)
	}
}

func TestFramebufferSaveUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	if err := NewFramebuffer(1, 1).Save(path); err == nil {
		t.Fatal("expected error for .gif")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be created for an unknown format")
	}
}

func TestFramebufferFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.SetRGBA(5, 5, ColorGreen)
	img.SetRGBA(6, 5, ColorWhite)

	fb := FramebufferFromImage(img)
	if fb.Width != 2 || fb.Height != 1 {
		t.Fatalf("size = %dx%d, want 2x1", fb.Width, fb.Height)
	}
	assertColor(t, fb.GetPixel(0, 0), ColorGreen)
	assertColor(t, fb.GetPixel(1, 0), ColorWhite)

	out := fb.ToImage()
	if out.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Errorf("ToImage bounds = %v", out.Bounds())
	}
	assertColor(t, out.RGBAAt(1, 0), ColorWhite)
}
