package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/taigrr/texray/pkg/math3d"
)

// ErrEmptyTexture is returned for images with no pixels.
var ErrEmptyTexture = errors.New("texture has no pixels")

// Texture holds a 2D grid of opaque RGB samples. It is read-only while rendering.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data, Y=0 at the top
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture loads a texture from an image file (PNG, JPEG, BMP, TIFF or WebP).
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	tex := TextureFromImage(img)
	if len(tex.Pixels) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTexture)
	}
	return tex, nil
}

// TextureFromImage creates a texture from an image.Image.
// Alpha is dropped; colors are taken un-premultiplied.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tex := NewTexture(width, height)

	for y := range height {
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			tex.SetPixel(x, y, RGB(c.R, c.G, c.B))
		}
	}

	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			cx := x / checkSize
			cy := y / checkSize
			if (cx+cy)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the nearest texel for uv. Coordinates are clamped to [0,1]
// and mapped with floor(u*(w-1)), floor(v*(h-1)), so every lookup lands on
// a valid pixel. V is in image orientation here (0 = top row).
func (t *Texture) Sample(uv math3d.Vec2) Color {
	uv = uv.Clamp01()
	x, y := t.texelCoords(uv)
	return t.GetPixel(x, y)
}

func (t *Texture) texelCoords(uv math3d.Vec2) (x, y int) {
	x = int(math.Floor(uv.X * float64(t.Width-1)))
	y = int(math.Floor(uv.Y * float64(t.Height-1)))
	return x, y
}
