// Package render casts one primary ray per pixel through a textured triangle
// scene and writes the sampled colors into a framebuffer.
package render

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/texray/pkg/math3d"
	"github.com/taigrr/texray/pkg/models"
)

// Errors returned by Render before any pixel is traced.
var (
	ErrNoScene        = errors.New("render: no scene")
	ErrNoTexture      = errors.New("render: no texture")
	ErrNoCamera       = errors.New("render: no camera")
	ErrBadFramebuffer = errors.New("render: framebuffer has no pixels")
)

// Renderer drives the per-pixel pipeline: camera ray, nearest hit, UV
// interpolation, texture sample. Scene and Texture are only read.
type Renderer struct {
	Scene      *models.Scene
	Texture    *Texture
	Camera     *Camera
	Background Color // Returned for rays that hit nothing

	// Workers is the number of rows traced concurrently; <= 1 renders on the
	// calling goroutine.
	Workers int

	// OnRow, if set, is called after each finished row with the number of
	// rows done so far. It must be safe for concurrent use when Workers > 1.
	OnRow func(done, total int)
}

// NewRenderer creates a single-threaded renderer with a black background.
func NewRenderer(scene *models.Scene, tex *Texture, camera *Camera) *Renderer {
	return &Renderer{
		Scene:      scene,
		Texture:    tex,
		Camera:     camera,
		Background: ColorBlack,
		Workers:    1,
	}
}

// Trace returns the color seen along ray.
func (r *Renderer) Trace(ray math3d.Ray) Color {
	hit, ok := NearestHit(r.Scene, ray)
	if !ok {
		return r.Background
	}

	c, ok := ShadeHit(r.Scene, r.Texture, hit)
	if !ok {
		// Degenerate face: no valid interpolation.
		return r.Background
	}
	return c
}

// Render fills every pixel of fb. It either completes the whole frame or
// returns an error, in which case fb must not be written out.
func (r *Renderer) Render(ctx context.Context, fb *Framebuffer) error {
	if err := r.check(fb); err != nil {
		return err
	}

	width, height := fb.Width, fb.Height
	var done atomic.Int64

	renderRow := func(y int) {
		row := fb.Pixels[y*width : (y+1)*width]
		for x := range row {
			row[x] = r.Trace(r.Camera.GenerateRay(x, y, width, height))
		}
		n := done.Add(1)
		if r.OnRow != nil {
			r.OnRow(int(n), height)
		}
	}

	if r.Workers <= 1 {
		for y := range height {
			if err := ctx.Err(); err != nil {
				return err
			}
			renderRow(y)
		}
		return nil
	}

	// Rows share no mutable state, each goroutine owns its slice of fb.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for y := range height {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			renderRow(y)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// RenderImage renders a new width x height framebuffer.
func (r *Renderer) RenderImage(ctx context.Context, width, height int) (*Framebuffer, error) {
	fb := NewFramebuffer(width, height)
	if err := r.Render(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

func (r *Renderer) check(fb *Framebuffer) error {
	switch {
	case r.Scene == nil:
		return ErrNoScene
	case r.Texture == nil || len(r.Texture.Pixels) == 0:
		return ErrNoTexture
	case r.Camera == nil:
		return ErrNoCamera
	case fb == nil || fb.Width <= 0 || fb.Height <= 0 || len(fb.Pixels) != fb.Width*fb.Height:
		return ErrBadFramebuffer
	}
	if err := r.Scene.Validate(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
