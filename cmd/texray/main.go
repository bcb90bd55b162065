// texray - Textured Mesh Ray Caster
// Renders an OBJ or GLB mesh to an image by casting one ray per pixel,
// finding the nearest triangle and sampling its texture.
//
// Usage:
//
//	texray [mesh] [flags]
//
// With no arguments it renders cube.obj with texture.png to output.png at
// 800x600, camera at (0,0,3), mesh turned 30 degrees about X then Y.
package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/texray/pkg/models"
	"github.com/taigrr/texray/pkg/render"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "texray [mesh]",
		Short: "Render a textured mesh by casting one ray per pixel",
		Long: `texray loads a triangle mesh (.obj or .glb) and a texture image, casts one
primary ray per pixel from a pinhole camera and writes the sampled colors
to an image file. Faces are hit from both sides and there is no lighting.`,
		Example: `  texray
  texray model.obj -t skin.png -o render.png --width 1920 --height 1080
  texray model.glb --fit 2 --rotate 45,0,1,0 --workers 0 --preview`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(args, cmd.Flags().Changed("texture"))
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.ErrOrStderr(), cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.texture, "texture", "t", defaultTexture, "Texture image (PNG/JPG/BMP/TIFF/WebP)")
	fl.StringVarP(&f.output, "output", "o", defaultOutput, "Output image; format from extension (.png, .jpg, .bmp, .tiff)")
	fl.IntVar(&f.width, "width", 800, "Image width in pixels")
	fl.IntVar(&f.height, "height", 600, "Image height in pixels")
	fl.StringVar(&f.camera, "camera", "0,0,3", "Camera position (X,Y,Z)")
	fl.StringVar(&f.target, "target", "0,0,0", "Camera look-at point (X,Y,Z), recorded only")
	fl.Float64Var(&f.fov, "fov", 90, "Field of view in degrees, recorded only")
	fl.StringArrayVar(&f.rotate, "rotate", defaultRotations, "Rotation ANGLE,X,Y,Z in degrees, repeatable, applied in order")
	fl.BoolVar(&f.noRotate, "no-rotate", false, "Skip all mesh rotations")
	fl.Float64Var(&f.fit, "fit", 0, "Center the mesh and scale its largest side to this size (0 = off)")
	fl.StringVar(&f.bg, "bg", "0,0,0", "Background color (R,G,B)")
	fl.IntVar(&f.workers, "workers", 1, "Rows rendered concurrently (0 = all CPUs)")
	fl.BoolVar(&f.preview, "preview", false, "Show the result in the terminal after saving")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "Suppress status output")

	return cmd
}

func run(ctx context.Context, stderr io.Writer, cfg *config) error {
	status := stderr
	if cfg.quiet {
		status = io.Discard
	}

	scene, texture, err := load(cfg, status)
	if err != nil {
		return err
	}

	fmt.Fprintf(status, "Loaded: %s (%d vertices, %d triangles)\n", filepath.Base(cfg.meshPath), scene.VertexCount(), scene.TriangleCount())

	// Pre-render transforms run once, before any ray is cast.
	if cfg.fit > 0 {
		scene.ApplyTransform(scene.FitTransform(cfg.fit))
	}
	if len(cfg.rotations) > 0 {
		scene.ApplyTransform(composeRotations(cfg.rotations))
	}

	r := render.NewRenderer(scene, texture, render.NewCamera(cfg.camera, cfg.target, cfg.fov))
	r.Background = cfg.background
	r.Workers = cfg.workers

	var bar *progress
	if !cfg.quiet {
		bar = newProgress(status, cfg.height)
		r.OnRow = bar.Update
	}

	start := time.Now()
	fb, err := r.RenderImage(ctx, cfg.width, cfg.height)
	if bar != nil {
		bar.Finish(err == nil)
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := fb.Save(cfg.outputPath); err != nil {
		return fmt.Errorf("save %s: %w", cfg.outputPath, err)
	}
	fmt.Fprintf(status, "Wrote %s (%dx%d) in %s\n", cfg.outputPath, fb.Width, fb.Height, time.Since(start).Round(time.Millisecond))

	if cfg.preview {
		return runPreview(ctx, fb)
	}
	return nil
}

// load reads the mesh and texture. Both are fully loaded before rendering.
func load(cfg *config, status io.Writer) (*models.Scene, *render.Texture, error) {
	var (
		scene    *models.Scene
		embedded image.Image
		err      error
	)

	ext := strings.ToLower(filepath.Ext(cfg.meshPath))
	switch ext {
	case ".glb", ".gltf":
		scene, embedded, err = models.LoadGLBWithTexture(cfg.meshPath)
	case ".obj":
		scene, err = models.LoadOBJ(cfg.meshPath)
	default:
		return nil, nil, fmt.Errorf("unsupported mesh format: %q (use .obj or .glb)", ext)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load mesh: %w", err)
	}

	// Use embedded texture if no explicit texture and one exists
	if embedded != nil && !cfg.textureSet {
		fmt.Fprintf(status, "Using embedded texture: %dx%d\n", embedded.Bounds().Dx(), embedded.Bounds().Dy())
		return scene, render.TextureFromImage(embedded), nil
	}

	texture, err := render.LoadTexture(cfg.texturePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load texture: %w", err)
	}
	return scene, texture, nil
}
