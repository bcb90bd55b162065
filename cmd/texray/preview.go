package main

import (
	"context"
	"fmt"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/nfnt/resize"

	"github.com/taigrr/texray/pkg/render"
)

// runPreview shows fb in the terminal until a key is pressed or ctx ends.
func runPreview(ctx context.Context, fb *render.Framebuffer) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	draw := func(cols, rows int) error {
		term.Resize(cols, rows)
		term.Erase()
		fitToTerminal(fb, cols, rows).Draw(term, uv.Rect(0, 0, cols, rows))
		return term.Display()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan uv.Event)
	go func() {
		defer close(events)
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return previewLoop(ctx, events, draw, width, height)
}

// previewLoop draws once, then redraws on resize until a quit key, the end
// of events, or ctx. All drawing happens on the calling goroutine, so the
// terminal is idle once it returns.
func previewLoop(ctx context.Context, events <-chan uv.Event, draw func(cols, rows int) error, cols, rows int) error {
	if err := draw(cols, rows); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				if err := draw(ev.Width, ev.Height); err != nil {
					return fmt.Errorf("display: %w", err)
				}
			case uv.KeyPressEvent:
				if ev.MatchString("q", "escape", "enter", "space", "ctrl+c") {
					return nil
				}
			}
		}
	}
}

// fitToTerminal scales fb to fit cols x rows terminal cells, two pixels per
// cell vertically, keeping its aspect ratio.
func fitToTerminal(fb *render.Framebuffer, cols, rows int) *render.Framebuffer {
	w, h := previewSize(fb.Width, fb.Height, cols, rows*2)
	if w == fb.Width && h == fb.Height {
		return fb
	}
	img := resize.Resize(uint(w), uint(h), fb.ToImage(), resize.Bilinear)
	return render.FramebufferFromImage(img)
}

// previewSize returns the largest size with the aspect ratio of w x h that
// fits within maxW x maxH. It never upscales and never returns zero.
func previewSize(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}
