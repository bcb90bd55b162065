package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	progressFPS   = 30
	progressWidth = 30
)

// progress draws a single updating status line for a render. The shown
// fraction follows the real one through a critically damped spring, so row
// bursts from concurrent workers move the bar smoothly.
type progress struct {
	mu       sync.Mutex
	w        io.Writer
	total    int
	interval time.Duration // Minimum time between redraws
	last     time.Time

	spring harmonica.Spring
	shown  float64 // Displayed fraction
	vel    float64 // Spring velocity of shown
	target float64 // Fraction of rows actually done
}

func newProgress(w io.Writer, total int) *progress {
	return &progress{
		w:        w,
		total:    total,
		interval: time.Second / progressFPS,
		// Frequency 6.0 = quick follow, damping 1.0 = no overshoot past the real value
		spring: harmonica.NewSpring(harmonica.FPS(progressFPS), 6.0, 1.0),
	}
}

// Update records that done of total rows are finished. Safe for concurrent use.
func (p *progress) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	if total > 0 {
		p.target = max(p.target, float64(done)/float64(total))
	}

	if time.Since(p.last) < p.interval {
		return
	}
	p.last = time.Now()

	p.shown, p.vel = p.spring.Update(p.shown, p.vel, p.target)
	p.shown = min(max(p.shown, 0), p.target)
	p.draw()
}

// Finish ends the status line. A completed render is shown at 100%.
func (p *progress) Finish(completed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if completed {
		p.shown, p.target = 1, 1
		p.draw()
	}
	fmt.Fprintln(p.w)
}

func (p *progress) draw() {
	fmt.Fprintf(p.w, "\rRendering %s %3.0f%%", progressBar(p.shown, progressWidth), p.shown*100)
}

// progressBar renders frac (clamped to [0,1]) as a bar of width cells.
func progressBar(frac float64, width int) string {
	frac = min(max(frac, 0), 1)
	n := int(frac * float64(width))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}
