// Package render draws hand-drawn style annotation marks onto a copy of
// a page screenshot: wobbly boxes, wavy underlines, scribbled leader
// lines with arrowheads, margin notes and an optional verdict banner.
//
// Jitter makes repeated renders of the same input intentionally
// non-identical; the geometric contract is only that every drawn
// coordinate stays inside the image bounds.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"time"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/redpenlabs/teardown/internal/config"
	"github.com/redpenlabs/teardown/internal/evidence"
	"github.com/redpenlabs/teardown/internal/ocr"
)

// wobblePasses is how many jittered copies of each shape outline are
// drawn on top of each other.
const wobblePasses = 4

const (
	noteRightMargin = 150 // reserved width for margin notes
	noteLineHeight  = 16  // vertical step when stacking colliding notes
	bannerHeight    = 26
)

// RenderError reports geometry or encoding the renderer cannot handle.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("render failed: %s", e.Reason)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer draws annotations with a fixed pen/ink palette and a
// configurable jitter magnitude.
type Renderer struct {
	cfg config.RenderConfig
	pen color.RGBA
	ink color.RGBA
	rng *rand.Rand
}

// NewRenderer creates a renderer from configuration. The jitter source
// is time-seeded; tests use NewRendererWithSource to pin it.
func NewRenderer(cfg config.RenderConfig) (*Renderer, error) {
	return NewRendererWithSource(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewRendererWithSource creates a renderer with an explicit jitter
// source.
func NewRendererWithSource(cfg config.RenderConfig, rng *rand.Rand) (*Renderer, error) {
	pen, err := parseHex(cfg.PenColor)
	if err != nil {
		return nil, fmt.Errorf("invalid pen color %q: %w", cfg.PenColor, err)
	}
	ink, err := parseHex(cfg.InkColor)
	if err != nil {
		return nil, fmt.Errorf("invalid ink color %q: %w", cfg.InkColor, err)
	}
	return &Renderer{cfg: cfg, pen: pen, ink: ink, rng: rng}, nil
}

// Render draws the evidence marks and the optional verdict banner onto
// a copy of img and returns the result as PNG bytes. The source image
// is never mutated and its resolution is preserved.
func (r *Renderer) Render(img image.Image, items []evidence.Evidence, headline string) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, &RenderError{Reason: fmt.Sprintf("zero-size image %dx%d", bounds.Dx(), bounds.Dy())}
	}

	c := newCanvas(clone.AsRGBA(img))

	placed := make([]image.Point, 0, len(items))
	for _, item := range items {
		box := item.Bounds
		if box.X2 <= box.X1 || box.Y2 <= box.Y1 {
			continue
		}

		r.wobblyBox(c, box.X1, box.Y1, box.X2, box.Y2)
		r.wavyUnderline(c, box.X1, box.X2, box.Y2)

		anchor := r.placeNote(c, box, placed)
		placed = append(placed, anchor)
		c.text(anchor.X, anchor.Y, item.EditorialCaption, r.ink)

		r.scribbleArrow(c,
			image.Point{X: anchor.X - 10, Y: anchor.Y + 4},
			image.Point{X: box.X2, Y: box.Y1})
	}

	if r.cfg.Banner && headline != "" {
		r.banner(c, headline)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, c.img, imaging.PNG); err != nil {
		return nil, &RenderError{Reason: "PNG encoding failed", Err: err}
	}
	return buf.Bytes(), nil
}

// jitter perturbs v by a uniform offset in [-delta, delta].
func (r *Renderer) jitter(v int) int {
	delta := r.cfg.Jitter
	if delta <= 0 {
		return v
	}
	return v + r.rng.Intn(2*delta+1) - delta
}

// wobblyBox outlines the evidence box several times with independently
// jittered corners, like a pen circling the same spot.
func (r *Renderer) wobblyBox(c *canvas, x1, y1, x2, y2 int) {
	for pass := 0; pass < wobblePasses; pass++ {
		tl := c.clamp(image.Point{X: r.jitter(x1), Y: r.jitter(y1)})
		tr := c.clamp(image.Point{X: r.jitter(x2), Y: r.jitter(y1)})
		br := c.clamp(image.Point{X: r.jitter(x2), Y: r.jitter(y2)})
		bl := c.clamp(image.Point{X: r.jitter(x1), Y: r.jitter(y2)})
		c.strokeRect(tl, tr, br, bl, r.cfg.StrokeWidth, r.pen)
	}
}

// wavyUnderline draws an alternating up/down stroke just below the box.
func (r *Renderer) wavyUnderline(c *canvas, x1, x2, y2 int) {
	const step = 6
	y := y2 + 4
	direction := 1

	points := make([]image.Point, 0, (x2-x1)/step+1)
	for x := x1; x < x2; x += step {
		points = append(points, c.clamp(image.Point{X: x, Y: y + direction*3}))
		direction = -direction
	}
	c.polyline(points, r.cfg.StrokeWidth, r.pen)
}

// scribbleArrow draws a jittered polyline from start to end, finished
// with a filled arrowhead.
func (r *Renderer) scribbleArrow(c *canvas, start, end image.Point) {
	const segments = 5

	points := make([]image.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / segments
		x := start.X + int(t*float64(end.X-start.X))
		y := start.Y + int(t*float64(end.Y-start.Y))
		points = append(points, c.clamp(image.Point{X: r.jitter(x), Y: r.jitter(y)}))
	}
	c.polyline(points, r.cfg.StrokeWidth, r.pen)

	tip := points[len(points)-1]
	prev := points[len(points)-2]
	dx := tip.X - prev.X
	dy := tip.Y - prev.Y
	left := image.Point{X: tip.X - dy/2 - 4, Y: tip.Y + dx/2}
	right := image.Point{X: tip.X + dy/2 + 4, Y: tip.Y - dx/2}
	c.fillTriangle(tip, left, right, r.pen)
}

// placeNote picks the margin-note anchor for an evidence box: to the
// right of the box when there is room, stacked downward when it would
// collide with an already placed note.
func (r *Renderer) placeNote(c *canvas, box ocr.Bounds, placed []image.Point) image.Point {
	x := box.X2 + 20
	if x > c.w-noteRightMargin {
		x = c.w - noteRightMargin
	}
	y := box.Y1 - 10
	if y < 10 {
		y = 10
	}
	for y < c.h && noteCollides(x, y, placed) {
		y += noteLineHeight
	}
	return c.clamp(image.Point{X: x, Y: y})
}

// noteCollides reports whether an anchor would land on top of an
// already placed note.
func noteCollides(x, y int, placed []image.Point) bool {
	for _, p := range placed {
		if abs(p.Y-y) < noteLineHeight && abs(p.X-x) < noteRightMargin {
			return true
		}
	}
	return false
}

// banner draws the fixed-position verdict band across the top.
func (r *Renderer) banner(c *canvas, headline string) {
	c.fillRect(0, 0, c.w-1, bannerHeight-1, r.pen)
	c.text(8, 17, headline, color.RGBA{R: 255, G: 255, B: 255, A: 255})
}

// parseHex converts a "#RRGGBB" string into an opaque RGBA color.
func parseHex(hex string) (color.RGBA, error) {
	cf, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r8, g8, b8 := cf.RGB255()
	return color.RGBA{R: r8, G: g8, B: b8, A: 255}, nil
}
