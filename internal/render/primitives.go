package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// canvas wraps the drawing target with clamping helpers. Every
// primitive clamps its coordinates here so that no drawing operation
// references a pixel outside [0,width)x[0,height), even after jitter.
type canvas struct {
	img *image.RGBA
	w   int
	h   int
}

func newCanvas(img *image.RGBA) *canvas {
	b := img.Bounds()
	return &canvas{img: img, w: b.Dx(), h: b.Dy()}
}

func (c *canvas) clampX(x int) int {
	if x < 0 {
		return 0
	}
	if x >= c.w {
		return c.w - 1
	}
	return x
}

func (c *canvas) clampY(y int) int {
	if y < 0 {
		return 0
	}
	if y >= c.h {
		return c.h - 1
	}
	return y
}

func (c *canvas) clamp(p image.Point) image.Point {
	return image.Point{X: c.clampX(p.X), Y: c.clampY(p.Y)}
}

// setThick paints a square brush of the given stroke width centered on
// (x, y). The point is assumed clamped; brush overhang at the borders
// is cut off.
func (c *canvas) setThick(x, y, width int, col color.RGBA) {
	half := width / 2
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			px, py := x+dx, y+dy
			if px < 0 || px >= c.w || py < 0 || py >= c.h {
				continue
			}
			c.img.SetRGBA(px, py, col)
		}
	}
}

// line draws a straight stroke between two clamped points.
func (c *canvas) line(a, b image.Point, width int, col color.RGBA) {
	a = c.clamp(a)
	b = c.clamp(b)

	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	steps := dx
	if dy > steps {
		steps = dy
	}
	if steps == 0 {
		c.setThick(a.X, a.Y, width, col)
		return
	}

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := a.X + int(t*float64(b.X-a.X))
		y := a.Y + int(t*float64(b.Y-a.Y))
		c.setThick(x, y, width, col)
	}
}

// polyline draws connected strokes through the given points.
func (c *canvas) polyline(points []image.Point, width int, col color.RGBA) {
	for i := 1; i < len(points); i++ {
		c.line(points[i-1], points[i], width, col)
	}
}

// strokeRect outlines a rectangle through its four corners.
func (c *canvas) strokeRect(tl, tr, br, bl image.Point, width int, col color.RGBA) {
	c.line(tl, tr, width, col)
	c.line(tr, br, width, col)
	c.line(br, bl, width, col)
	c.line(bl, tl, width, col)
}

// fillTriangle fills the triangle a-b-c using a point-in-triangle scan
// over its clamped bounding box.
func (c *canvas) fillTriangle(a, b, d image.Point, col color.RGBA) {
	a = c.clamp(a)
	b = c.clamp(b)
	d = c.clamp(d)

	minX := min(a.X, min(b.X, d.X))
	maxX := max(a.X, max(b.X, d.X))
	minY := min(a.Y, min(b.Y, d.Y))
	maxY := max(a.Y, max(b.Y, d.Y))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if inTriangle(image.Point{X: x, Y: y}, a, b, d) {
				c.img.SetRGBA(x, y, col)
			}
		}
	}
}

// fillRect fills an axis-aligned band, clamped.
func (c *canvas) fillRect(x1, y1, x2, y2 int, col color.RGBA) {
	x1, y1 = c.clampX(x1), c.clampY(y1)
	x2, y2 = c.clampX(x2), c.clampY(y2)
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			c.img.SetRGBA(x, y, col)
		}
	}
}

// text draws a string with the fixed bitmap face. The font drawer clips
// to the canvas bounds, so overlong notes are cut, not wrapped.
func (c *canvas) text(x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(c.clampX(x)), Y: fixed.I(c.clampY(y))},
	}
	d.DrawString(s)
}

func inTriangle(p, a, b, c image.Point) bool {
	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func sign(p, a, b image.Point) int {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
