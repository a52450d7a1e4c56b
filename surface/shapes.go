package surface

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// DrawLine draws from (x0, y0) toward (x1, y1), stepping along the major
// axis. The end point itself is not drawn, so connected outlines touch each
// vertex once. Only the steps that can land on the surface are visited.
func (s *Surface) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	if abs(dx) > abs(dy) {
		lo, hi := stepRange(x0, x1, s.Width())
		for x := lo; x <= hi; x++ {
			if y := (x-x0)*dy/dx + y0; s.Contains(x, y) {
				s.blend(x, y, c)
			}
		}
	} else if dy != 0 {
		lo, hi := stepRange(y0, y1, s.Height())
		for y := lo; y <= hi; y++ {
			if x := (y-y0)*dx/dy + x0; s.Contains(x, y) {
				s.blend(x, y, c)
			}
		}
	}
	s.gen++
}

// stepRange returns the inclusive range of the walk from a toward b, b
// excluded, clipped to [0, size).
func stepRange(a, b, size int) (lo, hi int) {
	if b > a {
		lo, hi = a, b-1
	} else {
		lo, hi = b+1, a
	}
	return max(lo, 0), min(hi, size-1)
}

// DrawRect outlines the w x h rectangle whose top-left corner is (x, y).
func (s *Surface) DrawRect(x, y, w, h int, c color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	for px := max(x, 0); px < min(x+w, s.Width()); px++ {
		s.blend(px, y, c)
		if h > 1 {
			s.blend(px, y+h-1, c)
		}
	}
	for py := max(y+1, 0); py < min(y+h-1, s.Height()); py++ {
		s.blend(x, py, c)
		if w > 1 {
			s.blend(x+w-1, py, c)
		}
	}
	s.gen++
}

// FillRect fills the w x h rectangle whose top-left corner is (x, y).
func (s *Surface) FillRect(x, y, w, h int, c color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, s.Width()), min(y+h, s.Height())
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			s.blend(px, py, c)
		}
	}
	s.gen++
}

// DrawCircle outlines the circle of radius r centred on (cx, cy).
func (s *Surface) DrawCircle(cx, cy, r int, c color.RGBA) {
	if r < 0 {
		return
	}
	if r == 0 {
		s.blend(cx, cy, c)
		s.gen++
		return
	}
	outer, inner := r*r, (r-1)*(r-1)
	s.discBox(cx, cy, r, func(x, y int) {
		if d := x*x + y*y; d <= outer && d > inner {
			s.blend(cx+x, cy+y, c)
		}
	})
	s.gen++
}

// FillCircle fills the disc of radius r centred on (cx, cy).
func (s *Surface) FillCircle(cx, cy, r int, c color.RGBA) {
	if r < 0 {
		return
	}
	r2 := r * r
	s.discBox(cx, cy, r, func(x, y int) {
		if x*x+y*y <= r2 {
			s.blend(cx+x, cy+y, c)
		}
	})
	s.gen++
}

// discBox calls fn with every offset in [-r, r]^2 around (cx, cy) that
// falls on the surface.
func (s *Surface) discBox(cx, cy, r int, fn func(x, y int)) {
	for y := max(-r, -cy); y <= min(r, s.Height()-1-cy); y++ {
		for x := max(-r, -cx); x <= min(r, s.Width()-1-cx); x++ {
			fn(x, y)
		}
	}
}

// DrawTriangle outlines the triangle with the given vertices.
func (s *Surface) DrawTriangle(x1, y1, x2, y2, x3, y3 int, c color.RGBA) {
	s.DrawLine(x1, y1, x2, y2, c)
	s.DrawLine(x2, y2, x3, y3, c)
	s.DrawLine(x3, y3, x1, y1, c)
}

// FillTriangle fills the triangle with the given vertices, edges included.
func (s *Surface) FillTriangle(x1, y1, x2, y2, x3, y3 int, c color.RGBA) {
	area := edge(x1, y1, x2, y2, x3, y3)
	if area == 0 {
		s.DrawTriangle(x1, y1, x2, y2, x3, y3, c)
		return
	}
	minX, maxX := max(min(x1, x2, x3), 0), min(max(x1, x2, x3), s.Width()-1)
	minY, maxY := max(min(y1, y2, y3), 0), min(max(y1, y2, y3), s.Height()-1)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edge(x2, y2, x3, y3, x, y)
			w1 := edge(x3, y3, x1, y1, x, y)
			w2 := edge(x1, y1, x2, y2, x, y)
			if area < 0 {
				w0, w1, w2 = -w0, -w1, -w2
			}
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				s.blend(x, y, c)
			}
		}
	}
	s.gen++
}

// FillRoundedRect fills the w x h rectangle at (x, y) with corners rounded
// to radius r, clamped so opposite corners never overlap.
func (s *Surface) FillRoundedRect(x, y, w, h, r int, c color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	r = max(min(r, (w-1)/2, (h-1)/2), 0)
	r2 := r * r
	left, right := x+r, x+w-1-r
	top, bottom := y+r, y+h-1-r
	for py := max(y, 0); py < min(y+h, s.Height()); py++ {
		for px := max(x, 0); px < min(x+w, s.Width()); px++ {
			dx := px - clamp(px, left, right)
			dy := py - clamp(py, top, bottom)
			if dx*dx+dy*dy <= r2 {
				s.blend(px, py, c)
			}
		}
	}
	s.gen++
}

// FillGradient fills the rectangle spanned by (x0, y0) and (x1, y1)
// inclusive, blending linearly from from to to along its longer axis.
func (s *Surface) FillGradient(x0, y0, x1, y1 int, from, to color.RGBA) {
	width, height := x1-x0, y1-y0
	horizontal := abs(width) > abs(height)
	a := colorful.Color{R: float64(from.R) / 255, G: float64(from.G) / 255, B: float64(from.B) / 255}
	b := colorful.Color{R: float64(to.R) / 255, G: float64(to.G) / 255, B: float64(to.B) / 255}

	shade := func(pos, origin, span int) color.RGBA {
		t := 0.0
		if span != 0 {
			t = float64(pos-origin) / float64(span)
		}
		t = min(max(t, 0), 1)
		r, g, bl := a.BlendRgb(b, t).RGB255()
		alpha := float64(from.A)*(1-t) + float64(to.A)*t
		return color.RGBA{R: r, G: g, B: bl, A: uint8(alpha)}
	}

	xlo, xhi := min(x0, x1), max(x0, x1)
	ylo, yhi := min(y0, y1), max(y0, y1)
	for y := max(ylo, 0); y <= min(yhi, s.Height()-1); y++ {
		for x := max(xlo, 0); x <= min(xhi, s.Width()-1); x++ {
			if horizontal {
				s.blend(x, y, shade(x, x0, width))
			} else {
				s.blend(x, y, shade(y, y0, height))
			}
		}
	}
	s.gen++
}

// edge is twice the signed area of (ax,ay) (bx,by) (px,py).
func edge(ax, ay, bx, by, px, py int) int {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
