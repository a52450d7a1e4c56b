package surface

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/wippyai/framehost/errors"
)

// Surface is an RGBA raster of fixed logical dimensions.
type Surface struct {
	img *image.RGBA
	gen uint64
}

// New creates a transparent black surface of w x h pixels.
func New(w, h int) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Width returns the logical width in pixels.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the logical height in pixels.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Generation increases on every mutation. Shells use it to skip redraws.
func (s *Surface) Generation() uint64 { return s.gen }

// Contains reports whether (x, y) lies on the surface.
func (s *Surface) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.Width() && y < s.Height()
}

// At returns the colour stored at (x, y), or the zero colour off-surface.
func (s *Surface) At(x, y int) color.RGBA {
	if !s.Contains(x, y) {
		return color.RGBA{}
	}
	return s.img.RGBAAt(x, y)
}

// Clear sets every pixel to c.
func (s *Surface) Clear(c color.RGBA) {
	pix := s.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	s.gen++
}

// Snapshot returns a copy of the current raster.
func (s *Surface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}

// WritePNG encodes the current raster as PNG.
func (s *Surface) WritePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

// SetPixel stores c at (x, y) without blending.
func (s *Surface) SetPixel(x, y int, c color.RGBA) {
	if !s.Contains(x, y) {
		return
	}
	s.img.SetRGBA(x, y, c)
	s.gen++
}

// FillSpan stores c verbatim over the half-open rectangle [x0,x1) x [y0,y1).
func (s *Surface) FillSpan(x0, y0, x1, y1 int, c color.RGBA) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, s.Width()), min(y1, s.Height())
	if x0 >= x1 || y0 >= y1 {
		return
	}
	for y := y0; y < y1; y++ {
		row := s.img.PixOffset(x0, y)
		for x := x0; x < x1; x++ {
			p := s.img.Pix[row : row+4 : row+4]
			p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
			row += 4
		}
	}
	s.gen++
}

// Blit copies a w x h block of row-major RGBA bytes to (x, y) verbatim.
func (s *Surface) Blit(x, y, w, h int, pix []byte) error {
	if w < 0 || h < 0 {
		return errors.InvalidInput(errors.PhaseCapability, "negative blit size")
	}
	if len(pix) < w*h*4 {
		return errors.New(errors.PhaseCapability, errors.KindInvalidData).
			Detail("blit of %dx%d needs %d bytes, got %d", w, h, w*h*4, len(pix)).
			Build()
	}
	for row := 0; row < h; row++ {
		dy := y + row
		if dy < 0 || dy >= s.Height() {
			continue
		}
		sx0, dx0 := 0, x
		if dx0 < 0 {
			sx0, dx0 = -dx0, 0
		}
		dx1 := min(x+w, s.Width())
		if dx0 >= dx1 {
			continue
		}
		src := pix[(row*w+sx0)*4 : (row*w+sx0+dx1-dx0)*4]
		copy(s.img.Pix[s.img.PixOffset(dx0, dy):], src)
	}
	s.gen++
	return nil
}

// blend composites c over the pixel at (x, y).
func (s *Surface) blend(x, y int, c color.RGBA) {
	if !s.Contains(x, y) {
		return
	}
	i := s.img.PixOffset(x, y)
	p := s.img.Pix[i : i+4 : i+4]
	if c.A == 0xff {
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
		return
	}
	alpha := float32(c.A) / 255
	inv := 1 - alpha
	p[0] = uint8(float32(c.R)*alpha + float32(p[0])*inv)
	p[1] = uint8(float32(c.G)*alpha + float32(p[1])*inv)
	p[2] = uint8(float32(c.B)*alpha + float32(p[2])*inv)
	p[3] = uint8(min(float32(c.A)*alpha+float32(p[3])*inv, 255))
}
