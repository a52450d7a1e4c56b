package shell

import (
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

const halfBlock = "▀"

var black = colorful.Color{}

// Render draws img into cols x rows terminal cells. Each cell holds two
// vertically stacked samples: the upper half block is coloured with the top
// sample and its background with the bottom one. Translucent pixels are
// composited over black.
func Render(img *image.RGBA, cols, rows int, profile termenv.Profile) string {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if cols <= 0 || rows <= 0 || w == 0 || h == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(rows * cols * 24)
	for cy := 0; cy < rows; cy++ {
		if cy > 0 {
			b.WriteByte('\n')
		}
		top := (2 * cy) * h / (2 * rows)
		bottom := (2*cy + 1) * h / (2 * rows)
		for cx := 0; cx < cols; cx++ {
			sx := cx * w / cols
			fg := img.RGBAAt(img.Rect.Min.X+sx, img.Rect.Min.Y+top)
			bg := img.RGBAAt(img.Rect.Min.X+sx, img.Rect.Min.Y+bottom)
			b.WriteString(profile.String(halfBlock).
				Foreground(profile.Color(hex(fg))).
				Background(profile.Color(hex(bg))).
				String())
		}
	}
	return b.String()
}

func hex(c color.RGBA) string {
	src := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
	return black.BlendRgb(src, float64(c.A)/255).Clamped().Hex()
}
