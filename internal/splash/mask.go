package splash

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// kappa places cubic control points so that four curves approximate a circle.
const kappa = 0.5522847498

// RoundedMask returns a size×size anti-aliased alpha mask holding a filled
// rounded rectangle with the given corner radius. The radius is clamped to
// half the side.
func RoundedMask(size int, radius float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, size, size))
	if size <= 0 {
		return mask
	}
	radius = math.Min(radius, float64(size)/2)
	if radius <= 0 {
		draw.Draw(mask, mask.Bounds(), image.Opaque, image.Point{}, draw.Src)
		return mask
	}

	s := float32(size)
	r := float32(radius)
	k := r * (1 - kappa)

	var z vector.Rasterizer
	z.Reset(size, size)
	z.MoveTo(r, 0)
	z.LineTo(s-r, 0)
	z.CubeTo(s-k, 0, s, k, s, r)
	z.LineTo(s, s-r)
	z.CubeTo(s, s-k, s-k, s, s-r, s)
	z.LineTo(r, s)
	z.CubeTo(k, s, 0, s-k, 0, s-r)
	z.LineTo(0, r)
	z.CubeTo(0, k, k, 0, r, 0)
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// RoundCorners clips icon to a rounded square with radius side×ratio. The
// mask replaces the icon's alpha channel: pixels inside the shape become
// opaque even if they were transparent in the source.
func RoundCorners(icon *image.NRGBA, ratio float64) *image.NRGBA {
	out := imaging.Clone(icon)
	b := out.Bounds()
	side := min(b.Dx(), b.Dy())
	mask := RoundedMask(side, float64(side)*ratio)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			// AlphaAt is zero outside the mask, so any non-square remainder is cut.
			out.Pix[out.PixOffset(b.Min.X+x, b.Min.Y+y)+3] = mask.AlphaAt(x, y).A
		}
	}
	return out
}
