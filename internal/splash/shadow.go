package splash

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// DropShadow places icon on a transparent canvas padded by blur pixels on
// every side, above a soft black shadow. The shadow follows the icon's alpha
// silhouette scaled by alpha/255, is shifted by offset down and right, and is
// blurred with a Gaussian of sigma blur. The icon sits at (blur, blur).
// With offset > blur the shadow is clipped at the padded edge;
// Options.Validate rejects that combination.
func DropShadow(icon *image.NRGBA, offset, blur int, alpha uint8) *image.RGBA {
	b := icon.Bounds()
	w, h := b.Dx()+2*blur, b.Dy()+2*blur

	shadow := image.NewNRGBA(image.Rect(0, 0, w, h))
	at := blur + offset
	for y := 0; y < b.Dy(); y++ {
		sy := y + at
		if sy >= h {
			break
		}
		for x := 0; x < b.Dx(); x++ {
			sx := x + at
			if sx >= w {
				break
			}
			a := icon.Pix[icon.PixOffset(b.Min.X+x, b.Min.Y+y)+3]
			if a == 0 {
				continue
			}
			// RGB stays zero: the shadow is black.
			shadow.Pix[shadow.PixOffset(sx, sy)+3] = uint8(uint16(a) * uint16(alpha) / 0xff)
		}
	}
	if blur > 0 {
		shadow = imaging.Blur(shadow, float64(blur))
	}

	out := image.NewRGBA(shadow.Bounds())
	draw.Draw(out, out.Bounds(), shadow, image.Point{}, draw.Src)
	dst := image.Rect(blur, blur, blur+b.Dx(), blur+b.Dy())
	draw.Draw(out, dst, icon, b.Min, draw.Over)
	return out
}
