package splash

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Decorate applies the style to the working icon. StylePlain returns the icon
// untouched; StyleRounded clips the corners and adds the drop shadow.
func Decorate(icon *image.NRGBA, opts Options) image.Image {
	if opts.Style != StyleRounded {
		return icon
	}
	rounded := RoundCorners(icon, opts.CornerRatio)
	return DropShadow(rounded, opts.ShadowOffset, opts.ShadowBlur, opts.ShadowAlpha)
}

// Compose returns an opaque size×size canvas filled with bg and img
// alpha-composited at its center. An img larger than the canvas is cropped
// to its center. The background alpha is ignored.
func Compose(img image.Image, size int, bg color.NRGBA) *image.RGBA {
	bg.A = 0xff
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	b := img.Bounds()
	at := Center(size, b.Dx(), b.Dy())
	draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(b.Size())}, img, b.Min, draw.Over)
	return canvas
}

// Center returns the top-left offset that centers a w×h image on a
// size×size canvas. Odd remainders round toward the top-left, also when the
// image is larger than the canvas and the offset is negative.
func Center(size, w, h int) image.Point {
	return image.Pt(floorHalf(size-w), floorHalf(size-h))
}

func floorHalf(n int) int {
	if n < 0 {
		return -((1 - n) / 2)
	}
	return n / 2
}

// Render validates opts, decorates the working icon and composes the frame
// shared by every output variant. The icon's own size takes precedence over
// opts.IconSize.
func Render(icon *image.NRGBA, opts Options) (*image.RGBA, error) {
	if b := icon.Bounds(); !b.Empty() {
		opts.IconSize = max(b.Dx(), b.Dy())
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return Compose(Decorate(icon, opts), opts.CanvasSize, opts.Background), nil
}
