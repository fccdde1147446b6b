// Package icon loads the source icon and turns it into the square working
// icon used for compositing.
package icon

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	// Decoders beyond the ones imaging registers (png, jpeg, gif, bmp, tiff).
	_ "golang.org/x/image/webp"
)

// ErrInvalidSize is returned for a non-positive icon size.
var ErrInvalidSize = errors.New("icon size must be a positive integer")

// Load opens and decodes the image at path. SVG files are rasterized at
// their view box size.
func Load(path string) (image.Image, error) {
	if isSVG(path) {
		return loadSVG(path, 0)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open icon: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode icon %s: %w", path, err)
	}
	return img, nil
}

// LoadSized loads the icon at path as a size×size image. Raster icons are
// resampled with a Lanczos filter; SVG icons are drawn at size directly.
func LoadSized(path string, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, size)
	}
	if isSVG(path) {
		return loadSVG(path, size)
	}
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Resize(img, size)
}

// Resize stretches img to size×size. Non-square sources are not cropped.
func Resize(img image.Image, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, size)
	}
	return imaging.Resize(img, size, size, imaging.Lanczos), nil
}

func isSVG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".svg")
}

// loadSVG renders the SVG at path into a size×size image, or at its view
// box size when size is 0.
func loadSVG(path string, size int) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open icon: %w", err)
	}
	defer f.Close()

	svg, err := oksvg.ReadIconStream(f)
	if err != nil {
		return nil, fmt.Errorf("decode icon %s: %w", path, err)
	}

	w, h := size, size
	if size == 0 {
		w, h = int(svg.ViewBox.W), int(svg.ViewBox.H)
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("decode icon %s: svg has no view box size", path)
		}
	}
	svg.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	svg.Draw(rasterx.NewDasher(w, h, rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())), 1.0)
	return imaging.Clone(rgba), nil
}
