// Package splash composes splash-screen images: an icon, optionally clipped
// to a rounded square with a drop shadow, centered on a solid background.
package splash

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

const (
	DefaultCanvasSize   = 2732
	DefaultIconSize     = 1024
	DefaultCornerRatio  = 0.2237 // iOS app icon corner radius / side
	DefaultShadowOffset = 20
	DefaultShadowBlur   = 40
	DefaultShadowAlpha  = 100
)

// DefaultBackground is #8b5cf6.
var DefaultBackground = color.NRGBA{R: 0x8b, G: 0x5c, B: 0xf6, A: 0xff}

// ErrShadowClipped is returned when the shadow offset exceeds the blur
// padding, which would cut the shadow off at the padded edge.
var ErrShadowClipped = errors.New("shadow offset exceeds shadow blur")

// Style selects how the icon is decorated before it is placed.
type Style string

const (
	StylePlain   Style = "plain"   // icon pasted as-is
	StyleRounded Style = "rounded" // rounded corners + drop shadow
)

// ParseStyle maps a style name to a Style. The empty string is StylePlain.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "", StylePlain:
		return StylePlain, nil
	case StyleRounded:
		return StyleRounded, nil
	}
	return "", fmt.Errorf("unknown style %q (want %q or %q)", s, StylePlain, StyleRounded)
}

// Options controls rendering of one splash frame.
type Options struct {
	CanvasSize   int
	IconSize     int
	Background   color.NRGBA
	Style        Style
	CornerRatio  float64
	ShadowOffset int
	ShadowBlur   int
	ShadowAlpha  uint8
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		CanvasSize:   DefaultCanvasSize,
		IconSize:     DefaultIconSize,
		Background:   DefaultBackground,
		Style:        StylePlain,
		CornerRatio:  DefaultCornerRatio,
		ShadowOffset: DefaultShadowOffset,
		ShadowBlur:   DefaultShadowBlur,
		ShadowAlpha:  DefaultShadowAlpha,
	}
}

// DecoratedSize is the side of the image that gets centered on the canvas:
// the icon itself, or the icon plus shadow padding for StyleRounded. It may
// exceed the canvas; the frame then shows the cropped center.
func (o Options) DecoratedSize() int {
	if o.Style == StyleRounded {
		return o.IconSize + 2*o.ShadowBlur
	}
	return o.IconSize
}

// Validate reports the first invalid setting.
func (o Options) Validate() error {
	if o.CanvasSize <= 0 {
		return fmt.Errorf("canvas size must be positive, got %d", o.CanvasSize)
	}
	if o.IconSize <= 0 {
		return fmt.Errorf("icon size must be positive, got %d", o.IconSize)
	}
	if _, err := ParseStyle(string(o.Style)); err != nil {
		return err
	}
	if o.Style == StyleRounded {
		if o.CornerRatio < 0 || o.CornerRatio > 0.5 {
			return fmt.Errorf("corner ratio must be within [0, 0.5], got %g", o.CornerRatio)
		}
		if o.ShadowBlur < 0 || o.ShadowOffset < 0 {
			return fmt.Errorf("shadow offset and blur must not be negative")
		}
		if o.ShadowOffset > o.ShadowBlur {
			return fmt.Errorf("%w: offset %d, blur %d", ErrShadowClipped, o.ShadowOffset, o.ShadowBlur)
		}
	}
	return nil
}
