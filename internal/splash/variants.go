package splash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ogadix/splash/internal/paths"
)

// Variant is one output file of the splash image set.
type Variant struct {
	Name  string
	Scale string // asset catalog scale: "1x", "2x", "3x"
}

// Variants lists the output files in write order. All of them receive the
// same frame; the scale only matters to the asset catalog.
var Variants = []Variant{
	{Name: "splash-2732x2732-2.png", Scale: "1x"},
	{Name: "splash-2732x2732-1.png", Scale: "2x"},
	{Name: "splash-2732x2732.png", Scale: "3x"},
}

// Result describes a written variant.
type Result struct {
	Variant
	Path   string
	Bytes  int
	SHA256 string
}

// Encode writes img to w as PNG.
func Encode(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// WriteVariants encodes frame once and writes it to dir under every variant
// name, in order. onWrite, if non-nil, is called after each file lands.
// The first failure stops the run; files already written are kept and
// returned alongside the error. dir is never created.
func WriteVariants(dir string, frame image.Image, onWrite func(Result)) ([]Result, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	data := buf.Bytes()
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	results := make([]Result, 0, len(Variants))
	for _, v := range Variants {
		p := filepath.Join(dir, v.Name)
		if err := paths.WriteFile(p, data); err != nil {
			return results, fmt.Errorf("write %s: %w", v.Name, err)
		}
		r := Result{Variant: v, Path: p, Bytes: len(data), SHA256: digest}
		results = append(results, r)
		if onWrite != nil {
			onWrite(r)
		}
	}
	return results, nil
}
