// Package imageset writes the Contents.json of an Xcode asset catalog
// image set.
package imageset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/ogadix/splash/internal/paths"
	"github.com/ogadix/splash/internal/splash"
)

// FileName is the catalog metadata file inside an image set directory.
const FileName = "Contents.json"

// Image is one entry of the "images" array.
type Image struct {
	Idiom    string `json:"idiom"`
	Filename string `json:"filename"`
	Scale    string `json:"scale"`
}

// Info is the catalog "info" block.
type Info struct {
	Version int    `json:"version"`
	Author  string `json:"author"`
}

// Contents mirrors Contents.json.
type Contents struct {
	Images []Image `json:"images"`
	Info   Info    `json:"info"`
}

// For builds the Contents of an image set holding variants.
func For(variants []splash.Variant) Contents {
	return Contents{
		Images: lo.Map(variants, func(v splash.Variant, _ int) Image {
			return Image{Idiom: "universal", Filename: v.Name, Scale: v.Scale}
		}),
		Info: Info{Version: 1, Author: "xcode"},
	}
}

// Read parses dir/Contents.json.
func Read(dir string) (Contents, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return Contents{}, err
	}
	var c Contents
	if err := json.Unmarshal(data, &c); err != nil {
		return Contents{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return c, nil
}

// Write writes dir/Contents.json for variants. It reports whether the file
// changed; an identical existing file is left untouched. dir is never
// created.
func Write(dir string, variants []splash.Variant) (bool, error) {
	data, err := json.MarshalIndent(For(variants), "", "  ")
	if err != nil {
		return false, err
	}
	data = append(data, '\n')

	p := filepath.Join(dir, FileName)
	if old, err := os.ReadFile(p); err == nil && bytes.Equal(old, data) {
		return false, nil
	}
	if err := paths.WriteFile(p, data); err != nil {
		return false, fmt.Errorf("write %s: %w", FileName, err)
	}
	return true, nil
}
