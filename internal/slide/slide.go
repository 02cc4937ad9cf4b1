// Package slide is the external collaborator around the filter core: it
// resolves cached slide thumbnails on disk, decodes them, and downsamples
// oversized images before they reach any transform. Slide scans are
// gigapixel-scale, so nothing full-resolution may cross into the filters.
package slide

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// LocateThumbnail resolves a slide index to its cached thumbnail path.
// It first probes the conventional names, then falls back to a prefix
// glob so renamed exports still resolve.
func LocateThumbnail(dir string, index int) (string, error) {
	for _, ext := range []string{"png", "jpg", "jpeg"} {
		path := filepath.Join(dir, fmt.Sprintf("%03d-thumbnail.%s", index, ext))
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("%03d-*", index)))
	if err != nil {
		return "", fmt.Errorf("thumbnail lookup for slide %d: %w", index, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no thumbnail for slide %d in %s", index, dir)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// DecodeImage decodes a thumbnail file into the image handle the filter
// core consumes.
func DecodeImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Downsample scales an image so its longest side is at most maxDim,
// preserving aspect ratio. Images already small enough pass through.
func Downsample(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if maxDim <= 0 || longest <= maxDim {
		return img
	}
	scale := float64(maxDim) / float64(longest)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
