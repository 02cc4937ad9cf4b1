package filters

import (
	"fmt"
	"image"
	"math"
	"time"

	"gocv.io/x/gocv"

	"slideprep/internal/imgarray"
)

// Canny produces a thin edge map: Gaussian smoothing at scale sigma, then
// OpenCV's Canny detector with hysteresis on the gradient magnitude.
func (p *Processor) Canny(img *imgarray.Array, sigma, low, high float64, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	if err := requireGray8(img, "canny"); err != nil {
		return nil, err
	}

	src, err := img.ToMat()
	if err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	defer src.Close()

	smoothed := src
	if sigma > 0 {
		blurred := gocv.NewMat()
		defer blurred.Close()
		// Kernel wide enough to cover three standard deviations.
		k := 2*int(math.Ceil(3*sigma)) + 1
		gocv.GaussianBlur(src, &blurred, image.Pt(k, k), sigma, sigma, gocv.BorderDefault)
		smoothed = blurred
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(smoothed, &edges, float32(low), float32(high))

	edgeBytes := edges.ToBytes()
	mask := make([]bool, img.Height*img.Width)
	for i, v := range edgeBytes {
		mask[i] = v != 0
	}
	result := imgarray.FromMask(mask, img.Height, img.Width, out)
	p.report(result, "Canny Edges", start)
	return result, nil
}
