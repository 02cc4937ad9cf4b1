package filters

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"slideprep/internal/imgarray"
)

// RemoveSmallObjects coerces the input to a boolean mask and zeroes every
// 8-connected component with fewer than minSize pixels. Components at or
// above the limit pass through unchanged.
func (p *Processor) RemoveSmallObjects(img *imgarray.Array, minSize int, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	if img.Channels != 1 {
		return nil, fmt.Errorf("remove small objects: expected single-channel input, got %d channels", img.Channels)
	}
	mask := imgarray.CoerceBool(img)

	maskMat, err := imgarray.MaskMat(mask, img.Height, img.Width)
	if err != nil {
		return nil, fmt.Errorf("remove small objects: %w", err)
	}
	defer maskMat.Close()

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	numComponents := gocv.ConnectedComponentsWithStats(maskMat, &labels, &stats, &centroids)

	keep := make([]bool, numComponents)
	for i := 1; i < numComponents; i++ { // label 0 is the background
		area := int(stats.GetIntAt(i, 4)) // CC_STAT_AREA
		keep[i] = area >= minSize
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := y*img.Width + x
			mask[i] = mask[i] && keep[int(labels.GetIntAt(y, x))]
		}
	}
	result := imgarray.FromMask(mask, img.Height, img.Width, out)
	p.report(result, "Remove Small Objs", start)
	return result, nil
}
