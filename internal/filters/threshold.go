package filters

import (
	"fmt"
	"math"
	"time"

	"gocv.io/x/gocv"

	"slideprep/internal/imgarray"
)

// otsuScan finds the threshold index maximizing between-class variance
// over a histogram. ok is false when fewer than two bins are occupied, in
// which case no threshold separates the image.
func otsuScan(hist []int) (int, bool) {
	total := 0
	occupied := 0
	sum := 0.0
	for i, count := range hist {
		total += count
		if count > 0 {
			occupied++
		}
		sum += float64(i) * float64(count)
	}
	if occupied < 2 {
		return 0, false
	}

	sumB := 0.0
	wB := 0
	maxVariance := 0.0
	best := 0
	for i, count := range hist {
		wB += count
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(count)
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		varBetween := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if varBetween > maxVariance {
			maxVariance = varBetween
			best = i
		}
	}
	return best, true
}

// OtsuThreshold binarizes an image at the global Otsu threshold;
// foreground is every pixel strictly above it. A constant image has no
// separating threshold and is an error.
func (p *Processor) OtsuThreshold(img *imgarray.Array, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	values, err := rawValues(img, "otsu")
	if err != nil {
		return nil, err
	}

	var thresh float64
	if img.Type == imgarray.TypeUint8 {
		var hist [256]int
		for _, v := range img.U8 {
			hist[v]++
		}
		idx, ok := otsuScan(hist[:])
		if !ok {
			return nil, fmt.Errorf("otsu: threshold undefined for constant image")
		}
		thresh = float64(idx)
	} else {
		lo, hi := minMax(values)
		if lo == hi {
			return nil, fmt.Errorf("otsu: threshold undefined for constant image")
		}
		const bins = 256
		hist := make([]int, bins)
		width := (hi - lo) / bins
		for _, v := range values {
			b := int((v - lo) / width)
			if b >= bins {
				b = bins - 1
			}
			hist[b]++
		}
		idx, ok := otsuScan(hist)
		if !ok {
			return nil, fmt.Errorf("otsu: threshold undefined for constant image")
		}
		thresh = lo + (float64(idx)+0.5)*width
	}

	mask := make([]bool, len(values))
	for i, v := range values {
		mask[i] = v > thresh
	}
	result := imgarray.FromMask(mask, img.Height, img.Width, out)
	p.report(result, "Otsu Threshold", start)
	return result, nil
}

// HysteresisThreshold keeps the connected regions of the above-low mask
// that contain at least one above-high pixel (connectivity 4). The result
// is always a subset of the above-low mask, also when low > high.
func (p *Processor) HysteresisThreshold(img *imgarray.Array, low, high float64, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	values, err := rawValues(img, "hysteresis")
	if err != nil {
		return nil, err
	}

	lowMask := make([]bool, len(values))
	for i, v := range values {
		lowMask[i] = v > low
	}

	maskMat, err := imgarray.MaskMat(lowMask, img.Height, img.Width)
	if err != nil {
		return nil, fmt.Errorf("hysteresis: %w", err)
	}
	defer maskMat.Close()

	labels := gocv.NewMat()
	defer labels.Close()
	numLabels := gocv.ConnectedComponentsWithParams(maskMat, &labels, 4, gocv.MatTypeCV32S)

	keep := make([]bool, numLabels)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := y*img.Width + x
			if lowMask[i] && values[i] > high {
				keep[int(labels.GetIntAt(y, x))] = true
			}
		}
	}

	mask := make([]bool, len(values))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := y*img.Width + x
			mask[i] = lowMask[i] && keep[int(labels.GetIntAt(y, x))]
		}
	}
	result := imgarray.FromMask(mask, img.Height, img.Width, out)
	p.report(result, "Hysteresis Threshold", start)
	return result, nil
}

// LocalOtsuThreshold computes a per-pixel Otsu threshold over a disk
// neighborhood. Foreground is every pixel at or below its local threshold;
// the comparison is deliberately inverted relative to the global variant,
// which is what makes the filter pick up dark tissue and ink.
func (p *Processor) LocalOtsuThreshold(img *imgarray.Array, radius int, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	if err := requireGray8(img, "local otsu"); err != nil {
		return nil, err
	}
	offs, err := diskOffsets(radius)
	if err != nil {
		return nil, fmt.Errorf("local otsu: %w", err)
	}

	mask := make([]bool, img.Height*img.Width)
	forEachWindow(img, offs, func(idx int, center uint8, hist *[256]int, count int) {
		thresh, ok := otsuScan(hist[:])
		if !ok {
			// Uniform window: local threshold equals the pixel itself.
			thresh = int(center)
		}
		mask[idx] = int(center) <= thresh
	})
	result := imgarray.FromMask(mask, img.Height, img.Width, out)
	p.report(result, "Otsu Local Threshold", start)
	return result, nil
}

// Entropy marks pixels whose square neighborhood has Shannon entropy (in
// bits) above the threshold, a measure of local complexity.
func (p *Processor) Entropy(img *imgarray.Array, neighborhood int, threshold float64, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	if err := requireGray8(img, "entropy"); err != nil {
		return nil, err
	}
	offs, err := squareOffsets(neighborhood)
	if err != nil {
		return nil, fmt.Errorf("entropy: %w", err)
	}

	mask := make([]bool, img.Height*img.Width)
	forEachWindow(img, offs, func(idx int, _ uint8, hist *[256]int, count int) {
		entropy := 0.0
		for _, c := range hist {
			if c == 0 {
				continue
			}
			pr := float64(c) / float64(count)
			entropy -= pr * math.Log2(pr)
		}
		mask[idx] = entropy > threshold
	})
	result := imgarray.FromMask(mask, img.Height, img.Width, out)
	p.report(result, "Entropy", start)
	return result, nil
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
