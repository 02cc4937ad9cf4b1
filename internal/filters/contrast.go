package filters

import (
	"fmt"
	"image"
	"sort"
	"time"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"slideprep/internal/imgarray"
)

// ContrastStretch linearly rescales intensities so that the given low/high
// percentiles become the new extremes, clipping everything outside. Works
// on grayscale and RGB arrays; the percentiles are taken over all samples.
func (p *Processor) ContrastStretch(img *imgarray.Array, lowPct, highPct float64) (*imgarray.Array, error) {
	start := time.Now()
	if img.Type == imgarray.TypeBool {
		return nil, fmt.Errorf("contrast stretch: expected numeric input, got %s", img.Type)
	}
	values := img.Flat64()
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	lo := stat.Quantile(lowPct/100, stat.LinInterp, sorted, nil)
	hi := stat.Quantile(highPct/100, stat.LinInterp, sorted, nil)
	if hi <= lo {
		return nil, fmt.Errorf("contrast stretch: degenerate percentile range [%g, %g]", lo, hi)
	}

	var result *imgarray.Array
	if img.Type == imgarray.TypeUint8 {
		result = imgarray.NewUint8(img.Height, img.Width, img.Channels)
		for i, v := range values {
			result.U8[i] = truncGray(clamp01((v-lo)/(hi-lo)) * 255)
		}
	} else {
		result = imgarray.NewFloat(img.Height, img.Width, img.Channels)
		for i, v := range values {
			result.F64[i] = clamp01((v - lo) / (hi - lo))
		}
	}
	p.report(result, "Contrast Stretch", start)
	return result, nil
}

// HistEqualize flattens the cumulative intensity distribution over nbins.
// An 8-bit input requested with nbins other than 256 is renormalized to
// the unit float domain first so the bin count takes effect instead of
// collapsing onto the 256 quantized levels. The equalized values live in
// [0,1]; OutputUint8 scales them back by truncation.
func (p *Processor) HistEqualize(img *imgarray.Array, nbins int, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	if img.Type == imgarray.TypeBool {
		return nil, fmt.Errorf("hist equalize: expected numeric input, got %s", img.Type)
	}
	if out == imgarray.OutputBool {
		return nil, fmt.Errorf("hist equalize: output type must be uint8 or float")
	}
	if nbins <= 0 {
		return nil, fmt.Errorf("hist equalize: bin count must be positive, got %d", nbins)
	}

	work := img
	if img.Type == imgarray.TypeUint8 && nbins != 256 {
		work = imgarray.ToUnitFloat(img)
	}
	values := work.Flat64()
	lo, hi := minMax(values)

	equalized := imgarray.NewFloat(img.Height, img.Width, img.Channels)
	if lo == hi {
		// A constant image is already fully equalized; its CDF is 1.
		for i := range equalized.F64 {
			equalized.F64[i] = 1
		}
	} else {
		width := (hi - lo) / float64(nbins)
		hist := make([]float64, nbins)
		for _, v := range values {
			b := int((v - lo) / width)
			if b >= nbins {
				b = nbins - 1
			}
			hist[b]++
		}
		centers := make([]float64, nbins)
		cdf := make([]float64, nbins)
		cum := 0.0
		total := float64(len(values))
		for i := range hist {
			cum += hist[i]
			cdf[i] = cum / total
			centers[i] = lo + (float64(i)+0.5)*width
		}
		for i, v := range values {
			equalized.F64[i] = interp(v, centers, cdf)
		}
	}

	result := equalized
	if out == imgarray.OutputUint8 {
		result = imgarray.ScaleToUint8(equalized)
	}
	p.report(result, "Hist Equalization", start)
	return result, nil
}

// AdaptiveEqualize runs contrast-limited adaptive histogram equalization
// (CLAHE): tile-local equalization with per-tile amplification bounded by
// the clip limit, given as a fraction of the tile pixel count.
func (p *Processor) AdaptiveEqualize(img *imgarray.Array, nbins int, clipLimit float64, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	if err := requireGray8(img, "adaptive equalize"); err != nil {
		return nil, err
	}
	if out == imgarray.OutputBool {
		return nil, fmt.Errorf("adaptive equalize: output type must be uint8 or float")
	}
	if nbins <= 0 {
		return nil, fmt.Errorf("adaptive equalize: bin count must be positive, got %d", nbins)
	}

	src, err := img.ToMat()
	if err != nil {
		return nil, fmt.Errorf("adaptive equalize: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	// OpenCV expresses the clip limit as a multiple of the uniform bin
	// height rather than a fraction of the tile area.
	clahe := gocv.NewCLAHEWithParams(clipLimit*float64(nbins), image.Pt(8, 8))
	defer clahe.Close()
	clahe.Apply(src, &dst)

	equalized, err := imgarray.FromMat(dst)
	if err != nil {
		return nil, fmt.Errorf("adaptive equalize: %w", err)
	}

	result := equalized
	if out == imgarray.OutputFloat {
		result = imgarray.ToUnitFloat(equalized)
	}
	p.report(result, "Adapt Equalization", start)
	return result, nil
}

// LocalEqualize performs rank-based histogram equalization over a disk
// neighborhood: each pixel maps to its cumulative rank within the window,
// scaled to the 8-bit range. Single-channel input only.
func (p *Processor) LocalEqualize(img *imgarray.Array, radius int) (*imgarray.Array, error) {
	start := time.Now()
	if err := requireGray8(img, "local equalize"); err != nil {
		return nil, err
	}
	offs, err := diskOffsets(radius)
	if err != nil {
		return nil, fmt.Errorf("local equalize: %w", err)
	}

	result := imgarray.NewUint8(img.Height, img.Width, 1)
	forEachWindow(img, offs, func(idx int, center uint8, hist *[256]int, count int) {
		rank := 0
		for v := 0; v <= int(center); v++ {
			rank += hist[v]
		}
		result.U8[idx] = uint8(rank * 255 / count)
	})
	p.report(result, "Local Equalization", start)
	return result, nil
}

// Autolevel stretches each pixel against its disk neighborhood's min/max,
// then keeps the comparison original > filtered: the result is an
// edge-like binary signal, not the stretched intensity.
func (p *Processor) Autolevel(img *imgarray.Array, radius int, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	if err := requireGray8(img, "autolevel"); err != nil {
		return nil, err
	}
	offs, err := diskOffsets(radius)
	if err != nil {
		return nil, fmt.Errorf("autolevel: %w", err)
	}

	mask := make([]bool, img.Height*img.Width)
	forEachWindow(img, offs, func(idx int, center uint8, hist *[256]int, count int) {
		lo, hi := -1, 0
		for v := 0; v < 256; v++ {
			if hist[v] > 0 {
				if lo < 0 {
					lo = v
				}
				hi = v
			}
		}
		filtered := 0
		if hi > lo {
			filtered = (int(center) - lo) * 255 / (hi - lo)
		}
		mask[idx] = int(center) > filtered
	})
	result := imgarray.FromMask(mask, img.Height, img.Width, out)
	p.report(result, "Auto Level", start)
	return result, nil
}

// SubtractMean compares each pixel against the mean of its square
// neighborhood, marking local brightness anomalies.
func (p *Processor) SubtractMean(img *imgarray.Array, neighborhood int, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	if err := requireGray8(img, "subtract mean"); err != nil {
		return nil, err
	}
	offs, err := squareOffsets(neighborhood)
	if err != nil {
		return nil, fmt.Errorf("subtract mean: %w", err)
	}

	mask := make([]bool, img.Height*img.Width)
	forEachWindow(img, offs, func(idx int, center uint8, hist *[256]int, count int) {
		sum := 0
		for v, c := range hist {
			sum += v * c
		}
		mask[idx] = float64(center) > float64(sum)/float64(count)
	})
	result := imgarray.FromMask(mask, img.Height, img.Width, out)
	p.report(result, "Subtract Mean", start)
	return result, nil
}

// Modal replaces each pixel with the most frequent value in its square
// neighborhood; ties resolve to the lowest value. The filtered intensity
// is returned directly, without thresholding.
func (p *Processor) Modal(img *imgarray.Array, neighborhood int) (*imgarray.Array, error) {
	start := time.Now()
	if err := requireGray8(img, "modal"); err != nil {
		return nil, err
	}
	offs, err := squareOffsets(neighborhood)
	if err != nil {
		return nil, fmt.Errorf("modal: %w", err)
	}

	result := imgarray.NewUint8(img.Height, img.Width, 1)
	forEachWindow(img, offs, func(idx int, _ uint8, hist *[256]int, count int) {
		mode, best := 0, 0
		for v, c := range hist {
			if c > best {
				mode, best = v, c
			}
		}
		result.U8[idx] = uint8(mode)
	})
	p.report(result, "Modal", start)
	return result, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// interp linearly interpolates y(x) over the sorted xs, clamping outside
// the range.
func interp(x float64, xs, ys []float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	n := len(xs)
	if x >= xs[n-1] {
		return ys[n-1]
	}
	i := sort.SearchFloat64s(xs, x)
	if xs[i] == x {
		return ys[i]
	}
	t := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + t*(ys[i]-ys[i-1])
}
