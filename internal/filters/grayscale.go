package filters

import (
	"fmt"
	"time"

	"slideprep/internal/imgarray"
)

// Perceptual luminance weights. Another common choice is
// [0.299, 0.587, 0.114].
var luminanceWeights = [3]float64{0.2125, 0.7154, 0.0721}

// Grayscale reduces an RGB array of shape (h, w, 3) to (h, w) by a
// per-pixel dot product with the luminance weights. OutputFloat keeps the
// continuous value; OutputUint8 truncates it, which shifts results down by
// up to one intensity step relative to rounding.
func (p *Processor) Grayscale(rgb *imgarray.Array, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	if rgb.Channels != 3 {
		return nil, fmt.Errorf("grayscale: expected RGB input, got %d channels", rgb.Channels)
	}
	if out == imgarray.OutputBool {
		return nil, fmt.Errorf("grayscale: output type must be uint8 or float")
	}

	n := rgb.Height * rgb.Width
	lum := make([]float64, n)
	switch rgb.Type {
	case imgarray.TypeUint8:
		for i := 0; i < n; i++ {
			lum[i] = luminanceWeights[0]*float64(rgb.U8[i*3]) +
				luminanceWeights[1]*float64(rgb.U8[i*3+1]) +
				luminanceWeights[2]*float64(rgb.U8[i*3+2])
		}
	case imgarray.TypeFloat:
		for i := 0; i < n; i++ {
			lum[i] = luminanceWeights[0]*rgb.F64[i*3] +
				luminanceWeights[1]*rgb.F64[i*3+1] +
				luminanceWeights[2]*rgb.F64[i*3+2]
		}
	default:
		return nil, fmt.Errorf("grayscale: expected numeric input, got %s", rgb.Type)
	}

	var result *imgarray.Array
	if out == imgarray.OutputFloat {
		result = imgarray.NewFloat(rgb.Height, rgb.Width, 1)
		copy(result.F64, lum)
	} else {
		result = imgarray.NewUint8(rgb.Height, rgb.Width, 1)
		for i, v := range lum {
			result.U8[i] = truncGray(v)
		}
	}
	p.report(result, "Gray", start)
	return result, nil
}

// Complement inverts an image elementwise: 255-x in the 8-bit domain,
// 1-x in the float domain. The input must already live in the requested
// domain; no rescaling is applied.
func (p *Processor) Complement(img *imgarray.Array, out imgarray.OutputType) (*imgarray.Array, error) {
	start := time.Now()
	var result *imgarray.Array
	switch out {
	case imgarray.OutputFloat:
		if img.Type != imgarray.TypeFloat {
			return nil, fmt.Errorf("complement: float output requires float input, got %s", img.Type)
		}
		result = imgarray.NewFloat(img.Height, img.Width, img.Channels)
		for i, v := range img.F64 {
			result.F64[i] = 1 - v
		}
	case imgarray.OutputUint8:
		if img.Type != imgarray.TypeUint8 {
			return nil, fmt.Errorf("complement: uint8 output requires uint8 input, got %s", img.Type)
		}
		result = imgarray.NewUint8(img.Height, img.Width, img.Channels)
		for i, v := range img.U8 {
			result.U8[i] = 255 - v
		}
	default:
		return nil, fmt.Errorf("complement: output type must be uint8 or float")
	}
	p.report(result, "Complement", start)
	return result, nil
}

// truncGray truncates a raw luminance value into the uint8 range without
// scaling.
func truncGray(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
