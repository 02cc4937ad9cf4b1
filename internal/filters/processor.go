// Package filters implements the slide preprocessing transforms: grayscale
// reduction and complement, the threshold family, small-object removal and
// the contrast-enhancement family. Every transform is pure with respect to
// its inputs and reports one diagnostic record per invocation.
package filters

import (
	"fmt"
	"image"
	"time"

	"slideprep/internal/diag"
	"slideprep/internal/imgarray"
)

// Default parameters for the transforms as used by the tissue-mask
// pipeline.
const (
	DefaultHysteresisLow       = 50.0
	DefaultHysteresisHigh      = 100.0
	DefaultLocalOtsuRadius     = 3
	DefaultEntropyNeighborhood = 9
	DefaultEntropyThreshold    = 5.0
	DefaultCannySigma          = 1.0
	DefaultCannyLow            = 0.0
	DefaultCannyHigh           = 25.0
	DefaultMinObjectSize       = 3000
	DefaultStretchLow          = 40.0
	DefaultStretchHigh         = 60.0
	DefaultEqualizeBins        = 256
	DefaultClipLimit           = 0.01
	DefaultLocalEqualizeRadius = 50
	DefaultAutolevelRadius     = 1
	DefaultMeanNeighborhood    = 50
	DefaultModalNeighborhood   = 50
)

// Processor bundles the transforms with the diagnostic reporter they all
// invoke. It carries no other state; methods are safe for concurrent use
// as long as the reporter's observer is.
type Processor struct {
	rep *diag.Reporter
}

func NewProcessor(rep *diag.Reporter) *Processor {
	return &Processor{rep: rep}
}

// ToArray reinterprets a decoded image handle as an RGB array and reports
// the conversion.
func (p *Processor) ToArray(img image.Image) *imgarray.Array {
	start := time.Now()
	arr := imgarray.FromImage(img)
	p.rep.ReportTimed(arr, "RGB", time.Since(start))
	return arr
}

// ToHandle converts an array back into an image handle for display. No
// diagnostic is emitted.
func (p *Processor) ToHandle(a *imgarray.Array) (image.Image, error) {
	return a.ToImage()
}

func (p *Processor) report(a *imgarray.Array, label string, start time.Time) {
	p.rep.ReportTimed(a, label, time.Since(start))
}

func requireGray8(a *imgarray.Array, op string) error {
	if a.Channels != 1 {
		return fmt.Errorf("%s: expected single-channel input, got %d channels", op, a.Channels)
	}
	if a.Type != imgarray.TypeUint8 {
		return fmt.Errorf("%s: expected uint8 input, got %s", op, a.Type)
	}
	return nil
}

// rawValues returns single-channel samples as float64 without domain
// conversion: uint8 stays 0..255, floats stay as-is.
func rawValues(a *imgarray.Array, op string) ([]float64, error) {
	if a.Channels != 1 {
		return nil, fmt.Errorf("%s: expected single-channel input, got %d channels", op, a.Channels)
	}
	switch a.Type {
	case imgarray.TypeUint8:
		out := make([]float64, len(a.U8))
		for i, v := range a.U8 {
			out[i] = float64(v)
		}
		return out, nil
	case imgarray.TypeFloat:
		return append([]float64(nil), a.F64...), nil
	default:
		return nil, fmt.Errorf("%s: expected numeric input, got %s", op, a.Type)
	}
}
