// Package pipeline executes an ordered, declarative list of named filter
// stages over a pixel array. The stage list is plain data bound to filter
// parameters up front, so a caller can inspect or reorder it before
// running anything.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"slideprep/internal/filters"
	"slideprep/internal/imgarray"
)

// Stage is one named transform with its parameters already bound.
type Stage struct {
	Name  string
	Apply func(ctx context.Context, in *imgarray.Array) (*imgarray.Array, error)
}

type Pipeline struct {
	stages []Stage
	log    zerolog.Logger
}

func New(log zerolog.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, log: log}
}

// Run feeds the input through every stage in order. Stages never mutate
// their input, so the caller's array survives a failed run unchanged.
func (p *Pipeline) Run(ctx context.Context, in *imgarray.Array) (*imgarray.Array, error) {
	current := in
	for _, stage := range p.stages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		start := time.Now()
		out, err := stage.Apply(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		p.log.Debug().
			Str("stage", stage.Name).
			Dur("elapsed", time.Since(start)).
			Str("shape", out.Shape()).
			Str("dtype", out.Type.String()).
			Msg("stage completed")
		current = out
	}
	return current, nil
}

func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name
	}
	return names
}

// TissueMask is the canonical stage list for separating tissue from
// background: luminance reduction, inversion so tissue is bright,
// hysteresis thresholding, then small-object cleanup.
func TissueMask(proc *filters.Processor) []Stage {
	return []Stage{
		{
			Name: "grayscale",
			Apply: func(_ context.Context, in *imgarray.Array) (*imgarray.Array, error) {
				return proc.Grayscale(in, imgarray.OutputUint8)
			},
		},
		{
			Name: "complement",
			Apply: func(_ context.Context, in *imgarray.Array) (*imgarray.Array, error) {
				return proc.Complement(in, imgarray.OutputUint8)
			},
		},
		{
			Name: "hysteresis-threshold",
			Apply: func(_ context.Context, in *imgarray.Array) (*imgarray.Array, error) {
				return proc.HysteresisThreshold(in, filters.DefaultHysteresisLow, filters.DefaultHysteresisHigh, imgarray.OutputUint8)
			},
		},
		{
			Name: "remove-small-objects",
			Apply: func(_ context.Context, in *imgarray.Array) (*imgarray.Array, error) {
				return proc.RemoveSmallObjects(in, filters.DefaultMinObjectSize, imgarray.OutputUint8)
			},
		},
	}
}
