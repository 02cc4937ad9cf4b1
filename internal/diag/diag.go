// Package diag computes and publishes per-filter diagnostic records: the
// summary statistics of an array together with the label and elapsed time
// of the transform that produced it. Rendering is delegated to an Observer
// so callers decide between human-readable lines and structured logs.
package diag

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"slideprep/internal/imgarray"
)

// Record is the ephemeral diagnostic tuple emitted after each transform.
// It is never stored; observers render it and drop it.
type Record struct {
	Label   string
	Elapsed time.Duration
	Timed   bool
	Max     float64
	Min     float64
	Mean    float64
	Std     float64
	DType   string
	Shape   string
}

// Observer receives each Record. Implementations must not retain it.
type Observer interface {
	Observe(Record)
}

// LineObserver renders records in the fixed-width single-line format.
type LineObserver struct {
	W io.Writer
}

func (o LineObserver) Observe(r Record) {
	elapsed := "---"
	if r.Timed {
		elapsed = r.Elapsed.String()
	}
	fmt.Fprintf(o.W, "%-20s | Time: %-14s Max: %6.2f  Min: %6.2f  Mean: %6.2f  Std: %6.2f Type: %-6s Shape: %s\n",
		r.Label, elapsed, r.Max, r.Min, r.Mean, r.Std, r.DType, r.Shape)
}

// ZerologObserver emits records as structured log events.
type ZerologObserver struct {
	log zerolog.Logger
}

func NewZerologObserver(log zerolog.Logger) ZerologObserver {
	return ZerologObserver{log: log}
}

func (o ZerologObserver) Observe(r Record) {
	event := o.log.Info().
		Str("label", r.Label).
		Float64("max", r.Max).
		Float64("min", r.Min).
		Float64("mean", r.Mean).
		Float64("std", r.Std).
		Str("dtype", r.DType).
		Str("shape", r.Shape)
	if r.Timed {
		event = event.Dur("elapsed", r.Elapsed)
	}
	event.Msg("filter diagnostics")
}

// Tee fans a record out to several observers.
func Tee(observers ...Observer) Observer {
	return tee(observers)
}

type tee []Observer

func (t tee) Observe(r Record) {
	for _, o := range t {
		o.Observe(r)
	}
}

// Reporter computes the statistics for an array and hands the record to
// its observer. A nil Reporter is valid and reports nothing.
type Reporter struct {
	obs Observer
}

func NewReporter(obs Observer) *Reporter {
	return &Reporter{obs: obs}
}

// Report emits a record without timing information.
func (r *Reporter) Report(a *imgarray.Array, label string) {
	r.report(a, label, 0, false)
}

// ReportTimed emits a record carrying the elapsed time of the transform.
func (r *Reporter) ReportTimed(a *imgarray.Array, label string, elapsed time.Duration) {
	r.report(a, label, elapsed, true)
}

func (r *Reporter) report(a *imgarray.Array, label string, elapsed time.Duration, timed bool) {
	if r == nil || r.obs == nil || a == nil {
		return
	}
	flat := a.Flat64()
	if len(flat) == 0 {
		// Statistics over an empty array are undefined; skip the record.
		return
	}
	r.obs.Observe(Record{
		Label:   label,
		Elapsed: elapsed,
		Timed:   timed,
		Max:     floats.Max(flat),
		Min:     floats.Min(flat),
		Mean:    stat.Mean(flat, nil),
		Std:     stat.PopStdDev(flat, nil),
		DType:   a.Type.String(),
		Shape:   a.Shape(),
	})
}
