// Command slideprep runs the tissue-separation filter pipeline over one
// cached slide thumbnail and reports per-stage diagnostics. Results are
// not persisted; this driver exists to exercise the pipeline and inspect
// its statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"slideprep/internal/diag"
	"slideprep/internal/filters"
	"slideprep/internal/imgarray"
	"slideprep/internal/pipeline"
	"slideprep/internal/slide"
)

func main() {
	var (
		thumbDir = flag.String("thumbs", "thumbnails", "directory holding cached slide thumbnails")
		index    = flag.Int("slide", 1, "slide index to process")
		maxDim   = flag.Int("max-dim", 2048, "downsample so the longest image side is at most this")
		plain    = flag.Bool("plain", false, "emit fixed-width diagnostic lines instead of structured logs")
		verbose  = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("interrupt received, cancelling")
		cancel()
	}()

	var observer diag.Observer = diag.NewZerologObserver(log)
	if *plain {
		observer = diag.LineObserver{W: os.Stdout}
	}

	if err := run(ctx, log, observer, *thumbDir, *index, *maxDim); err != nil {
		log.Error().Err(err).Msg("pipeline failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, log zerolog.Logger, observer diag.Observer, thumbDir string, index, maxDim int) error {
	path, err := slide.LocateThumbnail(thumbDir, index)
	if err != nil {
		return err
	}
	img, err := slide.DecodeImage(path)
	if err != nil {
		return err
	}
	img = slide.Downsample(img, maxDim)

	proc := filters.NewProcessor(diag.NewReporter(observer))
	pipe := pipeline.New(log, pipeline.TissueMask(proc)...)
	log.Info().
		Str("thumbnail", path).
		Strs("stages", pipe.StageNames()).
		Msg("running tissue mask pipeline")

	rgb := proc.ToArray(img)
	mask, err := pipe.Run(ctx, rgb)
	if err != nil {
		return err
	}

	log.Info().
		Str("shape", mask.Shape()).
		Str("coverage", fmt.Sprintf("%.2f%%", coverage(mask)*100)).
		Msg("tissue mask computed")
	return nil
}

// coverage reports the foreground fraction of a mask.
func coverage(mask *imgarray.Array) float64 {
	if mask.Len() == 0 {
		return 0
	}
	fg := 0
	for _, v := range imgarray.CoerceBool(mask) {
		if v {
			fg++
		}
	}
	return float64(fg) / float64(mask.Len())
}
