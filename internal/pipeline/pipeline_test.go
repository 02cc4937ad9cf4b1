package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slideprep/internal/filters"
	"slideprep/internal/imgarray"
)

func passthrough(name string, trace *[]string) Stage {
	return Stage{
		Name: name,
		Apply: func(_ context.Context, in *imgarray.Array) (*imgarray.Array, error) {
			*trace = append(*trace, name)
			return in, nil
		},
	}
}

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	var trace []string
	pipe := New(zerolog.Nop(),
		passthrough("first", &trace),
		passthrough("second", &trace),
		passthrough("third", &trace),
	)
	_, err := pipe.Run(context.Background(), imgarray.NewUint8(1, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, trace)
}

func TestPipeline_WrapsStageErrors(t *testing.T) {
	boom := errors.New("boom")
	pipe := New(zerolog.Nop(), Stage{
		Name: "exploding",
		Apply: func(_ context.Context, _ *imgarray.Array) (*imgarray.Array, error) {
			return nil, boom
		},
	})
	_, err := pipe.Run(context.Background(), imgarray.NewUint8(1, 1, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage exploding")
}

func TestPipeline_StopsOnCancelledContext(t *testing.T) {
	var trace []string
	pipe := New(zerolog.Nop(), passthrough("never", &trace))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pipe.Run(ctx, imgarray.NewUint8(1, 1, 1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, trace)
}

func TestPipeline_StageNames(t *testing.T) {
	var trace []string
	pipe := New(zerolog.Nop(), passthrough("a", &trace), passthrough("b", &trace))
	assert.Equal(t, []string{"a", "b"}, pipe.StageNames())
}

func TestTissueMask_StageList(t *testing.T) {
	stages := TissueMask(filters.NewProcessor(nil))
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"grayscale", "complement", "hysteresis-threshold", "remove-small-objects"}, names)
}

func TestTissueMask_EndToEnd(t *testing.T) {
	// A thumbnail-like image: white background with one dark tissue-ish
	// region big enough to survive the size filter.
	h, w := 64, 64
	rgb := imgarray.NewUint8(h, w, 3)
	for i := 0; i < h*w; i++ {
		rgb.U8[i*3], rgb.U8[i*3+1], rgb.U8[i*3+2] = 255, 255, 255
	}
	markDark := func(y, x int) {
		i := (y*w + x) * 3
		rgb.U8[i], rgb.U8[i+1], rgb.U8[i+2] = 40, 30, 50
	}
	for y := 8; y < 18; y++ {
		for x := 8; x < 18; x++ {
			markDark(y, x)
		}
	}

	proc := filters.NewProcessor(nil)
	pipe := New(zerolog.Nop(), TissueMask(proc)...)
	mask, err := pipe.Run(context.Background(), rgb)
	require.NoError(t, err)
	require.Equal(t, imgarray.TypeUint8, mask.Type)
	require.Equal(t, "(64, 64)", mask.Shape())

	// The dark region is 100 pixels, below the 3000-pixel minimum, so
	// the default pipeline wipes it: this thumbnail holds no tissue.
	for _, v := range mask.U8 {
		assert.Equal(t, uint8(0), v)
	}
}
