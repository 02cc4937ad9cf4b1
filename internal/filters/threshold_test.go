package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slideprep/internal/imgarray"
)

func newGray(t *testing.T, h, w int, values ...uint8) *imgarray.Array {
	t.Helper()
	a := imgarray.NewUint8(h, w, 1)
	require.Len(t, values, h*w)
	copy(a.U8, values)
	return a
}

// assertPolicyDomain checks the output normalization invariant: bool
// arrays are boolean, float arrays contain only {0,1}, uint8 arrays only
// {0,255}.
func assertPolicyDomain(t *testing.T, a *imgarray.Array, out imgarray.OutputType) {
	t.Helper()
	switch out {
	case imgarray.OutputBool:
		require.Equal(t, imgarray.TypeBool, a.Type)
	case imgarray.OutputFloat:
		require.Equal(t, imgarray.TypeFloat, a.Type)
		for _, v := range a.F64 {
			assert.Contains(t, []float64{0, 1}, v)
		}
	case imgarray.OutputUint8:
		require.Equal(t, imgarray.TypeUint8, a.Type)
		for _, v := range a.U8 {
			assert.Contains(t, []uint8{0, 255}, v)
		}
	}
}

func TestOtsuThreshold_BimodalSplit(t *testing.T) {
	p := NewProcessor(nil)
	img := newGray(t, 2, 4,
		10, 10, 240, 240,
		240, 10, 10, 240,
	)
	mask, err := p.OtsuThreshold(img, imgarray.OutputBool)
	require.NoError(t, err)
	want := []bool{false, false, true, true, true, false, false, true}
	assert.Equal(t, want, mask.Bits)
}

func TestOtsuThreshold_OutputPolicy(t *testing.T) {
	p := NewProcessor(nil)
	img := newGray(t, 2, 2, 10, 10, 240, 240)
	for _, out := range []imgarray.OutputType{imgarray.OutputBool, imgarray.OutputFloat, imgarray.OutputUint8} {
		mask, err := p.OtsuThreshold(img, out)
		require.NoError(t, err)
		assertPolicyDomain(t, mask, out)
	}
}

func TestOtsuThreshold_ConstantImageFails(t *testing.T) {
	p := NewProcessor(nil)
	img := newGray(t, 2, 2, 50, 50, 50, 50)
	_, err := p.OtsuThreshold(img, imgarray.OutputUint8)
	assert.Error(t, err)
}

func TestOtsuThreshold_FloatInput(t *testing.T) {
	p := NewProcessor(nil)
	img := imgarray.NewFloat(1, 4, 1)
	copy(img.F64, []float64{0.1, 0.1, 0.9, 0.9})
	mask, err := p.OtsuThreshold(img, imgarray.OutputBool)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true, true}, mask.Bits)
}

func TestHysteresisThreshold_WeakRegionNeedsStrongSeed(t *testing.T) {
	p := NewProcessor(nil)
	// One above-low run containing an above-high pixel, one without.
	img := newGray(t, 1, 6, 0, 60, 120, 60, 0, 60)
	mask, err := p.HysteresisThreshold(img, 50, 100, imgarray.OutputBool)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true, true, false, false}, mask.Bits)
}

func TestHysteresisThreshold_OutputPolicy(t *testing.T) {
	p := NewProcessor(nil)
	img := newGray(t, 1, 4, 0, 60, 120, 0)
	for _, out := range []imgarray.OutputType{imgarray.OutputBool, imgarray.OutputFloat, imgarray.OutputUint8} {
		mask, err := p.HysteresisThreshold(img, 50, 100, out)
		require.NoError(t, err)
		assertPolicyDomain(t, mask, out)
	}
}

func TestHysteresisThreshold_LowAboveHigh(t *testing.T) {
	p := NewProcessor(nil)
	// With low > high the result stays a subset of the above-low mask:
	// 80 exceeds high but not low, so it is background.
	img := newGray(t, 1, 2, 80, 120)
	mask, err := p.HysteresisThreshold(img, 100, 50, imgarray.OutputBool)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, mask.Bits)
}

func TestLocalOtsuThreshold_InvertedComparison(t *testing.T) {
	p := NewProcessor(nil)
	img := newGray(t, 2, 2, 10, 240, 10, 240)
	local, err := p.LocalOtsuThreshold(img, 3, imgarray.OutputBool)
	require.NoError(t, err)
	global, err := p.OtsuThreshold(img, imgarray.OutputBool)
	require.NoError(t, err)
	for i := range local.Bits {
		assert.NotEqual(t, global.Bits[i], local.Bits[i],
			"local Otsu foreground must be the dark side, opposite the global direction")
	}
}

func TestLocalOtsuThreshold_UniformWindowIsForeground(t *testing.T) {
	p := NewProcessor(nil)
	img := newGray(t, 2, 2, 77, 77, 77, 77)
	mask, err := p.LocalOtsuThreshold(img, 2, imgarray.OutputBool)
	require.NoError(t, err)
	for _, v := range mask.Bits {
		assert.True(t, v)
	}
}

func TestLocalOtsuThreshold_OutputPolicy(t *testing.T) {
	p := NewProcessor(nil)
	img := newGray(t, 2, 2, 10, 240, 10, 240)
	for _, out := range []imgarray.OutputType{imgarray.OutputBool, imgarray.OutputFloat, imgarray.OutputUint8} {
		mask, err := p.LocalOtsuThreshold(img, 3, out)
		require.NoError(t, err)
		assertPolicyDomain(t, mask, out)
	}
}

func TestLocalOtsuThreshold_RejectsNonPositiveRadius(t *testing.T) {
	p := NewProcessor(nil)
	_, err := p.LocalOtsuThreshold(newGray(t, 1, 1, 0), 0, imgarray.OutputUint8)
	assert.Error(t, err)
}

func TestEntropy_UniformImageHasNoComplexity(t *testing.T) {
	p := NewProcessor(nil)
	img := newGray(t, 3, 3, 7, 7, 7, 7, 7, 7, 7, 7, 7)
	mask, err := p.Entropy(img, 3, 0.5, imgarray.OutputBool)
	require.NoError(t, err)
	for _, v := range mask.Bits {
		assert.False(t, v)
	}
}

func TestEntropy_CheckerboardIsComplexEverywhere(t *testing.T) {
	p := NewProcessor(nil)
	img := imgarray.NewUint8(4, 4, 1)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if (x+y)%2 == 0 {
				img.U8[y*4+x] = 255
			}
		}
	}
	mask, err := p.Entropy(img, 3, 0.5, imgarray.OutputBool)
	require.NoError(t, err)
	for _, v := range mask.Bits {
		assert.True(t, v)
	}
}

func TestEntropy_OutputPolicy(t *testing.T) {
	p := NewProcessor(nil)
	img := newGray(t, 2, 2, 0, 255, 255, 0)
	for _, out := range []imgarray.OutputType{imgarray.OutputBool, imgarray.OutputFloat, imgarray.OutputUint8} {
		mask, err := p.Entropy(img, 3, 0.5, out)
		require.NoError(t, err)
		assertPolicyDomain(t, mask, out)
	}
}

func TestEntropy_RejectsNonPositiveNeighborhood(t *testing.T) {
	p := NewProcessor(nil)
	_, err := p.Entropy(newGray(t, 1, 1, 0), 0, 5, imgarray.OutputUint8)
	assert.Error(t, err)
}

func TestCanny_StepEdge(t *testing.T) {
	p := NewProcessor(nil)
	img := imgarray.NewUint8(8, 8, 1)
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			img.U8[y*8+x] = 255
		}
	}
	edges, err := p.Canny(img, DefaultCannySigma, DefaultCannyLow, DefaultCannyHigh, imgarray.OutputBool)
	require.NoError(t, err)
	assert.Equal(t, "(8, 8)", edges.Shape())
	found := false
	for _, v := range edges.Bits {
		found = found || v
	}
	assert.True(t, found, "a step edge must produce edge pixels")
}

func TestCanny_OutputPolicy(t *testing.T) {
	p := NewProcessor(nil)
	img := imgarray.NewUint8(8, 8, 1)
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			img.U8[y*8+x] = 255
		}
	}
	for _, out := range []imgarray.OutputType{imgarray.OutputBool, imgarray.OutputFloat, imgarray.OutputUint8} {
		edges, err := p.Canny(img, 1, 0, 25, out)
		require.NoError(t, err)
		assertPolicyDomain(t, edges, out)
	}
}
