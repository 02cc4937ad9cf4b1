package imgarray

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Bridge to OpenCV Mats for the filters that delegate to gocv. Only the
// 8-bit domain crosses the boundary; callers convert first.

// ToMat copies an 8-bit array into a new Mat. The caller owns the Mat and
// must Close it. Channel order is preserved as stored (RGB), which is
// irrelevant to the grayscale operations routed through OpenCV here.
func (a *Array) ToMat() (gocv.Mat, error) {
	if a.Type != TypeUint8 {
		return gocv.NewMat(), fmt.Errorf("cannot build Mat from %s array", a.Type)
	}
	matType := gocv.MatTypeCV8UC1
	if a.Channels == 3 {
		matType = gocv.MatTypeCV8UC3
	}
	mat, err := gocv.NewMatFromBytes(a.Height, a.Width, matType, a.U8)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("Mat creation failed: %w", err)
	}
	return mat, nil
}

// FromMat copies an 8-bit Mat back into an array.
func FromMat(mat gocv.Mat) (*Array, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("Mat is empty")
	}
	channels := mat.Channels()
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if mat.Type() != gocv.MatTypeCV8UC1 && mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("unsupported Mat type: %d", mat.Type())
	}
	out := NewUint8(mat.Rows(), mat.Cols(), channels)
	copy(out.U8, mat.ToBytes())
	return out, nil
}

// MaskMat renders a boolean mask as a 0/255 single-channel Mat, the form
// OpenCV's connected-component routines expect. The caller must Close it.
func MaskMat(mask []bool, height, width int) (gocv.Mat, error) {
	data := make([]uint8, len(mask))
	for i, v := range mask {
		if v {
			data[i] = 255
		}
	}
	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("mask Mat creation failed: %w", err)
	}
	return mat, nil
}
