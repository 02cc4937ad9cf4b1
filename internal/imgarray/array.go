// Package imgarray defines the pixel-array representation shared by every
// filter: a single-channel or RGB array tagged with one of three element
// types (uint8, float64, bool), plus the conversions between those domains
// and the adapter to and from decoded image handles.
package imgarray

import "fmt"

// DType identifies the element type of an Array.
type DType uint8

const (
	TypeUint8 DType = iota
	TypeFloat
	TypeBool
)

func (d DType) String() string {
	switch d {
	case TypeUint8:
		return "uint8"
	case TypeFloat:
		return "float64"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("DType(%d)", uint8(d))
	}
}

// Array is a pixel array of shape (Height, Width) when Channels is 1 or
// (Height, Width, 3) when Channels is 3. Exactly one of the data slices is
// populated, matching Type; samples are stored row-major, channels
// interleaved.
type Array struct {
	Height   int
	Width    int
	Channels int
	Type     DType

	U8   []uint8
	F64  []float64
	Bits []bool
}

func NewUint8(height, width, channels int) *Array {
	return &Array{
		Height:   height,
		Width:    width,
		Channels: channels,
		Type:     TypeUint8,
		U8:       make([]uint8, height*width*channels),
	}
}

func NewFloat(height, width, channels int) *Array {
	return &Array{
		Height:   height,
		Width:    width,
		Channels: channels,
		Type:     TypeFloat,
		F64:      make([]float64, height*width*channels),
	}
}

func NewBool(height, width int) *Array {
	return &Array{
		Height:   height,
		Width:    width,
		Channels: 1,
		Type:     TypeBool,
		Bits:     make([]bool, height*width),
	}
}

// Len reports the number of samples across all channels.
func (a *Array) Len() int {
	return a.Height * a.Width * a.Channels
}

// Shape renders the logical shape, without the channel axis for
// single-channel arrays.
func (a *Array) Shape() string {
	if a.Channels == 1 {
		return fmt.Sprintf("(%d, %d)", a.Height, a.Width)
	}
	return fmt.Sprintf("(%d, %d, %d)", a.Height, a.Width, a.Channels)
}

func (a *Array) Clone() *Array {
	out := &Array{
		Height:   a.Height,
		Width:    a.Width,
		Channels: a.Channels,
		Type:     a.Type,
	}
	switch a.Type {
	case TypeUint8:
		out.U8 = append([]uint8(nil), a.U8...)
	case TypeFloat:
		out.F64 = append([]float64(nil), a.F64...)
	case TypeBool:
		out.Bits = append([]bool(nil), a.Bits...)
	}
	return out
}

// Flat64 returns all samples cast to float64, booleans as 0/1. Used by the
// diagnostic reporter, which computes its statistics over the flattened
// array regardless of shape.
func (a *Array) Flat64() []float64 {
	out := make([]float64, a.Len())
	switch a.Type {
	case TypeUint8:
		for i, v := range a.U8 {
			out[i] = float64(v)
		}
	case TypeFloat:
		copy(out, a.F64)
	case TypeBool:
		for i, v := range a.Bits {
			if v {
				out[i] = 1
			}
		}
	}
	return out
}
