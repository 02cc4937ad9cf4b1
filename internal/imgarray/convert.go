package imgarray

// Domain conversions live here so that every filter shares a single
// rounding behavior: uint8 results are always produced by truncation,
// never by rounding to nearest.

// ToUnitFloat converts an array to the float domain: uint8 samples map to
// v/255, booleans to 0/1, floats are copied unchanged.
func ToUnitFloat(a *Array) *Array {
	out := NewFloat(a.Height, a.Width, a.Channels)
	switch a.Type {
	case TypeUint8:
		for i, v := range a.U8 {
			out.F64[i] = float64(v) / 255
		}
	case TypeFloat:
		copy(out.F64, a.F64)
	case TypeBool:
		for i, v := range a.Bits {
			if v {
				out.F64[i] = 1
			}
		}
	}
	return out
}

// ScaleToUint8 converts an array to the 8-bit domain. Float samples are
// assumed to lie in [0,1] and are scaled by 255 then truncated; values
// outside the range are clamped. Booleans map to 0/255, uint8 is copied.
func ScaleToUint8(a *Array) *Array {
	out := NewUint8(a.Height, a.Width, a.Channels)
	switch a.Type {
	case TypeUint8:
		copy(out.U8, a.U8)
	case TypeFloat:
		for i, v := range a.F64 {
			out.U8[i] = truncByte(v * 255)
		}
	case TypeBool:
		for i, v := range a.Bits {
			if v {
				out.U8[i] = 255
			}
		}
	}
	return out
}

// CoerceBool reduces a single-channel array to a boolean mask: any nonzero
// sample is foreground.
func CoerceBool(a *Array) []bool {
	mask := make([]bool, a.Height*a.Width)
	switch a.Type {
	case TypeUint8:
		for i, v := range a.U8 {
			mask[i] = v != 0
		}
	case TypeFloat:
		for i, v := range a.F64 {
			mask[i] = v != 0
		}
	case TypeBool:
		copy(mask, a.Bits)
	}
	return mask
}

// truncByte truncates a float toward zero into the uint8 range.
func truncByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
