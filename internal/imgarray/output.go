package imgarray

import "fmt"

// OutputType selects the concrete representation of a foreground/background
// result. The mapping is identical for every transform that produces one:
// bool true, float 1.0 and uint8 255 all mean foreground.
//
// The zero value is OutputUint8, the default representation.
type OutputType uint8

const (
	OutputUint8 OutputType = iota
	OutputFloat
	OutputBool
)

func (t OutputType) String() string {
	switch t {
	case OutputUint8:
		return "uint8"
	case OutputFloat:
		return "float"
	case OutputBool:
		return "bool"
	default:
		return fmt.Sprintf("OutputType(%d)", uint8(t))
	}
}

// ParseOutputType maps a selector string to an OutputType. Anything other
// than the three recognized selectors is an error; there is no silent
// fallback.
func ParseOutputType(s string) (OutputType, error) {
	switch s {
	case "uint8":
		return OutputUint8, nil
	case "float":
		return OutputFloat, nil
	case "bool":
		return OutputBool, nil
	default:
		return OutputUint8, fmt.Errorf("unknown output type %q (want bool, float or uint8)", s)
	}
}

// FromMask materializes a boolean foreground mask in the requested
// representation.
func FromMask(mask []bool, height, width int, t OutputType) *Array {
	switch t {
	case OutputBool:
		out := NewBool(height, width)
		copy(out.Bits, mask)
		return out
	case OutputFloat:
		out := NewFloat(height, width, 1)
		for i, v := range mask {
			if v {
				out.F64[i] = 1
			}
		}
		return out
	default:
		out := NewUint8(height, width, 1)
		for i, v := range mask {
			if v {
				out.U8[i] = 255
			}
		}
		return out
	}
}
