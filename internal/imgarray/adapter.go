package imgarray

import (
	"fmt"
	"image"
	"image/color"
)

// FromImage reinterprets a decoded image as an RGB array of shape
// (h, w, 3). The conversion is lossless for opaque images; alpha is
// discarded.
func FromImage(img image.Image) *Array {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := NewUint8(h, w, 3)

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
			dst := out.U8[y*w*3 : (y+1)*w*3]
			for x := 0; x < w; x++ {
				dst[x*3+0] = src[x*4+0]
				dst[x*3+1] = src[x*4+1]
				dst[x*3+2] = src[x*4+2]
			}
		}
		return out
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := (y*w + x) * 3
			out.U8[i+0] = c.R
			out.U8[i+1] = c.G
			out.U8[i+2] = c.B
		}
	}
	return out
}

// ToImage converts an array back into an image handle for display. The
// inverse of FromImage is exact: round-tripping an opaque handle yields
// pixel-identical data. Float samples are assumed to lie in [0,1] and are
// scaled by truncation; booleans render as 0/255.
func (a *Array) ToImage() (image.Image, error) {
	switch {
	case a.Channels == 3 && a.Type != TypeBool:
		u8 := ScaleToUint8(a)
		img := image.NewNRGBA(image.Rect(0, 0, a.Width, a.Height))
		for y := 0; y < a.Height; y++ {
			for x := 0; x < a.Width; x++ {
				i := (y*a.Width + x) * 3
				img.SetNRGBA(x, y, color.NRGBA{R: u8.U8[i], G: u8.U8[i+1], B: u8.U8[i+2], A: 255})
			}
		}
		return img, nil
	case a.Channels == 1:
		u8 := ScaleToUint8(a)
		img := image.NewGray(image.Rect(0, 0, a.Width, a.Height))
		for y := 0; y < a.Height; y++ {
			for x := 0; x < a.Width; x++ {
				img.SetGray(x, y, color.Gray{Y: u8.U8[y*a.Width+x]})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("cannot render %s array with %d channels", a.Type, a.Channels)
	}
}
