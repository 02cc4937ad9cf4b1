package filters

import (
	"fmt"

	"slideprep/internal/imgarray"
)

// Neighborhood machinery shared by the rank filters (local Otsu, entropy,
// local equalization, autolevel, subtract-mean, modal). Windows are clipped
// at the image border: only in-bounds pixels contribute.

type offset struct {
	dy, dx int
}

// diskOffsets enumerates the circular structuring element of the given
// radius: all offsets with dy^2+dx^2 <= r^2, center included.
func diskOffsets(radius int) ([]offset, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("disk radius must be positive, got %d", radius)
	}
	var offs []offset
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dy*dy+dx*dx <= radius*radius {
				offs = append(offs, offset{dy, dx})
			}
		}
	}
	return offs, nil
}

// squareOffsets enumerates a side x side window centered at side/2.
func squareOffsets(side int) ([]offset, error) {
	if side <= 0 {
		return nil, fmt.Errorf("neighborhood side must be positive, got %d", side)
	}
	c := side / 2
	offs := make([]offset, 0, side*side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			offs = append(offs, offset{y - c, x - c})
		}
	}
	return offs, nil
}

// forEachWindow walks a single-channel 8-bit array and calls fn for every
// pixel with the histogram of its clipped neighborhood.
func forEachWindow(a *imgarray.Array, offs []offset, fn func(idx int, center uint8, hist *[256]int, count int)) {
	h, w := a.Height, a.Width
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var hist [256]int
			count := 0
			for _, o := range offs {
				yy, xx := y+o.dy, x+o.dx
				if yy < 0 || yy >= h || xx < 0 || xx >= w {
					continue
				}
				hist[a.U8[yy*w+xx]]++
				count++
			}
			idx := y*w + x
			fn(idx, a.U8[idx], &hist, count)
		}
	}
}
