package morphology

import (
	"fmt"
	"image"
)

// Footprint is a structuring element given as offsets from its origin.
type Footprint struct {
	offsets []image.Point
}

// Cross returns the plus-shaped footprint of the given odd size. Cross(3) is
// the 4-connected 3x3 element.
func Cross(size int) Footprint {
	half := size / 2
	fp := Footprint{}
	for d := -half; d <= half; d++ {
		fp.offsets = append(fp.offsets, image.Pt(d, 0))
		if d != 0 {
			fp.offsets = append(fp.offsets, image.Pt(0, d))
		}
	}
	return fp
}

// Square returns the full size x size footprint
func Square(size int) Footprint {
	half := size / 2
	fp := Footprint{}
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			fp.offsets = append(fp.offsets, image.Pt(dx, dy))
		}
	}
	return fp
}

// NewFootprint resolves a footprint by kind name ("cross" or "square").
func NewFootprint(kind string, size int) (Footprint, error) {
	if size < 1 || size%2 == 0 {
		return Footprint{}, fmt.Errorf("footprint size must be a positive odd number, got %d", size)
	}
	switch kind {
	case "cross":
		return Cross(size), nil
	case "square":
		return Square(size), nil
	default:
		return Footprint{}, fmt.Errorf("unknown footprint kind %q", kind)
	}
}

// Len returns the number of pixels in the footprint
func (f Footprint) Len() int {
	return len(f.offsets)
}

// Dilate sets every pixel reached by the footprint from a set pixel.
// Pixels outside the mask are treated as unset.
func Dilate(m *Mask, fp Footprint) *Mask {
	out := NewMask(m.Rows, m.Cols)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			for _, o := range fp.offsets {
				if m.At(r-o.Y, c-o.X) {
					out.Data[r*m.Cols+c] = true
					break
				}
			}
		}
	}
	return out
}

// Erode keeps pixels whose whole footprint neighbourhood is set.
// Pixels outside the mask are treated as set.
func Erode(m *Mask, fp Footprint) *Mask {
	out := NewMask(m.Rows, m.Cols)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			keep := true
			for _, o := range fp.offsets {
				rr, cc := r+o.Y, c+o.X
				if rr < 0 || rr >= m.Rows || cc < 0 || cc >= m.Cols {
					continue
				}
				if !m.Data[rr*m.Cols+cc] {
					keep = false
					break
				}
			}
			out.Data[r*m.Cols+c] = keep
		}
	}
	return out
}

// Open removes foreground features smaller than the footprint (erode, then dilate).
func Open(m *Mask, fp Footprint) *Mask {
	return Dilate(Erode(m, fp), fp)
}

// Close fills background gaps smaller than the footprint (dilate, then erode).
func Close(m *Mask, fp Footprint) *Mask {
	return Erode(Dilate(m, fp), fp)
}
