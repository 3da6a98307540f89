// Package morphology implements binary masks and the morphological
// operators used to clean them: erosion, dilation, opening, closing and
// connected-component labelling.
//
// Border handling follows the usual convention for binary morphology:
// pixels outside the image count as background for dilation and as
// foreground for erosion, so a mask touching the border is not eaten away
// from the outside. With that convention Open and Close are idempotent.
package morphology

import (
	"gonum.org/v1/gonum/mat"
)

// Mask is a row-major binary image
type Mask struct {
	Rows, Cols int
	Data       []bool
}

// NewMask creates an all-false mask
func NewMask(rows, cols int) *Mask {
	return &Mask{Rows: rows, Cols: cols, Data: make([]bool, rows*cols)}
}

// Threshold builds a mask of the pixels of m strictly greater than level.
func Threshold(m mat.Matrix, level float64) *Mask {
	rows, cols := m.Dims()
	out := NewMask(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Data[r*cols+c] = m.At(r, c) > level
		}
	}
	return out
}

// At reports whether (r, c) is set. Out-of-range coordinates are false.
func (m *Mask) At(r, c int) bool {
	if r < 0 || r >= m.Rows || c < 0 || c >= m.Cols {
		return false
	}
	return m.Data[r*m.Cols+c]
}

// Set sets pixel (r, c)
func (m *Mask) Set(r, c int, v bool) {
	m.Data[r*m.Cols+c] = v
}

// Dims returns the mask height and width
func (m *Mask) Dims() (rows, cols int) {
	return m.Rows, m.Cols
}

// Clone returns an independent copy
func (m *Mask) Clone() *Mask {
	out := &Mask{Rows: m.Rows, Cols: m.Cols, Data: make([]bool, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

// Count returns the number of set pixels
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// And returns the pixelwise conjunction. Shapes must match.
func (m *Mask) And(o *Mask) *Mask {
	out := NewMask(m.Rows, m.Cols)
	for i, v := range m.Data {
		out.Data[i] = v && o.Data[i]
	}
	return out
}

// Dense converts the mask to a 0/1 matrix
func (m *Mask) Dense() *mat.Dense {
	data := make([]float64, len(m.Data))
	for i, v := range m.Data {
		if v {
			data[i] = 1
		}
	}
	return mat.NewDense(m.Rows, m.Cols, data)
}

// Ints converts the mask to a freshly allocated 0/1 integer grid
func (m *Mask) Ints() [][]int {
	out := make([][]int, m.Rows)
	for r := range out {
		row := make([]int, m.Cols)
		for c := range row {
			if m.Data[r*m.Cols+c] {
				row[c] = 1
			}
		}
		out[r] = row
	}
	return out
}

// FromInts builds a mask from a 0/1 grid as produced by Ints. Nonzero
// entries are set; rows shorter than the first are padded with false.
func FromInts(grid [][]int) *Mask {
	if len(grid) == 0 {
		return NewMask(0, 0)
	}
	m := NewMask(len(grid), len(grid[0]))
	for r, row := range grid {
		for c, v := range row {
			if c < m.Cols && v != 0 {
				m.Data[r*m.Cols+c] = true
			}
		}
	}
	return m
}
