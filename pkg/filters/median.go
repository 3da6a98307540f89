package filters

import (
	"gonum.org/v1/gonum/mat"
)

// Median replaces each pixel with the median of the size x size window
// centered on it. For even sizes the window extends one pixel further up
// and left, and the upper median is used.
func Median(src mat.Matrix, size int) *mat.Dense {
	rows, cols := src.Dims()
	in := mat.DenseCopyOf(src)
	out := mat.NewDense(rows, cols, nil)
	if size <= 1 {
		out.Copy(in)
		return out
	}

	lo := -(size / 2)
	window := make([]float64, size*size)
	// reflected row/column indices are the same for every pixel offset
	rowIdx := make([]int, size)
	colIdx := make([]int, size)

	for r := 0; r < rows; r++ {
		for i := range rowIdx {
			rowIdx[i] = reflect(r+lo+i, rows)
		}
		dst := out.RawRowView(r)
		for c := 0; c < cols; c++ {
			for j := range colIdx {
				colIdx[j] = reflect(c+lo+j, cols)
			}
			n := 0
			for _, rr := range rowIdx {
				row := in.RawRowView(rr)
				for _, cc := range colIdx {
					window[n] = row[cc]
					n++
				}
			}
			dst[c] = selectKth(window, len(window)/2)
		}
	}

	return out
}

// selectKth returns the k-th smallest element of v, reordering v in place.
func selectKth(v []float64, k int) float64 {
	lo, hi := 0, len(v)-1
	for lo < hi {
		// median-of-three pivot keeps sorted windows linear
		mid := lo + (hi-lo)/2
		if v[mid] < v[lo] {
			v[mid], v[lo] = v[lo], v[mid]
		}
		if v[hi] < v[lo] {
			v[hi], v[lo] = v[lo], v[hi]
		}
		if v[hi] < v[mid] {
			v[hi], v[mid] = v[mid], v[hi]
		}
		pivot := v[mid]

		i, j := lo, hi
		for i <= j {
			for v[i] < pivot {
				i++
			}
			for v[j] > pivot {
				j--
			}
			if i <= j {
				v[i], v[j] = v[j], v[i]
				i++
				j--
			}
		}
		switch {
		case k <= j:
			hi = j
		case k >= i:
			lo = i
		default:
			return v[k]
		}
	}
	return v[k]
}
