// Package filters provides the smoothing, background and threshold filters
// used by the solar pipeline. Every filter reads a gonum matrix and returns
// a newly allocated one; inputs are never modified.
//
// Borders are handled by half-sample symmetric reflection
// (d c b a | a b c d | d c b a), so flat images stay flat.
package filters

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// GaussianTruncate is the kernel half-width in units of sigma
const GaussianTruncate = 4.0

// GaussianKernel returns the normalized 1D kernel for sigma, of length
// 2*radius+1 where radius = int(GaussianTruncate*sigma + 0.5).
func GaussianKernel(sigma float64) []float64 {
	radius := int(GaussianTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-0.5 * x * x / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// Gaussian blurs src with a separable Gaussian of the given sigma.
// A non-positive sigma returns a copy of src.
func Gaussian(src mat.Matrix, sigma float64) *mat.Dense {
	rows, cols := src.Dims()
	out := mat.DenseCopyOf(src)
	if sigma <= 0 {
		return out
	}

	kernel := GaussianKernel(sigma)
	radius := len(kernel) / 2

	// rows first, then columns
	line := make([]float64, 0, max(rows, cols))
	tmp := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		line = append(line[:0], out.RawRowView(r)...)
		dst := tmp.RawRowView(r)
		for c := 0; c < cols; c++ {
			var sum float64
			for k, w := range kernel {
				sum += w * line[reflect(c+k-radius, cols)]
			}
			dst[c] = sum
		}
	}

	for c := 0; c < cols; c++ {
		line = line[:0]
		for r := 0; r < rows; r++ {
			line = append(line, tmp.At(r, c))
		}
		for r := 0; r < rows; r++ {
			var sum float64
			for k, w := range kernel {
				sum += w * line[reflect(r+k-radius, rows)]
			}
			out.Set(r, c, sum)
		}
	}

	return out
}

// reflect maps i into [0, n) by half-sample symmetric reflection
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
