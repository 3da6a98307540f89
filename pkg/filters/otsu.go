package filters

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Otsu returns the threshold that maximizes the between-class variance of
// the nbins-bin histogram of src, spanning [min, max]. Pixels strictly
// above the returned value form the foreground. The threshold is the center
// of the last background bin; for a constant image it is that constant.
func Otsu(src mat.Matrix, nbins int) float64 {
	values := Values(src)
	if len(values) == 0 {
		return math.NaN()
	}
	sort.Float64s(values)

	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		return lo
	}

	dividers := make([]float64, nbins+1)
	floats.Span(dividers, lo, hi)
	// the top edge is inclusive for the last bin
	dividers[nbins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, values, nil)

	width := (hi - lo) / float64(nbins)
	centers := make([]float64, nbins)
	for i := range centers {
		centers[i] = lo + (float64(i)+0.5)*width
	}

	// cumulative class weights and means from both ends
	weightLow := make([]float64, nbins)
	meanLow := make([]float64, nbins)
	var w, m float64
	for i := 0; i < nbins; i++ {
		w += counts[i]
		m += counts[i] * centers[i]
		weightLow[i] = w
		if w > 0 {
			meanLow[i] = m / w
		}
	}
	weightHigh := make([]float64, nbins)
	meanHigh := make([]float64, nbins)
	w, m = 0, 0
	for i := nbins - 1; i >= 0; i-- {
		w += counts[i]
		m += counts[i] * centers[i]
		weightHigh[i] = w
		if w > 0 {
			meanHigh[i] = m / w
		}
	}

	best, bestIdx := math.Inf(-1), 0
	for i := 0; i < nbins-1; i++ {
		d := meanLow[i] - meanHigh[i+1]
		v := weightLow[i] * weightHigh[i+1] * d * d
		if v > best {
			best, bestIdx = v, i
		}
	}

	return centers[bestIdx]
}

// Values copies the elements of m into a row-major slice
func Values(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, m.At(r, c))
		}
	}
	return out
}
