package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"solarspots/internal/apperr"
)

// Normalize rescales raw linearly so its minimum maps to 0 and its maximum
// to 1. Non-finite samples (FITS blanks) are left out of the range and map
// to 0. An empty frame, or one without dynamic range, is rejected with a
// degenerate image error instead of producing NaNs.
func Normalize(raw *mat.Dense) (*mat.Dense, error) {
	if raw == nil || raw.IsEmpty() {
		return nil, apperr.New(apperr.KindDegenerateImage, "image is empty", nil)
	}

	rows, cols := raw.Dims()
	lo, hi := math.Inf(1), math.Inf(-1)
	for r := 0; r < rows; r++ {
		for _, v := range raw.RawRowView(r) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if !(hi > lo) {
		return nil, apperr.Newf(apperr.KindDegenerateImage, "image has zero dynamic range (min = max = %g)", lo)
	}

	span := hi - lo
	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(_, _ int, v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return (v - lo) / span
	}, raw)

	return out, nil
}
