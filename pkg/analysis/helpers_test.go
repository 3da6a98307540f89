package analysis

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"solarspots/pkg/morphology"
)

// patch is a circular region of the disk painted with a fixed level
type patch struct {
	x, y, radius float64
	level        float64
}

// syntheticSun describes a test frame: a bright disk on a dark sky with
// optional darkened patches and Gaussian noise.
type syntheticSun struct {
	rows, cols     int
	cx, cy, radius float64
	sky, disk      float64
	noise          float64
	seed           int64
	patches        []patch
}

// defaultSun is the 200x200 frame used by the end-to-end checks
func defaultSun() syntheticSun {
	return syntheticSun{
		rows: 200, cols: 200,
		cx: 100, cy: 100, radius: 80,
		sky: 0.1, disk: 0.8,
		noise: 0.01,
		seed:  42,
	}
}

// render draws the frame in raw (unnormalized) units
func (s syntheticSun) render() *mat.Dense {
	rng := rand.New(rand.NewSource(s.seed))
	m := mat.NewDense(s.rows, s.cols, nil)
	for r := 0; r < s.rows; r++ {
		for c := 0; c < s.cols; c++ {
			x, y := float64(c), float64(r)
			v := s.sky
			if math.Hypot(x-s.cx, y-s.cy) <= s.radius {
				v = s.disk
				for _, p := range s.patches {
					if math.Hypot(x-p.x, y-p.y) <= p.radius {
						v = p.level
					}
				}
			}
			m.Set(r, c, v+s.noise*rng.NormFloat64())
		}
	}
	return m
}

// overlap counts spot pixels within a patch
func overlap(mask *morphology.Mask, p patch) int {
	n := 0
	for r := 0; r < mask.Rows; r++ {
		for c := 0; c < mask.Cols; c++ {
			if mask.At(r, c) && math.Hypot(float64(c)-p.x, float64(r)-p.y) <= p.radius+1 {
				n++
			}
		}
	}
	return n
}
