package analysis

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"solarspots/pkg/filters"
	"solarspots/pkg/morphology"
)

// Spots is the outcome of sunspot detection
type Spots struct {
	// Mask marks the cleaned spot pixels
	Mask *morphology.Mask

	// Regions are the 8-connected components of Mask
	Regions []morphology.Region

	// Threshold is mean + k*stddev of the residual inside the disk.
	// It is +Inf when the disk mask is empty.
	Threshold float64

	// Background is the median-filtered masked frame
	Background *mat.Dense

	// Residual is Background minus the masked frame; spots are positive
	Residual *mat.Dense
}

// DetectSpots finds regions inside diskMask that are darker than their
// local background.
//
// The median window is larger than a typical spot, so the background keeps
// large-scale limb darkening but not the spots themselves. The spot mask is
// opened before it is closed: spots are small, so specks go first and the
// surviving shapes are then filled in.
func (a *Analyzer) DetectSpots(norm *mat.Dense, diskMask *morphology.Mask) (*Spots, error) {
	rows, cols := norm.Dims()
	if err := checkShape("disk mask", diskMask, rows, cols); err != nil {
		return nil, err
	}
	log := a.log.WithField("step", "spots")

	masked := mat.NewDense(rows, cols, nil)
	masked.Apply(func(r, c int, v float64) float64 {
		if diskMask.Data[r*cols+c] {
			return v
		}
		return 0
	}, norm)

	background := filters.Median(masked, a.params.BackgroundWindow)
	residual := mat.NewDense(rows, cols, nil)
	residual.Sub(background, masked)

	inside := make([]float64, 0, diskMask.Count())
	for r := 0; r < rows; r++ {
		row := residual.RawRowView(r)
		for c, v := range row {
			if diskMask.Data[r*cols+c] {
				inside = append(inside, v)
			}
		}
	}

	threshold := math.Inf(1)
	if len(inside) > 0 {
		mean, std := stat.PopMeanStdDev(inside, nil)
		threshold = mean + a.params.SigmaMultiplier*std
		log.WithFields(logrus.Fields{
			"mean":      mean,
			"std":       std,
			"threshold": threshold,
		}).Debug("residual statistics")
	}

	spot := morphology.Threshold(residual, threshold).And(diskMask)
	spot = morphology.Open(spot, a.params.SpotFootprint)
	spot = morphology.Close(spot, a.params.SpotFootprint)

	_, regions := morphology.Label(spot)
	log.WithFields(logrus.Fields{
		"pixels":  spot.Count(),
		"regions": len(regions),
	}).Debug("spots detected")

	return &Spots{
		Mask:       spot,
		Regions:    regions,
		Threshold:  threshold,
		Background: background,
		Residual:   residual,
	}, nil
}
