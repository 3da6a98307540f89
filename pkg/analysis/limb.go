package analysis

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"solarspots/internal/apperr"
	"solarspots/internal/models"
	"solarspots/pkg/contour"
	"solarspots/pkg/filters"
	"solarspots/pkg/morphology"
)

// Limb is the outcome of limb detection
type Limb struct {
	// Mask is the thresholded, cleaned disk
	Mask *morphology.Mask

	// Disk is the circle estimated from Boundary
	Disk models.DiskGeometry

	// Threshold is the Otsu level applied to Blurred
	Threshold float64

	// Boundary is the contour taken as the limb
	Boundary contour.Contour

	// Blurred is the smoothed frame the threshold was computed on
	Blurred *mat.Dense
}

// selectLimbContour picks the limb among the traced contours. The disk is
// assumed to be the largest bright region in the frame, so its boundary is
// the longest contour.
func selectLimbContour(contours []contour.Contour) (contour.Contour, error) {
	return contour.Longest(contours)
}

// DetectLimb finds the disk boundary of a normalized frame and fits its
// center and radius.
//
// The frame is blurred, split with Otsu's threshold and cleaned by a
// closing followed by an opening: gaps inside the disk are filled before
// specks are removed, so the opening cannot bite into the disk edge.
func (a *Analyzer) DetectLimb(norm *mat.Dense) (*Limb, error) {
	log := a.log.WithField("step", "limb")

	blurred := filters.Gaussian(norm, a.params.BlurSigma)
	threshold := filters.Otsu(blurred, a.params.OtsuBins)

	binary := morphology.Threshold(blurred, threshold)
	binary = morphology.Close(binary, a.params.LimbFootprint)
	binary = morphology.Open(binary, a.params.LimbFootprint)
	log.WithFields(logrus.Fields{
		"threshold":  threshold,
		"foreground": binary.Count(),
	}).Debug("limb mask thresholded")

	contours := contour.Find(binary.Dense(), a.params.ContourLevel)
	boundary, err := selectLimbContour(contours)
	if err != nil {
		return nil, apperr.New(apperr.KindEmptyContourSet,
			fmt.Sprintf("no contour at level %g after thresholding at %.4f", a.params.ContourLevel, threshold), err)
	}

	cx, cy, radius := boundary.Circle()
	log.WithFields(logrus.Fields{
		"contours": len(contours),
		"points":   len(boundary),
		"center_x": cx,
		"center_y": cy,
		"radius":   radius,
	}).Debug("limb fitted")

	return &Limb{
		Mask:      binary,
		Disk:      models.DiskGeometry{CenterX: cx, CenterY: cy, Radius: radius},
		Threshold: threshold,
		Boundary:  boundary,
		Blurred:   blurred,
	}, nil
}
