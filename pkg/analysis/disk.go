package analysis

import (
	"solarspots/internal/models"
	"solarspots/pkg/morphology"
)

// DiskMask marks the pixels within shrink*radius of the disk center.
// Shrinking the disk keeps the bright, blurred limb edge out of spot
// detection.
func DiskMask(rows, cols int, disk models.DiskGeometry, shrink float64) *morphology.Mask {
	mask := morphology.NewMask(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if disk.Contains(float64(c), float64(r), shrink) {
				mask.Set(r, c, true)
			}
		}
	}
	return mask
}
