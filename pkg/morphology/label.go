package morphology

import (
	"image"
)

// Region is one 8-connected component of a mask
type Region struct {
	// Label is the 1-based component id, in raster order of first pixel
	Label int

	// Area is the number of pixels in the component
	Area int

	// CentroidX and CentroidY are the mean column and row of its pixels
	CentroidX float64
	CentroidY float64

	// Bounds encloses the component; Max is exclusive
	Bounds image.Rectangle
}

// Label finds the 8-connected components of m. The returned grid holds the
// component label of each pixel (0 for background).
func Label(m *Mask) ([]int, []Region) {
	labels := make([]int, len(m.Data))
	regions := make([]Region, 0)
	stack := make([]image.Point, 0, 64)

	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if !m.Data[r*m.Cols+c] || labels[r*m.Cols+c] != 0 {
				continue
			}

			id := len(regions) + 1
			region := Region{Label: id, Bounds: image.Rect(c, r, c+1, r+1)}
			var sumX, sumY float64

			labels[r*m.Cols+c] = id
			stack = append(stack[:0], image.Pt(c, r))
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				region.Area++
				sumX += float64(p.X)
				sumY += float64(p.Y)
				region.Bounds = region.Bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if !m.At(ny, nx) || labels[ny*m.Cols+nx] != 0 {
							continue
						}
						labels[ny*m.Cols+nx] = id
						stack = append(stack, image.Pt(nx, ny))
					}
				}
			}

			region.CentroidX = sumX / float64(region.Area)
			region.CentroidY = sumY / float64(region.Area)
			regions = append(regions, region)
		}
	}

	return labels, regions
}
