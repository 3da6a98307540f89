package analysis

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"solarspots/pkg/filters"
	"solarspots/pkg/morphology"
)

// saveStage writes an intermediary result when enabled. Failures are
// logged and do not stop the analysis.
func (a *Analyzer) saveStage(name string, data interface{}) {
	if !a.params.SaveIntermediaryResults {
		return
	}
	a.stage++
	path := filepath.Join(a.params.IntermediaryDir, fmt.Sprintf("%02d_%s.png", a.stage, name))
	if err := saveIntermediaryResult(path, data); err != nil {
		a.log.WithError(err).WithField("stage", name).Warn("failed to save intermediary result")
		return
	}
	a.log.WithField("path", path).Debug("intermediary result saved")
}

// saveIntermediaryResult encodes a pipeline array as a grayscale PNG
func saveIntermediaryResult(path string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create intermediary directory: %w", err)
	}

	var img image.Image
	switch v := data.(type) {
	case *mat.Dense:
		img = DenseToGray(v)
	case *morphology.Mask:
		img = MaskToGray(v)
	default:
		return fmt.Errorf("unsupported intermediary type %T", data)
	}

	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// DenseToGray renders a matrix as 16-bit grayscale, stretching its value
// range to full scale. A constant matrix renders black.
func DenseToGray(m *mat.Dense) *image.Gray16 {
	rows, cols := m.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	values := filters.Values(m)
	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var y uint16
			if span > 0 {
				y = uint16((m.At(r, c)-lo)/span*65535 + 0.5)
			}
			img.SetGray16(c, r, color.Gray16{Y: y})
		}
	}
	return img
}

// MaskToGray renders set pixels white and the rest black
func MaskToGray(m *morphology.Mask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Cols, m.Rows))
	for i, v := range m.Data {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}
