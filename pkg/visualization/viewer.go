// Package visualization renders analysis results as a three panel figure
// and prints the textual report.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/mat"

	"solarspots/internal/apperr"
	"solarspots/pkg/analysis"
	"solarspots/pkg/morphology"
)

// PanelGap is the number of black columns between panels
const PanelGap = 8

var (
	limbColor  = color.NRGBA{R: 255, A: 255}
	labelColor = color.NRGBA{R: 255, G: 220, A: 255}
)

// Viewer renders one analysis result over its normalized frame
type Viewer struct {
	norm   *mat.Dense
	result *analysis.Result

	// dimensions of the frame
	rows int
	cols int
}

// NewViewer creates a viewer. The result's masks must match the frame.
func NewViewer(norm *mat.Dense, result *analysis.Result) (*Viewer, error) {
	if norm == nil || result == nil {
		return nil, fmt.Errorf("frame and result are required")
	}
	rows, cols := norm.Dims()
	if r, c := result.LimbMask.Dims(); r != rows || c != cols {
		return nil, apperr.Newf(apperr.KindShapeMismatch, "limb mask is %dx%d, frame is %dx%d", r, c, rows, cols)
	}
	if len(result.SpotMask) != rows || (rows > 0 && len(result.SpotMask[0]) != cols) {
		return nil, apperr.Newf(apperr.KindShapeMismatch, "spot mask does not match the %dx%d frame", rows, cols)
	}
	return &Viewer{norm: norm, result: result, rows: rows, cols: cols}, nil
}

// OriginalPanel draws the frame in grayscale with the fitted limb circle
// and the disk geometry as text.
func (v *Viewer) OriginalPanel() *image.NRGBA {
	panel := imaging.Clone(analysis.DenseToGray(v.norm))

	disk := v.result.Disk
	drawCircle(panel, disk.CenterX, disk.CenterY, disk.Radius, limbColor)
	drawCross(panel, disk.CenterX, disk.CenterY, 3, limbColor)

	drawText(panel, 4, 14, fmt.Sprintf("Center: (%.2f, %.2f)", disk.CenterX, disk.CenterY), labelColor)
	drawText(panel, 4, 28, fmt.Sprintf("Radius: %.2f", disk.Radius), labelColor)
	return panel
}

// LimbPanel draws the cleaned limb mask
func (v *Viewer) LimbPanel() *image.NRGBA {
	return imaging.Clone(analysis.MaskToGray(v.result.LimbMask))
}

// SpotPanel draws each sunspot region in its own colour
func (v *Viewer) SpotPanel() *image.NRGBA {
	panel := imaging.New(v.cols, v.rows, color.Black)
	labels, regions := morphology.Label(morphology.FromInts(v.result.SpotMask))
	palette := SpotPalette(len(regions))

	for i, l := range labels {
		if l == 0 {
			continue
		}
		panel.Set(i%v.cols, i/v.cols, palette[l-1])
	}
	return panel
}

// Render places the original, limb and spot panels side by side
func (v *Viewer) Render() *image.NRGBA {
	width := 3*v.cols + 2*PanelGap
	fig := imaging.New(width, v.rows, color.Black)

	fig = imaging.Paste(fig, v.OriginalPanel(), image.Pt(0, 0))
	fig = imaging.Paste(fig, v.LimbPanel(), image.Pt(v.cols+PanelGap, 0))
	fig = imaging.Paste(fig, v.SpotPanel(), image.Pt(2*(v.cols+PanelGap), 0))
	return fig
}

// Render builds the three panel figure for result
func Render(norm *mat.Dense, result *analysis.Result) (image.Image, error) {
	v, err := NewViewer(norm, result)
	if err != nil {
		return nil, err
	}
	return v.Render(), nil
}

// Save writes img to path, creating parent directories. The format
// follows the file extension.
func Save(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save figure %s: %w", path, err)
	}
	return nil
}

// Report prints the disk geometry and the detected sunspots
func Report(w io.Writer, result *analysis.Result) error {
	x, y := result.Center()
	if _, err := fmt.Fprintf(w, "Sun center coordinates: (%.2f, %.2f)\n", x, y); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sun radius: %.2f\n", result.Disk.Radius); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sunspots detected: %d\n", len(result.Spots)); err != nil {
		return err
	}
	for _, s := range result.Spots {
		if _, err := fmt.Fprintf(w, "  #%d at (%.1f, %.1f), area %d px\n", s.Label, s.CentroidX, s.CentroidY, s.Area); err != nil {
			return err
		}
	}
	return nil
}

// SpotPalette returns n distinct colours. Hues advance by the golden
// angle so neighbouring labels never look alike.
func SpotPalette(n int) []color.Color {
	palette := make([]color.Color, n)
	for i := range palette {
		hue := math.Mod(float64(i)*137.508, 360)
		palette[i] = colorful.Hsv(hue, 0.85, 1).Clamped()
	}
	return palette
}

// drawCircle outlines a two pixel wide circle
func drawCircle(img *image.NRGBA, cx, cy, radius float64, c color.Color) {
	if radius <= 0 {
		return
	}
	for _, r := range []float64{radius, radius + 0.5} {
		steps := int(4*math.Pi*r) + 8
		for i := 0; i < steps; i++ {
			theta := 2 * math.Pi * float64(i) / float64(steps)
			x := int(math.Round(cx + r*math.Cos(theta)))
			y := int(math.Round(cy + r*math.Sin(theta)))
			img.Set(x, y, c)
		}
	}
}

// drawCross marks a point with a small plus sign
func drawCross(img *image.NRGBA, cx, cy float64, size int, c color.Color) {
	x, y := int(math.Round(cx)), int(math.Round(cy))
	for d := -size; d <= size; d++ {
		img.Set(x+d, y, c)
		img.Set(x, y+d, c)
	}
}

// drawText draws text with its baseline at (x, y) using basicfont
func drawText(img *image.NRGBA, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
