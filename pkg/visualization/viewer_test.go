package visualization

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"solarspots/internal/apperr"
	"solarspots/internal/models"
	"solarspots/pkg/analysis"
	"solarspots/pkg/morphology"
)

// testResult builds a 60x80 frame with a disk of radius 20 at (40, 30)
// and two square spots.
func testResult() (*mat.Dense, *analysis.Result) {
	rows, cols := 60, 80
	norm := mat.NewDense(rows, cols, nil)
	norm.Apply(func(r, c int, _ float64) float64 {
		return float64(r*cols+c) / float64(rows*cols)
	}, norm)

	disk := models.DiskGeometry{CenterX: 40, CenterY: 30, Radius: 20}
	spots := morphology.NewMask(rows, cols)
	for r := 28; r < 31; r++ {
		for c := 38; c < 41; c++ {
			spots.Set(r, c, true)
			spots.Set(r+8, c+6, true)
		}
	}
	_, regions := morphology.Label(spots)

	return norm, &analysis.Result{
		Disk:     disk,
		LimbMask: analysis.DiskMask(rows, cols, disk, 1),
		SpotMask: spots.Ints(),
		Spots:    regions,
	}
}

func nrgba(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func TestRenderPanels(t *testing.T) {
	norm, result := testResult()

	img, err := Render(norm, result)
	require.NoError(t, err)

	fig, ok := img.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 3*80+2*PanelGap, 60), fig.Bounds())

	// limb circle on the original panel
	assert.Equal(t, limbColor, fig.NRGBAAt(40, 50))

	// limb panel
	limbX := 80 + PanelGap
	assert.Equal(t, nrgba(color.White), fig.NRGBAAt(limbX+40, 30))
	assert.Equal(t, nrgba(color.Black), fig.NRGBAAt(limbX+2, 2))

	// spot panel
	spotX := 2 * (80 + PanelGap)
	palette := SpotPalette(2)
	assert.Equal(t, nrgba(palette[0]), fig.NRGBAAt(spotX+39, 29))
	assert.Equal(t, nrgba(palette[1]), fig.NRGBAAt(spotX+45, 37))
	assert.Equal(t, nrgba(color.Black), fig.NRGBAAt(spotX+5, 5))

	// gap between panels
	assert.Equal(t, nrgba(color.Black), fig.NRGBAAt(80+PanelGap/2, 30))
}

func TestRenderShapeMismatch(t *testing.T) {
	norm, result := testResult()
	result.LimbMask = morphology.NewMask(10, 10)

	_, err := Render(norm, result)
	assert.True(t, apperr.IsKind(err, apperr.KindShapeMismatch))

	_, result = testResult()
	result.SpotMask = result.SpotMask[:5]
	_, err = Render(norm, result)
	assert.True(t, apperr.IsKind(err, apperr.KindShapeMismatch))
}

func TestSpotPaletteDistinct(t *testing.T) {
	palette := SpotPalette(12)
	require.Len(t, palette, 12)

	seen := make(map[color.NRGBA]bool)
	for _, c := range palette {
		seen[nrgba(c)] = true
	}
	assert.Len(t, seen, 12)
	assert.Empty(t, SpotPalette(0))
}

func TestSave(t *testing.T) {
	norm, result := testResult()
	img, err := Render(norm, result)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "figures", "sun.png")
	require.NoError(t, Save(path, img))

	loaded, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Size(), loaded.Bounds().Size())
}

func TestSaveUnknownFormat(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))

	err := Save(filepath.Join(t.TempDir(), "sun.xyz"), img)
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	_, result := testResult()
	var buf bytes.Buffer

	require.NoError(t, Report(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "Sun center coordinates: (40.00, 30.00)\n")
	assert.Contains(t, out, "Sun radius: 20.00\n")
	assert.Contains(t, out, "Sunspots detected: 2\n")
	assert.Contains(t, out, "#1 at (39.0, 29.0), area 9 px")
}
