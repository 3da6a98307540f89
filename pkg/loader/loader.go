// Package loader reads solar frames from disk into float64 matrices.
//
// FITS files (.fits, .fit, .fts) are decoded with fitsio; every other
// extension goes through the raster decoders registered with imaging
// (PNG, JPEG, GIF, TIFF, BMP). Raster pixels are reduced to 16-bit
// luminance.
package loader

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"

	"solarspots/internal/apperr"
	"solarspots/internal/models"
)

// Source formats reported in models.FrameMeta
const (
	FormatFITS = "fits"
)

var fitsExtensions = map[string]bool{
	".fits": true,
	".fit":  true,
	".fts":  true,
}

// IsFITS reports whether path has a FITS file extension
func IsFITS(path string) bool {
	return fitsExtensions[strings.ToLower(filepath.Ext(path))]
}

// Load reads the frame stored at path. Every failure is a load error
// carrying path.
func Load(path string) (*models.Frame, error) {
	if path == "" {
		return nil, apperr.NewLoadError(path, "no image path given", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperr.NewLoadError(path, "failed to stat image", err)
	}
	if info.IsDir() {
		return nil, apperr.NewLoadError(path, "path is a directory", nil)
	}

	var frame *models.Frame
	if IsFITS(path) {
		frame, err = loadFITS(path)
	} else {
		frame, err = loadRaster(path)
	}
	if err != nil {
		return nil, err
	}
	frame.Meta.Source = path
	return frame, nil
}

// loadRaster decodes a raster image as luminance in [0, 65535]
func loadRaster(path string) (*models.Frame, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.NewLoadError(path, "failed to decode image", err)
	}
	if img.Bounds().Empty() {
		return nil, apperr.NewLoadError(path, "image has no pixels", nil)
	}

	return &models.Frame{
		Data: imageToDense(img),
		Meta: models.FrameMeta{
			Format: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		},
	}, nil
}

// imageToDense converts img to a matrix of 16-bit luminance values
func imageToDense(img image.Image) *mat.Dense {
	b := img.Bounds()
	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.RawRowView(y - b.Min.Y)
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			row[x-b.Min.X] = float64(g.Y)
		}
	}
	return m
}
