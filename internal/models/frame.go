package models

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Frame is a single decoded solar capture
type Frame struct {
	// Data holds the raw intensity samples, rows x cols
	Data *mat.Dense

	// Meta describes where the samples came from
	Meta FrameMeta
}

// FrameMeta carries source information for a frame
type FrameMeta struct {
	// Source is the path the frame was loaded from
	Source string

	// Format is "fits" or the raster format name reported by the decoder
	Format string

	// Bitpix is the FITS BITPIX value, 0 for raster images
	Bitpix int

	// DateObs, Telescope and Instrument are copied from the FITS header
	// when present
	DateObs    string
	Telescope  string
	Instrument string
}

// Dims returns the frame height and width
func (f *Frame) Dims() (rows, cols int) {
	if f == nil || f.Data == nil {
		return 0, 0
	}
	return f.Data.Dims()
}

// DiskGeometry describes the fitted solar disk in pixel coordinates.
// X runs along columns and Y along rows.
type DiskGeometry struct {
	CenterX float64
	CenterY float64
	Radius  float64
}

// Contains reports whether pixel (x, y) lies within scale*Radius of the center.
func (d DiskGeometry) Contains(x, y, scale float64) bool {
	return math.Hypot(x-d.CenterX, y-d.CenterY) <= d.Radius*scale
}
