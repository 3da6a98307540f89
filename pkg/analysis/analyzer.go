// Package analysis runs the solar disk pipeline on a single frame: it
// normalizes the raw samples, locates the limb, masks the disk and detects
// sunspots as dark residuals against a median background.
package analysis

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"solarspots/internal/apperr"
	"solarspots/internal/models"
	"solarspots/pkg/config"
	"solarspots/pkg/morphology"
)

// Params holds the pipeline tuning values. DefaultParams documents the
// defaults; every field can be set from the YAML config.
type Params struct {
	// BlurSigma is the Gaussian spread, in pixels, applied before the limb
	// threshold.
	BlurSigma float64

	// OtsuBins is the histogram resolution of the limb threshold.
	OtsuBins int

	// ContourLevel is the isovalue traced on the cleaned limb mask.
	ContourLevel float64

	// LimbFootprint is used to close, then open, the limb mask.
	LimbFootprint morphology.Footprint

	// DiskShrink scales the fitted radius for the spot search area, keeping
	// the blurred limb edge out of it.
	DiskShrink float64

	// BackgroundWindow is the side of the median window estimating the
	// local background. It must be larger than the biggest expected spot.
	BackgroundWindow int

	// SigmaMultiplier sets the spot threshold in residual standard
	// deviations above the residual mean.
	SigmaMultiplier float64

	// SpotFootprint is used to open, then close, the spot mask.
	SpotFootprint morphology.Footprint

	// SaveIntermediaryResults writes every stage as PNG to IntermediaryDir.
	SaveIntermediaryResults bool
	IntermediaryDir         string
}

// DefaultParams returns the standard pipeline parameters
func DefaultParams() *Params {
	return &Params{
		BlurSigma:        5,
		OtsuBins:         256,
		ContourLevel:     0.5,
		LimbFootprint:    morphology.Cross(3),
		DiskShrink:       0.95,
		BackgroundWindow: 25,
		SigmaMultiplier:  2,
		SpotFootprint:    morphology.Cross(3),
		IntermediaryDir:  "intermediary_results",
	}
}

// ParamsFromConfig validates cfg and converts it to pipeline parameters
func ParamsFromConfig(cfg *config.Config) (*Params, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limbFP, err := morphology.NewFootprint(cfg.Limb.Footprint.Kind, cfg.Limb.Footprint.Size)
	if err != nil {
		return nil, apperr.New(apperr.KindConfig, "invalid limb footprint", err)
	}
	spotFP, err := morphology.NewFootprint(cfg.Spots.Footprint.Kind, cfg.Spots.Footprint.Size)
	if err != nil {
		return nil, apperr.New(apperr.KindConfig, "invalid spot footprint", err)
	}

	return &Params{
		BlurSigma:               cfg.Limb.BlurSigma,
		OtsuBins:                cfg.Limb.OtsuBins,
		ContourLevel:            cfg.Limb.ContourLevel,
		LimbFootprint:           limbFP,
		DiskShrink:              cfg.Disk.ShrinkFactor,
		BackgroundWindow:        cfg.Spots.BackgroundWindow,
		SigmaMultiplier:         cfg.Spots.SigmaMultiplier,
		SpotFootprint:           spotFP,
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         cfg.Output.IntermediaryDir,
	}, nil
}

// Result is the outcome of a successful analysis. It shares no memory with
// the analyzed frame.
type Result struct {
	// Disk is the fitted limb circle
	Disk models.DiskGeometry

	// LimbMask is the cleaned thresholded disk
	LimbMask *morphology.Mask

	// SpotMask marks sunspot pixels with 1
	SpotMask [][]int

	// Spots lists the connected sunspot regions
	Spots []morphology.Region

	// LimbThreshold is the Otsu level applied to the blurred frame
	LimbThreshold float64

	// SpotThreshold is the residual level above which pixels count as spots
	SpotThreshold float64
}

// Center returns the disk center as (x, y)
func (r *Result) Center() (x, y float64) {
	return r.Disk.CenterX, r.Disk.CenterY
}

// Analyzer runs the pipeline with a fixed set of parameters
type Analyzer struct {
	params *Params
	log    logrus.FieldLogger
	stage  int
}

// NewAnalyzer creates an analyzer. A nil params uses DefaultParams and a
// nil logger discards output.
func NewAnalyzer(params *Params, log logrus.FieldLogger) *Analyzer {
	if params == nil {
		params = DefaultParams()
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Analyzer{params: params, log: log}
}

// Params returns the analyzer's parameters
func (a *Analyzer) Params() *Params {
	return a.params
}

// Analyze runs the complete pipeline on raw.
//
// Steps:
// 1. Normalize samples to [0, 1]
// 2. Locate the limb and fit the disk
// 3. Build the shrunken disk mask
// 4. Detect sunspots inside the mask
func (a *Analyzer) Analyze(raw *mat.Dense) (*Result, error) {
	start := time.Now()
	a.stage = 0

	// Step 1
	norm, err := Normalize(raw)
	if err != nil {
		if apperr.IsKind(err, apperr.KindDegenerateImage) {
			// a flat frame has no limb to trace either
			return nil, apperr.New(apperr.KindDegenerateImage, "cannot analyze a frame with zero dynamic range", apperr.ErrEmptyContourSet)
		}
		return nil, err
	}
	rows, cols := norm.Dims()
	a.log.WithFields(logrus.Fields{"step": "normalize", "rows": rows, "cols": cols}).Debug("frame normalized")
	a.saveStage("normalized", norm)

	// Step 2
	limb, err := a.DetectLimb(norm)
	if err != nil {
		return nil, err
	}
	if err := checkShape("limb mask", limb.Mask, rows, cols); err != nil {
		return nil, err
	}
	a.saveStage("blurred", limb.Blurred)
	a.saveStage("limb_mask", limb.Mask)

	// Step 3
	diskMask := DiskMask(rows, cols, limb.Disk, a.params.DiskShrink)
	a.log.WithFields(logrus.Fields{
		"step":   "disk_mask",
		"pixels": diskMask.Count(),
		"shrink": a.params.DiskShrink,
	}).Debug("disk mask built")
	a.saveStage("disk_mask", diskMask)

	// Step 4
	spots, err := a.DetectSpots(norm, diskMask)
	if err != nil {
		return nil, err
	}
	a.saveStage("background", spots.Background)
	a.saveStage("residual", spots.Residual)
	a.saveStage("spot_mask", spots.Mask)

	a.log.WithFields(logrus.Fields{
		"center_x": limb.Disk.CenterX,
		"center_y": limb.Disk.CenterY,
		"radius":   limb.Disk.Radius,
		"spots":    len(spots.Regions),
		"elapsed":  time.Since(start).String(),
	}).Info("analysis complete")

	return &Result{
		Disk:          limb.Disk,
		LimbMask:      limb.Mask.Clone(),
		SpotMask:      spots.Mask.Ints(),
		Spots:         spots.Regions,
		LimbThreshold: limb.Threshold,
		SpotThreshold: spots.Threshold,
	}, nil
}

// shaped is anything with matrix dimensions
type shaped interface {
	Dims() (rows, cols int)
}

// checkShape guards stage boundaries against arrays of the wrong size
func checkShape(name string, m shaped, rows, cols int) error {
	r, c := m.Dims()
	if r != rows || c != cols {
		return apperr.New(apperr.KindShapeMismatch,
			fmt.Sprintf("%s is %dx%d, frame is %dx%d", name, r, c, rows, cols), nil)
	}
	return nil
}
