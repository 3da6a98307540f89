package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/astrogo/fitsio"
	"gonum.org/v1/gonum/mat"

	"solarspots/internal/apperr"
	"solarspots/internal/models"
)

// loadFITS reads the first image HDU with at least two axes. Cubes
// contribute their first plane. NAXIS1 is the column axis.
func loadFITS(path string) (*models.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.NewLoadError(path, "failed to open FITS file", err)
	}
	defer f.Close()

	fits, err := fitsio.Open(f)
	if err != nil {
		return nil, apperr.NewLoadError(path, "failed to parse FITS file", err)
	}
	defer fits.Close()

	for _, hdu := range fits.HDUs() {
		if hdu.Type() != fitsio.IMAGE_HDU {
			continue
		}
		img, ok := hdu.(fitsio.Image)
		if !ok {
			continue
		}
		axes := img.Header().Axes()
		if len(axes) < 2 || axes[0] == 0 || axes[1] == 0 {
			continue
		}

		samples, err := readSamples(img)
		if err != nil {
			return nil, apperr.NewLoadError(path, fmt.Sprintf("failed to read HDU %q", hdu.Name()), err)
		}

		cols, rows := axes[0], axes[1]
		if len(samples) < rows*cols {
			return nil, apperr.NewLoadError(path,
				fmt.Sprintf("HDU %q holds %d samples, want %d", hdu.Name(), len(samples), rows*cols), nil)
		}

		hdr := img.Header()
		return &models.Frame{
			// copy the first plane so the frame does not pin the whole cube
			Data: mat.DenseCopyOf(mat.NewDense(rows, cols, samples[:rows*cols])),
			Meta: models.FrameMeta{
				Format:     FormatFITS,
				Bitpix:     hdr.Bitpix(),
				DateObs:    headerString(hdr, "DATE-OBS"),
				Telescope:  headerString(hdr, "TELESCOP"),
				Instrument: headerString(hdr, "INSTRUME"),
			},
		}, nil
	}

	return nil, apperr.NewLoadError(path, "no 2-D image HDU found", nil)
}

// readSamples reads the HDU data as float64 regardless of BITPIX.
// BZERO and BSCALE are not applied: the pipeline normalizes every frame,
// which cancels any affine rescaling.
func readSamples(img fitsio.Image) ([]float64, error) {
	// Image.Read fills the slice in place, so it must already hold every sample
	n := 1
	for _, dim := range img.Header().Axes() {
		n *= dim
	}

	switch bitpix := img.Header().Bitpix(); bitpix {
	case 8:
		return readAs[byte](img, n)
	case 16:
		return readAs[int16](img, n)
	case 32:
		return readAs[int32](img, n)
	case 64:
		return readAs[int64](img, n)
	case -32:
		return readAs[float32](img, n)
	case -64:
		raw := make([]float64, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
}

type sample interface {
	byte | int16 | int32 | int64 | float32
}

func readAs[T sample](img fitsio.Image, n int) ([]float64, error) {
	raw := make([]T, n)
	if err := img.Read(&raw); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out, nil
}

// headerString returns a string keyword value, or "" when absent
func headerString(hdr *fitsio.Header, key string) string {
	card := hdr.Get(key)
	if card == nil {
		return ""
	}
	s, ok := card.Value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
