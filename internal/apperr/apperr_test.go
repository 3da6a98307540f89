package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesSentinelByKind(t *testing.T) {
	err := Newf(KindEmptyContourSet, "no contour at level %.1f", 0.5)

	require.True(t, errors.Is(err, ErrEmptyContourSet))
	assert.False(t, errors.Is(err, ErrDegenerateImage))
	assert.Equal(t, KindEmptyContourSet, KindOf(err))
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	cause := errors.New("permission denied")
	err := fmt.Errorf("analyze: %w", NewLoadError("/data/sun.fits", "failed to open image", cause))

	assert.True(t, IsKind(err, KindLoad))
	assert.True(t, errors.Is(err, ErrLoad))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "/data/sun.fits")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestPathOf(t *testing.T) {
	load := NewLoadError("/data/sun.png", "failed to decode image", nil)
	outer := New(KindDegenerateImage, "rejected", load)

	assert.Equal(t, "/data/sun.png", PathOf(fmt.Errorf("run: %w", outer)))
	assert.Empty(t, PathOf(ErrShapeMismatch))
	assert.Empty(t, PathOf(errors.New("plain")))
}
