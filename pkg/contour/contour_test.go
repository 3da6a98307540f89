package contour

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// squareField returns a 0/1 field with a filled block [r0,r1) x [c0,c1)
func squareField(rows, cols, r0, r1, c0, c1 int) *mat.Dense {
	f := mat.NewDense(rows, cols, nil)
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			f.Set(r, c, 1)
		}
	}
	return f
}

// discField returns a 0/1 field with a filled disc
func discField(rows, cols int, cx, cy, radius float64) *mat.Dense {
	f := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if math.Hypot(float64(c)-cx, float64(r)-cy) <= radius {
				f.Set(r, c, 1)
			}
		}
	}
	return f
}

func TestFindSquare(t *testing.T) {
	contours := Find(squareField(10, 10, 3, 7, 3, 7), 0.5)

	require.Len(t, contours, 1)
	c := contours[0]
	assert.True(t, c.Closed())
	assert.Len(t, c, 17)
	assert.Len(t, c.Vertices(), 16)

	for _, p := range c.Vertices() {
		onVertical := (p.X == 2.5 || p.X == 6.5) && p.Y >= 3 && p.Y <= 6
		onHorizontal := (p.Y == 2.5 || p.Y == 6.5) && p.X >= 3 && p.X <= 6
		assert.True(t, onVertical || onHorizontal, "unexpected point %+v", p)
	}

	x, y := c.Centroid()
	assert.InDelta(t, 4.5, x, 1e-9)
	assert.InDelta(t, 4.5, y, 1e-9)
}

func TestFindSinglePixel(t *testing.T) {
	contours := Find(squareField(5, 5, 2, 3, 2, 3), 0.5)

	require.Len(t, contours, 1)
	assert.Len(t, contours[0].Vertices(), 4)
	assert.True(t, contours[0].Closed())
}

func TestFindOpenContourAtBorder(t *testing.T) {
	// right half bright: the boundary runs top to bottom and never closes
	contours := Find(squareField(6, 6, 0, 6, 3, 6), 0.5)

	require.Len(t, contours, 1)
	c := contours[0]
	assert.False(t, c.Closed())
	assert.Len(t, c, 6)
	for _, p := range c {
		assert.Equal(t, 2.5, p.X)
	}
}

func TestFindEmptyAndFull(t *testing.T) {
	assert.Empty(t, Find(mat.NewDense(8, 8, nil), 0.5))
	assert.Empty(t, Find(squareField(8, 8, 0, 8, 0, 8), 0.5))
}

func TestFindInterpolates(t *testing.T) {
	field := mat.NewDense(2, 2, []float64{0, 1, 0, 1})

	contours := Find(field, 0.25)

	require.Len(t, contours, 1)
	for _, p := range contours[0] {
		assert.InDelta(t, 0.25, p.X, 1e-12)
	}
}

func TestFindSaddleKeepsDiagonalsApart(t *testing.T) {
	field := mat.NewDense(4, 4, nil)
	field.Set(1, 1, 1)
	field.Set(2, 2, 1)

	contours := Find(field, 0.5)

	assert.Len(t, contours, 2)
}

func TestFindNestedContours(t *testing.T) {
	field := squareField(20, 20, 2, 18, 2, 18)
	for r := 8; r < 12; r++ {
		for c := 8; c < 12; c++ {
			field.Set(r, c, 0)
		}
	}

	contours := Find(field, 0.5)
	require.Len(t, contours, 2)

	longest, err := Longest(contours)
	require.NoError(t, err)
	x, y := longest.Centroid()
	assert.InDelta(t, 9.5, x, 1e-9)
	assert.InDelta(t, 9.5, y, 1e-9)
	assert.Greater(t, len(longest), 40)
}

func TestLongestEmpty(t *testing.T) {
	_, err := Longest(nil)
	assert.True(t, errors.Is(err, ErrNoContours))
}

func TestCircleOnDisc(t *testing.T) {
	const cx, cy, radius = 61.0, 57.0, 40.0
	contours := Find(discField(120, 120, cx, cy, radius), 0.5)

	c, err := Longest(contours)
	require.NoError(t, err)

	x, y, r := c.Circle()
	assert.InDelta(t, cx, x, 0.2)
	assert.InDelta(t, cy, y, 0.2)
	assert.InDelta(t, radius, r, 0.02*radius)
}
