// Package contour traces isovalue contours on a scalar field with marching
// squares and estimates circles from them.
//
// Points use image coordinates: X is the column, Y the row, both measured
// at pixel centers. Contour points always lie on the line between two
// neighbouring pixels, interpolated to where the field crosses the level.
package contour

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNoContours is returned when a selection is asked of an empty set
var ErrNoContours = errors.New("contour set is empty")

// Point is a contour vertex in pixel coordinates
type Point struct {
	X float64
	Y float64
}

// Contour is an ordered boundary. A closed contour repeats its first
// point as its last.
type Contour []Point

// Closed reports whether the contour ends where it starts
func (c Contour) Closed() bool {
	return len(c) > 2 && c[0] == c[len(c)-1]
}

// Vertices returns the distinct points, dropping the closing repeat
func (c Contour) Vertices() []Point {
	if c.Closed() {
		return c[:len(c)-1]
	}
	return c
}

// Centroid is the arithmetic mean of the contour vertices.
func (c Contour) Centroid() (x, y float64) {
	v := c.Vertices()
	xs := make([]float64, len(v))
	ys := make([]float64, len(v))
	for i, p := range v {
		xs[i], ys[i] = p.X, p.Y
	}
	return stat.Mean(xs, nil), stat.Mean(ys, nil)
}

// MeanRadius is the mean distance from the vertices to (cx, cy).
func (c Contour) MeanRadius(cx, cy float64) float64 {
	v := c.Vertices()
	dist := make([]float64, len(v))
	for i, p := range v {
		dist[i] = math.Hypot(p.X-cx, p.Y-cy)
	}
	return stat.Mean(dist, nil)
}

// Circle estimates the circle traced by the contour: the centroid of its
// vertices and their mean distance to it. This is not a least-squares fit;
// it assumes a near-circular, evenly sampled boundary.
func (c Contour) Circle() (cx, cy, radius float64) {
	cx, cy = c.Centroid()
	return cx, cy, c.MeanRadius(cx, cy)
}

// Longest returns the contour with the most points. Ties go to the first.
//
// On a solar frame the disk is the largest bright region, and its boundary
// has the most points of any contour since point count tracks perimeter.
func Longest(contours []Contour) (Contour, error) {
	if len(contours) == 0 {
		return nil, ErrNoContours
	}
	best := contours[0]
	for _, c := range contours[1:] {
		if len(c) > len(best) {
			best = c
		}
	}
	return best, nil
}

// edgeKey identifies the pixel edge a contour point sits on: the edge from
// (row, col) to its right neighbour or to the pixel below.
type edgeKey struct {
	row, col int
	down     bool
}

// Find traces all contours of field at level using marching squares.
// Corners strictly above level count as inside. Where two diagonal corners
// are inside (a saddle) they are kept apart, so low regions connect.
// Contours touching the image border are open; all others are closed.
func Find(field mat.Matrix, level float64) []Contour {
	rows, cols := field.Dims()
	points := make(map[edgeKey]Point)
	adj := make(map[edgeKey][]edgeKey)
	order := make([]edgeKey, 0)

	addPoint := func(k edgeKey, p Point) {
		if _, ok := points[k]; !ok {
			points[k] = p
			order = append(order, k)
		}
	}
	link := func(a, b edgeKey) {
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}
	frac := func(a, b float64) float64 {
		return (level - a) / (b - a)
	}

	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			ul, ur := field.At(r, c), field.At(r, c+1)
			ll, lr := field.At(r+1, c), field.At(r+1, c+1)
			if math.IsNaN(ul) || math.IsNaN(ur) || math.IsNaN(ll) || math.IsNaN(lr) {
				continue
			}

			idx := 0
			if ul > level {
				idx |= 1
			}
			if ur > level {
				idx |= 2
			}
			if ll > level {
				idx |= 4
			}
			if lr > level {
				idx |= 8
			}
			if idx == 0 || idx == 15 {
				continue
			}

			top := edgeKey{row: r, col: c}
			bottom := edgeKey{row: r + 1, col: c}
			left := edgeKey{row: r, col: c, down: true}
			right := edgeKey{row: r, col: c + 1, down: true}

			pt := func(k edgeKey) edgeKey {
				switch k {
				case top:
					addPoint(k, Point{X: float64(c) + frac(ul, ur), Y: float64(r)})
				case bottom:
					addPoint(k, Point{X: float64(c) + frac(ll, lr), Y: float64(r + 1)})
				case left:
					addPoint(k, Point{X: float64(c), Y: float64(r) + frac(ul, ll)})
				case right:
					addPoint(k, Point{X: float64(c + 1), Y: float64(r) + frac(ur, lr)})
				}
				return k
			}
			seg := func(a, b edgeKey) {
				link(pt(a), pt(b))
			}

			switch idx {
			case 1, 14:
				seg(top, left)
			case 2, 13:
				seg(top, right)
			case 3, 12:
				seg(left, right)
			case 4, 11:
				seg(left, bottom)
			case 5, 10:
				seg(top, bottom)
			case 7, 8:
				seg(right, bottom)
			case 6:
				seg(top, right)
				seg(left, bottom)
			case 9:
				seg(top, left)
				seg(right, bottom)
			}
		}
	}

	visited := make(map[edgeKey]bool, len(order))
	contours := make([]Contour, 0)

	// open contours start at one of their two loose ends
	for _, k := range order {
		if !visited[k] && len(adj[k]) == 1 {
			contours = append(contours, trace(k, adj, points, visited))
		}
	}
	for _, k := range order {
		if !visited[k] {
			contours = append(contours, trace(k, adj, points, visited))
		}
	}

	return contours
}

// trace walks the chain starting at start, closing it if it loops back.
func trace(start edgeKey, adj map[edgeKey][]edgeKey, points map[edgeKey]Point, visited map[edgeKey]bool) Contour {
	out := Contour{points[start]}
	visited[start] = true
	cur := start
	for {
		next, ok := edgeKey{}, false
		for _, n := range adj[cur] {
			if !visited[n] {
				next, ok = n, true
				break
			}
		}
		if !ok {
			break
		}
		visited[next] = true
		out = append(out, points[next])
		cur = next
	}

	if len(out) > 2 {
		for _, n := range adj[cur] {
			if n == start {
				out = append(out, points[start])
				break
			}
		}
	}
	return out
}
