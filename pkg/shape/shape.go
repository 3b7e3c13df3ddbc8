// Package shape provides the closed set of pixel-space regions produced by
// selection translation: rectangles, polygons, circles, ellipses, points,
// circular annuli, and boolean compounds of those.
//
// Coordinates follow the pixel convention of the workbench: x is the fast
// (column) axis, y is the slow (row) axis, and the centre of pixel (c, r)
// sits at (c, r). Angles are in radians, counter-clockwise.
package shape

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Shape is a pixel-space region that can answer point membership queries.
// Values are immutable once created.
type Shape interface {
	// Contains reports whether p lies inside the region
	Contains(p r2.Vec) bool

	// Kind is the short name of the region type, e.g. "circle"
	Kind() string
}

// Rectangle is an (optionally rotated) rectangle described by its centre.
type Rectangle struct {
	Center r2.Vec
	Width  float64
	Height float64
	Angle  float64
}

// Contains reports whether p lies inside r, boundary included.
// A negative width or height is treated by magnitude.
func (r Rectangle) Contains(p r2.Vec) bool {
	local := toLocal(p, r.Center, r.Angle)
	return math.Abs(local.X) <= math.Abs(r.Width)/2 && math.Abs(local.Y) <= math.Abs(r.Height)/2
}

func (Rectangle) Kind() string { return "rectangle" }

// Polygon is a simple polygon given by parallel vertex coordinate lists.
// The closing edge from the last vertex back to the first is implicit.
type Polygon struct {
	VX []float64
	VY []float64
}

// Contains uses the even-odd rule.
func (g Polygon) Contains(p r2.Vec) bool {
	n := len(g.VX)
	if len(g.VY) < n {
		n = len(g.VY)
	}
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := g.VX[i], g.VY[i]
		xj, yj := g.VX[j], g.VY[j]
		if (yi > p.Y) != (yj > p.Y) {
			xCross := (xj-xi)*(p.Y-yi)/(yj-yi) + xi
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

func (Polygon) Kind() string { return "polygon" }

// Circle is a disc, boundary included.
type Circle struct {
	Center r2.Vec
	Radius float64
}

func (c Circle) Contains(p r2.Vec) bool {
	return r2.Norm(r2.Sub(p, c.Center)) <= c.Radius
}

func (Circle) Kind() string { return "circle" }

// Ellipse is an (optionally rotated) ellipse. Width and Height are full axis
// lengths, not semi-axes.
type Ellipse struct {
	Center r2.Vec
	Width  float64
	Height float64
	Angle  float64
}

func (e Ellipse) Contains(p r2.Vec) bool {
	a, b := e.Width/2, e.Height/2
	if a == 0 || b == 0 {
		return false
	}
	local := toLocal(p, e.Center, e.Angle)
	u, v := local.X/a, local.Y/b
	return u*u+v*v <= 1
}

func (Ellipse) Kind() string { return "ellipse" }

// Point is a single pixel. It contains every point of the unit pixel
// centred on it.
type Point struct {
	Center r2.Vec
}

func (pt Point) Contains(p r2.Vec) bool {
	return math.Abs(p.X-pt.Center.X) <= 0.5 && math.Abs(p.Y-pt.Center.Y) <= 0.5
}

func (Point) Kind() string { return "point" }

// CircularAnnulus is the ring between two concentric circles. The inner
// boundary is excluded and the outer boundary included, which matches the
// outer circle with the inner circle removed.
type CircularAnnulus struct {
	Center      r2.Vec
	InnerRadius float64
	OuterRadius float64
}

func (a CircularAnnulus) Contains(p r2.Vec) bool {
	d := r2.Norm(r2.Sub(p, a.Center))
	return d > a.InnerRadius && d <= a.OuterRadius
}

func (CircularAnnulus) Kind() string { return "circular-annulus" }

// toLocal moves p into the frame of a shape centred at c and rotated by angle.
func toLocal(p, c r2.Vec, angle float64) r2.Vec {
	if angle != 0 {
		p = r2.Rotate(p, -angle, c)
	}
	return r2.Sub(p, c)
}
