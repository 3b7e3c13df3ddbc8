// Package translate converts workbench selections into pixel-space shapes
// and recognised shapes back into selections.
package translate

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"regionbridge/pkg/logger"
	"regionbridge/pkg/shape"
	"regionbridge/pkg/subset"
)

// DefaultMaxDepth bounds the nesting of selections accepted by a Translator.
const DefaultMaxDepth = 256

// Options tunes a Translator. The zero value gives exact annulus matching.
type Options struct {
	// CenterTolerance is the largest distance between two circle centres
	// that still counts as concentric when recognising annuli. Zero demands
	// bit-for-bit equal centres.
	CenterTolerance float64

	// MaxDepth limits selection nesting, DefaultMaxDepth when zero
	MaxDepth int

	Logger logger.ILogger
}

// Translator converts selections made on one dataset. It only reads the
// dataset and holds no mutable state, so it is safe for concurrent use.
type Translator struct {
	data subset.Dataset
	opts Options
}

// New creates a translator for selections on data.
func New(data subset.Dataset, opts Options) *Translator {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = &logger.NullLogger{}
	}
	return &Translator{data: data, opts: opts}
}

// ToShape translates s on data with default options.
func ToShape(data subset.Dataset, s subset.State) (shape.Shape, error) {
	return New(data, Options{}).ToShape(s)
}

// ToShape translates a selection into the equivalent pixel-space shape.
//
// A MultiOrState without children is a programming error and panics.
func (t *Translator) ToShape(s subset.State) (shape.Shape, error) {
	return t.toShape(s, 1)
}

func (t *Translator) toShape(s subset.State, depth int) (shape.Shape, error) {
	if s == nil {
		return nil, fail(ErrUnsupportedSubsetKind, "nil", "")
	}
	if depth > t.opts.MaxDepth {
		return nil, fail(ErrTooDeep, s.Kind(), fmt.Sprintf("limit is %d", t.opts.MaxDepth))
	}

	switch v := s.(type) {
	case subset.ROIState:
		return t.roiToShape(v)

	case subset.RangeState:
		o, err := orientation(t.data, v.Axis, v.Kind())
		if err != nil {
			return nil, err
		}
		return RangeToRect(t.data, o, v.Low, v.High)

	case subset.MultiRangeState:
		o, err := orientation(t.data, v.Axis, v.Kind())
		if err != nil {
			return nil, err
		}
		if len(v.Ranges) == 0 {
			return nil, fail(ErrEmptyRange, v.Kind(), "")
		}
		var out shape.Shape
		for i, r := range v.Ranges {
			rect, err := RangeToRect(t.data, o, r.Low, r.High)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				out = rect
				continue
			}
			out = shape.Combine(shape.Or, out, rect)
		}
		return out, nil

	case subset.PixelMaskState:
		x, y, err := PixelCoordinates(t.data, v.Index)
		if err != nil {
			return nil, err
		}
		return shape.Point{Center: r2.Vec{X: x, Y: y}}, nil

	case subset.AndState:
		if ring, ok := t.matchAnnulus(v); ok {
			t.opts.Logger.Debugf("recognised annulus at (%g, %g), radii %g..%g",
				ring.Center.X, ring.Center.Y, ring.InnerRadius, ring.OuterRadius)
			return ring, nil
		}
		return t.combine(shape.And, v.Left, v.Right, depth)

	case subset.OrState:
		return t.combine(shape.Or, v.Left, v.Right, depth)

	case subset.XorState:
		return t.combine(shape.Xor, v.Left, v.Right, depth)

	case subset.MultiOrState:
		if len(v.States) == 0 {
			panic("translate: multi-or selection has no children")
		}
		out, err := t.toShape(v.States[0], depth+1)
		if err != nil {
			return nil, err
		}
		for _, child := range v.States[1:] {
			next, err := t.toShape(child, depth+1)
			if err != nil {
				return nil, err
			}
			out = shape.Combine(shape.Or, out, next)
		}
		return out, nil
	}

	// NotState and InequalityState have no pixel-space shape on their own
	return nil, fail(ErrUnsupportedSubsetKind, s.Kind(), "")
}

func (t *Translator) combine(op shape.Op, a, b subset.State, depth int) (shape.Shape, error) {
	left, err := t.toShape(a, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := t.toShape(b, depth+1)
	if err != nil {
		return nil, err
	}
	return shape.Combine(op, left, right), nil
}

// roiToShape maps an ROI onto its shape. The ROI's parameters are already
// pixel coordinates, so the axes it was drawn on only matter for ranges.
func (t *Translator) roiToShape(st subset.ROIState) (shape.Shape, error) {
	if st.ROI == nil {
		return nil, fail(ErrUnsupportedShape, "nil", "")
	}

	switch r := st.ROI.(type) {
	case subset.RectangularROI:
		return shape.Rectangle{
			Center: r2.Vec{X: (r.XMin + r.XMax) / 2, Y: (r.YMin + r.YMax) / 2},
			Width:  r.XMax - r.XMin,
			Height: r.YMax - r.YMin,
			Angle:  r.Theta,
		}, nil

	case subset.PolygonalROI:
		return shape.Polygon{
			VX: append([]float64(nil), r.VX...),
			VY: append([]float64(nil), r.VY...),
		}, nil

	case subset.CircularROI:
		return shape.Circle{Center: r2.Vec{X: r.XC, Y: r.YC}, Radius: r.Radius}, nil

	case subset.EllipticalROI:
		return shape.Ellipse{
			Center: r2.Vec{X: r.XC, Y: r.YC},
			Width:  2 * r.RadiusX,
			Height: 2 * r.RadiusY,
			Angle:  r.Theta,
		}, nil

	case subset.PointROI:
		return shape.Point{Center: r2.Vec{X: r.X, Y: r.Y}}, nil

	case subset.RangeROI:
		return RangeToRect(t.data, t.rangeOrientation(st, r), r.Min, r.Max)

	case subset.CircularAnnulusROI:
		return shape.CircularAnnulus{
			Center:      r2.Vec{X: r.XC, Y: r.YC},
			InnerRadius: r.InnerRadius,
			OuterRadius: r.OuterRadius,
		}, nil

	case subset.FreehandROI:
		inner := subset.ROIState{X: st.X, Y: st.Y, ROI: r.Resolved}
		if x, y, err := ResolvePixelAxes(t.data); err == nil {
			inner.X, inner.Y = x, y
		}
		s, err := t.roiToShape(inner)
		if err != nil {
			return nil, &Error{Err: ErrUnsupportedShape, Kind: r.Kind(), Cause: err}
		}
		return s, nil
	}

	return nil, fail(ErrUnsupportedShape, st.ROI.Kind(), "")
}

// rangeOrientation picks the pixel axis a range ROI constrains. When the
// ROI's axis is a pixel axis, that axis decides, so a range drawn with
// swapped axes still lands on the right one. Otherwise, as for a range over
// a main component, the ROI's own orientation is used.
func (t *Translator) rangeOrientation(st subset.ROIState, r subset.RangeROI) subset.Orientation {
	axis := st.X
	if r.Orientation == subset.OrientY {
		axis = st.Y
	}
	if o, err := orientation(t.data, axis, r.Kind()); err == nil {
		return o
	}
	return r.Orientation
}
