package translate

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"regionbridge/pkg/shape"
	"regionbridge/pkg/subset"
)

// matchAnnulus recognises AND(outer circle, NOT(inner circle)) with
// concentric circles and outer radius strictly larger.
func (t *Translator) matchAnnulus(and subset.AndState) (shape.CircularAnnulus, bool) {
	outer, ok := circle(and.Left)
	if !ok {
		return shape.CircularAnnulus{}, false
	}
	not, ok := and.Right.(subset.NotState)
	if !ok {
		return shape.CircularAnnulus{}, false
	}
	inner, ok := circle(not.State)
	if !ok {
		return shape.CircularAnnulus{}, false
	}

	if !t.concentric(outer, inner) || !(outer.Radius > inner.Radius) {
		return shape.CircularAnnulus{}, false
	}
	return shape.CircularAnnulus{
		Center:      r2.Vec{X: outer.XC, Y: outer.YC},
		InnerRadius: inner.Radius,
		OuterRadius: outer.Radius,
	}, true
}

func circle(s subset.State) (subset.CircularROI, bool) {
	st, ok := s.(subset.ROIState)
	if !ok {
		return subset.CircularROI{}, false
	}
	c, ok := st.ROI.(subset.CircularROI)
	return c, ok
}

func (t *Translator) concentric(a, b subset.CircularROI) bool {
	if t.opts.CenterTolerance <= 0 {
		return a.XC == b.XC && a.YC == b.YC
	}
	return math.Hypot(a.XC-b.XC, a.YC-b.YC) <= t.opts.CenterTolerance
}

// FromAnnulus rebuilds the selection an annulus is recognised from: the
// outer circle AND NOT the inner circle, both on the dataset's pixel axes.
func (t *Translator) FromAnnulus(a shape.CircularAnnulus) (subset.State, error) {
	x, y, err := ResolvePixelAxes(t.data)
	if err != nil {
		return nil, err
	}
	outer := subset.ROIState{X: x, Y: y, ROI: subset.CircularROI{XC: a.Center.X, YC: a.Center.Y, Radius: a.OuterRadius}}
	inner := subset.ROIState{X: x, Y: y, ROI: subset.CircularROI{XC: a.Center.X, YC: a.Center.Y, Radius: a.InnerRadius}}
	return subset.And(outer, subset.Not(inner)), nil
}

// FromShape converts a shape back into a selection. Only circular annuli
// have an inverse; anything else fails with ErrUnsupportedShape.
func (t *Translator) FromShape(s shape.Shape) (subset.State, error) {
	if a, ok := s.(shape.CircularAnnulus); ok {
		return t.FromAnnulus(a)
	}
	kind := "nil"
	if s != nil {
		kind = s.Kind()
	}
	return nil, fail(ErrUnsupportedShape, kind, "only circular annuli can be converted back to selections")
}
