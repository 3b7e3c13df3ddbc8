package translate

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"regionbridge/internal/models"
	"regionbridge/pkg/shape"
	"regionbridge/pkg/subset"
)

// newImage returns a 128 row by 256 column image with its x and y axes
func newImage(t *testing.T) (*models.Image, *subset.PixelAxis, *subset.PixelAxis) {
	t.Helper()
	img := models.NewImage("test", 128, 256)
	axes := img.PixelAxes()
	return img, axes[1], axes[0]
}

func roi(x, y *subset.PixelAxis, r subset.ROI) subset.State {
	return subset.ROIState{X: x, Y: y, ROI: r}
}

func ExampleRangeToRect() {
	img := models.NewImage("example", 128, 256)
	rect, _ := RangeToRect(img, subset.OrientX, 1, 3.5)
	fmt.Printf("center=(%g, %g) width=%g height=%g\n", rect.Center.X, rect.Center.Y, rect.Width, rect.Height)
	// Output: center=(2.25, 64) width=2.5 height=128
}

func TestRangeToRect(t *testing.T) {
	img, _, _ := newImage(t)

	tests := []struct {
		name   string
		o      subset.Orientation
		low    float64
		high   float64
		expect shape.Rectangle
	}{
		{"x", subset.OrientX, 1, 3.5, shape.Rectangle{Center: r2.Vec{X: 2.25, Y: 64}, Width: 2.5, Height: 128}},
		{"y", subset.OrientY, 10, 20, shape.Rectangle{Center: r2.Vec{X: 128, Y: 15}, Width: 256, Height: 10}},
		{"reversed", subset.OrientX, 5, 3, shape.Rectangle{Center: r2.Vec{X: 4, Y: 64}, Width: -2, Height: 128}},
	}
	for _, tt := range tests {
		got, err := RangeToRect(img, tt.o, tt.low, tt.high)
		if err != nil {
			t.Fatalf("%s: RangeToRect failed: %v", tt.name, err)
		}
		if got != tt.expect {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.expect, got)
		}
	}
}

func TestRangeToRectRequires2D(t *testing.T) {
	cube := models.NewImage("cube", 10, 20, 30)
	_, err := RangeToRect(cube, subset.OrientX, 0, 1)
	if !errors.Is(err, ErrUnsupportedDimensionality) {
		t.Errorf("Expected ErrUnsupportedDimensionality, got %v", err)
	}

	axes := cube.PixelAxes()
	_, err = ToShape(cube, subset.RangeState{Axis: axes[2], Low: 0, High: 1})
	if !errors.Is(err, ErrUnsupportedDimensionality) {
		t.Errorf("Expected ErrUnsupportedDimensionality from ToShape, got %v", err)
	}
}

func TestResolvePixelAxes(t *testing.T) {
	img, xAxis, yAxis := newImage(t)

	x, y, err := ResolvePixelAxes(img)
	if err != nil {
		t.Fatalf("ResolvePixelAxes failed: %v", err)
	}
	if x != xAxis || y != yAxis {
		t.Errorf("Expected x=%s y=%s, got x=%s y=%s", xAxis, yAxis, x, y)
	}

	// The workbench may list the axes in another order; the identifiers keep
	// their meaning
	swapped, err := img.Reordered(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	x, y, err = ResolvePixelAxes(swapped)
	if err != nil {
		t.Fatalf("ResolvePixelAxes on reordered image failed: %v", err)
	}
	if x != xAxis || y != yAxis {
		t.Errorf("Reordered: expected x=%s y=%s, got x=%s y=%s", xAxis, yAxis, x, y)
	}
}

func TestMultiRangeUnion(t *testing.T) {
	img, xAxis, _ := newImage(t)

	s := subset.MultiRangeState{Axis: xAxis, Ranges: []subset.Interval{{Low: 26, High: 27.5}, {Low: 28, High: 29}}}
	got, err := ToShape(img, s)
	if err != nil {
		t.Fatalf("ToShape failed: %v", err)
	}
	c, ok := got.(shape.Compound)
	if !ok || c.Op != shape.Or {
		t.Fatalf("Expected OR compound, got %#v", got)
	}

	for _, p := range []r2.Vec{{X: 26.4, Y: 54.6}, {X: 28.26, Y: 75.5}} {
		if !got.Contains(p) {
			t.Errorf("Expected union to contain %v", p)
		}
	}
	if got.Contains(r2.Vec{X: 27.75, Y: 34}) {
		t.Error("Expected union to exclude the gap between ranges")
	}
}

func TestMultiRangeFoldsLeft(t *testing.T) {
	img, xAxis, _ := newImage(t)
	s := subset.MultiRangeState{Axis: xAxis, Ranges: []subset.Interval{{Low: 0, High: 1}, {Low: 2, High: 3}, {Low: 4, High: 5}}}
	got, err := ToShape(img, s)
	if err != nil {
		t.Fatalf("ToShape failed: %v", err)
	}
	outer := got.(shape.Compound)
	if _, ok := outer.Left.(shape.Compound); !ok {
		t.Errorf("Expected left-nested compound, got left %T", outer.Left)
	}
	if r, ok := outer.Right.(shape.Rectangle); !ok || r.Center.X != 4.5 {
		t.Errorf("Expected last range on the right, got %#v", outer.Right)
	}
}

func TestMultiRangeEmpty(t *testing.T) {
	img, xAxis, _ := newImage(t)

	_, err := ToShape(img, subset.MultiRangeState{Axis: xAxis})
	if !errors.Is(err, ErrEmptyRange) {
		t.Errorf("Expected ErrEmptyRange, got %v", err)
	}

	// the axis is checked before emptiness
	_, err = ToShape(img, subset.MultiRangeState{Axis: subset.NewPixelAxis("World 0", -1)})
	if !errors.Is(err, ErrAxisMismatch) || errors.Is(err, ErrEmptyRange) {
		t.Errorf("Expected ErrAxisMismatch for empty range on foreign axis, got %v", err)
	}
}

func TestAxisMismatch(t *testing.T) {
	img, _, _ := newImage(t)
	world := subset.NewPixelAxis("Right Ascension", -1)

	tests := []subset.State{
		subset.RangeState{Axis: world, Low: 1, High: 2},
		subset.MultiRangeState{Axis: world, Ranges: []subset.Interval{{Low: 1, High: 2}}},
	}
	for _, s := range tests {
		_, err := ToShape(img, s)
		if !errors.Is(err, ErrAxisMismatch) {
			t.Errorf("%s: expected ErrAxisMismatch, got %v", s.Kind(), err)
		}
	}

	// an identifier from another dataset is not a pixel axis of this one
	other := models.NewImage("other", 128, 256)
	_, err := ToShape(img, subset.RangeState{Axis: other.PixelAxes()[1], Low: 1, High: 2})
	if !errors.Is(err, ErrAxisMismatch) {
		t.Errorf("Expected ErrAxisMismatch for foreign dataset axis, got %v", err)
	}
}

func TestROIDispatch(t *testing.T) {
	img, x, y := newImage(t)

	tests := []struct {
		name   string
		in     subset.ROI
		expect shape.Shape
	}{
		{"rectangle", subset.RectangularROI{XMin: 1, XMax: 5, YMin: 2, YMax: 6, Theta: 0.3},
			shape.Rectangle{Center: r2.Vec{X: 3, Y: 4}, Width: 4, Height: 4, Angle: 0.3}},
		{"circle", subset.CircularROI{XC: 10, YC: 20, Radius: 3},
			shape.Circle{Center: r2.Vec{X: 10, Y: 20}, Radius: 3}},
		{"ellipse", subset.EllipticalROI{XC: 10, YC: 20, RadiusX: 3, RadiusY: 1.5, Theta: 1},
			shape.Ellipse{Center: r2.Vec{X: 10, Y: 20}, Width: 6, Height: 3, Angle: 1}},
		{"point", subset.PointROI{X: 7, Y: 8},
			shape.Point{Center: r2.Vec{X: 7, Y: 8}}},
		{"annulus", subset.CircularAnnulusROI{XC: 1, YC: 2, InnerRadius: 3, OuterRadius: 4},
			shape.CircularAnnulus{Center: r2.Vec{X: 1, Y: 2}, InnerRadius: 3, OuterRadius: 4}},
		{"x range", subset.RangeROI{Orientation: subset.OrientX, Min: 1, Max: 3.5},
			shape.Rectangle{Center: r2.Vec{X: 2.25, Y: 64}, Width: 2.5, Height: 128}},
		{"y range", subset.RangeROI{Orientation: subset.OrientY, Min: 10, Max: 20},
			shape.Rectangle{Center: r2.Vec{X: 128, Y: 15}, Width: 256, Height: 10}},
	}
	for _, tt := range tests {
		got, err := ToShape(img, roi(x, y, tt.in))
		if err != nil {
			t.Errorf("%s: ToShape failed: %v", tt.name, err)
			continue
		}
		if got != tt.expect {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.expect, got)
		}
	}
}

func TestPolygonCopiedVerbatim(t *testing.T) {
	img, x, y := newImage(t)
	vx := []float64{0, 10, 10, 0}
	vy := []float64{0, 0, 5, 5}

	got, err := ToShape(img, roi(x, y, subset.PolygonalROI{VX: vx, VY: vy}))
	if err != nil {
		t.Fatalf("ToShape failed: %v", err)
	}
	poly := got.(shape.Polygon)
	if len(poly.VX) != 4 || len(poly.VY) != 4 {
		t.Fatalf("Expected 4 vertices without closing point, got %d/%d", len(poly.VX), len(poly.VY))
	}
	for i := range vx {
		if poly.VX[i] != vx[i] || poly.VY[i] != vy[i] {
			t.Errorf("Vertex %d reordered: got (%g, %g)", i, poly.VX[i], poly.VY[i])
		}
	}

	// the shape must not alias the selection
	vx[0] = 99
	if poly.VX[0] != 0 {
		t.Error("Polygon shares vertex storage with its ROI")
	}
}

func TestRangeROIOrientationFollowsAxis(t *testing.T) {
	img, x, y := newImage(t)

	// the ROI is drawn with the axes swapped; its "x" range constrains y
	got, err := ToShape(img, roi(y, x, subset.RangeROI{Orientation: subset.OrientX, Min: 10, Max: 20}))
	if err != nil {
		t.Fatalf("ToShape failed: %v", err)
	}
	expect := shape.Rectangle{Center: r2.Vec{X: 128, Y: 15}, Width: 256, Height: 10}
	if got != expect {
		t.Errorf("Expected %+v, got %+v", expect, got)
	}
}

// A scatter of pixel x against a data component draws ROIs whose y axis is
// not a pixel axis. Their parameters are still taken as pixel coordinates.
func TestMainComponentROIs(t *testing.T) {
	img, x, y := newImage(t)
	flux := subset.NewPixelAxis("flux", -1)

	rect := roi(x, y, subset.RectangularROI{XMin: 1, XMax: 5, YMin: 2, YMax: 6})
	circ := roi(x, flux, subset.CircularROI{XC: 4.75, YC: 5.75, Radius: 0.5})
	rectShape := shape.Rectangle{Center: r2.Vec{X: 3, Y: 4}, Width: 4, Height: 4}
	circShape := shape.Circle{Center: r2.Vec{X: 4.75, Y: 5.75}, Radius: 0.5}

	tests := []struct {
		name string
		in   subset.State
		op   shape.Op
	}{
		{"and", subset.And(rect, circ), shape.And},
		{"or", subset.Or(rect, circ), shape.Or},
		{"xor", subset.Xor(rect, circ), shape.Xor},
		{"multi-or", subset.MultiOr(rect, circ), shape.Or},
	}
	for _, tt := range tests {
		got, err := ToShape(img, tt.in)
		if err != nil {
			t.Errorf("%s: ToShape failed: %v", tt.name, err)
			continue
		}
		c, ok := got.(shape.Compound)
		if !ok || c.Op != tt.op {
			t.Errorf("%s: expected %s compound, got %#v", tt.name, tt.op, got)
			continue
		}
		if c.Left != rectShape || c.Right != circShape {
			t.Errorf("%s: expected %+v and %+v, got %+v and %+v", tt.name, rectShape, circShape, c.Left, c.Right)
		}
	}

	// a range on the component keeps its own orientation
	got, err := ToShape(img, roi(x, flux, subset.RangeROI{Orientation: subset.OrientY, Min: 10, Max: 22.2}))
	if err != nil {
		t.Fatalf("ToShape failed for range: %v", err)
	}
	expect := shape.Rectangle{Center: r2.Vec{X: 128, Y: 16.1}, Width: 256, Height: 12.2}
	r := got.(shape.Rectangle)
	if r.Center.X != expect.Center.X || r.Width != expect.Width || math.Abs(r.Center.Y-expect.Center.Y) > 1e-12 || math.Abs(r.Height-expect.Height) > 1e-12 {
		t.Errorf("Expected %+v, got %+v", expect, got)
	}
}

func TestFreehandROI(t *testing.T) {
	img, x, y := newImage(t)
	world := subset.NewPixelAxis("World 0", -1)

	// the wrapper's own axes are replaced by the pixel axes
	got, err := ToShape(img, roi(world, world, subset.FreehandROI{Resolved: subset.CircularROI{XC: 5, YC: 6, Radius: 2}}))
	if err != nil {
		t.Fatalf("ToShape failed: %v", err)
	}
	if expect := (shape.Circle{Center: r2.Vec{X: 5, Y: 6}, Radius: 2}); got != expect {
		t.Errorf("Expected %+v, got %+v", expect, got)
	}

	_, err = ToShape(img, roi(x, y, subset.FreehandROI{Resolved: subset.CategoricalROI{Categories: []string{"a"}}}))
	if !errors.Is(err, ErrUnsupportedShape) {
		t.Fatalf("Expected ErrUnsupportedShape, got %v", err)
	}
	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != "freehand" {
		t.Errorf("Expected failure named after the freehand ROI, got %v", err)
	}
	if terr.Cause == nil {
		t.Error("Expected inner failure to be kept as the cause")
	}
}

func TestUnsupportedROI(t *testing.T) {
	img, x, y := newImage(t)
	_, err := ToShape(img, roi(x, y, subset.CategoricalROI{Categories: []string{"star"}}))
	var terr *Error
	if !errors.As(err, &terr) || !errors.Is(err, ErrUnsupportedShape) || terr.Kind != "categorical" {
		t.Errorf("Expected ErrUnsupportedShape for categorical, got %v", err)
	}
}

func TestPixelMask(t *testing.T) {
	img, _, _ := newImage(t)

	got, err := ToShape(img, subset.PixelMaskState{Index: []int{3, 7}})
	if err != nil {
		t.Fatalf("ToShape failed: %v", err)
	}
	if expect := (shape.Point{Center: r2.Vec{X: 7, Y: 3}}); got != expect {
		t.Errorf("Expected %+v, got %+v", expect, got)
	}

	_, err = ToShape(img, subset.PixelMaskState{Index: []int{1, 2, 3}})
	if !errors.Is(err, ErrUnsupportedDimensionality) {
		t.Errorf("Expected ErrUnsupportedDimensionality for 3-d index, got %v", err)
	}
}

func TestBooleanComposition(t *testing.T) {
	img, x, y := newImage(t)
	rect := roi(x, y, subset.RectangularROI{XMin: 1, XMax: 5, YMin: 2, YMax: 6})
	circ := roi(x, y, subset.CircularROI{XC: 4.75, YC: 5.75, Radius: 0.5})

	inBoth := r2.Vec{X: 4.5, Y: 5.5}
	inNeither := r2.Vec{X: 30, Y: 40}
	rectOnly := r2.Vec{X: 3, Y: 4}

	tests := []struct {
		name string
		s    subset.State
		op   shape.Op
		p    r2.Vec
		want bool
	}{
		{"and in both", subset.And(rect, circ), shape.And, inBoth, true},
		{"and in neither", subset.And(rect, circ), shape.And, r2.Vec{X: 3, Y: 1}, false},
		{"or rect only", subset.Or(rect, circ), shape.Or, rectOnly, true},
		{"or in neither", subset.Or(rect, circ), shape.Or, inNeither, false},
		{"xor in both", subset.Xor(rect, circ), shape.Xor, inBoth, false},
		{"xor rect only", subset.Xor(rect, circ), shape.Xor, rectOnly, true},
	}
	for _, tt := range tests {
		got, err := ToShape(img, tt.s)
		if err != nil {
			t.Fatalf("%s: ToShape failed: %v", tt.name, err)
		}
		c, ok := got.(shape.Compound)
		if !ok || c.Op != tt.op {
			t.Fatalf("%s: expected %v compound, got %#v", tt.name, tt.op, got)
		}
		if c.Contains(tt.p) != tt.want {
			t.Errorf("%s: Contains(%v) = %v, expected %v", tt.name, tt.p, !tt.want, tt.want)
		}
	}

	// a point in neither shape is outside the AND but the OR must include
	// points of either side
	p := r2.Vec{X: 3, Y: 4}
	and, _ := ToShape(img, subset.And(rect, circ))
	or, _ := ToShape(img, subset.Or(rect, circ))
	if and.Contains(p) || !or.Contains(p) {
		t.Errorf("Expected (3, 4) outside AND and inside OR")
	}
}

func TestMultiOr(t *testing.T) {
	img, x, y := newImage(t)
	a := roi(x, y, subset.CircularROI{XC: 10, YC: 10, Radius: 1})
	b := roi(x, y, subset.CircularROI{XC: 20, YC: 10, Radius: 1})
	c := roi(x, y, subset.PointROI{X: 30, Y: 10})

	got, err := ToShape(img, subset.MultiOr(a, b, c))
	if err != nil {
		t.Fatalf("ToShape failed: %v", err)
	}
	outer := got.(shape.Compound)
	inner, ok := outer.Left.(shape.Compound)
	if !ok || outer.Op != shape.Or || inner.Op != shape.Or {
		t.Fatalf("Expected OR(OR(a, b), c), got %#v", got)
	}
	if _, ok := outer.Right.(shape.Point); !ok {
		t.Errorf("Expected last child on the right, got %T", outer.Right)
	}
	for _, p := range []r2.Vec{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 30, Y: 10}} {
		if !got.Contains(p) {
			t.Errorf("Expected union to contain %v", p)
		}
	}

	single, err := ToShape(img, subset.MultiOr(a))
	if err != nil {
		t.Fatalf("ToShape failed: %v", err)
	}
	if _, ok := single.(shape.Circle); !ok {
		t.Errorf("Expected single child to translate to itself, got %T", single)
	}
}

func TestMultiOrEmptyPanics(t *testing.T) {
	img, _, _ := newImage(t)
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for empty multi-or")
		}
	}()
	ToShape(img, subset.MultiOr())
}

func TestUnsupportedSubsetKinds(t *testing.T) {
	img, x, y := newImage(t)
	circ := roi(x, y, subset.CircularROI{XC: 1, YC: 1, Radius: 1})

	tests := []subset.State{
		subset.InequalityState{Axis: x, Operator: ">", Value: 3},
		subset.Not(circ),
		subset.Or(circ, subset.InequalityState{Axis: x, Operator: "<", Value: 1}),
		nil,
	}
	for i, s := range tests {
		_, err := ToShape(img, s)
		if !errors.Is(err, ErrUnsupportedSubsetKind) {
			t.Errorf("Case %d: expected ErrUnsupportedSubsetKind, got %v", i, err)
		}
	}
}

func TestMaxDepth(t *testing.T) {
	img, x, y := newImage(t)
	s := roi(x, y, subset.PointROI{X: 1, Y: 1})
	for i := 0; i < 10; i++ {
		s = subset.Or(s, roi(x, y, subset.PointROI{X: float64(i), Y: 1}))
	}

	if _, err := New(img, Options{MaxDepth: 20}).ToShape(s); err != nil {
		t.Errorf("Expected depth 11 to be accepted, got %v", err)
	}
	if _, err := New(img, Options{MaxDepth: 5}).ToShape(s); !errors.Is(err, ErrTooDeep) {
		t.Errorf("Expected ErrTooDeep, got %v", err)
	}
}
