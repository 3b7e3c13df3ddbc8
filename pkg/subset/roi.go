package subset

// Orientation selects which axis of an ROIState a RangeROI constrains.
type Orientation string

const (
	OrientX Orientation = "x"
	OrientY Orientation = "y"
)

// ROI is a geometric region of interest drawn in the plane of an ROIState.
// Angles are radians.
type ROI interface {
	Kind() string
	isROI()
}

// RectangularROI is bounded by XMin..XMax and YMin..YMax before rotation by
// Theta about its centre.
type RectangularROI struct {
	XMin, XMax float64
	YMin, YMax float64
	Theta      float64
}

// PolygonalROI lists vertex coordinates in drawing order.
type PolygonalROI struct {
	VX []float64
	VY []float64
}

type CircularROI struct {
	XC, YC float64
	Radius float64
}

// EllipticalROI uses semi-axes RadiusX and RadiusY.
type EllipticalROI struct {
	XC, YC           float64
	RadiusX, RadiusY float64
	Theta            float64
}

type PointROI struct {
	X, Y float64
}

// RangeROI is a one dimensional range along the ROIState's X or Y axis.
type RangeROI struct {
	Orientation Orientation
	Min, Max    float64
}

type CircularAnnulusROI struct {
	XC, YC      float64
	InnerRadius float64
	OuterRadius float64
}

// FreehandROI wraps the concrete ROI a drawing tool resolved a freehand
// gesture into.
type FreehandROI struct {
	Resolved ROI
}

// CategoricalROI selects named categories. It has no pixel-space geometry.
type CategoricalROI struct {
	Categories []string
}

func (RectangularROI) Kind() string     { return "rectangle" }
func (PolygonalROI) Kind() string       { return "polygon" }
func (CircularROI) Kind() string        { return "circle" }
func (EllipticalROI) Kind() string      { return "ellipse" }
func (PointROI) Kind() string           { return "point" }
func (RangeROI) Kind() string           { return "range" }
func (CircularAnnulusROI) Kind() string { return "circular-annulus" }
func (FreehandROI) Kind() string        { return "freehand" }
func (CategoricalROI) Kind() string     { return "categorical" }

func (RectangularROI) isROI()     {}
func (PolygonalROI) isROI()       {}
func (CircularROI) isROI()        {}
func (EllipticalROI) isROI()      {}
func (PointROI) isROI()           {}
func (RangeROI) isROI()           {}
func (CircularAnnulusROI) isROI() {}
func (FreehandROI) isROI()        {}
func (CategoricalROI) isROI()     {}
