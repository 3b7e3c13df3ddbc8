// Package subset models workbench selections: recursive boolean expressions
// whose leaves constrain a dataset along its pixel axes.
//
// Both the State and ROI grammars are closed. Every implementation lives in
// this package, and nodes are plain values that are never modified after
// construction, so a tree can be shared freely between goroutines.
package subset

// PixelAxis identifies one pixel axis of a dataset. Identifiers are compared
// by pointer identity only; Axis records the storage index the identifier
// refers to, independent of where it appears in a dataset's axis list.
type PixelAxis struct {
	Label string
	Axis  int
}

// NewPixelAxis creates a new axis identifier.
func NewPixelAxis(label string, axis int) *PixelAxis {
	return &PixelAxis{Label: label, Axis: axis}
}

func (a *PixelAxis) String() string {
	if a == nil {
		return "<nil axis>"
	}
	return a.Label
}

// Dataset is the read-only view of a workbench dataset needed to interpret
// selections: its dimensionality, storage shape (axis 0 varies slowest) and
// pixel axis identifiers.
type Dataset interface {
	Ndim() int
	Shape() []int
	PixelAxes() []*PixelAxis
}

// State is a node of a selection expression tree.
type State interface {
	// Kind names the node type, e.g. "range" or "and"
	Kind() string
	isState()
}

// Interval is a (Low, High) pair. Low is not required to be below High.
type Interval struct {
	Low  float64
	High float64
}

// RangeState selects Low..High along a single axis.
type RangeState struct {
	Axis *PixelAxis
	Low  float64
	High float64
}

// MultiRangeState is the union of several ranges along the same axis.
type MultiRangeState struct {
	Axis   *PixelAxis
	Ranges []Interval
}

// ROIState applies a geometric region of interest to the plane spanned by
// the X and Y axes.
type ROIState struct {
	X   *PixelAxis
	Y   *PixelAxis
	ROI ROI
}

// PixelMaskState selects a single pixel by its storage order index, i.e.
// (row, column) for an image.
type PixelMaskState struct {
	Index []int
}

// InequalityState compares the values along an axis with a constant. It is a
// valid workbench selection but has no geometric meaning.
type InequalityState struct {
	Axis     *PixelAxis
	Operator string
	Value    float64
}

type AndState struct{ Left, Right State }
type OrState struct{ Left, Right State }
type XorState struct{ Left, Right State }

// NotState inverts its child.
type NotState struct{ State State }

// MultiOrState is the union of any number of children, in order.
type MultiOrState struct{ States []State }

func (RangeState) Kind() string      { return "range" }
func (MultiRangeState) Kind() string { return "multi-range" }
func (ROIState) Kind() string        { return "roi" }
func (PixelMaskState) Kind() string  { return "pixel" }
func (InequalityState) Kind() string { return "inequality" }
func (AndState) Kind() string        { return "and" }
func (OrState) Kind() string         { return "or" }
func (XorState) Kind() string        { return "xor" }
func (NotState) Kind() string        { return "not" }
func (MultiOrState) Kind() string    { return "multi-or" }

func (RangeState) isState()      {}
func (MultiRangeState) isState() {}
func (ROIState) isState()        {}
func (PixelMaskState) isState()  {}
func (InequalityState) isState() {}
func (AndState) isState()        {}
func (OrState) isState()         {}
func (XorState) isState()        {}
func (NotState) isState()        {}
func (MultiOrState) isState()    {}

// And, Or, Xor, Not and MultiOr build combinator nodes.
func And(a, b State) State          { return AndState{Left: a, Right: b} }
func Or(a, b State) State           { return OrState{Left: a, Right: b} }
func Xor(a, b State) State          { return XorState{Left: a, Right: b} }
func Not(a State) State             { return NotState{State: a} }
func MultiOr(states ...State) State { return MultiOrState{States: states} }
