package subset

import (
	"encoding/json"
	"fmt"
)

// wireState is the tagged JSON form of a State node.
type wireState struct {
	Type     string            `json:"type"`
	Axis     string            `json:"axis,omitempty"`
	Low      float64           `json:"low,omitempty"`
	High     float64           `json:"high,omitempty"`
	Ranges   [][2]float64      `json:"ranges,omitempty"`
	X        string            `json:"x,omitempty"`
	Y        string            `json:"y,omitempty"`
	ROI      *wireROI          `json:"roi,omitempty"`
	Index    []int             `json:"index,omitempty"`
	Operator string            `json:"operator,omitempty"`
	Value    float64           `json:"value,omitempty"`
	Left     json.RawMessage   `json:"left,omitempty"`
	Right    json.RawMessage   `json:"right,omitempty"`
	Subset   json.RawMessage   `json:"subset,omitempty"`
	Subsets  []json.RawMessage `json:"subsets,omitempty"`
}

type wireROI struct {
	Type        string    `json:"type"`
	XMin        float64   `json:"xmin,omitempty"`
	XMax        float64   `json:"xmax,omitempty"`
	YMin        float64   `json:"ymin,omitempty"`
	YMax        float64   `json:"ymax,omitempty"`
	Theta       float64   `json:"theta,omitempty"`
	VX          []float64 `json:"vx,omitempty"`
	VY          []float64 `json:"vy,omitempty"`
	XC          float64   `json:"xc,omitempty"`
	YC          float64   `json:"yc,omitempty"`
	Radius      float64   `json:"radius,omitempty"`
	RadiusX     float64   `json:"radius_x,omitempty"`
	RadiusY     float64   `json:"radius_y,omitempty"`
	X           float64   `json:"x,omitempty"`
	Y           float64   `json:"y,omitempty"`
	Orientation string    `json:"orientation,omitempty"`
	Min         float64   `json:"min,omitempty"`
	Max         float64   `json:"max,omitempty"`
	InnerRadius float64   `json:"inner_radius,omitempty"`
	OuterRadius float64   `json:"outer_radius,omitempty"`
	Resolved    *wireROI  `json:"resolved,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
}

// decoder resolves axis labels against one dataset. Labels that name no
// pixel axis become detached identifiers, one per label, so that the
// translator rather than the decoder reports the mismatch.
type decoder struct {
	axes     []*PixelAxis
	detached map[string]*PixelAxis
}

// Decode parses a tagged JSON selection. Axis references are pixel axis
// labels of ds, or the shorthands "x" and "y". ROI nodes default to x and y;
// range, multi-range and inequality nodes must name their axis.
func Decode(data []byte, ds Dataset) (State, error) {
	d := &decoder{axes: ds.PixelAxes(), detached: map[string]*PixelAxis{}}
	return d.state(data)
}

func (d *decoder) axis(label string) *PixelAxis {
	for _, a := range d.axes {
		if a.Label == label {
			return a
		}
	}
	want := -1
	switch label {
	case "x":
		want = 1
	case "y":
		want = 0
	}
	if want >= 0 {
		for _, a := range d.axes {
			if a.Axis == want {
				return a
			}
		}
	}
	if a, ok := d.detached[label]; ok {
		return a
	}
	a := NewPixelAxis(label, -1)
	d.detached[label] = a
	return a
}

func (d *decoder) state(data []byte) (State, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty selection")
	}
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	pair := func() (State, State, error) {
		left, err := d.state(w.Left)
		if err != nil {
			return nil, nil, fmt.Errorf("%s left: %w", w.Type, err)
		}
		right, err := d.state(w.Right)
		if err != nil {
			return nil, nil, fmt.Errorf("%s right: %w", w.Type, err)
		}
		return left, right, nil
	}

	// one dimensional constraints must name their axis
	axis := func() (*PixelAxis, error) {
		if w.Axis == "" {
			return nil, fmt.Errorf("%s selection without axis", w.Type)
		}
		return d.axis(w.Axis), nil
	}

	switch w.Type {
	case "range":
		a, err := axis()
		if err != nil {
			return nil, err
		}
		return RangeState{Axis: a, Low: w.Low, High: w.High}, nil
	case "multi-range":
		a, err := axis()
		if err != nil {
			return nil, err
		}
		ranges := make([]Interval, len(w.Ranges))
		for i, r := range w.Ranges {
			ranges[i] = Interval{Low: r[0], High: r[1]}
		}
		return MultiRangeState{Axis: a, Ranges: ranges}, nil
	case "roi":
		if w.ROI == nil {
			return nil, fmt.Errorf("roi selection without roi")
		}
		roi, err := decodeROI(w.ROI)
		if err != nil {
			return nil, err
		}
		x, y := w.X, w.Y
		if x == "" {
			x = "x"
		}
		if y == "" {
			y = "y"
		}
		return ROIState{X: d.axis(x), Y: d.axis(y), ROI: roi}, nil
	case "pixel":
		return PixelMaskState{Index: w.Index}, nil
	case "inequality":
		a, err := axis()
		if err != nil {
			return nil, err
		}
		return InequalityState{Axis: a, Operator: w.Operator, Value: w.Value}, nil
	case "and", "or", "xor":
		left, right, err := pair()
		if err != nil {
			return nil, err
		}
		switch w.Type {
		case "and":
			return And(left, right), nil
		case "or":
			return Or(left, right), nil
		}
		return Xor(left, right), nil
	case "not":
		inner, err := d.state(w.Subset)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return Not(inner), nil
	case "multi-or":
		states := make([]State, 0, len(w.Subsets))
		for i, raw := range w.Subsets {
			s, err := d.state(raw)
			if err != nil {
				return nil, fmt.Errorf("multi-or[%d]: %w", i, err)
			}
			states = append(states, s)
		}
		return MultiOr(states...), nil
	}
	return nil, fmt.Errorf("unknown selection type %q", w.Type)
}

func decodeROI(w *wireROI) (ROI, error) {
	switch w.Type {
	case "rectangle":
		return RectangularROI{XMin: w.XMin, XMax: w.XMax, YMin: w.YMin, YMax: w.YMax, Theta: w.Theta}, nil
	case "polygon":
		if len(w.VX) != len(w.VY) {
			return nil, fmt.Errorf("polygon roi: %d x vertices but %d y vertices", len(w.VX), len(w.VY))
		}
		return PolygonalROI{VX: w.VX, VY: w.VY}, nil
	case "circle":
		return CircularROI{XC: w.XC, YC: w.YC, Radius: w.Radius}, nil
	case "ellipse":
		return EllipticalROI{XC: w.XC, YC: w.YC, RadiusX: w.RadiusX, RadiusY: w.RadiusY, Theta: w.Theta}, nil
	case "point":
		return PointROI{X: w.X, Y: w.Y}, nil
	case "range":
		o := Orientation(w.Orientation)
		if o != OrientX && o != OrientY {
			return nil, fmt.Errorf("range roi: invalid orientation %q", w.Orientation)
		}
		return RangeROI{Orientation: o, Min: w.Min, Max: w.Max}, nil
	case "circular-annulus":
		return CircularAnnulusROI{XC: w.XC, YC: w.YC, InnerRadius: w.InnerRadius, OuterRadius: w.OuterRadius}, nil
	case "freehand":
		if w.Resolved == nil {
			return nil, fmt.Errorf("freehand roi without resolved roi")
		}
		inner, err := decodeROI(w.Resolved)
		if err != nil {
			return nil, fmt.Errorf("freehand: %w", err)
		}
		return FreehandROI{Resolved: inner}, nil
	case "categorical":
		return CategoricalROI{Categories: w.Categories}, nil
	}
	return nil, fmt.Errorf("unknown roi type %q", w.Type)
}

// Encode writes s in the tagged JSON form read by Decode. Axes are written
// by label.
func Encode(s State) ([]byte, error) {
	w, err := encodeState(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func encodeState(s State) (*wireState, error) {
	w := &wireState{Type: s.Kind()}
	raw := func(c State) (json.RawMessage, error) {
		return Encode(c)
	}
	var err error

	switch v := s.(type) {
	case RangeState:
		w.Axis, w.Low, w.High = v.Axis.String(), v.Low, v.High
	case MultiRangeState:
		w.Axis = v.Axis.String()
		for _, r := range v.Ranges {
			w.Ranges = append(w.Ranges, [2]float64{r.Low, r.High})
		}
	case ROIState:
		w.X, w.Y = v.X.String(), v.Y.String()
		if w.ROI, err = encodeROI(v.ROI); err != nil {
			return nil, err
		}
	case PixelMaskState:
		w.Index = v.Index
	case InequalityState:
		w.Axis, w.Operator, w.Value = v.Axis.String(), v.Operator, v.Value
	case AndState:
		if w.Left, err = raw(v.Left); err == nil {
			w.Right, err = raw(v.Right)
		}
	case OrState:
		if w.Left, err = raw(v.Left); err == nil {
			w.Right, err = raw(v.Right)
		}
	case XorState:
		if w.Left, err = raw(v.Left); err == nil {
			w.Right, err = raw(v.Right)
		}
	case NotState:
		w.Subset, err = raw(v.State)
	case MultiOrState:
		for _, c := range v.States {
			var r json.RawMessage
			if r, err = raw(c); err != nil {
				break
			}
			w.Subsets = append(w.Subsets, r)
		}
	default:
		return nil, fmt.Errorf("cannot encode selection of type %T", s)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func encodeROI(r ROI) (*wireROI, error) {
	w := &wireROI{Type: r.Kind()}
	switch v := r.(type) {
	case RectangularROI:
		w.XMin, w.XMax, w.YMin, w.YMax, w.Theta = v.XMin, v.XMax, v.YMin, v.YMax, v.Theta
	case PolygonalROI:
		w.VX, w.VY = v.VX, v.VY
	case CircularROI:
		w.XC, w.YC, w.Radius = v.XC, v.YC, v.Radius
	case EllipticalROI:
		w.XC, w.YC, w.RadiusX, w.RadiusY, w.Theta = v.XC, v.YC, v.RadiusX, v.RadiusY, v.Theta
	case PointROI:
		w.X, w.Y = v.X, v.Y
	case RangeROI:
		w.Orientation, w.Min, w.Max = string(v.Orientation), v.Min, v.Max
	case CircularAnnulusROI:
		w.XC, w.YC, w.InnerRadius, w.OuterRadius = v.XC, v.YC, v.InnerRadius, v.OuterRadius
	case FreehandROI:
		inner, err := encodeROI(v.Resolved)
		if err != nil {
			return nil, err
		}
		w.Resolved = inner
	case CategoricalROI:
		w.Categories = v.Categories
	default:
		return nil, fmt.Errorf("cannot encode roi of type %T", r)
	}
	return w, nil
}
