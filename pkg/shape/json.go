package shape

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// wireShape is the tagged JSON form shared by every shape kind. Only the
// fields relevant to Type are populated.
type wireShape struct {
	Type        string          `json:"type"`
	Center      *[2]float64     `json:"center,omitempty"`
	Width       *float64        `json:"width,omitempty"`
	Height      *float64        `json:"height,omitempty"`
	Angle       *float64        `json:"angle,omitempty"`
	Radius      *float64        `json:"radius,omitempty"`
	InnerRadius *float64        `json:"inner_radius,omitempty"`
	OuterRadius *float64        `json:"outer_radius,omitempty"`
	VX          []float64       `json:"vx,omitempty"`
	VY          []float64       `json:"vy,omitempty"`
	Op          string          `json:"op,omitempty"`
	Left        json.RawMessage `json:"left,omitempty"`
	Right       json.RawMessage `json:"right,omitempty"`
}

func vec(v r2.Vec) *[2]float64 { return &[2]float64{v.X, v.Y} }
func num(f float64) *float64   { return &f }

// Marshal encodes s as tagged JSON.
func Marshal(s Shape) ([]byte, error) {
	w, err := toWire(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func toWire(s Shape) (*wireShape, error) {
	w := &wireShape{Type: s.Kind()}
	switch v := s.(type) {
	case Rectangle:
		w.Center, w.Width, w.Height, w.Angle = vec(v.Center), num(v.Width), num(v.Height), num(v.Angle)
	case Polygon:
		w.VX, w.VY = v.VX, v.VY
	case Circle:
		w.Center, w.Radius = vec(v.Center), num(v.Radius)
	case Ellipse:
		w.Center, w.Width, w.Height, w.Angle = vec(v.Center), num(v.Width), num(v.Height), num(v.Angle)
	case Point:
		w.Center = vec(v.Center)
	case CircularAnnulus:
		w.Center, w.InnerRadius, w.OuterRadius = vec(v.Center), num(v.InnerRadius), num(v.OuterRadius)
	case Compound:
		left, err := Marshal(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := Marshal(v.Right)
		if err != nil {
			return nil, err
		}
		w.Op, w.Left, w.Right = v.Op.String(), left, right
	default:
		return nil, fmt.Errorf("cannot encode shape of type %T", s)
	}
	return w, nil
}

// Unmarshal decodes tagged JSON produced by Marshal.
func Unmarshal(data []byte) (Shape, error) {
	var w wireShape
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	center := func() (r2.Vec, error) {
		if w.Center == nil {
			return r2.Vec{}, fmt.Errorf("%s: missing center", w.Type)
		}
		return r2.Vec{X: w.Center[0], Y: w.Center[1]}, nil
	}
	val := func(f *float64) float64 {
		if f == nil {
			return 0
		}
		return *f
	}

	switch w.Type {
	case "polygon":
		if len(w.VX) != len(w.VY) {
			return nil, fmt.Errorf("polygon: %d x vertices but %d y vertices", len(w.VX), len(w.VY))
		}
		return Polygon{VX: w.VX, VY: w.VY}, nil
	case "compound":
		op, err := ParseOp(w.Op)
		if err != nil {
			return nil, err
		}
		left, err := Unmarshal(w.Left)
		if err != nil {
			return nil, fmt.Errorf("compound left: %w", err)
		}
		right, err := Unmarshal(w.Right)
		if err != nil {
			return nil, fmt.Errorf("compound right: %w", err)
		}
		return Compound{Op: op, Left: left, Right: right}, nil
	}

	c, err := center()
	if err != nil {
		return nil, err
	}
	switch w.Type {
	case "rectangle":
		return Rectangle{Center: c, Width: val(w.Width), Height: val(w.Height), Angle: val(w.Angle)}, nil
	case "circle":
		return Circle{Center: c, Radius: val(w.Radius)}, nil
	case "ellipse":
		return Ellipse{Center: c, Width: val(w.Width), Height: val(w.Height), Angle: val(w.Angle)}, nil
	case "point":
		return Point{Center: c}, nil
	case "circular-annulus":
		return CircularAnnulus{Center: c, InnerRadius: val(w.InnerRadius), OuterRadius: val(w.OuterRadius)}, nil
	}
	return nil, fmt.Errorf("unknown shape type %q", w.Type)
}
