package shape

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Op is a boolean operator joining the two halves of a Compound.
type Op int

const (
	And Op = iota
	Or
	Xor
)

var opNames = map[Op]string{
	And: "and",
	Or:  "or",
	Xor: "xor",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp is the inverse of Op.String.
func ParseOp(s string) (Op, error) {
	for op, name := range opNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown compound operator %q", s)
}

// Compound is the boolean combination of two shapes.
type Compound struct {
	Op    Op
	Left  Shape
	Right Shape
}

// Combine is shorthand for building a Compound.
func Combine(op Op, left, right Shape) Compound {
	return Compound{Op: op, Left: left, Right: right}
}

func (c Compound) Contains(p r2.Vec) bool {
	switch c.Op {
	case And:
		return c.Left.Contains(p) && c.Right.Contains(p)
	case Or:
		return c.Left.Contains(p) || c.Right.Contains(p)
	case Xor:
		return c.Left.Contains(p) != c.Right.Contains(p)
	}
	return false
}

func (Compound) Kind() string { return "compound" }

// Walk visits s and, for compounds, every descendant depth first. The visit
// function may return a replacement; returning the argument keeps it.
// Replacements are made on copies, s itself is never modified.
func Walk(s Shape, visit func(Shape) Shape) Shape {
	if c, ok := s.(Compound); ok {
		c.Left = Walk(c.Left, visit)
		c.Right = Walk(c.Right, visit)
		return visit(c)
	}
	return visit(s)
}
