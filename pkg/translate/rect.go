package translate

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"regionbridge/pkg/shape"
	"regionbridge/pkg/subset"
)

// RangeToRect builds the rectangle selected by low..high along one pixel
// axis. The rectangle covers the whole dataset along the other axis.
// low and high are used as given: low > high yields a negative extent.
func RangeToRect(data subset.Dataset, o subset.Orientation, low, high float64) (shape.Rectangle, error) {
	dims := data.Shape()
	if data.Ndim() != 2 || len(dims) != 2 {
		return shape.Rectangle{}, fail(ErrUnsupportedDimensionality, "range", fmt.Sprintf("dataset has %d dimensions", data.Ndim()))
	}
	ny, nx := float64(dims[0]), float64(dims[1])

	switch o {
	case subset.OrientX:
		return shape.Rectangle{
			Center: r2.Vec{X: (low + high) / 2, Y: ny / 2},
			Width:  high - low,
			Height: ny,
		}, nil
	case subset.OrientY:
		return shape.Rectangle{
			Center: r2.Vec{X: nx / 2, Y: (low + high) / 2},
			Width:  nx,
			Height: high - low,
		}, nil
	}
	return shape.Rectangle{}, fail(ErrAxisMismatch, "range", fmt.Sprintf("orientation %q", o))
}
