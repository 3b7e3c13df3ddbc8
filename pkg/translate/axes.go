package translate

import (
	"fmt"

	"regionbridge/pkg/subset"
)

// ResolvePixelAxes returns the identifiers of the x (storage axis 1, fast)
// and y (storage axis 0, slow) pixel axes of a two dimensional dataset.
//
// The dataset's axis list is normally in storage order. When the workbench
// has reordered it, which shows up as the first listed identifier not
// recording axis 0, the identifiers' own Axis fields decide.
func ResolvePixelAxes(data subset.Dataset) (x, y *subset.PixelAxis, err error) {
	axes := data.PixelAxes()
	if data.Ndim() != 2 || len(axes) != 2 {
		return nil, nil, fail(ErrUnsupportedDimensionality, "", fmt.Sprintf("dataset has %d dimensions", data.Ndim()))
	}

	x, y = axes[1], axes[0]
	if axes[0].Axis != 0 {
		for _, a := range axes {
			switch a.Axis {
			case 0:
				y = a
			case 1:
				x = a
			}
		}
	}
	return x, y, nil
}

// PixelCoordinates converts a storage order index tuple into pixel (x, y)
// coordinates, so (row, column) becomes (column, row) for an image in
// storage order.
func PixelCoordinates(data subset.Dataset, index []int) (x, y float64, err error) {
	xa, ya, err := ResolvePixelAxes(data)
	if err != nil {
		return 0, 0, err
	}
	if len(index) != 2 {
		return 0, 0, fail(ErrUnsupportedDimensionality, "pixel", fmt.Sprintf("index %v does not address a 2-d pixel", index))
	}
	if xa.Axis < 0 || xa.Axis > 1 || ya.Axis < 0 || ya.Axis > 1 {
		return 0, 0, fail(ErrAxisMismatch, "pixel", "dataset axes do not record storage indices 0 and 1")
	}
	return float64(index[xa.Axis]), float64(index[ya.Axis]), nil
}

// orientation reports whether axis is the dataset's x or y pixel axis.
func orientation(data subset.Dataset, axis *subset.PixelAxis, kind string) (subset.Orientation, error) {
	x, y, err := ResolvePixelAxes(data)
	if err != nil {
		return "", err
	}
	switch axis {
	case x:
		return subset.OrientX, nil
	case y:
		return subset.OrientY, nil
	}
	return "", fail(ErrAxisMismatch, kind, fmt.Sprintf("axis %s", axis))
}
