// Package models holds the concrete dataset types handed to the translators.
package models

import (
	"fmt"

	"regionbridge/pkg/subset"
)

// Image is a calibrated image (or any gridded dataset) as seen by the
// workbench: a storage shape plus one identifier per pixel axis.
type Image struct {
	// Label is the dataset name shown to the user
	Label string

	// Unit is the physical unit of the pixel values, e.g. "MJy/sr"
	Unit string

	// Meta carries free-form header keywords from the source file
	Meta map[string]string

	// shape is in storage order: axis 0 varies slowest
	shape []int

	// axes is the workbench's ordered pixel axis list. It normally matches
	// storage order but may be reordered by the workbench.
	axes []*subset.PixelAxis
}

// NewImage creates an image dataset with the given storage shape. Pixel axes
// are labelled the way the workbench labels them, with the last two storage
// axes tagged as y and x.
func NewImage(label string, shape ...int) *Image {
	img := &Image{
		Label: label,
		Meta:  map[string]string{},
		shape: append([]int(nil), shape...),
		axes:  make([]*subset.PixelAxis, len(shape)),
	}
	for i := range shape {
		img.axes[i] = subset.NewPixelAxis(axisLabel(i, len(shape)), i)
	}
	return img
}

func axisLabel(i, ndim int) string {
	switch ndim - i {
	case 1:
		return fmt.Sprintf("Pixel Axis %d [x]", i)
	case 2:
		return fmt.Sprintf("Pixel Axis %d [y]", i)
	case 3:
		return fmt.Sprintf("Pixel Axis %d [z]", i)
	}
	return fmt.Sprintf("Pixel Axis %d", i)
}

func (img *Image) Ndim() int { return len(img.shape) }

// Shape returns a copy of the storage shape.
func (img *Image) Shape() []int { return append([]int(nil), img.shape...) }

// PixelAxes returns the pixel axis identifiers in workbench order.
func (img *Image) PixelAxes() []*subset.PixelAxis {
	return append([]*subset.PixelAxis(nil), img.axes...)
}

// Size is the number of pixels.
func (img *Image) Size() int {
	n := 1
	for _, s := range img.shape {
		n *= s
	}
	return n
}

// Reordered returns a view of img whose pixel axis list is permuted by perm,
// the way the workbench reorders axes when linking datasets. The identifiers
// themselves, and therefore their Axis fields, are shared with img.
func (img *Image) Reordered(perm ...int) (*Image, error) {
	if len(perm) != len(img.axes) {
		return nil, fmt.Errorf("permutation has %d entries, image has %d axes", len(perm), len(img.axes))
	}
	seen := make([]bool, len(perm))
	axes := make([]*subset.PixelAxis, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return nil, fmt.Errorf("invalid permutation %v", perm)
		}
		seen[p] = true
		axes[i] = img.axes[p]
	}
	out := *img
	out.axes = axes
	return &out, nil
}

func (img *Image) String() string {
	return fmt.Sprintf("%s %v", img.Label, img.shape)
}
