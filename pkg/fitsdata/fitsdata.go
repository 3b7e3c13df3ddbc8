// Package fitsdata adapts FITS images to workbench datasets and writes
// selection masks back out as FITS.
package fitsdata

import (
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/pkg/errors"

	"regionbridge/internal/models"
)

// structural keywords describe the HDU layout rather than the data
var structural = map[string]bool{
	"SIMPLE": true, "BITPIX": true, "NAXIS": true, "EXTEND": true,
	"BZERO": true, "BSCALE": true, "XTENSION": true, "PCOUNT": true,
	"GCOUNT": true, "END": true, "COMMENT": true, "HISTORY": true,
}

// Load reads the first image HDU with data from r and describes it as a
// dataset. FITS lists axes fastest first, so NAXIS1 becomes the last
// storage axis (x). Axes of length one are dropped, so a single plane
// stored as a cube still loads as an image.
func Load(r io.Reader, label string) (*models.Image, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open FITS stream")
	}
	defer f.Close()

	for i, hdu := range f.HDUs() {
		if hdu.Type() != fitsio.IMAGE_HDU {
			continue
		}
		hdr := hdu.Header()
		axes := hdr.Axes()
		if len(axes) == 0 {
			continue
		}

		shape := make([]int, 0, len(axes))
		for j := len(axes) - 1; j >= 0; j-- {
			if axes[j] != 1 {
				shape = append(shape, axes[j])
			}
		}
		if len(shape) == 0 {
			return nil, fmt.Errorf("HDU %d holds a single pixel", i)
		}

		img := models.NewImage(label, shape...)
		for _, key := range hdr.Keys() {
			card := hdr.Get(key)
			if card == nil || structural[key] || strings.HasPrefix(key, "NAXIS") {
				continue
			}
			s, ok := card.Value.(string)
			if !ok {
				continue
			}
			if key == "BUNIT" {
				img.Unit = strings.TrimSpace(s)
				continue
			}
			img.Meta[key] = strings.TrimSpace(s)
		}
		return img, nil
	}
	return nil, errors.New("no image HDU with data found")
}

// LoadFile opens path and loads it with Load, using the file name as the
// dataset label.
func LoadFile(path string) (*models.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	label := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		label = path[i+1:]
	}
	img, err := Load(fh, label)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return img, nil
}

// WriteMask streams mask as a 16-bit FITS primary image with one row per
// mask row. Set pixels are written as 1, clear pixels as 0, stored unscaled
// (BZERO 0, BSCALE 1). Scaling cards in metadata are ignored.
func WriteMask(w io.Writer, mask *image.Gray, metadata []fitsio.Card) error {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return errors.New("cannot write an empty mask")
	}

	cards := make([]fitsio.Card, 0, len(metadata)+2)
	for _, c := range metadata {
		if c.Name != "BZERO" && c.Name != "BSCALE" {
			cards = append(cards, c)
		}
	}
	cards = append(cards, fitsio.Card{Name: "BZERO", Value: 0}, fitsio.Card{Name: "BSCALE", Value: 1.0})

	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()

	im := fitsio.NewImage(16, []int{width, height})
	defer im.Close()
	if err := im.Header().Append(cards...); err != nil {
		return errors.Wrap(err, "failed to add FITS header cards")
	}

	ints := make([]int16, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if mask.GrayAt(b.Min.X+col, b.Min.Y+row).Y != 0 {
				ints[row*width+col] = 1
			}
		}
	}
	if err := im.Write(ints); err != nil {
		return err
	}
	return fits.Write(im)
}

// ReadMask reads a mask written by WriteMask.
func ReadMask(r io.Reader) (*image.Gray, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open FITS stream")
	}
	defer f.Close()

	hdu, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, errors.New("primary HDU is not an image")
	}
	axes := hdu.Header().Axes()
	if len(axes) != 2 {
		return nil, fmt.Errorf("mask has %d axes, expected 2", len(axes))
	}
	width, height := axes[0], axes[1]

	ints := make([]int16, width*height)
	if err := hdu.Read(&ints); err != nil {
		return nil, errors.Wrap(err, "failed to read mask pixels")
	}
	mask := image.NewGray(image.Rect(0, 0, width, height))
	for i, v := range ints {
		if v != 0 {
			mask.Pix[(i/width)*mask.Stride+i%width] = 255
		}
	}
	return mask, nil
}
