// Package visualization renders translated shapes onto a dataset's pixel
// grid so a selection can be inspected or handed to tools that only
// understand masks.
package visualization

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/astrogo/fitsio"
	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/spatial/r2"

	"regionbridge/pkg/fitsdata"
	"regionbridge/pkg/shape"
	"regionbridge/pkg/subset"
)

// Viewer rasterizes shapes over the pixel grid of a two dimensional dataset.
type Viewer struct {
	// dimensions of the pixel grid
	width  int
	height int

	// workers is the number of goroutines used per render
	workers int
}

// NewViewer creates a viewer for data. workers <= 0 uses every CPU.
func NewViewer(data subset.Dataset, workers int) (*Viewer, error) {
	dims := data.Shape()
	if data.Ndim() != 2 || len(dims) != 2 {
		return nil, fmt.Errorf("masks need a 2-d dataset, got %d dimensions", data.Ndim())
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Viewer{width: dims[1], height: dims[0], workers: workers}, nil
}

// RenderMask samples s at every pixel centre. Pixel (c, r) is sampled at
// (c, r) and set to 255 when inside.
func (v *Viewer) RenderMask(s shape.Shape) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, v.width, v.height))

	rows := make(chan int, v.height)
	for r := 0; r < v.height; r++ {
		rows <- r
	}
	close(rows)

	// rows are disjoint slices of Pix, so workers never share memory
	var wg sync.WaitGroup
	for w := 0; w < v.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range rows {
				line := img.Pix[r*img.Stride : r*img.Stride+v.width]
				for c := range line {
					if s.Contains(r2.Vec{X: float64(c), Y: float64(r)}) {
						line[c] = 255
					}
				}
			}
		}()
	}
	wg.Wait()

	return img
}

// Coverage counts the pixels whose centres lie inside s.
func (v *Viewer) Coverage(s shape.Shape) int {
	return CountSet(v.RenderMask(s))
}

// CountSet counts the set pixels of a rendered mask.
func CountSet(mask *image.Gray) int {
	n := 0
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for _, p := range mask.Pix[(y-b.Min.Y)*mask.Stride : (y-b.Min.Y)*mask.Stride+b.Dx()] {
			if p != 0 {
				n++
			}
		}
	}
	return n
}

// SaveMask writes a rendered mask as a TIFF image when filename ends in
// .tif or .tiff, and as PNG otherwise.
func (v *Viewer) SaveMask(img image.Image, filename string) error {
	encode := EncodePNG
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		encode = EncodeTIFF
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// EncodePNG writes a mask as PNG, favouring speed over size.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

// EncodeTIFF writes a mask as deflate compressed TIFF.
func EncodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// SaveMaskFITS writes a rendered mask as a FITS image with the given
// header cards.
func (v *Viewer) SaveMaskFITS(img *image.Gray, filename string, cards []fitsio.Card) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := fitsdata.WriteMask(file, img, cards); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
