// Package preview reduces a decoded frame stack to a single 8-bit
// grayscale image suitable for a quick-look display.
//
// The reduction is fixed by design: per-pixel mean over the stack, then
// a contrast stretch anchored at the 0.5th and 99.5th percentiles. The
// percentile bounds are constants, not knobs; they exist so one hot
// pixel cannot wash out the whole preview.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dmc-labs/spooltick/pkg/spool"
)

// Fixed contrast stretch anchors, as fractions of the sample population.
const (
	stretchLo = 0.005
	stretchHi = 0.995
)

// Grid is a Width x Height float64 image, the result of mean-reducing a
// frame stack.
type Grid struct {
	Width  int
	Height int
	Pix    []float64
}

// Mean reduces a stack of equally sized frames to their per-pixel mean.
func Mean(frames []spool.Frame) (*Grid, error) {
	if len(frames) == 0 {
		return nil, errors.New("spooltick: empty frame stack")
	}
	w, h := frames[0].Width, frames[0].Height
	sum := make([]float64, w*h)
	for _, f := range frames {
		if f.Width != w || f.Height != h {
			return nil, fmt.Errorf("spooltick: frame size %dx%d does not match stack %dx%d",
				f.Width, f.Height, w, h)
		}
		for i, p := range f.Pix {
			sum[i] += float64(p)
		}
	}
	n := float64(len(frames))
	for i := range sum {
		sum[i] /= n
	}
	return &Grid{Width: w, Height: h, Pix: sum}, nil
}

// Stretch8 maps the grid to an 8-bit grayscale image, linearly scaling
// the 0.5th..99.5th percentile range onto 0..255 and clipping outside it.
func Stretch8(g *Grid) *image.Gray {
	lo, hi := percentiles(g.Pix)
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	span := hi - lo
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := g.Pix[y*g.Width+x]
			var scaled float64
			if span > 0 {
				scaled = (v - lo) / span * 255
			} else if v >= hi {
				scaled = 255
			}
			if scaled < 0 {
				scaled = 0
			} else if scaled > 255 {
				scaled = 255
			}
			img.SetGray(x, y, color.Gray{Y: uint8(scaled)})
		}
	}
	return img
}

// percentiles returns the fixed low/high stretch anchors of the sample
// population.
func percentiles(pix []float64) (lo, hi float64) {
	sorted := make([]float64, len(pix))
	copy(sorted, pix)
	sort.Float64s(sorted)
	at := func(frac float64) float64 {
		i := int(frac * float64(len(sorted)-1))
		return sorted[i]
	}
	return at(stretchLo), at(stretchHi)
}

// Annotator decorates a preview image, typically with the capture time
// of the newest source file. Implementations are interchangeable; when
// no richer one is wired in, Plain keeps the pipeline working.
type Annotator interface {
	Annotate(img *image.Gray, captured time.Time) *image.Gray
}

// Plain is the always-available Annotator: it returns the image
// untouched.
type Plain struct{}

// Annotate returns img unchanged.
func (Plain) Annotate(img *image.Gray, _ time.Time) *image.Gray { return img }

// WritePNG encodes the annotated preview to path, creating parent
// directories as needed. A nil annotator falls back to Plain.
func WritePNG(img *image.Gray, ann Annotator, captured time.Time, path string) error {
	if ann == nil {
		ann = Plain{}
	}
	img = ann.Annotate(img, captured)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
