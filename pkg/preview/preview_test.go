package preview

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmc-labs/spooltick/pkg/spool"
)

func frame(w, h int, fill func(i int) uint32) spool.Frame {
	pix := make([]uint32, w*h)
	for i := range pix {
		pix[i] = fill(i)
	}
	return spool.Frame{Width: w, Height: h, Pix: pix}
}

func TestMean(t *testing.T) {
	a := frame(2, 2, func(i int) uint32 { return 10 })
	b := frame(2, 2, func(i int) uint32 { return 30 })

	g, err := Mean([]spool.Frame{a, b})
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	for i, v := range g.Pix {
		if v != 20 {
			t.Errorf("pixel %d = %v, want 20", i, v)
		}
	}
}

func TestMeanRejectsMixedSizes(t *testing.T) {
	a := frame(2, 2, func(int) uint32 { return 1 })
	b := frame(3, 2, func(int) uint32 { return 1 })
	if _, err := Mean([]spool.Frame{a, b}); err == nil {
		t.Error("mixed frame sizes should be rejected")
	}
	if _, err := Mean(nil); err == nil {
		t.Error("empty stack should be rejected")
	}
}

func TestStretch8Gradient(t *testing.T) {
	// A linear ramp should map its low end near 0 and high end near 255.
	g := &Grid{Width: 16, Height: 16, Pix: make([]float64, 256)}
	for i := range g.Pix {
		g.Pix[i] = float64(i)
	}
	img := Stretch8(g)

	if img.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if img.GrayAt(0, 0).Y != 0 {
		t.Errorf("low end = %d, want 0 (clipped below the 0.5th percentile)", img.GrayAt(0, 0).Y)
	}
	if img.GrayAt(15, 15).Y != 255 {
		t.Errorf("high end = %d, want 255 (clipped above the 99.5th percentile)", img.GrayAt(15, 15).Y)
	}
}

func TestStretch8Flat(t *testing.T) {
	// A constant image has no dynamic range; it must not divide by zero.
	g := &Grid{Width: 2, Height: 2, Pix: []float64{7, 7, 7, 7}}
	img := Stretch8(g)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := img.GrayAt(x, y).Y; got != 255 {
				t.Errorf("flat image pixel (%d,%d) = %d, want 255", x, y, got)
			}
		}
	}
}

func TestWritePNG(t *testing.T) {
	g := &Grid{Width: 4, Height: 4, Pix: make([]float64, 16)}
	out := filepath.Join(t.TempDir(), "sub", "preview.png")

	if err := WritePNG(Stretch8(g), nil, time.Now(), out); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	fi, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if fi.Size() == 0 {
		t.Error("empty PNG written")
	}
}
