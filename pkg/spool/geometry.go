package spool

import (
	"fmt"
	"strconv"

	"github.com/dmc-labs/spooltick/pkg/log"
)

// Geometry holds the structural parameters shared by every spool file in
// one acquisition. It is resolved once from the acquisition metadata and
// treated as immutable afterwards.
type Geometry struct {
	// Width and Height are the useful image dimensions in pixels,
	// after padding columns are stripped.
	Width  int
	Height int

	// ZeroCols is the number of zero-padding columns some camera
	// revisions append to each row. They are read and then discarded.
	ZeroCols int

	// BitsPerPixel is the on-disk pixel width, 16 or 32.
	BitsPerPixel int

	// TrailerBytes is the size of the per-frame trailer. The trailer is
	// read as 8-byte unsigned words, so this must be a multiple of 8.
	TrailerBytes int

	// FrameBytes is the declared total bytes per frame including the
	// trailer. It is the authoritative stride when seeking, even when it
	// disagrees with the value recomputed from the other fields.
	FrameBytes int

	// FramesPerFile is the declared number of frames per spool file.
	FramesPerFile int
}

// SampleBytes returns the on-disk byte width of one pixel sample.
func (g Geometry) SampleBytes() (int, error) {
	switch g.BitsPerPixel {
	case 16:
		return 2, nil
	case 32:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, g.BitsPerPixel)
	}
}

// PixelCount returns the number of samples stored per frame, padding
// columns included.
func (g Geometry) PixelCount() int {
	return (g.Width + g.ZeroCols) * g.Height
}

// PixelBytes returns the byte length of one frame's pixel region.
func (g Geometry) PixelBytes() (int, error) {
	sb, err := g.SampleBytes()
	if err != nil {
		return 0, err
	}
	return g.PixelCount() * sb, nil
}

// ComputedFrameBytes recomputes the per-frame byte count from the pixel
// region and trailer. Older format generations may declare a FrameBytes
// that only approximates this value.
func (g Geometry) ComputedFrameBytes() (int, error) {
	pb, err := g.PixelBytes()
	if err != nil {
		return 0, err
	}
	return pb + g.TrailerBytes, nil
}

// Validate checks that the geometry is structurally usable for seeking
// and trailer extraction.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("spooltick: invalid image size %dx%d", g.Width, g.Height)
	}
	if g.ZeroCols < 0 {
		return fmt.Errorf("spooltick: negative zero-column count %d", g.ZeroCols)
	}
	if _, err := g.SampleBytes(); err != nil {
		return err
	}
	if g.TrailerBytes < 16 || g.TrailerBytes%8 != 0 {
		return fmt.Errorf("spooltick: trailer stride %d must be a multiple of 8 and hold at least two words", g.TrailerBytes)
	}
	if g.FrameBytes <= 0 {
		return fmt.Errorf("spooltick: frame byte count %d must be positive", g.FrameBytes)
	}
	if g.FramesPerFile <= 0 {
		return fmt.Errorf("spooltick: frames per file %d must be positive", g.FramesPerFile)
	}
	return nil
}

// GeometrySource is a resolved metadata format generation. The metadata
// package inspects which keys an acquisitionmetadata.ini carries and
// returns the matching variant; Resolve is then a pure function from the
// declared values (plus caller defaults) to a Geometry.
type GeometrySource interface {
	Resolve(defaults Geometry) (Geometry, error)
}

// NewGen is the 2016-present metadata generation. It declares the frame
// byte count, AOI dimensions, trailer stride and pixel encoding directly.
type NewGen struct {
	Width         int
	Height        int
	TrailerBytes  int
	FrameBytes    int
	FramesPerFile int

	// Encoding is the declared pixel encoding label, e.g. "Mono16".
	Encoding string

	// BestEffort makes an unrecognized encoding label a logged warning
	// instead of an error, as long as its trailing digits parse to a
	// supported bit depth.
	BestEffort bool

	Log log.Logger
}

// Resolve builds a Geometry from the declared values. Only ZeroCols is
// taken from the caller defaults; everything else comes from metadata.
func (s NewGen) Resolve(defaults Geometry) (Geometry, error) {
	bpp, err := bitsFromEncoding(s.Encoding)
	if err != nil {
		if !s.BestEffort {
			return Geometry{}, err
		}
		log.OrNoop(s.Log).Warn("spool file may not be read correctly, unexpected pixel encoding",
			log.String("encoding", s.Encoding))
		bpp, err = bitsFromDigits(s.Encoding)
		if err != nil {
			return Geometry{}, err
		}
	}
	g := Geometry{
		Width:         s.Width,
		Height:        s.Height,
		ZeroCols:      defaults.ZeroCols,
		BitsPerPixel:  bpp,
		TrailerBytes:  s.TrailerBytes,
		FrameBytes:    s.FrameBytes,
		FramesPerFile: s.FramesPerFile,
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// LegacyGen is the 2012-2015 metadata generation. It declares only the
// frame byte count; dimensions and trailer stride must be supplied by
// the caller, and the bit depth is fixed at 16.
type LegacyGen struct {
	FrameBytes    int
	FramesPerFile int

	Log log.Logger
}

// Resolve fills in the caller-supplied dimensions and sanity-checks them
// against the declared frame byte count. The check is approximate: the
// pixel region of a 16-bit frame should account for 90%-99.9% of the
// declared frame bytes.
func (s LegacyGen) Resolve(defaults Geometry) (Geometry, error) {
	if defaults.Width <= 0 || defaults.Height <= 0 {
		return Geometry{}, fmt.Errorf("%w: legacy metadata carries no image dimensions, supply width and height", ErrMetadata)
	}
	if defaults.TrailerBytes <= 0 {
		return Geometry{}, fmt.Errorf("%w: legacy metadata carries no trailer stride, supply one", ErrMetadata)
	}
	g := Geometry{
		Width:         defaults.Width,
		Height:        defaults.Height,
		ZeroCols:      defaults.ZeroCols,
		BitsPerPixel:  16,
		TrailerBytes:  defaults.TrailerBytes,
		FrameBytes:    s.FrameBytes,
		FramesPerFile: s.FramesPerFile,
	}
	pix := g.Width * g.Height * 2
	if float64(pix) < 0.9*float64(g.FrameBytes) || float64(pix) > 0.999*float64(g.FrameBytes) {
		log.OrNoop(s.Log).Warn("unlikely this format is read correctly, was binning or frame size different?",
			log.Int("pixel_bytes", pix),
			log.Int("frame_bytes", g.FrameBytes))
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// bitsFromEncoding maps a recognized pixel encoding label to its bit depth.
func bitsFromEncoding(encoding string) (int, error) {
	switch encoding {
	case "Mono16":
		return 16, nil
	case "Mono32":
		return 32, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
}

// bitsFromDigits derives a bit depth from the trailing digits of an
// encoding label, for best-effort handling of labels we have not seen.
func bitsFromDigits(encoding string) (int, error) {
	if len(encoding) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
	n, err := strconv.Atoi(encoding[len(encoding)-2:])
	if err != nil || (n != 16 && n != 32) {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
	return n, nil
}
