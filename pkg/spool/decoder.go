package spool

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/dmc-labs/spooltick/pkg/log"
)

// Suffix is the file extension of spool container files.
const Suffix = ".dat"

// Frame is one decoded image with its trailer-derived tick. Samples are
// widened to uint32 in memory regardless of the on-disk bit depth, with
// padding columns already stripped.
type Frame struct {
	Width  int
	Height int
	Pix    []uint32

	// Tick is the FPGA counter embedded in the frame trailer. It is
	// monotonically related to elapsed acquisition time.
	Tick uint64
}

// At returns the sample at the given row and column.
func (f Frame) At(row, col int) uint32 {
	return f.Pix[row*f.Width+col]
}

// Blank reports whether every sample in the frame is zero. Some camera
// generations pad the end of a spool file with blank frames.
func (f Frame) Blank() bool {
	for _, p := range f.Pix {
		if p != 0 {
			return false
		}
	}
	return true
}

// DecodeOptions controls a single Decode call.
type DecodeOptions struct {
	// Frames selects which frame indices to decode. Nil means all
	// declared frames. Explicit indices must be ascending; each selected
	// frame is located by an absolute seek, so sparse selections do not
	// read the frames in between.
	Frames []int

	// TickOnly skips the pixel region entirely and returns only the tick
	// of the first selected frame. This is the hot path during index
	// building: one positioned read of the trailer, no frame allocation.
	TickOnly bool

	// StopAtBlank stops an all-frames decode at the first all-zero frame
	// instead of returning every declared frame. Older acquisitions end
	// files with blank padding frames; with this off (the default) they
	// are returned to the caller unchanged.
	StopAtBlank bool

	// KineticSec, when positive, enables the per-frame elapsed-seconds
	// estimate: frame i of file k is at (k*FramesPerFile+i)*KineticSec.
	KineticSec float64

	// FileIndex is the position of this file in the acquisition, used
	// only for the elapsed-seconds estimate.
	FileIndex int

	Log log.Logger
}

// Result is the output of one Decode call. Ticks is always populated for
// the selected frames; Frames is empty in tick-only mode and Elapsed is
// nil unless a kinetic period was configured.
type Result struct {
	Frames  []Frame
	Ticks   []uint64
	Elapsed []float64
}

// Decode reads the selected frames and their ticks from a single spool
// file. The declared geometry is validated against the file; mismatches
// are logged and decoding proceeds with the declared frame stride as
// authoritative, truncating to however many complete frames the file
// actually holds.
func Decode(path string, g Geometry, opts DecodeOptions) (*Result, error) {
	logger := log.OrNoop(opts.Log)

	if !strings.HasSuffix(path, Suffix) {
		return nil, fmt.Errorf("spooltick: %s is not a %s spool file", path, Suffix)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	pixBytes, err := g.PixelBytes()
	if err != nil {
		return nil, err
	}
	if computed := pixBytes + g.TrailerBytes; computed != g.FrameBytes {
		logger.Warn("file may be read incorrectly, declared frame bytes disagree with geometry",
			log.String("file", path),
			log.Int("declared", g.FrameBytes),
			log.Int("computed", computed))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	complete := int(fi.Size() / int64(g.FrameBytes))
	if fi.Size()%int64(g.FrameBytes) != 0 || complete != g.FramesPerFile {
		logger.Warn("file may be read incorrectly, size not consistent with declared frames per file",
			log.String("file", path),
			log.Int64("size", fi.Size()),
			log.Int("complete_frames", complete),
			log.Int("declared_frames", g.FramesPerFile))
	}

	if opts.TickOnly {
		idx := 0
		if len(opts.Frames) > 0 {
			idx = opts.Frames[0]
		}
		tick, err := readTrailerTick(f, g, pixBytes, idx, complete)
		if err != nil {
			return nil, err
		}
		return &Result{Ticks: []uint64{tick}}, nil
	}

	sel, explicit, err := selectFrames(opts.Frames, g.FramesPerFile, complete)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Frames: make([]Frame, 0, len(sel)),
		Ticks:  make([]uint64, 0, len(sel)),
	}
	if opts.KineticSec > 0 {
		res.Elapsed = make([]float64, 0, len(sel))
	}

	pixBuf := make([]byte, pixBytes)
	trailer := make([]byte, g.TrailerBytes)
	for _, idx := range sel {
		off := int64(idx) * int64(g.FrameBytes)
		if _, err := f.ReadAt(pixBuf, off); err != nil {
			return nil, fmt.Errorf("%w: frame %d of %s: %v", ErrTruncated, idx, path, err)
		}
		frame := unpackFrame(pixBuf, g)
		if _, err := f.ReadAt(trailer, off+int64(pixBytes)); err != nil {
			return nil, fmt.Errorf("%w: frame %d trailer of %s: %v", ErrTruncated, idx, path, err)
		}
		frame.Tick = trailerTick(trailer)

		if !explicit && opts.StopAtBlank && frame.Blank() {
			break
		}

		res.Frames = append(res.Frames, frame)
		res.Ticks = append(res.Ticks, frame.Tick)
		if opts.KineticSec > 0 {
			res.Elapsed = append(res.Elapsed,
				float64(opts.FileIndex*g.FramesPerFile+idx)*opts.KineticSec)
		}
	}
	return res, nil
}

// ReadTick returns the tick of a single frame without touching its pixel
// region. It performs exactly one positioned read of the trailer.
func ReadTick(path string, g Geometry, frame int) (uint64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	pixBytes, err := g.PixelBytes()
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return readTrailerTick(f, g, pixBytes, frame, -1)
}

// readTrailerTick reads one frame's trailer at its absolute offset and
// extracts the tick word. complete < 0 skips the bounds precheck and lets
// the read itself report truncation.
func readTrailerTick(f *os.File, g Geometry, pixBytes, idx, complete int) (uint64, error) {
	if idx < 0 {
		return 0, fmt.Errorf("spooltick: negative frame index %d", idx)
	}
	if complete >= 0 && idx >= complete {
		return 0, fmt.Errorf("%w: frame %d of %s holds only %d complete frames",
			ErrTruncated, idx, f.Name(), complete)
	}
	trailer := make([]byte, g.TrailerBytes)
	off := int64(idx)*int64(g.FrameBytes) + int64(pixBytes)
	if _, err := f.ReadAt(trailer, off); err != nil {
		return 0, fmt.Errorf("%w: frame %d trailer of %s: %v", ErrTruncated, idx, f.Name(), err)
	}
	return trailerTick(trailer), nil
}

// trailerTick extracts the tick from a raw trailer. The tick is the
// second-from-last 8-byte little-endian word, a fixed offset defined by
// the camera firmware.
func trailerTick(trailer []byte) uint64 {
	return binary.LittleEndian.Uint64(trailer[len(trailer)-16 : len(trailer)-8])
}

// unpackFrame decodes one pixel region into a Frame, widening samples to
// uint32 and dropping the trailing zero-padding columns of each row.
func unpackFrame(buf []byte, g Geometry) Frame {
	stride := g.Width + g.ZeroCols
	pix := make([]uint32, g.Width*g.Height)
	switch g.BitsPerPixel {
	case 16:
		for r := 0; r < g.Height; r++ {
			row := buf[r*stride*2:]
			for c := 0; c < g.Width; c++ {
				pix[r*g.Width+c] = uint32(binary.LittleEndian.Uint16(row[c*2:]))
			}
		}
	case 32:
		for r := 0; r < g.Height; r++ {
			row := buf[r*stride*4:]
			for c := 0; c < g.Width; c++ {
				pix[r*g.Width+c] = binary.LittleEndian.Uint32(row[c*4:])
			}
		}
	}
	return Frame{Width: g.Width, Height: g.Height, Pix: pix}
}

// selectFrames expands a frame selector into concrete indices. A nil
// selector means all declared frames, clamped to the complete frames the
// file holds. Explicit selectors must be ascending and in bounds.
func selectFrames(frames []int, declared, complete int) (sel []int, explicit bool, err error) {
	if frames == nil {
		n := declared
		if complete < n {
			n = complete
		}
		sel = make([]int, n)
		for i := range sel {
			sel[i] = i
		}
		return sel, false, nil
	}
	prev := -1
	for _, idx := range frames {
		if idx <= prev {
			return nil, true, fmt.Errorf("spooltick: frame selector must be ascending, got %v", frames)
		}
		if idx >= complete {
			return nil, true, fmt.Errorf("%w: frame %d selected but file holds only %d complete frames",
				ErrTruncated, idx, complete)
		}
		prev = idx
	}
	return frames, true, nil
}
