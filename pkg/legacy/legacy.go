// Package legacy drives an external decoder for the pre-2012 spool
// format: 12-bit packed pixels with alternating endianness, which the
// core decoder does not share any logic with.
//
// The decoder itself is an injected capability. This module never
// depends on one being present; a missing decoder is a configuration
// error reported before any file is opened.
package legacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmc-labs/spooltick/pkg/log"
)

// ErrUnavailable is returned by Convert when no Decoder was injected.
var ErrUnavailable = errors.New("spooltick: no legacy decoder configured")

// Decoder unpacks one pre-2012 spool file into a height x width integer
// grid. Implementations typically shell out to an external numerical
// engine.
type Decoder interface {
	Decode(ctx context.Context, file string, width, height int) ([][]int32, error)
}

// Sink receives each successfully decoded file. Returning an error
// aborts the batch; per-file decode failures never do.
type Sink func(index int, file string, img [][]int32) error

// Convert decodes a batch of legacy spool files through dec, feeding
// each result to sink. A file the decoder rejects is logged and skipped;
// the rest of the batch continues. The number of converted files is
// returned.
func Convert(ctx context.Context, dec Decoder, files []string, width, height int, sink Sink, logger log.Logger) (int, error) {
	logger = log.OrNoop(logger)
	if dec == nil {
		return 0, ErrUnavailable
	}
	if len(files) == 0 {
		return 0, errors.New("spooltick: no legacy spool files to convert")
	}

	converted := 0
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return converted, err
		}
		img, err := dec.Decode(ctx, f, width, height)
		if err != nil {
			logger.Error("legacy decoder failed, skipping file",
				log.String("file", f), log.Err(err))
			continue
		}
		if len(img) != height || (height > 0 && len(img[0]) != width) {
			logger.Error("legacy decoder returned improper size array",
				log.String("file", f),
				log.Int("rows", len(img)))
			continue
		}
		if err := sink(i, f, img); err != nil {
			return converted, fmt.Errorf("spooltick: sink failed on %s: %w", f, err)
		}
		converted++
	}
	return converted, nil
}
