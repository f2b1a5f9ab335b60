package spool

import "errors"

// Errors returned by geometry resolution and frame decoding.
// These are returned by the public API and can be checked with errors.Is.
var (
	// ErrMetadata is returned when acquisition metadata is missing or does
	// not match any known format generation. Geometry cannot be resolved,
	// so this is fatal for the whole acquisition.
	ErrMetadata = errors.New("spooltick: unreadable acquisition metadata")

	// ErrUnsupportedEncoding is returned when the metadata declares a pixel
	// encoding other than Mono16 or Mono32.
	ErrUnsupportedEncoding = errors.New("spooltick: unsupported pixel encoding")

	// ErrUnsupportedBitDepth is returned when geometry declares a pixel
	// width other than 16 or 32 bits.
	ErrUnsupportedBitDepth = errors.New("spooltick: unsupported bits per pixel")

	// ErrTruncated is returned when a requested frame offset lies beyond
	// the end of the container file. Fatal for that file only.
	ErrTruncated = errors.New("spooltick: read past end of spool file")

	// ErrNoFiles is returned when spool discovery finds nothing to read.
	ErrNoFiles = errors.New("spooltick: no spool files found")
)
