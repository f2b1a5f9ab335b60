// Package spool decodes Andor Solis spool files: fixed-layout binary
// containers of camera frames, each frame followed by a trailer that
// embeds an FPGA tick counter.
//
// The on-disk layout of one frame is
//
//	(width+zerocols) * height pixel samples (16 or 32 bit, little endian)
//	trailer of TrailerBytes/8 unsigned 64-bit words
//
// repeated FramesPerFile times. The tick is the second-from-last trailer
// word. All structural parameters come from a [Geometry], resolved once
// per acquisition from the metadata the camera software writes next to
// the spool files (see the metadata package).
//
// Two decode paths exist: [Decode] reads full frames, and [ReadTick]
// reads only one frame's trailer with a single positioned read. The
// second is what makes indexing thousands of files cheap.
//
// Several metadata generations exist and disagree about which values are
// declared; [GeometrySource] and its [NewGen] and [LegacyGen] variants
// capture that split. Declared sizes are treated as hints: when a file
// disagrees with its metadata, the decoder logs a warning and trusts the
// file.
package spool
