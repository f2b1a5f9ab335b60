// Package log provides a structured logging abstraction for spooltick.
//
// The core decoding and indexing packages log through the Logger
// interface so that library consumers can plug in their own logger.
// Two implementations ship with the module:
//
//   - [ZerologAdapter]: console logging via zerolog (used by the CLI)
//   - [NoopLogger]: discards everything (default for library use)
//
// Fields are constructed with the helpers in this package:
//
//	logger.Warn("file shorter than declared",
//	    log.String("file", path),
//	    log.Int("frames", n))
package log
