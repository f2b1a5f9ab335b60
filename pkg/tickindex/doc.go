// Package tickindex orders spool files by acquisition time.
//
// Spool filenames are not chronological, but every frame trailer embeds
// a hardware tick counter that is. [Build] reads the first-frame tick of
// every file with the decoder's fast path, sorts the (tick, filename)
// pairs, and [Index.WriteFile] persists the result as a write-once JSON
// artifact. [Load] reconstructs the time-ordered file list later without
// touching the spool files again.
package tickindex
