package tickindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultName is the artifact filename used when a directory is given as
// the output target.
const DefaultName = "index.json"

// ErrConflict is returned when an index would be written over an
// existing non-empty artifact. Indices are write-once: rebuilding
// requires a fresh target.
var ErrConflict = errors.New("spooltick: index artifact already exists")

// Entry pairs one spool file with the tick of its first frame. Ticks are
// stored as int64 so the artifact stays portable to consumers without
// native unsigned 64-bit arrays.
type Entry struct {
	Tick int64
	File string
}

// Index is the tick-ordered view of one acquisition directory. Entries
// are ascending by tick; Dir is the common parent the filenames are
// relative to.
type Index struct {
	Dir     string
	Entries []Entry
}

// artifact is the persisted form: three named entries, written once and
// read-only thereafter.
type artifact struct {
	Ticks []int64  `json:"ticks"`
	Files []string `json:"files"`
	Path  string   `json:"path"`
}

// Paths returns the absolute spool file paths in tick order.
func (ix *Index) Paths() []string {
	paths := make([]string, len(ix.Entries))
	for i, e := range ix.Entries {
		paths[i] = filepath.Join(ix.Dir, e.File)
	}
	return paths
}

// WriteFile persists the index to target. A directory target writes
// DefaultName inside it. The write is atomic: the artifact is staged in
// a temp file and renamed into place, so a failed build never leaves a
// partial index behind. Writing over an existing non-empty artifact is
// an ErrConflict and leaves it untouched.
func (ix *Index) WriteFile(target string) (string, error) {
	path := target
	if fi, err := os.Stat(target); err == nil && fi.IsDir() {
		path = filepath.Join(target, DefaultName)
	}
	if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
		return "", fmt.Errorf("%w: %s", ErrConflict, path)
	}

	art := artifact{
		Ticks: make([]int64, len(ix.Entries)),
		Files: make([]string, len(ix.Entries)),
		Path:  ix.Dir,
	}
	for i, e := range ix.Entries {
		art.Ticks[i] = e.Tick
		art.Files[i] = e.File
	}
	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return "", err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return path, nil
}

// Load reads a persisted index artifact. It does not re-open or
// re-validate the spool files it names; the artifact stands in for them.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("spooltick: bad index artifact %s: %w", path, err)
	}
	if len(art.Ticks) != len(art.Files) {
		return nil, fmt.Errorf("spooltick: bad index artifact %s: %d ticks vs %d files",
			path, len(art.Ticks), len(art.Files))
	}
	ix := &Index{Dir: art.Path, Entries: make([]Entry, len(art.Files))}
	for i := range art.Files {
		ix.Entries[i] = Entry{Tick: art.Ticks[i], File: art.Files[i]}
	}
	return ix, nil
}
