package spool

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// List returns the spool files under path in lexicographic order. The
// path may be a directory of spool files or a single spool file. The
// lexicographic order is only a starting point: spool filenames are not
// chronological, which is what the tick index exists to fix.
func List(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		if filepath.Ext(path) != Suffix {
			return nil, fmt.Errorf("%w: %s is not a %s file", ErrNoFiles, path, Suffix)
		}
		return []string{path}, nil
	}
	files, err := filepath.Glob(filepath.Join(path, "*"+Suffix))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, path)
	}
	sort.Strings(files)
	return files, nil
}

// Newest returns the spool file with the most recent modification time.
// A file path is returned as-is; a directory is scanned for spool files.
// Used by the live preview, which always wants the frame the camera
// wrote last.
func Newest(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}
	files, err := filepath.Glob(filepath.Join(path, "*"+Suffix))
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoFiles, path)
	}
	newest := ""
	var newestMod int64
	for _, f := range files {
		st, err := os.Stat(f)
		if err != nil {
			continue
		}
		if newest == "" || st.ModTime().UnixNano() > newestMod {
			newest = f
			newestMod = st.ModTime().UnixNano()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w: %s", ErrNoFiles, path)
	}
	return newest, nil
}
