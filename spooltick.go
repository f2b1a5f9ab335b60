// Package spooltick orders camera spool files by acquisition time.
//
// Solis spool filenames are not monotonic with time; the FPGA tick
// counter embedded in each frame trailer is. This package ties together
// the metadata reader, the container decoder and the tick index so the
// common flows are one call:
//
//	g, err := spooltick.ResolveGeometry(metaPath, spooltick.Geometry{}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ix, path, err := spooltick.BuildIndex(ctx, spoolDir, "", g, nil)
//
// The persisted index can later stand in for the directory:
//
//	files, err := spooltick.Files(path)
package spooltick

import (
	"context"
	"strings"

	"github.com/dmc-labs/spooltick/pkg/log"
	"github.com/dmc-labs/spooltick/pkg/metadata"
	"github.com/dmc-labs/spooltick/pkg/spool"
	"github.com/dmc-labs/spooltick/pkg/tickindex"
)

// Geometry is the per-acquisition frame layout. See the spool package.
type Geometry = spool.Geometry

// Frame is one decoded image with its tick. See the spool package.
type Frame = spool.Frame

// Index is a tick-ordered file listing. See the tickindex package.
type Index = tickindex.Index

// ResolveGeometry reads an acquisitionmetadata.ini and resolves it to a
// Geometry. defaults supplies the dimensions the legacy metadata
// generation does not declare, plus the zero-column count for either
// generation. A nil logger discards warnings.
func ResolveGeometry(metaPath string, defaults Geometry, logger log.Logger) (Geometry, error) {
	src, err := metadata.Load(metaPath, metadata.Options{Log: logger})
	if err != nil {
		return Geometry{}, err
	}
	return src.Resolve(defaults)
}

// BuildIndex scans the spool files under spoolPath, orders them by tick
// and persists the index. An empty outTarget writes index.json into the
// spool directory. Returns the index and the artifact path it was
// written to.
func BuildIndex(ctx context.Context, spoolPath, outTarget string, g Geometry, logger log.Logger) (*Index, string, error) {
	files, err := spool.List(spoolPath)
	if err != nil {
		return nil, "", err
	}
	ix, err := tickindex.Build(ctx, files, g, tickindex.BuildOptions{Log: logger})
	if err != nil {
		return nil, "", err
	}
	if outTarget == "" {
		outTarget = spoolPath
	}
	path, err := ix.WriteFile(outTarget)
	if err != nil {
		return nil, "", err
	}
	return ix, path, nil
}

// Files returns spool file paths in reading order. A directory or spool
// file is listed directly; a persisted index artifact is loaded and its
// tick order returned, without reopening the spool files it names.
func Files(path string) ([]string, error) {
	if strings.HasSuffix(path, ".json") {
		ix, err := tickindex.Load(path)
		if err != nil {
			return nil, err
		}
		return ix.Paths(), nil
	}
	return spool.List(path)
}
