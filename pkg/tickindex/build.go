package tickindex

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmc-labs/spooltick/pkg/log"
	"github.com/dmc-labs/spooltick/pkg/spool"
)

// BuildOptions controls an index build.
type BuildOptions struct {
	// Workers bounds the tick-scan worker pool. Zero picks a default
	// suited to an I/O-bound scan.
	Workers int

	// Progress, when set, is called with (scanned, total) every
	// ProgressEvery files. Calls are serialized under the scan's lock,
	// so the callback needs no synchronization of its own.
	Progress      func(done, total int)
	ProgressEvery int

	Log log.Logger
}

// Build scans every spool file's first-frame tick and produces an index
// ordered ascending by tick, ties keeping their original list order.
//
// The scan is parallel: each file needs only one positioned trailer read
// and shares nothing with the others beyond the immutable geometry.
// Results land in a per-file slot, so workers never contend on the
// collection. Sorting is single-threaded once every file is in.
//
// A file that cannot be read is logged with its identity and excluded
// from the index; only a failure to read every file, or a cancelled
// context, fails the build.
func Build(ctx context.Context, files []string, g spool.Geometry, opts BuildOptions) (*Index, error) {
	logger := log.OrNoop(opts.Log)

	if len(files) == 0 {
		return nil, spool.ErrNoFiles
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8
		}
	}
	every := opts.ProgressEvery
	if every <= 0 {
		every = 100
	}

	logger.Info("ordering randomly named spool files vs. time ticks",
		log.Int("files", len(files)),
		log.Int("workers", workers))
	start := time.Now()

	type slot struct {
		tick int64
		err  error
	}
	slots := make([]slot, len(files))

	var mu sync.Mutex
	done := 0

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		i, f := i, f
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tick, err := spool.ReadTick(f, g, 0)
			if err != nil {
				slots[i] = slot{err: err}
				logger.Warn("skipping unreadable spool file",
					log.String("file", f), log.Err(err))
			} else {
				slots[i] = slot{tick: int64(tick)}
			}
			mu.Lock()
			done++
			if opts.Progress != nil && done%every == 0 {
				opts.Progress(done, len(files))
			}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ix := &Index{Dir: filepath.Dir(files[0])}
	skipped := 0
	for i, s := range slots {
		if s.err != nil {
			skipped++
			continue
		}
		ix.Entries = append(ix.Entries, Entry{Tick: s.tick, File: filepath.Base(files[i])})
	}
	if len(ix.Entries) == 0 {
		return nil, fmt.Errorf("spooltick: no readable spool files among %d", len(files))
	}

	sort.SliceStable(ix.Entries, func(a, b int) bool {
		return ix.Entries[a].Tick < ix.Entries[b].Tick
	})

	if skipped > 0 {
		logger.Warn("some spool files were skipped",
			log.Int("skipped", skipped),
			log.Int("total", len(files)))
	}
	logger.Info("sorted spool files vs. time ticks",
		log.Int("files", len(ix.Entries)),
		log.Duration("elapsed", time.Since(start)))
	return ix, nil
}
