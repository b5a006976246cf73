package analyzer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"discchapters/internal/disc"
	"discchapters/internal/logging"
	"discchapters/internal/report"
)

// ScanResult is the outcome for one file of a scan. Err is set when that file
// failed; other files are unaffected.
type ScanResult struct {
	File   disc.File
	Report *report.Report
	Cached bool
	Err    error
}

// ProgressFunc is told about each finished file. Calls are serialized.
type ProgressFunc func(done, total int, result ScanResult)

// Scan analyzes every playlist and title set under root with at most workers
// files in flight. Results keep the order of disc.List. Only listing errors and
// cancellation fail the scan as a whole. progress may be nil.
func (a *Analyzer) Scan(ctx context.Context, root string, workers int, progress ProgressFunc) ([]ScanResult, error) {
	files, err := disc.List(root)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	started := time.Now()
	results := make([]ScanResult, len(files))
	var (
		progressMu sync.Mutex
		done       int
	)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, file := range files {
		group.Go(func() error {
			rep, cached, err := a.analyzeFile(gctx, file)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logging.WarnWithContext(a.logger, "file skipped", "scan_file_failed",
					logging.String(logging.FieldPath, file.Path),
					logging.Error(err),
					logging.String(logging.FieldImpact, "no chapters reported for this file"))
			}
			results[i] = ScanResult{File: file, Report: rep, Cached: cached, Err: err}
			if progress != nil {
				progressMu.Lock()
				done++
				progress(done, len(files), results[i])
				progressMu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	a.logger.Info("scan finished",
		logging.String(logging.FieldPath, root),
		logging.Int("files", len(files)),
		logging.Int("failed", failed),
		logging.Int("workers", workers),
		logging.Duration("elapsed", time.Since(started)))
	return results, nil
}
