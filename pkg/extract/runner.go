package extract

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/gomdwarehouse/internal/logging"
)

// Runner extracts many documents concurrently with one Engine.
type Runner struct {
	Engine *Engine
}

// NewRunner returns a Runner using engine.
func NewRunner(engine *Engine) *Runner {
	return &Runner{Engine: engine}
}

// Run discovers the files selected by opts and extracts each one on its own
// goroutine, at most opts.Jobs at a time. Per-document failures are recorded
// on the outcome; only discovery errors and cancellation fail the run. A
// cancelled run still returns the outcomes completed so far.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: Stats{FilesDiscovered: len(files), Items: make(map[string]int)},
	}
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	logger.Debug("extracting", logging.FieldFiles, len(files), logging.FieldJobs, jobs)

	// Each goroutine owns one slot; slot order is path order.
	outcomes := make([]FileOutcome, len(files))
	done := make([]bool, len(files))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := r.Engine.ExtractFile(gctx, path, opts.Config)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			outcomes[i] = FileOutcome{Path: path, Result: doc, Error: err}
			done[i] = true
			return nil
		})
	}

	waitErr := group.Wait()

	for i, outcome := range outcomes {
		if done[i] {
			result.accumulate(outcome)
		}
	}

	logger.Debug("extraction finished",
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesErrored, result.Stats.FilesErrored,
		logging.FieldElapsed, time.Since(start))

	if waitErr != nil {
		return result, fmt.Errorf("run cancelled: %w", waitErr)
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}
