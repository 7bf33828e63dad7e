package reader

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds how long a single file read may take before the
// record degrades to unreadable.
const DefaultTimeout = 10 * time.Second

// Options configures the concurrent reader.
type Options struct {
	Workers int           // worker count; <=0 means runtime.NumCPU()
	Timeout time.Duration // per-file read timeout; <=0 means DefaultTimeout
}

// ReadAll reads every path through a bounded worker pool. The returned slice
// is index-aligned with paths regardless of completion order, so output
// ordering stays deterministic. A read that exceeds the per-file timeout is
// marked unreadable; it never blocks the rest of the batch.
func ReadAll(ctx context.Context, paths []string, opts Options, logger *zap.Logger) []Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		logger.Debug("Adjusted worker count", zap.Int("workers", workers))
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	results := make([]Result, len(paths))
	jobs := make(chan int, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		workerLogger := logger.With(zap.Int("workerID", w))
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = readWithTimeout(ctx, paths[i], timeout, workerLogger)
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// readWithTimeout runs Read in a goroutine and abandons it when the deadline
// or the caller's context expires.
func readWithTimeout(ctx context.Context, path string, timeout time.Duration, logger *zap.Logger) Result {
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- Read(path)
	}()

	select {
	case res := <-done:
		if res.Status == StatusUnreadable {
			logger.Warn("Failed to read file", zap.String("path", path), zap.Error(res.Reason))
		}
		return res
	case <-rctx.Done():
		logger.Warn("File read timed out",
			zap.String("path", path),
			zap.Duration("timeout", timeout))
		return Result{
			Status: StatusUnreadable,
			Reason: fmt.Errorf("read timed out after %s: %w", timeout, rctx.Err()),
		}
	}
}
