// Package aggregate orchestrates the content pipeline: selection resolution,
// ignore filtering, concurrent reading, notebook normalization, and language
// classification. It is a pure function of its request; all state is built
// fresh per invocation and discarded.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"ctxcopy/pkg/ignore"
	"ctxcopy/pkg/lang"
	"ctxcopy/pkg/notebook"
	"ctxcopy/pkg/reader"
	"ctxcopy/pkg/resolve"
)

// ErrNoReadableFiles is returned when the selection yields no file with
// readable content. Warnings and skip records are still populated on the
// accompanying result.
var ErrNoReadableFiles = errors.New("no readable files in selection")

// Run executes the pipeline for one request. Per-file and per-selection
// failures are collected into the result; the only error conditions are a
// broken base directory and a total absence of readable content.
func Run(ctx context.Context, req Request, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	selection := req.Selection
	if len(selection) == 0 {
		selection = []string{"."}
	}
	baseDir := req.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}
	if info, err := os.Stat(absBase); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("base directory %s is not accessible", baseDir)
	}

	spec, err := ignore.Compile(absBase, req.Exclude, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("Compiled ignore spec", zap.Int("rules", spec.Len()))

	resolution, err := resolve.Resolve(selection, absBase, spec, logger)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, w := range resolution.Warnings {
		result.Warnings = append(result.Warnings, Warning{Selection: w.Selection, Reason: w.Reason})
	}

	files := resolution.Files()
	absPaths := make([]string, len(files))
	for i, rel := range files {
		absPaths[i] = filepath.Join(absBase, filepath.FromSlash(rel))
	}

	contents := reader.ReadAll(ctx, absPaths, reader.Options{
		Workers: req.MaxWorkers,
		Timeout: req.ReadTimeout,
	}, logger)

	classifier := lang.New(req.Languages)

	idx := 0
	for _, group := range resolution.Groups {
		doc := Document{Label: group.Label}
		for _, entry := range group.Entries {
			var rec FileRecord
			if entry.Ignored {
				rec = FileRecord{
					Path:     entry.Path,
					Language: classifier.Detect(entry.Path),
					Status:   StatusIgnored,
					Reason:   "matched ignore pattern",
				}
			} else {
				rec = buildRecord(entry.Path, contents[idx], classifier, req.MaxFileSizeKB, logger)
				idx++
			}
			if rec.Skipped() {
				result.Skipped++
			} else {
				result.Readable++
			}
			doc.Records = append(doc.Records, rec)
		}
		result.Documents = append(result.Documents, doc)
	}

	logger.Info("Aggregation complete",
		zap.Int("readable", result.Readable),
		zap.Int("skipped", result.Skipped),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("elapsed", time.Since(start)))

	if result.Readable == 0 {
		return result, ErrNoReadableFiles
	}
	return result, nil
}

// buildRecord assembles the manifest entry for one read outcome.
func buildRecord(rel string, res reader.Result, classifier *lang.Classifier, maxKB int, logger *zap.Logger) FileRecord {
	rec := FileRecord{
		Path:     rel,
		Language: classifier.Detect(rel),
		Status:   fromReader(res.Status),
	}

	switch rec.Status {
	case StatusUnreadable:
		rec.Reason = reasonString(res.Reason)
		return rec
	case StatusBinary:
		rec.Reason = "binary content"
		return rec
	case StatusEmpty:
		return rec
	}

	if maxKB > 0 && len(res.Content) > maxKB*1024 {
		logger.Debug("Skipping oversize file",
			zap.String("path", rel),
			zap.Int("sizeBytes", len(res.Content)),
			zap.Int("maxKB", maxKB))
		rec.Status = StatusUnreadable
		rec.Reason = fmt.Sprintf("exceeds size limit of %d KB", maxKB)
		return rec
	}

	if notebook.IsNotebook(rel) {
		rendered, err := notebook.Normalize([]byte(res.Content))
		if err != nil {
			logger.Warn("Failed to parse notebook", zap.String("path", rel), zap.Error(err))
			rec.Status = StatusUnreadable
			rec.Reason = reasonString(err)
			return rec
		}
		rec.Content = rendered
		rec.Raw = true
		return rec
	}

	rec.Content = res.Content
	return rec
}

// reasonString trims the error down to a single summary-friendly line.
func reasonString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return strings.SplitN(err.Error(), "\n", 2)[0]
}

// Combined flattens every document into a single one labeled "combined",
// preserving resolution order.
func (r *Result) Combined() Document {
	doc := Document{Label: "combined"}
	for _, d := range r.Documents {
		doc.Records = append(doc.Records, d.Records...)
	}
	return doc
}

// Summary renders the human-readable outcome: counts, then every skipped
// file with its reason, then selection warnings. Nothing is silently
// dropped.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d file(s) aggregated, %d skipped, %d warning(s)",
		r.Readable, r.Skipped, len(r.Warnings))

	for _, d := range r.Documents {
		for _, rec := range d.Records {
			if rec.Skipped() {
				fmt.Fprintf(&b, "\n  skipped %s: %s (%s)", rec.Path, rec.Reason, rec.Status)
			}
		}
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "\n  warning %s: %s", w.Selection, w.Reason)
	}
	return b.String()
}
