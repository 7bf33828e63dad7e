package format

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"ctxcopy/pkg/aggregate"
)

// WriteFile writes content to path through a temporary file in the target
// directory followed by a rename, so an interrupted run never leaves a
// half-written artifact.
func WriteFile(path, content string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ctxcopy-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize output %s: %w", path, err)
	}

	logger.Debug("Wrote output file", zap.String("path", path), zap.Int("bytes", len(content)))
	return nil
}

// WriteDir writes one artifact per document into dir, named after the
// document's sanitized label plus ext (the formatter's extension when ext is
// empty). A failed artifact is reported but does not stop the rest.
func WriteDir(dir string, docs []aggregate.Document, f Formatter, ext string, logger *zap.Logger) (int, []error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ext == "" {
		ext = f.Extension()
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	written := 0
	var errs []error
	for _, doc := range docs {
		name := SafeName(doc.Label) + ext
		path := filepath.Join(dir, name)
		if err := WriteFile(path, f.Render(doc), logger); err != nil {
			logger.Error("Failed to write output artifact",
				zap.String("label", doc.Label),
				zap.String("path", path),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("output %s: %w", name, err))
			continue
		}
		written++
	}
	return written, errs
}

var unsafeNameChars = regexp.MustCompile(`[^\w.-]+`)

// SafeName derives a filesystem-safe artifact name from a selection label.
func SafeName(label string) string {
	name := strings.ReplaceAll(label, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "*", "star")
	name = strings.ReplaceAll(name, "?", "q")
	name = strings.ReplaceAll(name, ".", "dot")
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "selection"
	}
	return name
}
