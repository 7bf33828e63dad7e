package format

import (
	"fmt"
	"strings"

	"ctxcopy/pkg/aggregate"
)

// separator divides file blocks in markdown output.
const separator = "\n\n---\n\n"

// Markdown renders each file as a bold path label followed by a fenced code
// block tagged with its language. Skipped files appear as an inline notice
// instead of a fence so nothing vanishes from the output.
type Markdown struct{}

func (Markdown) Name() string      { return "markdown" }
func (Markdown) Extension() string { return ".md" }

func (Markdown) Render(doc aggregate.Document) string {
	blocks := make([]string, 0, len(doc.Records))
	for _, rec := range doc.Records {
		blocks = append(blocks, markdownBlock(rec))
	}
	return strings.Join(blocks, separator) + "\n"
}

func markdownBlock(rec aggregate.FileRecord) string {
	header := fmt.Sprintf("**`%s`**", rec.Path)

	if rec.Skipped() {
		return fmt.Sprintf("%s\n\n_skipped (%s): %s_", header, rec.Status, rec.Reason)
	}
	if rec.Raw {
		// Content is already rendered markdown (e.g. a normalized notebook);
		// wrapping it in a fence would double-escape it.
		if rec.Content == "" {
			return header
		}
		return header + "\n\n" + rec.Content
	}
	return fmt.Sprintf("%s\n\n```%s\n%s\n```", header, rec.Language, strings.TrimSuffix(rec.Content, "\n"))
}
