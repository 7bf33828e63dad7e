package format

import (
	"fmt"
	"strings"

	"ctxcopy/pkg/aggregate"
)

// textRule separates file sections in plain-text output.
var textRule = strings.Repeat("=", 50)

// Text renders files as plain text with ruled headers, for destinations
// where markdown fences are unwanted.
type Text struct{}

func (Text) Name() string      { return "txt" }
func (Text) Extension() string { return ".txt" }

func (Text) Render(doc aggregate.Document) string {
	sections := make([]string, 0, len(doc.Records))
	for _, rec := range doc.Records {
		sections = append(sections, textSection(rec))
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func textSection(rec aggregate.FileRecord) string {
	header := rec.Path
	if rec.Language != "" {
		header = fmt.Sprintf("%s (%s)", rec.Path, rec.Language)
	}

	if rec.Skipped() {
		return fmt.Sprintf("%s\n%s\n[skipped (%s): %s]", header, textRule, rec.Status, rec.Reason)
	}
	return fmt.Sprintf("%s\n%s\n%s", header, textRule, strings.TrimSuffix(rec.Content, "\n"))
}
