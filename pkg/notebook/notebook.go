// Package notebook converts Jupyter notebook documents into plain
// markdown-plus-fenced-code text so they flow through the same formatting
// path as regular source files.
package notebook

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Extension identifies notebook files by name.
const Extension = ".ipynb"

// defaultKernelLanguage tags code cells when the notebook does not declare a
// kernel language.
const defaultKernelLanguage = "python"

// IsNotebook reports whether the path names a notebook document.
func IsNotebook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// document is the subset of the ipynb schema the normalizer needs.
type document struct {
	Cells    []cell `json:"cells"`
	Metadata struct {
		KernelSpec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
	} `json:"metadata"`
}

type cell struct {
	Type   string          `json:"cell_type"`
	Source json.RawMessage `json:"source"`
}

// Normalize parses notebook JSON and renders its cells in order: markdown
// cells pass through verbatim, code and raw cells become fenced blocks
// tagged with the notebook's kernel language. A malformed document returns
// an error; callers degrade the file record rather than aborting the run.
func Normalize(data []byte) (string, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("malformed notebook: %w", err)
	}

	language := doc.Metadata.KernelSpec.Language
	if language == "" {
		language = defaultKernelLanguage
	}

	var blocks []string
	for _, c := range doc.Cells {
		content := strings.TrimSpace(cellSource(c.Source))
		if content == "" {
			continue
		}
		if c.Type == "markdown" {
			blocks = append(blocks, content)
			continue
		}
		blocks = append(blocks, fmt.Sprintf("```%s\n%s\n```", language, content))
	}

	return strings.Join(blocks, "\n\n"), nil
}

// cellSource decodes a cell source, which the schema allows as either a
// string or a list of line strings.
func cellSource(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, "")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
