// Package lang maps file names to presentation-language tags for fenced
// code blocks. Unknown files yield an empty tag so they are still rendered,
// just without highlighting.
package lang

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// specialFiles maps exact (lowercased) file names that carry no useful
// extension.
var specialFiles = map[string]string{
	"dockerfile":     "dockerfile",
	"containerfile":  "dockerfile",
	"makefile":       "makefile",
	"gnumakefile":    "makefile",
	"cmakelists.txt": "cmake",
	"gemfile":        "ruby",
	"rakefile":       "ruby",
	"vagrantfile":    "ruby",
	"jenkinsfile":    "groovy",
}

// extensions maps lowercased file extensions to language tags.
var extensions = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".mjs":   "javascript",
	".ts":    "typescript",
	".jsx":   "jsx",
	".tsx":   "tsx",
	".html":  "html",
	".htm":   "html",
	".css":   "css",
	".scss":  "scss",
	".md":    "markdown",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".sh":    "bash",
	".bash":  "bash",
	".zsh":   "bash",
	".fish":  "fish",
	".ps1":   "powershell",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".java":  "java",
	".kt":    "kotlin",
	".go":    "go",
	".rs":    "rust",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".scala": "scala",
	".lua":   "lua",
	".pl":    "perl",
	".r":     "r",
	".sql":   "sql",
	".toml":  "toml",
	".ini":   "ini",
	".cfg":   "ini",
	".xml":   "xml",
	".proto": "protobuf",
	".tf":    "terraform",
	".hcl":   "hcl",
	".txt":   "text",
	".csv":   "csv",
	".ipynb": "markdown",
}

// Classifier resolves language tags, optionally extended with per-project
// extension overrides from configuration.
type Classifier struct {
	overrides map[string]string
}

// New returns a Classifier. overrides maps extensions (".ext") to tags and
// takes precedence over the built-in table; nil is fine.
func New(overrides map[string]string) *Classifier {
	return &Classifier{overrides: overrides}
}

// Detect returns the language tag for a path, or "" when unknown. Exact file
// names are checked before extensions; as a last resort the chroma lexer
// registry is consulted. Purely deterministic, no filesystem access.
func (c *Classifier) Detect(path string) string {
	name := strings.ToLower(filepath.Base(path))
	ext := strings.ToLower(filepath.Ext(path))

	if c.overrides != nil {
		if tag, ok := c.overrides[ext]; ok {
			return tag
		}
	}
	if tag, ok := specialFiles[name]; ok {
		return tag
	}
	if tag, ok := extensions[ext]; ok {
		return tag
	}

	if lexer := lexers.Match(filepath.Base(path)); lexer != nil {
		cfg := lexer.Config()
		if len(cfg.Aliases) > 0 {
			return strings.ToLower(cfg.Aliases[0])
		}
		return strings.ToLower(cfg.Name)
	}
	return ""
}

// Detect classifies with the built-in tables only.
func Detect(path string) string {
	return New(nil).Detect(path)
}
