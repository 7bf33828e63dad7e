// Package ignore compiles gitignore-style patterns into a matcher for
// relative paths. Rules are evaluated in order and the last matching rule
// wins, so a later `!pattern` can re-include a path an earlier rule ignored.
// A path whose ancestor directory is ignored stays ignored regardless of
// later negations, matching standard ignore-file tooling.
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// IgnoreFileName is the per-project ignore file read by Compile.
const IgnoreFileName = ".gitignore"

// Rule is a single compiled ignore pattern.
type Rule struct {
	Pattern *regexp.Regexp // Compiled regular expression for the pattern.
	Negate  bool           // Pattern starts with '!' and re-includes matches.
	DirOnly bool           // Pattern ends with '/' and matches directories only.
	Line    string         // Original pattern line.
	LineNo  int            // 1-based position within the spec.
}

// Spec is an ordered collection of compiled ignore rules. It performs no I/O
// after construction.
type Spec struct {
	rules  []*Rule
	logger *zap.Logger
}

// New returns an empty Spec.
func New(logger *zap.Logger) *Spec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spec{logger: logger}
}

// Compile builds a Spec from baseDir/.gitignore plus extra user-supplied
// patterns. A missing ignore file is not an error and yields an empty rule
// set. Extra patterns are appended after the file's patterns so they can
// override it but not vice versa.
func Compile(baseDir string, extra []string, logger *zap.Logger) (*Spec, error) {
	s := New(logger)

	path := filepath.Join(baseDir, IgnoreFileName)
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		lines := strings.Split(string(content), "\n")
		s.AddLines(lines...)
		s.logger.Debug("Loaded ignore file",
			zap.String("path", path),
			zap.Int("rules", len(s.rules)))
	case os.IsNotExist(err):
		s.logger.Debug("No ignore file present", zap.String("path", path))
	default:
		return nil, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}

	s.AddLines(extra...)
	return s, nil
}

// AddLines parses and appends pattern lines. Blank lines and comments are
// skipped.
func (s *Spec) AddLines(lines ...string) {
	for _, line := range lines {
		rule := parseLine(line, len(s.rules)+1)
		if rule == nil {
			continue
		}
		s.rules = append(s.rules, rule)
		s.logger.Debug("Compiled ignore rule",
			zap.Int("lineNo", rule.LineNo),
			zap.String("pattern", rule.Line),
			zap.Bool("negate", rule.Negate),
			zap.Bool("dirOnly", rule.DirOnly))
	}
}

// Len reports the number of compiled rules.
func (s *Spec) Len() int { return len(s.rules) }

// Matches reports whether relPath (slash-separated, relative to the base
// directory) is ignored. isDir states whether the path is a directory, which
// directory-only rules depend on.
func (s *Spec) Matches(relPath string, isDir bool) bool {
	path := normalize(relPath)
	if path == "" || path == "." {
		return false
	}

	// An ignored ancestor directory ignores everything beneath it; negation
	// rules cannot reach inside.
	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		ancestor := strings.Join(segments[:i], "/")
		if s.decide(ancestor, true) {
			return true
		}
	}

	return s.decide(path, isDir)
}

// decide applies the rules in order to a single path; the last matching rule
// determines the outcome.
func (s *Spec) decide(path string, isDir bool) bool {
	ignored := false
	for _, rule := range s.rules {
		if rule.DirOnly && !isDir {
			continue
		}
		if rule.Pattern.MatchString(path) {
			ignored = !rule.Negate
		}
	}
	return ignored
}

// normalize converts OS-specific separators to slashes and trims leading
// "./" noise so callers can pass filepath.Rel output directly.
func normalize(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	return strings.TrimSuffix(path, "/")
}

// parseLine turns one ignore-file line into a Rule. Returns nil for blank
// lines, comments, and patterns that fail to compile.
func parseLine(line string, lineNo int) *Rule {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	negate := false
	if strings.HasPrefix(trimmed, "!") {
		negate = true
		trimmed = strings.TrimPrefix(trimmed, "!")
	}

	// Escaped leading '#' or '!' are literals.
	if strings.HasPrefix(trimmed, `\#`) || strings.HasPrefix(trimmed, `\!`) {
		trimmed = trimmed[1:]
	}

	dirOnly := strings.HasSuffix(trimmed, "/")
	trimmed = strings.TrimSuffix(trimmed, "/")

	// A leading slash, or any interior slash, anchors the pattern to the
	// base directory; otherwise it matches at any depth.
	anchored := strings.HasPrefix(trimmed, "/")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if strings.Contains(trimmed, "/") {
		anchored = true
	}
	if trimmed == "" {
		return nil
	}

	re, err := TranslateGlob(trimmed, anchored)
	if err != nil {
		return nil
	}

	return &Rule{
		Pattern: re,
		Negate:  negate,
		DirOnly: dirOnly,
		Line:    line,
		LineNo:  lineNo,
	}
}

// Precompiled expressions used by the glob-to-regex translation.
var (
	doubleStarMiddlePattern   = regexp.MustCompile(`/\*\*/`)
	doubleStarTrailingPattern = regexp.MustCompile(`/\*\*$`)
	doubleStarLeadingPattern  = regexp.MustCompile(`^\*\*/`)
	doubleStarBarePattern     = regexp.MustCompile(`\*\*`)
	singleStarPattern         = regexp.MustCompile(`\*`)
)

// TranslateGlob converts a gitignore-style glob into an anchored regular
// expression over slash-separated relative paths. When anchored is false the
// pattern may match at any depth.
func TranslateGlob(pattern string, anchored bool) (*regexp.Regexp, error) {
	expr := escapeSpecialChars(pattern)
	expr = handleDoubleStarPatterns(expr)
	expr = wildcardToRegex(expr)

	if anchored {
		expr = "^" + expr + "$"
	} else {
		expr = "^(?:.*/)?" + expr + "$"
	}
	return regexp.Compile(expr)
}

// escapeSpecialChars escapes regex metacharacters except '*', '?', and '/'.
func escapeSpecialChars(pattern string) string {
	specialChars := `.+()|^$[]{}`
	for _, char := range specialChars {
		pattern = strings.ReplaceAll(pattern, string(char), `\`+string(char))
	}
	return pattern
}

// handleDoubleStarPatterns replaces '**' segments with regex equivalents.
func handleDoubleStarPatterns(pattern string) string {
	pattern = doubleStarMiddlePattern.ReplaceAllString(pattern, `/(?:.*/)?`)
	pattern = doubleStarTrailingPattern.ReplaceAllString(pattern, `/.*`)
	pattern = doubleStarLeadingPattern.ReplaceAllString(pattern, `(?:.*/)?`)
	pattern = doubleStarBarePattern.ReplaceAllString(pattern, `.*`)
	return pattern
}

// wildcardToRegex converts remaining '*' and '?' wildcards, which never
// cross a path separator.
func wildcardToRegex(pattern string) string {
	pattern = singleStarPattern.ReplaceAllString(pattern, `[^/]*`)
	return strings.ReplaceAll(pattern, "?", "[^/]")
}
