// Package resolve expands a user selection of literal paths and glob
// patterns into a deduplicated, ignore-filtered set of files, grouped by the
// top-level selection that produced them. Ignored directories are pruned
// before descent so large excluded trees are never traversed.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"ctxcopy/pkg/ignore"
)

// Entry is one file encountered while expanding a selection. Ignored files
// keep their place in traversal order so callers can report them; they are
// never read. Paths are slash-separated and relative to the base directory.
type Entry struct {
	Path    string
	Ignored bool
}

// Group holds the entries resolved for one top-level selection entry, in
// traversal order.
type Group struct {
	Label   string
	Entries []Entry
}

// Files returns the group's non-ignored paths.
func (g Group) Files() []string {
	var out []string
	for _, e := range g.Entries {
		if !e.Ignored {
			out = append(out, e.Path)
		}
	}
	return out
}

// Warning reports a non-fatal resolution problem for one selection entry.
type Warning struct {
	Selection string
	Reason    string
}

// Resolution is the outcome of expanding a selection.
type Resolution struct {
	Groups   []Group
	Warnings []Warning
}

// Files returns every resolved (non-ignored) path across all groups, in
// document order.
func (r *Resolution) Files() []string {
	var out []string
	for _, g := range r.Groups {
		out = append(out, g.Files()...)
	}
	return out
}

// resolver carries per-invocation traversal state.
type resolver struct {
	base    string // absolute base directory
	spec    *ignore.Spec
	seen    map[string]bool // canonical file paths already attributed
	visited map[string]bool // real directory paths already descended
	logger  *zap.Logger
}

// Resolve expands selection entries against baseDir, filtering through spec.
// Selection order is preserved; a file reachable from several selections is
// attributed to the first one that produced it. Missing literal paths become
// warnings, never errors.
func Resolve(selection []string, baseDir string, spec *ignore.Spec, logger *zap.Logger) (*Resolution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}

	rv := &resolver{
		base:    absBase,
		spec:    spec,
		seen:    make(map[string]bool),
		visited: make(map[string]bool),
		logger:  logger,
	}

	res := &Resolution{}
	for _, sel := range selection {
		group := Group{Label: sel}

		targets, warn := rv.expand(sel)
		if warn != nil {
			res.Warnings = append(res.Warnings, *warn)
			continue
		}

		for _, target := range targets {
			rv.collect(target, &group)
		}

		if len(group.Entries) > 0 {
			res.Groups = append(res.Groups, group)
		} else {
			logger.Debug("Selection resolved no files", zap.String("selection", sel))
		}
	}

	return res, nil
}

// expand turns one selection entry into absolute target paths. Glob entries
// are matched against the filesystem; literal entries are stat'd.
func (rv *resolver) expand(sel string) ([]string, *Warning) {
	if hasGlobMeta(sel) {
		matches, err := rv.expandGlob(sel)
		if err != nil {
			return nil, &Warning{Selection: sel, Reason: fmt.Sprintf("invalid pattern: %v", err)}
		}
		if len(matches) == 0 {
			return nil, &Warning{Selection: sel, Reason: "pattern matched nothing"}
		}
		return matches, nil
	}

	path := sel
	if !filepath.IsAbs(path) {
		path = filepath.Join(rv.base, path)
	}
	if _, err := os.Stat(path); err != nil {
		rv.logger.Warn("Selection path does not exist",
			zap.String("selection", sel),
			zap.Error(err))
		return nil, &Warning{Selection: sel, Reason: "path does not exist"}
	}
	return []string{path}, nil
}

// collect adds target (an absolute file or directory path) to the group.
func (rv *resolver) collect(target string, group *Group) {
	info, err := os.Stat(target)
	if err != nil {
		rv.logger.Warn("Cannot access resolved path", zap.String("path", target), zap.Error(err))
		return
	}

	rel := rv.relPath(target)
	if info.IsDir() {
		if rel != "." && rv.spec.Matches(rel, true) {
			rv.logger.Debug("Skipping ignored directory", zap.String("path", rel))
			return
		}
		rv.walk(target, group)
		return
	}

	rv.addFile(target, rel, group)
}

// walk descends a directory depth-first. Ignored subdirectories are pruned
// before descent; symlinked directories are tracked by real path so cycles
// terminate.
func (rv *resolver) walk(dir string, group *Group) {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		rv.logger.Warn("Cannot resolve directory", zap.String("path", dir), zap.Error(err))
		return
	}
	if rv.visited[real] {
		rv.logger.Debug("Skipping already-visited directory", zap.String("path", dir))
		return
	}
	rv.visited[real] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		rv.logger.Warn("Cannot read directory", zap.String("path", dir), zap.Error(err))
		return
	}

	// os.ReadDir sorts entries by name; traversal order is therefore stable
	// across runs over an unchanged tree.
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		rel := rv.relPath(path)

		isDir := entry.IsDir()
		if !isDir && entry.Type()&os.ModeSymlink != 0 {
			// Follow the link to decide whether the target is a directory.
			if info, err := os.Stat(path); err == nil {
				isDir = info.IsDir()
			} else {
				rv.logger.Debug("Skipping broken symlink", zap.String("path", path))
				continue
			}
		}

		if isDir {
			if rv.spec.Matches(rel, true) {
				rv.logger.Debug("Pruning ignored directory", zap.String("path", rel))
				continue
			}
			rv.walk(path, group)
			continue
		}

		if !entry.Type().IsRegular() && entry.Type()&os.ModeSymlink == 0 {
			continue // sockets, pipes, devices
		}
		rv.addFile(path, rel, group)
	}
}

// addFile records a file unless it was already attributed to an earlier
// selection. Ignored files keep a marked entry so callers can report them.
func (rv *resolver) addFile(path, rel string, group *Group) {
	key := path
	if real, err := filepath.EvalSymlinks(path); err == nil {
		key = real
	}
	if rv.seen[key] {
		rv.logger.Debug("Skipping duplicate file", zap.String("path", rel))
		return
	}
	rv.seen[key] = true

	if rv.spec.Matches(rel, false) {
		rv.logger.Debug("Skipping ignored file", zap.String("path", rel))
		group.Entries = append(group.Entries, Entry{Path: rel, Ignored: true})
		return
	}

	group.Entries = append(group.Entries, Entry{Path: rel})
}

// relPath converts an absolute path to a slash-separated path relative to
// the base directory, falling back to the input when outside the base.
func (rv *resolver) relPath(path string) string {
	rel, err := filepath.Rel(rv.base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// hasGlobMeta reports whether the selection entry contains glob
// metacharacters and should be expanded rather than stat'd.
func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// expandGlob matches a glob pattern against the filesystem. Patterns without
// '**' go through filepath.Glob; recursive patterns are matched by walking
// the base tree against the same glob translation the ignore rules use.
func (rv *resolver) expandGlob(pattern string) ([]string, error) {
	if !strings.Contains(pattern, "**") {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(rv.base, full)
		}
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		return matches, nil
	}

	re, err := ignore.TranslateGlob(filepath.ToSlash(pattern), true)
	if err != nil {
		return nil, err
	}

	var matches []string
	err = filepath.WalkDir(rv.base, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			rv.logger.Debug("Skipping unreadable path during glob walk",
				zap.String("path", path), zap.Error(err))
			return nil
		}
		rel := rv.relPath(path)
		if rel == "." {
			return nil
		}
		if re.MatchString(rel) {
			matches = append(matches, path)
			if d.IsDir() {
				// The directory matched as a whole; collect descends into it.
				return filepath.SkipDir
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
