package aggregate_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctxcopy/pkg/aggregate"
	"ctxcopy/pkg/format"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestRun_CombinedScenario(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".gitignore": "*.log\n",
		"a.py":       "print('a')\n",
		"b.log":      "noise\n",
		"sub/c.py":   "print('c')\n",
	})

	result, err := aggregate.Run(context.Background(), aggregate.Request{
		Selection: []string{"."},
		BaseDir:   dir,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Readable)
	assert.Equal(t, 1, result.Skipped)

	combined := result.Combined()
	out := format.Markdown{}.Render(combined)
	assert.Contains(t, out, "**`a.py`**\n\n```python\nprint('a')\n```")
	assert.Contains(t, out, "**`sub/c.py`**\n\n```python\nprint('c')\n```")
	assert.Contains(t, out, "**`b.log`**\n\n_skipped (ignored): matched ignore pattern_")
	assert.NotContains(t, out, "noise")
}

func TestRun_MissingSelectionWarnsWithoutPanic(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.py": "x\n"})

	result, err := aggregate.Run(context.Background(), aggregate.Request{
		Selection: []string{"missing.txt"},
		BaseDir:   dir,
	}, nil)

	require.ErrorIs(t, err, aggregate.ErrNoReadableFiles)
	require.NotNil(t, result)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "missing.txt", result.Warnings[0].Selection)
	assert.Empty(t, result.Documents)
}

func TestRun_EmptyFileGetsContentBlock(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"empty.txt": ""})

	result, err := aggregate.Run(context.Background(), aggregate.Request{
		Selection: []string{"empty.txt"},
		BaseDir:   dir,
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Documents, 1)
	rec := result.Documents[0].Records[0]
	assert.Equal(t, aggregate.StatusEmpty, rec.Status)
	assert.Empty(t, rec.Content)
	assert.False(t, rec.Skipped())

	out := format.Markdown{}.Render(result.Combined())
	assert.Contains(t, out, "**`empty.txt`**")
	assert.NotContains(t, out, "skipped")
}

func TestRun_BinaryFileSkippedButListed(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.py": "x\n"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.bin"), []byte{0x00, 0x01, 0x02}, 0o644))

	result, err := aggregate.Run(context.Background(), aggregate.Request{
		Selection: []string{"."},
		BaseDir:   dir,
	}, nil)
	require.NoError(t, err)

	var binRec *aggregate.FileRecord
	for i, rec := range result.Documents[0].Records {
		if rec.Path == "blob.bin" {
			binRec = &result.Documents[0].Records[i]
		}
	}
	require.NotNil(t, binRec, "binary file must stay in the manifest")
	assert.Equal(t, aggregate.StatusBinary, binRec.Status)
	assert.Contains(t, result.Summary(), "blob.bin")
}

func TestRun_DeterministicOutput(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.py":     "a\n",
		"b.py":     "b\n",
		"sub/c.py": "c\n",
		"sub/d.md": "# d\n",
	})

	render := func() string {
		result, err := aggregate.Run(context.Background(), aggregate.Request{
			Selection: []string{"."},
			BaseDir:   dir,
		}, nil)
		require.NoError(t, err)
		return format.Markdown{}.Render(result.Combined())
	}

	assert.Equal(t, render(), render())
}

func TestRun_NotebookNormalized(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"nb.ipynb": `{"cells": [{"cell_type": "markdown", "source": "# Notes"}, {"cell_type": "code", "source": "x = 1"}], "metadata": {"kernelspec": {"language": "python"}}}`,
	})

	result, err := aggregate.Run(context.Background(), aggregate.Request{
		Selection: []string{"nb.ipynb"},
		BaseDir:   dir,
	}, nil)
	require.NoError(t, err)

	rec := result.Documents[0].Records[0]
	assert.True(t, rec.Raw)
	assert.Equal(t, "# Notes\n\n```python\nx = 1\n```", rec.Content)
}

func TestRun_MalformedNotebookDegradesToUnreadable(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"ok.py":     "x\n",
		"bad.ipynb": "{definitely not json",
	})

	result, err := aggregate.Run(context.Background(), aggregate.Request{
		Selection: []string{"."},
		BaseDir:   dir,
	}, nil)
	require.NoError(t, err)

	for _, rec := range result.Documents[0].Records {
		if rec.Path == "bad.ipynb" {
			assert.Equal(t, aggregate.StatusUnreadable, rec.Status)
			assert.Contains(t, rec.Reason, "malformed notebook")
			return
		}
	}
	t.Fatal("bad.ipynb missing from manifest")
}

func TestRun_OversizeFileSkippedWithReason(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, 2048)
	for i := range big {
		big[i] = 'a'
	}
	writeTree(t, dir, map[string]string{"small.txt": "ok\n", "big.txt": string(big)})

	result, err := aggregate.Run(context.Background(), aggregate.Request{
		Selection:     []string{"."},
		BaseDir:       dir,
		MaxFileSizeKB: 1,
	}, nil)
	require.NoError(t, err)

	for _, rec := range result.Documents[0].Records {
		if rec.Path == "big.txt" {
			assert.Equal(t, aggregate.StatusUnreadable, rec.Status)
			assert.Contains(t, rec.Reason, "size limit")
			return
		}
	}
	t.Fatal("big.txt missing from manifest")
}

func TestRun_ExtraExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.py": "x\n",
		"b.md": "y\n",
	})

	result, err := aggregate.Run(context.Background(), aggregate.Request{
		Selection: []string{"."},
		BaseDir:   dir,
		Exclude:   []string{"*.md"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Readable)
	assert.Equal(t, 1, result.Skipped)
}

func TestRun_BadBaseDirIsFatal(t *testing.T) {
	_, err := aggregate.Run(context.Background(), aggregate.Request{
		Selection: []string{"."},
		BaseDir:   filepath.Join(t.TempDir(), "does-not-exist"),
	}, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, aggregate.ErrNoReadableFiles))
}

func TestResult_SummaryNamesEverySkip(t *testing.T) {
	r := &aggregate.Result{
		Documents: []aggregate.Document{{
			Label: ".",
			Records: []aggregate.FileRecord{
				{Path: "a.py", Status: aggregate.StatusText},
				{Path: "blob.bin", Status: aggregate.StatusBinary, Reason: "binary content"},
				{Path: "locked.txt", Status: aggregate.StatusUnreadable, Reason: "permission denied"},
			},
		}},
		Warnings: []aggregate.Warning{{Selection: "gone.txt", Reason: "path does not exist"}},
		Readable: 1,
		Skipped:  2,
	}

	s := r.Summary()
	assert.Contains(t, s, "1 file(s) aggregated, 2 skipped, 1 warning(s)")
	assert.Contains(t, s, "skipped blob.bin: binary content (binary)")
	assert.Contains(t, s, "skipped locked.txt: permission denied (unreadable)")
	assert.Contains(t, s, "warning gone.txt: path does not exist")
}
