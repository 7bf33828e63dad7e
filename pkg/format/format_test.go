package format

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctxcopy/pkg/aggregate"
)

func sampleDoc() aggregate.Document {
	return aggregate.Document{
		Label: "combined",
		Records: []aggregate.FileRecord{
			{Path: "a.py", Language: "python", Content: "print('a')\n", Status: aggregate.StatusText},
			{Path: "b.log", Status: aggregate.StatusIgnored, Reason: "matched ignore pattern"},
			{Path: "img.png", Status: aggregate.StatusBinary, Reason: "binary content"},
			{Path: "empty.txt", Language: "text", Status: aggregate.StatusEmpty},
		},
	}
}

func TestGet(t *testing.T) {
	f, err := Get("markdown")
	require.NoError(t, err)
	assert.Equal(t, ".md", f.Extension())

	f, err = Get("TXT")
	require.NoError(t, err)
	assert.Equal(t, ".txt", f.Extension())

	_, err = Get("pdf")
	require.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"markdown", "txt"}, Names())
}

func TestMarkdown_Render(t *testing.T) {
	out := Markdown{}.Render(sampleDoc())

	assert.Contains(t, out, "**`a.py`**\n\n```python\nprint('a')\n```")
	assert.Contains(t, out, "**`b.log`**\n\n_skipped (ignored): matched ignore pattern_")
	assert.Contains(t, out, "**`img.png`**\n\n_skipped (binary): binary content_")
	// The empty file still gets a block, not a skip notice.
	assert.Contains(t, out, "**`empty.txt`**\n\n```text\n\n```")
	assert.NotContains(t, out, "```\nbinary content")
}

func TestMarkdown_RawRecordUnfenced(t *testing.T) {
	doc := aggregate.Document{Records: []aggregate.FileRecord{
		{Path: "nb.ipynb", Content: "# Title\n\n```python\nx = 1\n```", Status: aggregate.StatusText, Raw: true},
	}}

	out := Markdown{}.Render(doc)
	assert.Contains(t, out, "**`nb.ipynb`**\n\n# Title\n\n```python\nx = 1\n```")
	assert.NotContains(t, out, "````")
}

func TestMarkdown_Deterministic(t *testing.T) {
	doc := sampleDoc()
	assert.Equal(t, Markdown{}.Render(doc), Markdown{}.Render(doc))
}

func TestText_Render(t *testing.T) {
	out := Text{}.Render(sampleDoc())

	assert.Contains(t, out, "a.py (python)\n")
	assert.Contains(t, out, "print('a')")
	assert.Contains(t, out, "[skipped (ignored): matched ignore pattern]")
	assert.Contains(t, out, "[skipped (binary): binary content]")
}

func TestWriteFile_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "context.md")

	require.NoError(t, WriteFile(path, "hello\n", nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "context.md", entries[0].Name())
}

func TestWriteDir_OneArtifactPerDocument(t *testing.T) {
	dir := t.TempDir()
	docs := []aggregate.Document{
		{Label: "src/utils", Records: []aggregate.FileRecord{
			{Path: "src/utils/a.go", Language: "go", Content: "package utils\n", Status: aggregate.StatusText},
		}},
		{Label: "README.md", Records: []aggregate.FileRecord{
			{Path: "README.md", Language: "markdown", Content: "# hi\n", Status: aggregate.StatusText},
		}},
	}

	written, errs := WriteDir(dir, docs, Markdown{}, "", nil)
	assert.Empty(t, errs)
	assert.Equal(t, 2, written)

	assert.FileExists(t, filepath.Join(dir, "src_utils.md"))
	assert.FileExists(t, filepath.Join(dir, "READMEdotmd.md"))
}

func TestWriteDir_CustomExtension(t *testing.T) {
	dir := t.TempDir()
	docs := []aggregate.Document{
		{Label: "a", Records: []aggregate.FileRecord{{Path: "a", Content: "x", Status: aggregate.StatusText}}},
	}

	written, errs := WriteDir(dir, docs, Text{}, "txt", nil)
	assert.Empty(t, errs)
	assert.Equal(t, 1, written)
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "src_utils", SafeName("src/utils"))
	assert.Equal(t, "dot", SafeName("."))
	assert.Equal(t, "stardotpy", SafeName("*.py"))
	assert.Equal(t, "selection", SafeName("///"))
}
