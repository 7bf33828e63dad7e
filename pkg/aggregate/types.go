package aggregate

import (
	"time"

	"ctxcopy/pkg/reader"
)

// Request holds one pipeline invocation's inputs.
type Request struct {
	Selection     []string          // literal paths and/or glob patterns; empty means ["."]
	BaseDir       string            // base directory; empty means "."
	Exclude       []string          // extra ignore patterns appended after .gitignore
	MaxFileSizeKB int               // files above this size are skipped with a reason; <=0 disables the limit
	MaxWorkers    int               // concurrent readers; <=0 means one per CPU
	ReadTimeout   time.Duration     // per-file read timeout; <=0 uses the reader default
	Languages     map[string]string // extension -> tag overrides for classification
}

// RecordStatus classifies a manifest entry.
type RecordStatus int

const (
	// StatusText means the record carries decoded UTF-8 content.
	StatusText RecordStatus = iota
	// StatusEmpty means the file held zero bytes; the record carries "".
	StatusEmpty
	// StatusBinary means content was detected as non-text and omitted.
	StatusBinary
	// StatusUnreadable means an I/O error, timeout, size limit, or malformed
	// notebook prevented the content from being used.
	StatusUnreadable
	// StatusIgnored means an ignore rule filtered the file; it was never read.
	StatusIgnored
)

// String returns the status as a short lowercase word for summaries.
func (s RecordStatus) String() string {
	switch s {
	case StatusText:
		return "text"
	case StatusEmpty:
		return "empty"
	case StatusBinary:
		return "binary"
	case StatusUnreadable:
		return "unreadable"
	case StatusIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// fromReader maps a read outcome onto the record taxonomy.
func fromReader(s reader.Status) RecordStatus {
	switch s {
	case reader.StatusEmpty:
		return StatusEmpty
	case reader.StatusBinary:
		return StatusBinary
	case reader.StatusUnreadable:
		return StatusUnreadable
	default:
		return StatusText
	}
}

// FileRecord is the manifest entry for one selected file: its content, or
// the reason content is absent. Skipped files keep their record so callers
// can report partial failures without losing the manifest.
type FileRecord struct {
	Path     string       // slash-separated path relative to the base directory
	Language string       // presentation tag; "" renders an untagged block
	Content  string       // decoded text; "" for empty or skipped files
	Status   RecordStatus // text, empty, binary, unreadable, or ignored
	Reason   string       // human-readable skip reason
	Raw      bool         // content is already rendered markdown; emit unfenced
}

// Skipped reports whether the record carries no content block.
func (r FileRecord) Skipped() bool {
	return r.Status == StatusBinary || r.Status == StatusUnreadable || r.Status == StatusIgnored
}

// Document is an ordered group of records destined for one rendered output.
type Document struct {
	Label   string
	Records []FileRecord
}

// Warning reports a non-fatal per-selection problem.
type Warning struct {
	Selection string
	Reason    string
}

// Result is the outcome of one pipeline run.
type Result struct {
	Documents []Document
	Warnings  []Warning
	Readable  int // records with text or empty content
	Skipped   int // records marked binary, unreadable, or ignored
}
