// Package reader loads resolved files as text, classifying binary,
// unreadable, and empty content without aborting the batch.
package reader

import (
	"bytes"
	"os"
	"unicode/utf8"
)

// Status classifies the outcome of reading one file.
type Status int

const (
	// StatusText means the file decoded as UTF-8 text.
	StatusText Status = iota
	// StatusEmpty means the file holds zero bytes; content is "".
	StatusEmpty
	// StatusBinary means the content was detected as non-text and omitted.
	StatusBinary
	// StatusUnreadable means a filesystem error or timeout prevented the read.
	StatusUnreadable
)

// String returns the status as a short lowercase word for summaries.
func (s Status) String() string {
	switch s {
	case StatusText:
		return "text"
	case StatusEmpty:
		return "empty"
	case StatusBinary:
		return "binary"
	case StatusUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Result holds the content of one file, or the reason it was skipped.
type Result struct {
	Content string
	Status  Status
	Reason  error // set for StatusUnreadable
}

// sampleSize is how many leading bytes the binary sniff inspects.
const sampleSize = 512

// utf8BOM is stripped from decoded content when present.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read loads one file and classifies its content. Filesystem errors are
// reported through the result, never returned.
func Read(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Status: StatusUnreadable, Reason: err}
	}
	if len(data) == 0 {
		return Result{Status: StatusEmpty}
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if len(data) == 0 {
		return Result{Status: StatusEmpty}
	}

	if isBinary(data) || !utf8.Valid(data) {
		return Result{Status: StatusBinary}
	}
	return Result{Content: string(data), Status: StatusText}
}

// isBinary checks the leading sample for null bytes or a high ratio of
// non-printable characters.
func isBinary(data []byte) bool {
	sample := data
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	nonPrintable := 0
	for _, b := range sample {
		if !isPrintable(b) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(sample)) > 0.3
}

// isPrintable reports whether a byte is printable ASCII or common
// whitespace. Multi-byte UTF-8 sequences land in the >=128 range and are
// counted as printable; genuinely binary data fails the null-byte check or
// the utf8.Valid check instead.
func isPrintable(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t' || b >= 128
}
