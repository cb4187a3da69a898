package molfile

import (
	"bufio"
	"io"
	"strings"
)

// LineReader yields one physical line per read and keeps a 1-based count of
// lines actually consumed. The count advances exactly once per read whether
// or not the caller's parse of the line succeeds, so diagnostics stay
// accurate after an error unwinds and a multi-record stream can continue
// from the right place.
type LineReader struct {
	scanner *bufio.Scanner
	line    int
	eof     bool
}

// NewLineReader wraps r. Lines may be any length up to 1 MiB.
func NewLineReader(r io.Reader) *LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &LineReader{scanner: sc}
}

// ReadLine returns the next line without its terminator. io.EOF is returned
// at end of stream; any other error comes from the underlying reader.
func (r *LineReader) ReadLine() (string, error) {
	if r.eof {
		return "", io.EOF
	}
	if !r.scanner.Scan() {
		r.eof = true
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	r.line++
	return strings.TrimSuffix(r.scanner.Text(), "\r"), nil
}

// Line is the number of the most recently read line, 1-based; 0 before the
// first read.
func (r *LineReader) Line() int { return r.line }

// EOF reports whether the underlying stream is exhausted.
func (r *LineReader) EOF() bool { return r.eof }
