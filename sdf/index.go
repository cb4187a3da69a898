package sdf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/clarablanes/rdkit/molfile"
)

// indexHeader identifies the sidecar format so stale or foreign files are
// rejected before any offsets are trusted.
const indexHeader = "sdfidx 1"

// IndexEntry records where a record starts in the SD file.
type IndexEntry struct {
	Offset int64
	Line   int
}

// BuildIndex scans an SD stream without parsing chemistry and returns one
// entry per record, malformed records included.
func BuildIndex(r io.Reader) ([]IndexEntry, error) {
	rs := newRecordScanner(r)
	var entries []IndexEntry
	for {
		start := IndexEntry{Offset: rs.offset, Line: rs.line + 1}
		n := 0
		for {
			text, err := rs.readLine()
			if err == io.EOF {
				if n == 0 {
					return entries, nil
				}
				break
			}
			if err != nil {
				return nil, fmt.Errorf("sdf: scan record %d: %w", len(entries)+1, err)
			}
			n++
			if strings.HasPrefix(text, "$$$$") {
				break
			}
		}
		entries = append(entries, start)
	}
}

// WriteIndex writes the sidecar: a format header, then one
// tab-separated "offset line" pair per record.
func WriteIndex(w io.Writer, entries []IndexEntry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, indexHeader)
	for _, e := range entries {
		fmt.Fprintf(bw, "%d\t%d\n", e.Offset, e.Line)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("sdf: write index: %w", err)
	}
	return nil
}

// LoadIndex reads a sidecar written by WriteIndex.
func LoadIndex(r io.Reader) ([]IndexEntry, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() || sc.Text() != indexHeader {
		return nil, fmt.Errorf("sdf: not an index file (missing %q header)", indexHeader)
	}
	var entries []IndexEntry
	for sc.Scan() {
		off, line, ok := strings.Cut(sc.Text(), "\t")
		if !ok {
			return nil, fmt.Errorf("sdf: index entry %d: malformed line %q", len(entries)+1, sc.Text())
		}
		var e IndexEntry
		var err error
		if e.Offset, err = strconv.ParseInt(off, 10, 64); err != nil {
			return nil, fmt.Errorf("sdf: index entry %d: bad offset: %w", len(entries)+1, err)
		}
		if e.Line, err = strconv.Atoi(line); err != nil {
			return nil, fmt.Errorf("sdf: index entry %d: bad line number: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sdf: read index: %w", err)
	}
	return entries, nil
}

// ReadRecordAt parses the single record starting at offset. The returned
// record's Offset is the given one; its Line is relative to the record
// itself since the preceding lines are never read.
func ReadRecordAt(ra io.ReaderAt, offset int64, opts molfile.Options) (*Record, error) {
	sr := io.NewSectionReader(ra, offset, 1<<40)
	rec, err := NewSupplier(sr, opts).Next()
	if err != nil {
		return nil, err
	}
	rec.Offset = offset
	return rec, nil
}
