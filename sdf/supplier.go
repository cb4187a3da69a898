// Package sdf reads SD files: a sequence of mol blocks, each optionally
// followed by data fields, separated by "$$$$" lines. Records are
// independent; a record that fails to parse does not poison the ones after
// it, and the supplier keeps byte offsets and line numbers true across
// failures so a sidecar index stays usable.
package sdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/clarablanes/rdkit/mol"
	"github.com/clarablanes/rdkit/molfile"
)

// Field is one "> <tag>" data item. Order of appearance is preserved.
type Field struct {
	Name  string
	Value string
}

// Record is one SD entry: the parsed molecule (nil when Err is set), its
// data fields, and its position in the stream.
type Record struct {
	// Index is the 0-based position of the record in the stream.
	Index int
	// Offset is the byte offset of the record's first line.
	Offset int64
	// Line is the 1-based line number of the record's first line.
	Line int
	Mol  *mol.Mol
	// Fields holds the data items in file order.
	Fields []Field
	// Err is the record's parse error, nil on success. Stream-level read
	// errors are returned by Next instead.
	Err error
}

// Field returns the first data item with the given tag.
func (r *Record) Field(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// recordScanner reads physical lines while tracking exact byte offsets,
// including the line terminators the lines are handed back without.
type recordScanner struct {
	br     *bufio.Reader
	offset int64
	line   int
}

func newRecordScanner(r io.Reader) *recordScanner {
	return &recordScanner{br: bufio.NewReader(r)}
}

func (rs *recordScanner) readLine() (string, error) {
	s, err := rs.br.ReadString('\n')
	if s == "" && err != nil {
		return "", err
	}
	rs.offset += int64(len(s))
	rs.line++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}

// Supplier iterates the records of an SD stream.
type Supplier struct {
	rs   *recordScanner
	opts molfile.Options
	next int
}

// NewSupplier reads records from r, parsing each mol block with opts.
func NewSupplier(r io.Reader, opts molfile.Options) *Supplier {
	return &Supplier{rs: newRecordScanner(r), opts: opts}
}

// Next returns the next record. It returns io.EOF at a clean end of
// stream and other errors only for transport-level failures; a record
// whose mol block is malformed comes back with Err set and Mol nil, with
// its data fields still decoded.
func (s *Supplier) Next() (*Record, error) {
	rec := &Record{
		Index:  s.next,
		Offset: s.rs.offset,
		Line:   s.rs.line + 1,
	}

	var lines []string
	for {
		text, err := s.rs.readLine()
		if err == io.EOF {
			if len(lines) == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sdf: read record %d: %w", rec.Index+1, err)
		}
		if strings.HasPrefix(text, "$$$$") {
			break
		}
		lines = append(lines, text)
	}
	s.next++

	molLines, dataLines := splitRecord(lines)
	rec.Fields = parseDataFields(dataLines)

	m, err := molfile.MolFromBlock(strings.Join(molLines, "\n")+"\n", s.opts)
	if err != nil {
		rec.Err = fmt.Errorf("sdf: record %d starting at line %d: %w", rec.Index+1, rec.Line, err)
		return rec, nil
	}
	rec.Mol = m
	return rec, nil
}

// splitRecord divides a record's lines at the first "M  END"; everything
// after it is data-field territory. Records with no terminator keep all
// lines on the mol side so the parser reports the real problem.
func splitRecord(lines []string) (molLines, dataLines []string) {
	for i, text := range lines {
		if strings.HasPrefix(text, "M  END") {
			return lines[:i+1], lines[i+1:]
		}
	}
	return lines, nil
}

// parseDataFields decodes "> <tag>" items. A field's value runs until a
// blank line or the next header; multi-line values keep their newlines.
func parseDataFields(lines []string) []Field {
	var fields []Field
	i := 0
	for i < len(lines) {
		text := lines[i]
		i++
		if !strings.HasPrefix(text, ">") {
			continue
		}
		name := fieldName(text)
		var value []string
		for i < len(lines) && lines[i] != "" && !strings.HasPrefix(lines[i], ">") {
			value = append(value, lines[i])
			i++
		}
		fields = append(fields, Field{Name: name, Value: strings.Join(value, "\n")})
	}
	return fields
}

// fieldName pulls the tag out of a "> <tag>" header. Registry-style
// headers without angle brackets yield the trimmed remainder.
func fieldName(header string) string {
	if open := strings.IndexByte(header, '<'); open >= 0 {
		if end := strings.IndexByte(header[open:], '>'); end > 0 {
			return header[open+1 : open+end]
		}
	}
	return strings.TrimSpace(strings.TrimPrefix(header, ">"))
}
