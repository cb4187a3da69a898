package molfile

import "fmt"

// ParseError is the base error type for all molfile errors.
type ParseError struct {
	Message string
	Line    int // 1-based physical line number, 0 when unknown
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// FormatError reports a malformed or out-of-range field, a wrong fixed tag,
// an unexpected EOF, or a bad version tag. It always aborts the current
// record; callers never recover from it mid-record.
type FormatError struct {
	ParseError
	Field string // semantic name of the offending field
	Text  string // raw offending text
}

func (e *FormatError) Error() string {
	msg := e.Message
	if msg == "" && e.Field != "" {
		msg = fmt.Sprintf("cannot parse %s from %q", e.Field, e.Text)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// RangeError reports an atom or bond reference outside the current counts.
// Fatal, same propagation as FormatError.
type RangeError struct {
	ParseError
	Value     int
	Low, High int
}

func (e *RangeError) Error() string {
	msg := fmt.Sprintf("%s: value %d outside range [%d, %d]", e.Message, e.Value, e.Low, e.High)
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func formatErr(line int, field, text, format string, args ...any) *FormatError {
	return &FormatError{
		ParseError: ParseError{Message: fmt.Sprintf(format, args...), Line: line},
		Field:      field,
		Text:       text,
	}
}

func rangeErr(line int, what string, val, low, high int) *RangeError {
	return &RangeError{
		ParseError: ParseError{Message: what, Line: line},
		Value:      val,
		Low:        low,
		High:       high,
	}
}
