package molfile

import (
	"strconv"
	"strings"
)

// Fixed-width field extraction. The column offsets used by the V2000
// readers are part of the format contract: they must match the CTFile
// specification exactly, so they appear literally at each call site rather
// than behind named constants that would only obscure the grammar.

// hasField reports whether text is long enough to contain the field
// starting at start with the given width.
func hasField(text string, start, width int) bool {
	return len(text) >= start+width
}

// field slices a fixed-width column out of text. The caller must have
// checked hasField.
func field(text string, start, width int) string {
	return text[start : start+width]
}

// decodeInt converts a fixed-width field to an integer. Leading and
// trailing blanks are tolerated. An all-blank field decodes to 0 when
// blankOK is set and raises a FormatError otherwise. Any other
// non-numeric content always raises.
func decodeInt(s, name string, line int, blankOK bool) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		if blankOK {
			return 0, nil
		}
		return 0, formatErr(line, name, s, "cannot convert %q to int", s)
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, formatErr(line, name, s, "cannot convert %q to int", s)
	}
	return n, nil
}

// decodeFloat converts a fixed-width field to a float. Blank fields decode
// to 0.0 unless blankOK is withdrawn by the caller.
func decodeFloat(s, name string, line int, blankOK bool) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		if blankOK {
			return 0, nil
		}
		return 0, formatErr(line, name, s, "cannot convert %q to float", s)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, formatErr(line, name, s, "cannot convert %q to float", s)
	}
	return f, nil
}
