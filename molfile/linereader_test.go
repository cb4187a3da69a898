package molfile

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReaderNumbersAndCRLF(t *testing.T) {
	r := NewLineReader(strings.NewReader("first\r\nsecond\n\nlast"))
	assert.Zero(t, r.Line())

	text, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "first", text)
	assert.Equal(t, 1, r.Line())

	text, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "second", text)

	text, err = r.ReadLine()
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Equal(t, 3, r.Line())

	// Final line without a terminator still counts.
	text, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "last", text)
	assert.Equal(t, 4, r.Line())

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, r.EOF())
}
