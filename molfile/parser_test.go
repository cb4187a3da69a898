package molfile

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarablanes/rdkit/mol"
)

const ethanolBlock = `ethanol
     RDKit          2D

  3  2  0  0  1  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0
    1.2990    0.7500    0.0000 C   0  0
    2.5981    0.0000    0.0000 O   0  0
  1  2  1  0
  2  3  1  0
M  END
`

func TestMolFromBlockEthanol(t *testing.T) {
	m, err := MolFromBlock(ethanolBlock, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "ethanol", m.Name)
	assert.Equal(t, 3, m.NumAtoms())
	assert.Equal(t, 2, m.NumBonds())
	assert.Equal(t, "C2O", m.Formula())
	assert.Equal(t, 1, m.ChiralFlag)

	conf := m.Conformer()
	require.NotNil(t, conf)
	assert.False(t, conf.Is3D())
	assert.InDelta(t, 1.299, conf.Position(1).X, 1e-9)

	// valence bookkeeping ran
	assert.Equal(t, 2, m.Atom(1).ExplicitValence)
	assert.Equal(t, 1, m.Atom(2).ExplicitValence)
}

func TestMolFromBlockRemovesPlainHydrogens(t *testing.T) {
	block := `methane
     RDKit          3D

  3  2  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0
    1.0000    0.0000    0.0000 H   0  0
   -1.0000    0.0000    0.0000 D   0  0
  1  2  1  0
  1  3  1  0
M  END
`
	m, err := MolFromBlock(block, DefaultOptions())
	require.NoError(t, err)
	// The plain H goes; the deuterium stays.
	require.Equal(t, 2, m.NumAtoms())
	assert.Equal(t, 1, m.NumBonds())
	assert.InDelta(t, 2.014, m.Atom(1).Mass, 1e-9)
	assert.True(t, m.Conformer().Is3D())
	assert.Equal(t, 2, m.Conformer().NumAtoms())

	// Without hydrogen removal everything stays.
	m, err = MolFromBlock(block, Options{Sanitize: true})
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumAtoms())
}

func TestMolFromBlockWedgePerception(t *testing.T) {
	block := `wedged
     RDKit          2D

  4  3  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0
    1.0000    0.0000    0.0000 O   0  0
   -0.5000    0.8660    0.0000 N   0  0
   -0.5000   -0.8660    0.0000 F   0  0
  1  2  1  1
  1  3  1  0
  1  4  1  0
M  END
`
	m, err := MolFromBlock(block, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Atom(0).Parity)
	// Wedge marks are consumed during perception.
	assert.Equal(t, mol.DirNone, m.Bond(0).Dir)
}

func TestMolFromBlockStereoDoubleBond(t *testing.T) {
	block := `butene
     RDKit          2D

  4  3  0  0  0  0  0  0  0  0999 V2000
   -1.0000    1.0000    0.0000 C   0  0
    0.0000    0.0000    0.0000 C   0  0
    1.0000    0.0000    0.0000 C   0  0
    2.0000   -1.0000    0.0000 C   0  0
  1  2  1  0
  2  3  2  0
  3  4  1  0
M  END
`
	m, err := MolFromBlock(block, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, mol.StereoTrans, m.Bond(1).Stereo)
}

func TestReadMolEOFAtStart(t *testing.T) {
	_, err := ReadMol(NewLineReader(strings.NewReader("")), DefaultOptions())
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadMolReaderFailureIsNotEOF(t *testing.T) {
	// A reader that dies mid-stream must not look like a clean end of
	// input to callers iterating record by record.
	broken := errors.New("connection reset")
	_, err := ReadMol(NewLineReader(iotest.ErrReader(broken)), DefaultOptions())
	assert.ErrorIs(t, err, broken)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestReadMolTruncatedHeader(t *testing.T) {
	_, err := ReadMol(NewLineReader(strings.NewReader("name only\n")), DefaultOptions())
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Error(), "header")
}

func TestReadMolMissingMEnd(t *testing.T) {
	block := `broken
     RDKit          2D

  1  0  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0
`
	_, err := MolFromBlock(block, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "M  END")
}

func TestReadMolZeroAtoms(t *testing.T) {
	block := `empty
     RDKit          2D

  0  0  0  0  0  0  0  0  0  0999 V2000
M  END
`
	_, err := MolFromBlock(block, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no atoms")
}

func TestReadMolKeepsLineNumbersAcrossFailure(t *testing.T) {
	block := `bad bond
     RDKit          2D

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0
    1.0000    0.0000    0.0000 C   0  0
  1  9  1  0
M  END
`
	_, err := MolFromBlock(block, DefaultOptions())
	var rerr *RangeError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 7, rerr.Line)
}

func TestReadMolV3000RequiresZeroLegacyCounts(t *testing.T) {
	block := `mixed
     RDKit          2D

  2  1  0  0  0  0  0  0  0  0999 V3000
M  V30 BEGIN CTAB
`
	_, err := MolFromBlock(block, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0s in the initial counts line")
}

func TestReadMolMultiRecordStream(t *testing.T) {
	r := NewLineReader(strings.NewReader(ethanolBlock + ethanolBlock))
	m1, err := ReadMol(r, DefaultOptions())
	require.NoError(t, err)
	m2, err := ReadMol(r, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, m1.Formula(), m2.Formula())

	_, err = ReadMol(r, DefaultOptions())
	assert.ErrorIs(t, err, io.EOF)
}

func TestDeferredRingBondQueryCompletesWithoutSanitize(t *testing.T) {
	block := `query mol
     RDKit          2D

  3  2  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0
    1.0000    0.0000    0.0000 C   0  0
    2.0000    0.0000    0.0000 C   0  0
  1  2  1  0
  2  3  1  0
M  RBC  1   2  -2
M  END
`
	// The completion pass is not part of sanitization; it must run even
	// when sanitization is off.
	m, err := MolFromBlock(block, Options{})
	require.NoError(t, err)
	assert.False(t, m.NeedsQueryRescan())

	q := m.Atom(1).Query
	require.NotNil(t, q)
	assert.False(t, q.HasDeferred())
	leaf := findLeaf(q, mol.QueryRingBondCount)
	require.NotNil(t, leaf)
	assert.Equal(t, 2, leaf.Value)
}
