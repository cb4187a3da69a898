package molfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarablanes/rdkit/mol"
)

func TestParseCountsLineStandard(t *testing.T) {
	c, err := parseCountsLine("  6  5  0  0  1  0  0  0  0  0999 V2000", 4)
	require.NoError(t, err)
	assert.Equal(t, 6, c.NumAtoms)
	assert.Equal(t, 5, c.NumBonds)
	assert.Equal(t, 1, c.ChiralFlag)
	assert.Equal(t, v2000, c.Version)
}

func TestParseCountsLineShortNoVersion(t *testing.T) {
	// Old files often stop after the mandatory counts; that implies V2000.
	c, err := parseCountsLine("  2  1", 4)
	require.NoError(t, err)
	assert.Equal(t, 2, c.NumAtoms)
	assert.Equal(t, v2000, c.Version)
}

func TestParseCountsLineV3000Tag(t *testing.T) {
	c, err := parseCountsLine("  0  0  0  0  0  0  0  0  0  0999 V3000", 4)
	require.NoError(t, err)
	assert.Equal(t, v3000, c.Version)
}

func TestParseCountsLineErrors(t *testing.T) {
	_, err := parseCountsLine("  2", 4)
	assert.Error(t, err)

	_, err = parseCountsLine("  x  1", 4)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 4, ferr.Line)

	_, err = parseCountsLine("  2  1  0  0  0  0  0  0  0  0999 V4000", 4)
	assert.Error(t, err)

	// Garbage where the version tag belongs is fatal, not ignored.
	_, err = parseCountsLine("  2  1  0  0  0  0  0  0  0  0999 bogus", 4)
	assert.Error(t, err)
}

func TestParseAtomLineCoordinatesAndSymbol(t *testing.T) {
	a, pos, err := parseAtomLine("    1.2500   -0.5000    2.0000 N   0  0", 5)
	require.NoError(t, err)
	assert.Equal(t, 7, a.AtomicNum)
	assert.InDelta(t, 1.25, pos.X, 1e-9)
	assert.InDelta(t, -0.5, pos.Y, 1e-9)
	assert.InDelta(t, 2.0, pos.Z, 1e-9)
	assert.InDelta(t, mol.AtomicWeight(7), a.Mass, 1e-9)
	assert.Nil(t, a.Query)
}

func TestParseAtomLineChargeCode(t *testing.T) {
	// The file stores 4-charge: code 1 is +3, code 5 is -1, code 7 is -3.
	for code, want := range map[string]int{"  1": 3, "  3": 1, "  5": -1, "  7": -3} {
		a, _, err := parseAtomLine("    0.0000    0.0000    0.0000 C   0"+code, 5)
		require.NoError(t, err)
		assert.Equal(t, want, a.Charge, "charge code %q", code)
	}
}

func TestParseAtomLineHCountMarksNoImplicitH(t *testing.T) {
	a, _, err := parseAtomLine("    0.0000    0.0000    0.0000 C   0  0  0  1", 5)
	require.NoError(t, err)
	assert.True(t, a.NoImplicitH)
}

func TestParseAtomLineMassDifference(t *testing.T) {
	a, _, err := parseAtomLine("    0.0000    0.0000    0.0000 C   2  0", 5)
	require.NoError(t, err)
	assert.InDelta(t, mol.AtomicWeight(6)+2, a.Mass, 1e-9)
	assert.True(t, a.MassQueried)
}

func TestParseAtomLineGarbageIsFatal(t *testing.T) {
	_, _, err := parseAtomLine("    0.0000    xx.000    0.0000 C   0  0", 5)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
}

func TestAtomFromSymbolDeuteriumTritium(t *testing.T) {
	d, err := atomFromSymbol("D", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, d.AtomicNum)
	assert.InDelta(t, 2.014, d.Mass, 1e-9)

	tr, err := atomFromSymbol("T", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.AtomicNum)
	assert.InDelta(t, 3.016, tr.Mass, 1e-9)
}

func TestAtomFromSymbolQueryShorthands(t *testing.T) {
	star, err := atomFromSymbol("*", 0, 1)
	require.NoError(t, err)
	require.NotNil(t, star.Query)
	assert.Equal(t, mol.QueryNull, star.Query.Kind)
	assert.True(t, star.NoImplicitH)

	// A is any atom but hydrogen.
	anyHeavy, err := atomFromSymbol("A", 0, 1)
	require.NoError(t, err)
	require.NotNil(t, anyHeavy.Query)
	assert.Equal(t, mol.QueryAtomicNum, anyHeavy.Query.Kind)
	assert.Equal(t, 1, anyHeavy.Query.Value)
	assert.True(t, anyHeavy.Query.Negated)

	// Q is any atom but carbon or hydrogen.
	het, err := atomFromSymbol("Q", 0, 1)
	require.NoError(t, err)
	require.NotNil(t, het.Query)
	assert.Equal(t, mol.QueryOr, het.Query.Kind)
	assert.True(t, het.Query.Negated)
	require.Len(t, het.Query.Children, 2)
	assert.Equal(t, 6, het.Query.Children[0].Value)
	assert.Equal(t, 1, het.Query.Children[1].Value)
}

func TestAtomFromSymbolRGroupDigit(t *testing.T) {
	r5, err := atomFromSymbol("R5", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, r5.AtomicNum)
	assert.InDelta(t, 5, r5.Mass, 1e-9)

	// R0 carries no digit surrogate.
	r0, err := atomFromSymbol("R0", 0, 1)
	require.NoError(t, err)
	assert.Zero(t, r0.Mass)

	// An explicit mass difference wins over the digit.
	r7, err := atomFromSymbol("R7", 3, 1)
	require.NoError(t, err)
	assert.Zero(t, r7.Mass)
}

func TestAtomFromSymbolUnknownElement(t *testing.T) {
	_, err := atomFromSymbol("Xx", 0, 9)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 9, ferr.Line)
}

func TestParseBondLineBasics(t *testing.T) {
	b, err := parseBondLine("  1  2  2  0", 8, 4, DiscardDiagnostics())
	require.NoError(t, err)
	assert.Equal(t, 0, b.Begin)
	assert.Equal(t, 1, b.End)
	assert.Equal(t, mol.BondDouble, b.Type)
	assert.Nil(t, b.Query)
}

func TestParseBondLineEndpointRange(t *testing.T) {
	_, err := parseBondLine("  1  5  1  0", 8, 4, DiscardDiagnostics())
	var rerr *RangeError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 5, rerr.Value)
	assert.Equal(t, 4, rerr.High)
}

func TestParseBondLineQueryOrders(t *testing.T) {
	// 5 = single or double, 6 = single or aromatic, 7 = double or aromatic.
	cases := map[string][2]mol.BondType{
		"  5": {mol.BondSingle, mol.BondDouble},
		"  6": {mol.BondSingle, mol.BondAromatic},
		"  7": {mol.BondDouble, mol.BondAromatic},
	}
	for code, want := range cases {
		b, err := parseBondLine("  1  2"+code+"  0", 8, 4, DiscardDiagnostics())
		require.NoError(t, err)
		require.NotNil(t, b.Query, "order code %q", code)
		assert.Equal(t, mol.QueryOr, b.Query.Kind)
		require.Len(t, b.Query.Children, 2)
		assert.Equal(t, int(want[0]), b.Query.Children[0].Value)
		assert.Equal(t, int(want[1]), b.Query.Children[1].Value)
	}

	b, err := parseBondLine("  1  2  8  0", 8, 4, DiscardDiagnostics())
	require.NoError(t, err)
	require.NotNil(t, b.Query)
	assert.Equal(t, mol.QueryNull, b.Query.Kind)
}

func TestParseBondLineOrderZeroWarns(t *testing.T) {
	var warnings Collector
	b, err := parseBondLine("  1  2  0  0", 8, 4, &warnings)
	require.NoError(t, err)
	assert.Equal(t, mol.BondUnspecified, b.Type)
	require.Len(t, warnings.Warnings, 1)
	assert.Contains(t, warnings.Warnings[0], "order 0")
}

func TestParseBondLineStereoCodes(t *testing.T) {
	cases := map[string]mol.BondDir{
		"  1": mol.DirWedgeBegin,
		"  4": mol.DirEitherUnknown,
		"  6": mol.DirHashBegin,
	}
	for code, want := range cases {
		b, err := parseBondLine("  1  2  1"+code, 8, 4, DiscardDiagnostics())
		require.NoError(t, err)
		assert.Equal(t, want, b.Dir, "stereo code %q", code)
	}

	b, err := parseBondLine("  1  2  2  3", 8, 4, DiscardDiagnostics())
	require.NoError(t, err)
	assert.Equal(t, mol.DirEitherDouble, b.Dir)
	assert.Equal(t, mol.StereoAny, b.Stereo)
}

func TestParseBondLineTopology(t *testing.T) {
	b, err := parseBondLine("  1  2  1  0  0  1", 8, 4, DiscardDiagnostics())
	require.NoError(t, err)
	require.NotNil(t, b.Query)
	// The order constraint is preserved and ANDed with the ring constraint.
	assert.Equal(t, mol.QueryAnd, b.Query.Kind)
	require.Len(t, b.Query.Children, 2)
	assert.Equal(t, mol.QueryBondOrder, b.Query.Children[0].Kind)
	assert.Equal(t, mol.QueryInRing, b.Query.Children[1].Kind)
	assert.False(t, b.Query.Children[1].Negated)

	b, err = parseBondLine("  1  2  1  0  0  2", 8, 4, DiscardDiagnostics())
	require.NoError(t, err)
	assert.True(t, b.Query.Children[1].Negated)

	_, err = parseBondLine("  1  2  1  0  0  3", 8, 4, DiscardDiagnostics())
	assert.Error(t, err)
}

func TestDecodeIntBlankContract(t *testing.T) {
	v, err := decodeInt("   ", "field", 1, true)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = decodeInt("   ", "field", 1, false)
	assert.Error(t, err)

	_, err = decodeInt(" 1x", "field", 3, true)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 3, ferr.Line)
}
