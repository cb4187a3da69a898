package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarablanes/rdkit/mol"
)

func addAtom(m *mol.Mol, num int) int {
	return m.AddAtom(&mol.Atom{AtomicNum: num, Mass: mol.AtomicWeight(num)})
}

func addBond(t *testing.T, m *mol.Mol, begin, end int, typ mol.BondType) *mol.Bond {
	t.Helper()
	b := &mol.Bond{Begin: begin, End: end, Type: typ}
	_, err := m.AddBond(b)
	require.NoError(t, err)
	return b
}

func TestCalcExplicitValence(t *testing.T) {
	m := mol.New()
	c0 := addAtom(m, 6)
	c1 := addAtom(m, 6)
	c2 := addAtom(m, 6)
	addBond(t, m, c0, c1, mol.BondDouble)
	addBond(t, m, c1, c2, mol.BondSingle)

	Ops{}.CalcExplicitValence(m)
	assert.Equal(t, 2, m.Atom(c0).ExplicitValence)
	assert.Equal(t, 3, m.Atom(c1).ExplicitValence)

	// Two aromatic bonds round to 3, not 2.
	m = mol.New()
	for i := 0; i < 3; i++ {
		addAtom(m, 6)
	}
	addBond(t, m, 0, 1, mol.BondAromatic)
	addBond(t, m, 1, 2, mol.BondAromatic)
	Ops{}.CalcExplicitValence(m)
	assert.Equal(t, 3, m.Atom(1).ExplicitValence)
}

func TestRemoveHsKeepsSpecialHydrogens(t *testing.T) {
	m := mol.New()
	c := addAtom(m, 6)
	plain := addAtom(m, 1)
	charged := addAtom(m, 1)
	m.Atom(charged).Charge = 1
	isotope := m.AddAtom(&mol.Atom{AtomicNum: 1, Mass: 2.014})
	mapped := addAtom(m, 1)
	m.Atom(mapped).MapNum = 3
	addBond(t, m, c, plain, mol.BondSingle)
	addBond(t, m, c, charged, mol.BondSingle)
	addBond(t, m, c, isotope, mol.BondSingle)
	addBond(t, m, c, mapped, mol.BondSingle)

	require.NoError(t, Ops{}.RemoveHs(m))

	assert.Equal(t, 4, m.NumAtoms())
	assert.Equal(t, 3, m.NumBonds())
	for i := 1; i < m.NumAtoms(); i++ {
		a := m.Atom(i)
		keep := a.Charge != 0 || a.MapNum != 0 || a.Mass != mol.AtomicWeight(1)
		assert.True(t, keep, "atom %d should have been removed", i)
	}
}

func TestRemoveHsKeepsWedgedHydrogen(t *testing.T) {
	m := mol.New()
	c := addAtom(m, 6)
	h := addAtom(m, 1)
	b := addBond(t, m, c, h, mol.BondSingle)
	b.Dir = mol.DirWedgeBegin

	require.NoError(t, Ops{}.RemoveHs(m))
	assert.Equal(t, 2, m.NumAtoms())
}

func TestSanitizeAromaticBondCheck(t *testing.T) {
	m := mol.New()
	addAtom(m, 6)
	addAtom(m, 6)
	b := addBond(t, m, 0, 1, mol.BondAromatic)
	b.Aromatic = true
	m.Atom(0).Aromatic = true
	// Atom 1 missed the aromatic flag.
	err := Ops{}.Sanitize(m)
	var serr *SanitizeError
	require.ErrorAs(t, err, &serr)

	m.Atom(1).Aromatic = true
	assert.NoError(t, Ops{}.Sanitize(m))
}

func TestSanitizeDeclaredValence(t *testing.T) {
	m := mol.New()
	addAtom(m, 6)
	addAtom(m, 6)
	addAtom(m, 6)
	addBond(t, m, 0, 1, mol.BondDouble)
	addBond(t, m, 1, 2, mol.BondDouble)
	m.Atom(1).TotalValence = 3

	Ops{}.CalcExplicitValence(m)
	err := Ops{}.Sanitize(m)
	var serr *SanitizeError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "valence")
}

func TestBondInRing(t *testing.T) {
	m := mol.New()
	for i := 0; i < 4; i++ {
		addAtom(m, 6)
	}
	addBond(t, m, 0, 1, mol.BondSingle)
	addBond(t, m, 1, 2, mol.BondSingle)
	addBond(t, m, 2, 0, mol.BondSingle) // closes the triangle
	addBond(t, m, 2, 3, mol.BondSingle) // pendant

	assert.True(t, BondInRing(m, 0))
	assert.True(t, BondInRing(m, 2))
	assert.False(t, BondInRing(m, 3))
}

func TestDetectBondStereoChemistry(t *testing.T) {
	build := func(n2y float64) (*mol.Mol, *mol.Conformer) {
		m := mol.New()
		for i := 0; i < 4; i++ {
			addAtom(m, 6)
		}
		addBond(t, m, 0, 1, mol.BondSingle)
		addBond(t, m, 1, 2, mol.BondDouble)
		addBond(t, m, 2, 3, mol.BondSingle)
		conf := mol.NewConformer(4)
		conf.SetPosition(0, mol.Point3D{X: -1, Y: 1})
		conf.SetPosition(1, mol.Point3D{})
		conf.SetPosition(2, mol.Point3D{X: 1})
		conf.SetPosition(3, mol.Point3D{X: 2, Y: n2y})
		return m, conf
	}

	m, conf := build(-1)
	require.NoError(t, Ops{}.DetectBondStereoChemistry(m, conf))
	assert.Equal(t, mol.StereoTrans, m.Bond(1).Stereo)

	m, conf = build(1)
	require.NoError(t, Ops{}.DetectBondStereoChemistry(m, conf))
	assert.Equal(t, mol.StereoCis, m.Bond(1).Stereo)
}

func TestDetectBondStereoSkipsRingBonds(t *testing.T) {
	m := mol.New()
	for i := 0; i < 3; i++ {
		addAtom(m, 6)
	}
	addBond(t, m, 0, 1, mol.BondDouble)
	addBond(t, m, 1, 2, mol.BondSingle)
	addBond(t, m, 2, 0, mol.BondSingle)
	conf := mol.NewConformer(3)

	require.NoError(t, Ops{}.DetectBondStereoChemistry(m, conf))
	assert.Equal(t, mol.StereoNone, m.Bond(0).Stereo)
}

func TestAtomStereoPerceptionOrder(t *testing.T) {
	m := mol.New()
	c := addAtom(m, 6)
	for _, num := range []int{8, 7, 9} {
		addAtom(m, num)
	}
	b := addBond(t, m, c, 1, mol.BondSingle)
	b.Dir = mol.DirWedgeBegin
	addBond(t, m, c, 2, mol.BondSingle)
	addBond(t, m, c, 3, mol.BondSingle)
	conf := mol.NewConformer(4)

	require.NoError(t, Ops{}.DetectAtomStereochemistry(m, conf))
	assert.Equal(t, 1, m.Atom(c).Parity)

	Ops{}.ClearSingleBondDirFlags(m)
	assert.Equal(t, mol.DirNone, m.Bond(0).Dir)

	require.NoError(t, Ops{}.AssignStereochemistry(m))
	assert.Equal(t, 1, m.Atom(c).Parity)

	// With only one neighbor left the parity cannot stand.
	m.RemoveAtom(3)
	m.RemoveAtom(2)
	require.NoError(t, Ops{}.AssignStereochemistry(m))
	assert.Zero(t, m.Atom(c).Parity)
}

func TestStereoDetectionNeedsConformer(t *testing.T) {
	m := mol.New()
	assert.Error(t, Ops{}.DetectAtomStereochemistry(m, nil))
	assert.Error(t, Ops{}.DetectBondStereoChemistry(m, nil))
}
