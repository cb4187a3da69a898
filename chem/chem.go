// Package chem implements the post-parse chemistry passes the file parsers
// delegate to: valence bookkeeping, hydrogen removal, light sanitization,
// and stereochemistry perception. The parser calls these in a fixed order
// and propagates their failures unchanged; it never applies chemistry rules
// itself.
package chem

import (
	"fmt"
	"math"

	"github.com/clarablanes/rdkit/mol"
)

// SanitizeError reports a molecule that fails the structural checks run
// after parsing.
type SanitizeError struct {
	Message string
}

func (e *SanitizeError) Error() string { return "sanitize: " + e.Message }

// Ops is the default post-processor. The zero value is ready to use.
type Ops struct{}

// CalcExplicitValence fills Atom.ExplicitValence for every atom from the
// literal bond orders. Aromatic bonds contribute 1.5; the total is rounded
// half-up, matching the usual Kekule-free accounting.
func (Ops) CalcExplicitValence(m *mol.Mol) {
	for i := range m.Atoms() {
		v := 0.0
		for _, b := range m.BondsOf(i) {
			v += orderContribution(b.Type)
		}
		m.Atom(i).ExplicitValence = int(math.Floor(v + 0.5))
	}
}

func orderContribution(t mol.BondType) float64 {
	switch t {
	case mol.BondSingle, mol.BondUnspecified:
		return 1
	case mol.BondDouble:
		return 2
	case mol.BondTriple:
		return 3
	case mol.BondAromatic:
		return 1.5
	}
	return 0
}

// CleanUp normalizes drawing artifacts before stereo perception. The hook
// exists so stereo detection sees a consistent graph; the current pass has
// nothing to rewrite.
func (Ops) CleanUp(m *mol.Mol) error { return nil }

// DetectAtomStereochemistry marks parity on atoms whose wedge/hash bonds
// support it. It must run before hydrogen removal: deleting an H can delete
// the very bond carrying the wedge.
func (Ops) DetectAtomStereochemistry(m *mol.Mol, conf *mol.Conformer) error {
	if conf == nil {
		return &SanitizeError{Message: "atom stereo detection needs coordinates"}
	}
	for i := range m.Atoms() {
		a := m.Atom(i)
		if a.Parity != 0 {
			continue
		}
		for _, b := range m.BondsOf(i) {
			if b.Begin != i {
				continue
			}
			switch b.Dir {
			case mol.DirWedgeBegin:
				a.Parity = 1
			case mol.DirHashBegin:
				a.Parity = 2
			}
		}
	}
	return nil
}

// RemoveHs deletes plain explicit hydrogens: uncharged, unmapped,
// non-query H atoms at standard weight with a single non-directional
// single bond. Heavy-atom indices keep their relative order.
func (Ops) RemoveHs(m *mol.Mol) error {
	for i := m.NumAtoms() - 1; i >= 0; i-- {
		a := m.Atom(i)
		if a.AtomicNum != 1 || a.Charge != 0 || a.MapNum != 0 || a.Query != nil {
			continue
		}
		if a.Mass != mol.AtomicWeight(1) {
			continue // isotope, keep it
		}
		bonds := m.BondsOf(i)
		if len(bonds) != 1 {
			continue
		}
		b := bonds[0]
		if b.Type != mol.BondSingle || b.Dir != mol.DirNone {
			continue
		}
		m.RemoveAtom(i)
	}
	return nil
}

// Sanitize runs the structural checks that must hold for a freshly parsed
// molecule: aromatic bonds sit between aromatic-flagged atoms and declared
// valences are not exceeded.
func (Ops) Sanitize(m *mol.Mol) error {
	for i := 0; i < m.NumBonds(); i++ {
		b := m.Bond(i)
		if b.Type != mol.BondAromatic {
			continue
		}
		if !m.Atom(b.Begin).Aromatic || !m.Atom(b.End).Aromatic {
			return &SanitizeError{
				Message: fmt.Sprintf("aromatic bond %d-%d on non-aromatic atom", b.Begin, b.End),
			}
		}
	}
	for i := range m.Atoms() {
		a := m.Atom(i)
		if a.TotalValence > 0 && a.ExplicitValence > a.TotalValence {
			return &SanitizeError{
				Message: fmt.Sprintf("atom %d: explicit valence %d exceeds declared %d", i, a.ExplicitValence, a.TotalValence),
			}
		}
	}
	return nil
}

// ClearSingleBondDirFlags drops wedge/hash markers from single bonds once
// atom stereochemistry has been perceived.
func (Ops) ClearSingleBondDirFlags(m *mol.Mol) {
	for i := 0; i < m.NumBonds(); i++ {
		b := m.Bond(i)
		if b.Type == mol.BondSingle {
			b.Dir = mol.DirNone
		}
	}
}

// DetectBondStereoChemistry assigns cis/trans to acyclic double bonds from
// conformer geometry. It needs ring information, so it runs only after
// sanitization.
func (Ops) DetectBondStereoChemistry(m *mol.Mol, conf *mol.Conformer) error {
	if conf == nil {
		return &SanitizeError{Message: "bond stereo detection needs coordinates"}
	}
	for i := 0; i < m.NumBonds(); i++ {
		b := m.Bond(i)
		if b.Type != mol.BondDouble || b.Stereo != mol.StereoNone {
			continue
		}
		if BondInRing(m, i) {
			continue
		}
		n1, ok1 := neighborOff(m, b.Begin, b.End)
		n2, ok2 := neighborOff(m, b.End, b.Begin)
		if !ok1 || !ok2 {
			continue
		}
		if sameSide(conf, b.Begin, b.End, n1, n2) {
			b.Stereo = mol.StereoCis
		} else {
			b.Stereo = mol.StereoTrans
		}
	}
	return nil
}

// AssignStereochemistry is the final pass: parity codes that no bond or
// neighbor geometry can support any longer are cleared.
func (Ops) AssignStereochemistry(m *mol.Mol) error {
	for i := range m.Atoms() {
		a := m.Atom(i)
		if a.Parity != 0 && m.Degree(i) < 3 {
			a.Parity = 0
		}
	}
	return nil
}

// BondInRing reports whether bond i sits in a cycle: with the bond removed,
// its endpoints must still be connected.
func BondInRing(m *mol.Mol, i int) bool {
	b := m.Bond(i)
	visited := make([]bool, m.NumAtoms())
	queue := []int{b.Begin}
	visited[b.Begin] = true
	for len(queue) > 0 {
		at := queue[0]
		queue = queue[1:]
		for j := 0; j < m.NumBonds(); j++ {
			if j == i {
				continue
			}
			e := m.Bond(j)
			var next int
			switch at {
			case e.Begin:
				next = e.End
			case e.End:
				next = e.Begin
			default:
				continue
			}
			if next == b.End {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// neighborOff returns a neighbor of atom that is not excl.
func neighborOff(m *mol.Mol, atom, excl int) (int, bool) {
	for _, b := range m.BondsOf(atom) {
		other := b.Begin
		if other == atom {
			other = b.End
		}
		if other != excl {
			return other, true
		}
	}
	return 0, false
}

// sameSide reports whether n1 and n2 lie on the same side of the line
// through a and b.
func sameSide(conf *mol.Conformer, a, b, n1, n2 int) bool {
	pa, pb := conf.Position(a), conf.Position(b)
	cross := func(p mol.Point3D) float64 {
		return (pb.X-pa.X)*(p.Y-pa.Y) - (pb.Y-pa.Y)*(p.X-pa.X)
	}
	return cross(conf.Position(n1))*cross(conf.Position(n2)) > 0
}
