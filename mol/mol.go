package mol

import (
	"fmt"
	"sort"
	"strings"
)

// Point3D is one atom position within a conformer.
type Point3D struct {
	X, Y, Z float64
}

// Conformer is a single coordinate assignment for every atom in a molecule,
// flagged 2D or 3D.
type Conformer struct {
	positions []Point3D
	is3D      bool
}

// NewConformer allocates a conformer sized for n atoms.
func NewConformer(n int) *Conformer {
	return &Conformer{positions: make([]Point3D, n)}
}

func (c *Conformer) SetPosition(i int, p Point3D) { c.positions[i] = p }
func (c *Conformer) Position(i int) Point3D       { return c.positions[i] }
func (c *Conformer) NumAtoms() int                { return len(c.positions) }
func (c *Conformer) SetIs3D(v bool)               { c.is3D = v }
func (c *Conformer) Is3D() bool                   { return c.is3D }

// drop removes the position at index i, shifting later positions down.
func (c *Conformer) drop(i int) {
	c.positions = append(c.positions[:i], c.positions[i+1:]...)
}

// Mol is the molecular graph under construction or after parsing. It is
// owned by a single goroutine at a time; nothing in here is safe for
// concurrent mutation.
type Mol struct {
	atoms []*Atom
	bonds []*Bond
	conf  *Conformer

	atomBookmarks map[int]int
	bondBookmarks map[int]int

	// Record-level header properties.
	Name    string
	Info    string
	Comment string

	// DimHint is 2 or 3 when the info line carried a dimensionality tag,
	// 0 otherwise. Consumed once when the conformer is attached.
	DimHint int

	ChiralFlag int

	chiralityPossible bool
	needsQueryRescan  bool
}

// New returns an empty molecule draft.
func New() *Mol {
	return &Mol{
		atomBookmarks: make(map[int]int),
		bondBookmarks: make(map[int]int),
	}
}

// AddAtom appends an atom and returns its stable index.
func (m *Mol) AddAtom(a *Atom) int {
	m.atoms = append(m.atoms, a)
	return len(m.atoms) - 1
}

// AddBond appends a bond after validating its endpoints and returns the
// bond's index.
func (m *Mol) AddBond(b *Bond) (int, error) {
	if b.Begin == b.End {
		return 0, fmt.Errorf("mol: bond joins atom %d to itself", b.Begin)
	}
	if b.Begin < 0 || b.Begin >= len(m.atoms) || b.End < 0 || b.End >= len(m.atoms) {
		return 0, fmt.Errorf("mol: bond endpoints %d-%d outside atom range [0,%d)", b.Begin, b.End, len(m.atoms))
	}
	m.bonds = append(m.bonds, b)
	return len(m.bonds) - 1, nil
}

func (m *Mol) NumAtoms() int      { return len(m.atoms) }
func (m *Mol) NumBonds() int      { return len(m.bonds) }
func (m *Mol) Atom(i int) *Atom   { return m.atoms[i] }
func (m *Mol) Bond(i int) *Bond   { return m.bonds[i] }
func (m *Mol) Atoms() []*Atom     { return m.atoms }
func (m *Mol) Bonds() []*Bond     { return m.bonds }

// ReplaceAtom swaps the value stored at index i. All indices held elsewhere
// (bond endpoints, bookmarks) remain valid.
func (m *Mol) ReplaceAtom(i int, a *Atom) { m.atoms[i] = a }

// RemoveAtom deletes the atom at index i together with its bonds and its
// conformer position, shifting later atom indices down by one. Bookmarks
// pointing at or past i are remapped or dropped.
func (m *Mol) RemoveAtom(i int) {
	m.atoms = append(m.atoms[:i], m.atoms[i+1:]...)
	kept := m.bonds[:0]
	for _, b := range m.bonds {
		if b.Begin == i || b.End == i {
			continue
		}
		if b.Begin > i {
			b.Begin--
		}
		if b.End > i {
			b.End--
		}
		kept = append(kept, b)
	}
	m.bonds = kept
	if m.conf != nil {
		m.conf.drop(i)
	}
	for local, idx := range m.atomBookmarks {
		switch {
		case idx == i:
			delete(m.atomBookmarks, local)
		case idx > i:
			m.atomBookmarks[local] = idx - 1
		}
	}
}

// Degree returns the number of bonds incident on atom i.
func (m *Mol) Degree(i int) int {
	n := 0
	for _, b := range m.bonds {
		if b.Begin == i || b.End == i {
			n++
		}
	}
	return n
}

// BondsOf returns the bonds incident on atom i, in insertion order.
func (m *Mol) BondsOf(i int) []*Bond {
	var out []*Bond
	for _, b := range m.bonds {
		if b.Begin == i || b.End == i {
			out = append(out, b)
		}
	}
	return out
}

// SetAtomBookmark maps a file-local atom number to an arena index.
func (m *Mol) SetAtomBookmark(local, idx int) { m.atomBookmarks[local] = idx }

// AtomWithBookmark resolves a file-local atom number.
func (m *Mol) AtomWithBookmark(local int) (int, bool) {
	idx, ok := m.atomBookmarks[local]
	return idx, ok
}

// SetBondBookmark maps a file-local bond number to an arena index.
func (m *Mol) SetBondBookmark(local, idx int) { m.bondBookmarks[local] = idx }

// BondWithBookmark resolves a file-local bond number.
func (m *Mol) BondWithBookmark(local int) (int, bool) {
	idx, ok := m.bondBookmarks[local]
	return idx, ok
}

// AttachConformer installs the molecule's single coordinate set.
func (m *Mol) AttachConformer(c *Conformer) { m.conf = c }

// Conformer returns the attached coordinate set, or nil.
func (m *Mol) Conformer() *Conformer { return m.conf }

// SetChiralityPossible records that a bond carried a wedge or hash mark.
func (m *Mol) SetChiralityPossible(v bool) { m.chiralityPossible = v }
func (m *Mol) ChiralityPossible() bool     { return m.chiralityPossible }

// SetNeedsQueryRescan flags the molecule for the deferred query-completion
// pass. The flag gates whether that pass runs at all.
func (m *Mol) SetNeedsQueryRescan(v bool) { m.needsQueryRescan = v }
func (m *Mol) NeedsQueryRescan() bool     { return m.needsQueryRescan }

// Formula returns the molecular formula of the explicit atoms in Hill
// order: carbon, then hydrogen, then the rest alphabetically. Placeholder
// atoms (atomic number 0) are reported as "*".
func (m *Mol) Formula() string {
	counts := make(map[string]int)
	for _, a := range m.atoms {
		counts[Symbol(a.AtomicNum)]++
	}
	symbols := make([]string, 0, len(counts))
	for s := range counts {
		if s != "C" && s != "H" {
			symbols = append(symbols, s)
		}
	}
	sort.Strings(symbols)
	if counts["H"] > 0 {
		symbols = append([]string{"H"}, symbols...)
	}
	if counts["C"] > 0 {
		symbols = append([]string{"C"}, symbols...)
	}
	var sb strings.Builder
	for _, s := range symbols {
		sb.WriteString(s)
		if counts[s] > 1 {
			fmt.Fprintf(&sb, "%d", counts[s])
		}
	}
	return sb.String()
}
