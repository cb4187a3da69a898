package molfile

import "github.com/clarablanes/rdkit/mol"

// upgradeToQueryAtom gives the atom at idx a query tree equivalent to its
// current literal state, so later constraints compose additively instead of
// clobbering element/charge/isotope information. Idempotent: an atom that
// already carries a query is returned unchanged. The upgrade happens in
// place; the atom keeps its index and every property already assigned.
func upgradeToQueryAtom(m *mol.Mol, idx int) *mol.Atom {
	a := m.Atom(idx)
	if a.Query != nil {
		return a
	}
	a.Query = mol.AtomicNumEquals(a.AtomicNum)
	if a.Charge != 0 {
		a.ExpandQuery(mol.ChargeEquals(a.Charge), mol.CombineAnd)
	}
	if a.MassQueried {
		a.ExpandQuery(mol.MassEquals(int(a.Mass)), mol.CombineAnd)
	}
	return a
}

// completeMolQueries is the second pass over deferred ring-bond-count
// queries: once the whole graph exists, each deferred leaf takes the value
// of its atom's final degree. Gated by the draft's needs-query-rescan flag
// so molecules without deferred queries skip the walk entirely.
func completeMolQueries(m *mol.Mol) {
	if !m.NeedsQueryRescan() {
		return
	}
	for i := range m.Atoms() {
		a := m.Atom(i)
		if a.Query == nil {
			continue
		}
		degree := m.Degree(i)
		a.Query.Walk(func(q *mol.Query) {
			if q.Deferred {
				q.Value = degree
				q.Deferred = false
			}
		})
	}
	m.SetNeedsQueryRescan(false)
}
