package mol

// Atom is one entry in the molecule's atom arena. AtomicNum 0 marks a
// wildcard or R-group placeholder. An atom starts plain and may be upgraded
// to a query atom in place; once Query is set, constraint-adding operations
// compose against it instead of replacing it.
type Atom struct {
	AtomicNum        int
	Mass             float64 // standard weight unless an isotope/mass override applies
	Charge           int
	RadicalElectrons int
	NoImplicitH      bool
	Parity           int // stereo parity code 0-3
	MapNum           int
	RLabel           int // R-group label from M  RGP, 0 when absent
	Aromatic         bool
	MassQueried      bool // a mass-difference was applied; query upgrade adds a mass predicate
	Query            *Query

	// Optional V2000 atom-line fields, kept verbatim.
	StereoCare   int
	TotalValence int
	Inversion    int
	ExactChange  int

	// Legacy per-atom annotations from A/V property lines.
	Alias string
	Value string

	// Filled in by post-processing, not by the parser.
	ExplicitValence int
}

// ExpandQuery composes q onto the atom's existing query tree.
// The atom must already carry a query.
func (a *Atom) ExpandQuery(q *Query, how Combinator) {
	a.Query = combine(a.Query, q, how)
}
