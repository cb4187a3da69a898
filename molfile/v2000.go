package molfile

import (
	"github.com/clarablanes/rdkit/mol"
)

// ctabVersion selects the connection-table grammar named by the counts
// line's version tag.
type ctabVersion int

const (
	v2000 ctabVersion = iota
	v3000
)

// counts carries the decoded V2000 counts line. Only NumAtoms and NumBonds
// are load-bearing; the legacy counters are kept because some property
// handlers and writers downstream still read them.
type counts struct {
	NumAtoms       int
	NumBonds       int
	NumLists       int
	ChiralFlag     int
	NumSText       int
	RxnComponents  int
	NumReactants   int
	NumProducts    int
	NumIntermediates int
	Version        ctabVersion
}

// parseCountsLine decodes the fixed-column counts line. The two mandatory
// counts abort the record when malformed; the seven legacy counters do not
// (old NCI-style SD files routinely truncate or garble them).
func parseCountsLine(text string, line int) (counts, error) {
	var c counts
	if len(text) < 6 {
		return c, formatErr(line, "counts line", text, "counts line too short: %q", text)
	}
	var err error
	if c.NumAtoms, err = decodeInt(field(text, 0, 3), "atom count", line, false); err != nil {
		return c, err
	}
	if c.NumBonds, err = decodeInt(field(text, 3, 3), "bond count", line, false); err != nil {
		return c, err
	}

	// Optional legacy counters: decode failures here are ignored, never fatal.
	optional := func(start int, dst *int) {
		if !hasField(text, start, 3) {
			return
		}
		if v, err := decodeInt(field(text, start, 3), "legacy counter", line, true); err == nil {
			*dst = v
		}
	}
	optional(6, &c.NumLists)
	optional(12, &c.ChiralFlag)
	optional(15, &c.NumSText)
	optional(18, &c.RxnComponents)
	optional(21, &c.NumReactants)
	optional(24, &c.NumProducts)
	optional(27, &c.NumIntermediates)

	// Version tag at column 34. Absent means V2000.
	c.Version = v2000
	if len(text) > 35 {
		if len(text) < 39 || text[34] != 'V' {
			return c, formatErr(line, "version tag", text, "CTAB version string invalid")
		}
		switch field(text, 34, 5) {
		case "V2000":
			c.Version = v2000
		case "V3000":
			c.Version = v3000
		default:
			return c, formatErr(line, "version tag", field(text, 34, 5),
				"unsupported CTAB version: %q", field(text, 34, 5))
		}
	}
	return c, nil
}

// parseAtomLine decodes one fixed-column V2000 atom line:
// coordinates at 0/10/20 (10 wide), symbol at 31 (3 wide), then the
// optional mass-difference, charge-code, parity, hydrogen-count,
// stereo-care, valence, map-number, inversion, and exact-change fields.
// Optional fields participate only when their slice is not the all-blank
// "0" placeholder.
func parseAtomLine(text string, line int) (*mol.Atom, mol.Point3D, error) {
	var pos mol.Point3D
	if len(text) < 34 {
		return nil, pos, formatErr(line, "atom line", text, "atom line too short: %q", text)
	}

	var err error
	if pos.X, err = decodeFloat(field(text, 0, 10), "x coordinate", line, true); err != nil {
		return nil, pos, err
	}
	if pos.Y, err = decodeFloat(field(text, 10, 10), "y coordinate", line, true); err != nil {
		return nil, pos, err
	}
	if pos.Z, err = decodeFloat(field(text, 20, 10), "z coordinate", line, true); err != nil {
		return nil, pos, err
	}

	symb := mol.NormalizeSymbol(field(text, 31, 3))

	massDiff := 0
	if hasField(text, 34, 2) && field(text, 34, 2) != " 0" {
		if massDiff, err = decodeInt(field(text, 34, 2), "mass difference", line, true); err != nil {
			return nil, pos, err
		}
	}
	chargeCode := 0
	if hasField(text, 36, 3) && field(text, 36, 3) != "  0" {
		if chargeCode, err = decodeInt(field(text, 36, 3), "charge code", line, true); err != nil {
			return nil, pos, err
		}
	}
	hCount := 0
	if hasField(text, 42, 3) && field(text, 42, 3) != "  0" {
		if hCount, err = decodeInt(field(text, 42, 3), "hydrogen count", line, true); err != nil {
			return nil, pos, err
		}
	}

	a, err := atomFromSymbol(symb, massDiff, line)
	if err != nil {
		return nil, pos, err
	}

	if chargeCode != 0 {
		a.Charge = 4 - chargeCode
	}
	if hCount == 1 {
		a.NoImplicitH = true
	}
	if massDiff != 0 {
		// Offset from the standard weight, not the most abundant isotope;
		// kept for compatibility with the format's historical readers.
		a.Mass += float64(massDiff)
		a.MassQueried = true
	}

	intField := func(start int, name string, dst *int) error {
		if !hasField(text, start, 3) || field(text, start, 3) == "  0" {
			return nil
		}
		v, err := decodeInt(field(text, start, 3), name, line, true)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
	if err := intField(39, "stereo parity", &a.Parity); err != nil {
		return nil, pos, err
	}
	if err := intField(45, "stereo care", &a.StereoCare); err != nil {
		return nil, pos, err
	}
	if err := intField(48, "valence", &a.TotalValence); err != nil {
		return nil, pos, err
	}
	if err := intField(60, "atom map number", &a.MapNum); err != nil {
		return nil, pos, err
	}
	if err := intField(63, "inversion flag", &a.Inversion); err != nil {
		return nil, pos, err
	}
	if err := intField(66, "exact change flag", &a.ExactChange); err != nil {
		return nil, pos, err
	}
	return a, pos, nil
}

// atomFromSymbol resolves the 1-3 character symbol field. Special symbols
// are recognized before the periodic-table lookup: the query shorthands
// */A/Q, the placeholder family L/LP/R/R#/R0-R9, and the hydrogen isotope
// shorthands D/T.
func atomFromSymbol(symb string, massDiff int, line int) (*mol.Atom, error) {
	a := &mol.Atom{}
	switch {
	case symb == "*":
		a.Query = mol.NullQuery()
		a.NoImplicitH = true
	case symb == "A":
		// any heavy atom: anything but hydrogen
		q := mol.AtomicNumEquals(1)
		q.Negated = true
		a.Query = q
		a.NoImplicitH = true
	case symb == "Q":
		// heteroatom: neither carbon nor hydrogen
		q := mol.NewOr(mol.AtomicNumEquals(6), mol.AtomicNumEquals(1))
		q.Negated = true
		a.Query = q
		a.NoImplicitH = true
	case symb == "L" || symb == "LP" || symb == "R" || symb == "R#":
		// placeholder, atomic number 0
	case len(symb) == 2 && symb[0] == 'R' && symb[1] >= '0' && symb[1] <= '9':
		// R0-R9 encode the digit as a mass surrogate when no explicit
		// mass difference was given.
		if massDiff == 0 && symb[1] > '0' {
			a.Mass = float64(symb[1] - '0')
		}
	case symb == "D":
		a.AtomicNum = 1
		a.Mass = 2.014
	case symb == "T":
		a.AtomicNum = 1
		a.Mass = 3.016
	default:
		num, ok := mol.AtomicNumber(symb)
		if !ok {
			return nil, formatErr(line, "atom symbol", symb, "unknown element symbol %q", symb)
		}
		a.AtomicNum = num
		a.Mass = mol.AtomicWeight(num)
	}
	return a, nil
}

// parseBondLine decodes one fixed-column V2000 bond line: begin/end atom
// numbers (1-based in the file) and the order code at 0/3/6, optional
// stereo at 9, ring topology at 15, reacting-center status at 18.
func parseBondLine(text string, line, numAtoms int, diag Diagnostics) (*mol.Bond, error) {
	if len(text) < 9 {
		return nil, formatErr(line, "bond line", text, "bond line too short: %q", text)
	}
	begin, err := decodeInt(field(text, 0, 3), "bond begin atom", line, false)
	if err != nil {
		return nil, err
	}
	end, err := decodeInt(field(text, 3, 3), "bond end atom", line, false)
	if err != nil {
		return nil, err
	}
	orderCode, err := decodeInt(field(text, 6, 3), "bond order", line, false)
	if err != nil {
		return nil, err
	}
	if begin < 1 || begin > numAtoms {
		return nil, rangeErr(line, "bond begin atom", begin, 1, numAtoms)
	}
	if end < 1 || end > numAtoms {
		return nil, rangeErr(line, "bond end atom", end, 1, numAtoms)
	}

	b := &mol.Bond{Begin: begin - 1, End: end - 1}
	applyBondOrder(b, orderCode, line, diag)

	if hasField(text, 9, 3) && field(text, 9, 3) != "  0" {
		stereo, err := decodeInt(field(text, 9, 3), "bond stereo", line, true)
		if err != nil {
			return nil, err
		}
		switch stereo {
		case 0:
			b.Dir = mol.DirNone
		case 1:
			b.Dir = mol.DirWedgeBegin
		case 3:
			b.Dir = mol.DirEitherDouble
			b.Stereo = mol.StereoAny
		case 4:
			b.Dir = mol.DirEitherUnknown
		case 6:
			b.Dir = mol.DirHashBegin
		}
	}
	if hasField(text, 15, 3) && field(text, 15, 3) != "  0" {
		topology, err := decodeInt(field(text, 15, 3), "bond topology", line, true)
		if err != nil {
			return nil, err
		}
		if err := applyBondTopology(b, topology, line); err != nil {
			return nil, err
		}
	}
	if hasField(text, 18, 3) && field(text, 18, 3) != "  0" {
		status, err := decodeInt(field(text, 18, 3), "reacting center status", line, true)
		if err != nil {
			return nil, err
		}
		b.ReactStatus = status
	}
	return b, nil
}

// applyBondOrder maps a CTAB order code onto the bond: 1-4 are literal
// orders, 5/6/7 become one-of queries over two orders, 8 matches any bond,
// 0 and unknown codes degrade with a diagnostic.
func applyBondOrder(b *mol.Bond, code, line int, diag Diagnostics) {
	switch code {
	case 1:
		b.Type = mol.BondSingle
	case 2:
		b.Type = mol.BondDouble
	case 3:
		b.Type = mol.BondTriple
	case 4:
		b.Type = mol.BondAromatic
	case 0:
		b.Type = mol.BondUnspecified
		diag.Warnf("line %d: bond with order 0 found; this is not part of the MDL specification", line)
	case 5:
		b.Query = mol.NewOr(mol.BondOrderEquals(mol.BondSingle), mol.BondOrderEquals(mol.BondDouble))
	case 6:
		b.Query = mol.NewOr(mol.BondOrderEquals(mol.BondSingle), mol.BondOrderEquals(mol.BondAromatic))
	case 7:
		b.Query = mol.NewOr(mol.BondOrderEquals(mol.BondDouble), mol.BondOrderEquals(mol.BondAromatic))
	case 8:
		b.Query = mol.NullQuery()
	default:
		b.Query = mol.NullQuery()
		diag.Warnf("line %d: unrecognized query bond type %d, using an \"any\" query", line, code)
	}
}

// applyBondTopology upgrades the bond to a query composed with AND against
// its order: 1 means must-be-in-ring, 2 must-not-be-in-ring.
func applyBondTopology(b *mol.Bond, topology, line int) error {
	q := mol.InRing()
	switch topology {
	case 1:
	case 2:
		q.Negated = true
	default:
		return formatErr(line, "bond topology", "", "unrecognized bond topology specifier: %d", topology)
	}
	b.ExpandQuery(q, mol.CombineAnd)
	return nil
}

// readV2000Atoms consumes nAtoms atom lines, appending to the draft and its
// conformer in file order.
func readV2000Atoms(r *LineReader, m *mol.Mol, conf *mol.Conformer, nAtoms int) error {
	for i := 0; i < nAtoms; i++ {
		text, err := r.ReadLine()
		if err != nil {
			return formatErr(r.Line(), "atom block", "", "EOF hit while reading atoms")
		}
		a, pos, err := parseAtomLine(text, r.Line())
		if err != nil {
			return err
		}
		idx := m.AddAtom(a)
		conf.SetPosition(idx, pos)
	}
	return nil
}

// readV2000Bonds consumes nBonds bond lines. Aromatic bonds propagate the
// aromaticity flag to both endpoints; any wedge/hash mark flags the draft
// as possibly chiral.
func readV2000Bonds(r *LineReader, m *mol.Mol, nBonds int, diag Diagnostics) error {
	for i := 0; i < nBonds; i++ {
		text, err := r.ReadLine()
		if err != nil {
			return formatErr(r.Line(), "bond block", "", "EOF hit while reading bonds")
		}
		b, err := parseBondLine(text, r.Line(), m.NumAtoms(), diag)
		if err != nil {
			return err
		}
		if b.Type == mol.BondAromatic {
			b.Aromatic = true
			m.Atom(b.Begin).Aromatic = true
			m.Atom(b.End).Aromatic = true
		}
		if b.Dir != mol.DirNone && b.Dir != mol.DirEitherUnknown {
			m.SetChiralityPossible(true)
		}
		if _, err := m.AddBond(b); err != nil {
			return rangeErr(r.Line(), "bond endpoints", b.Begin, 0, m.NumAtoms()-1)
		}
	}
	return nil
}
