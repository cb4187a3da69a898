package molfile

import (
	"strings"

	"github.com/clarablanes/rdkit/mol"
)

// propState threads the per-record state the property handlers share: the
// draft, the diagnostics sink, and the reset-once flags for charge and
// radical lines.
type propState struct {
	m    *mol.Mol
	diag Diagnostics

	// The first charge (or radical) property line zeroes the charge
	// (or radical count) of every atom before applying its exceptions.
	// Record-scoped: later lines of the same kind apply exceptions only.
	chargeReset  bool
	radicalReset bool
}

// propHandlers dispatches on the 6-character property-line prefix.
// Unrecognized "M  xxx" prefixes are skipped, not fatal: files written
// against newer CTFile revisions must stay readable.
var propHandlers = map[string]func(*propState, string, int) error{
	"M  CHG": (*propState).parseChargeLine,
	"M  RAD": (*propState).parseRadicalLine,
	"M  ISO": (*propState).parseIsotopeLine,
	"M  SUB": (*propState).parseSubstitutionLine,
	"M  UNS": (*propState).parseUnsaturationLine,
	"M  RBC": (*propState).parseRingBondCountLine,
	"M  RGP": (*propState).parseRGroupLine,
	"M  ALS": (*propState).parseAtomListLine,
}

// readV2000Properties drives the property block until "M  END" or an SDF
// record terminator. It returns true only when "M  END" was seen; hitting
// end-of-stream first leaves the record incomplete and the orchestrator
// fails it.
func readV2000Properties(r *LineReader, m *mol.Mol, diag Diagnostics) (bool, error) {
	st := &propState{m: m, diag: diag}

	text, err := r.ReadLine()
	if err != nil {
		return false, nil
	}
	// Older mol files put a legacy atom-list block here, before any
	// prefixed property line.
	if len(text) > 0 && !strings.ContainsRune("MAVG", rune(text[0])) {
		if err := st.parseOldAtomList(text, r.Line()); err != nil {
			return false, err
		}
	}

	for {
		if strings.HasPrefix(text, "M  END") {
			return true, nil
		}
		if strings.HasPrefix(text, "$$$$") {
			return false, nil
		}
		if err := st.dispatch(r, text); err != nil {
			return false, err
		}
		if text, err = r.ReadLine(); err != nil {
			return false, nil
		}
	}
}

func (st *propState) dispatch(r *LineReader, text string) error {
	line := r.Line()
	if text == "" {
		return nil
	}
	switch text[0] {
	case 'A':
		alias, err := r.ReadLine()
		if err != nil {
			return formatErr(r.Line(), "atom alias", "", "EOF hit while reading atom alias")
		}
		return st.parseAtomAlias(text, alias, line)
	case 'V':
		return st.parseAtomValue(text, line)
	case 'G':
		st.diag.Warnf("line %d: deprecated group abbreviation ignored", line)
		return nil
	}
	if strings.HasPrefix(text, "S  SKP") {
		return nil
	}
	if len(text) >= 6 {
		if h, ok := propHandlers[text[:6]]; ok {
			return h(st, text, line)
		}
	}
	// Unknown prefix: forward-compatibility policy, skip silently.
	return nil
}

// atomAt resolves a 1-based file atom number against the draft.
func (st *propState) atomAt(fileNum, line int, what string) (*mol.Atom, int, error) {
	if fileNum < 1 || fileNum > st.m.NumAtoms() {
		return nil, 0, rangeErr(line, what, fileNum, 1, st.m.NumAtoms())
	}
	return st.m.Atom(fileNum - 1), fileNum - 1, nil
}

// entryList decodes the "count then (atom, value) pairs" layout shared by
// CHG, RAD, ISO, SUB, UNS, and RBC lines: the entry count in columns 6-8,
// then 4-character atom/value fields from column 9. blankOK says whether a
// missing or all-blank value field is legal for this property; when it is,
// the callback sees blank=true and value 0.
func (st *propState) entryList(text string, line int, name string, blankOK bool, apply func(atomIdx, value int, blank bool) error) error {
	nent, err := decodeInt(field(text, 6, 3), name+" entry count", line, false)
	if err != nil {
		return err
	}
	spos := 9
	for i := 0; i < nent; i++ {
		if !hasField(text, spos, 4) {
			return formatErr(line, name, text, "%s line truncated before entry %d", name, i+1)
		}
		fileNum, err := decodeInt(field(text, spos, 4), name+" atom number", line, false)
		if err != nil {
			return err
		}
		spos += 4
		_, idx, err := st.atomAt(fileNum, line, name+" atom number")
		if err != nil {
			return err
		}
		raw := ""
		if hasField(text, spos, 4) {
			raw = field(text, spos, 4)
			spos += 4
		}
		blank := strings.TrimSpace(raw) == ""
		value := 0
		if blank {
			if !blankOK {
				return formatErr(line, name+" value", text, "cannot convert %q to int", raw)
			}
		} else if value, err = decodeInt(raw, name+" value", line, false); err != nil {
			return err
		}
		if err := apply(idx, value, blank); err != nil {
			return err
		}
	}
	return nil
}

func (st *propState) parseChargeLine(text string, line int) error {
	if !st.chargeReset {
		for _, a := range st.m.Atoms() {
			a.Charge = 0
		}
		st.chargeReset = true
	}
	return st.entryList(text, line, "charge", false, func(idx, chg int, blank bool) error {
		st.m.Atom(idx).Charge = chg
		return nil
	})
}

func (st *propState) parseRadicalLine(text string, line int) error {
	if !st.radicalReset {
		for _, a := range st.m.Atoms() {
			a.RadicalElectrons = 0
		}
		st.radicalReset = true
	}
	return st.entryList(text, line, "radical", false, func(idx, rad int, blank bool) error {
		switch rad {
		case 1, 3:
			// Codes 1 and 3 both map to two unpaired electrons; the format's
			// historical readers do not distinguish singlet from triplet here.
			st.m.Atom(idx).RadicalElectrons = 2
		case 2:
			st.m.Atom(idx).RadicalElectrons = 1
		default:
			return formatErr(line, "radical value", text, "unrecognized radical value %d for atom %d", rad, idx)
		}
		return nil
	})
}

func (st *propState) parseIsotopeLine(text string, line int) error {
	return st.entryList(text, line, "isotope", true, func(idx, mass int, blank bool) error {
		a := st.m.Atom(idx)
		if blank {
			a.Mass = mol.AtomicWeight(a.AtomicNum)
		} else {
			a.Mass = float64(mass)
		}
		return nil
	})
}

func (st *propState) parseSubstitutionLine(text string, line int) error {
	return st.entryList(text, line, "substitution count", true, func(idx, count int, blank bool) error {
		if blank || count == 0 {
			return nil
		}
		var q *mol.Query
		switch {
		case count == -1:
			q = mol.DegreeEquals(0)
		case count == -2:
			q = mol.DegreeEquals(st.m.Degree(idx))
		case count >= 1 && count <= 5:
			q = mol.DegreeEquals(count)
		case count == 6:
			st.diag.Warnf("line %d: degree query with value 6 found; matching degree <= 6, the MDL spec asks for >= 6", line)
			q = mol.DegreeAtMost(6)
		default:
			return formatErr(line, "substitution count", text, "value %d is not supported as a degree query", count)
		}
		a := upgradeToQueryAtom(st.m, idx)
		a.ExpandQuery(q, mol.CombineAnd)
		return nil
	})
}

func (st *propState) parseUnsaturationLine(text string, line int) error {
	return st.entryList(text, line, "unsaturation", true, func(idx, count int, blank bool) error {
		switch {
		case blank || count == 0:
			return nil
		case count == 1:
			a := upgradeToQueryAtom(st.m, idx)
			a.ExpandQuery(mol.Unsaturated(), mol.CombineAnd)
			return nil
		default:
			return formatErr(line, "unsaturation", text,
				"value %d is not supported as an unsaturation query (only 0 and 1 are allowed)", count)
		}
	})
}

func (st *propState) parseRingBondCountLine(text string, line int) error {
	return st.entryList(text, line, "ring bond count", true, func(idx, count int, blank bool) error {
		if blank || count == 0 {
			return nil
		}
		var q *mol.Query
		switch {
		case count == -1:
			q = mol.RingBondCountEquals(0)
		case count == -2:
			// cannot resolve until the atom's final degree is known
			q = mol.RingBondCountDeferred()
			st.m.SetNeedsQueryRescan(true)
		case count >= 1 && count <= 3:
			q = mol.RingBondCountEquals(count)
		case count == 4:
			q = mol.RingBondCountAtMost(4)
		default:
			return formatErr(line, "ring bond count", text, "value %d is not supported as a ring-bond count query", count)
		}
		a := upgradeToQueryAtom(st.m, idx)
		a.ExpandQuery(q, mol.CombineAnd)
		return nil
	})
}

// parseRGroupLine attaches numeric R-group labels: entries are 8 wide from
// column 10, atom number then label. A label in 1..998 additionally
// overwrites the atom's mass as a label surrogate (a known collision with
// genuine isotope semantics, preserved for file compatibility), and the
// atom's query becomes match-anything.
func (st *propState) parseRGroupLine(text string, line int) error {
	nLabels, err := decodeInt(field(text, 6, 3), "R-group label count", line, false)
	if err != nil {
		return err
	}
	for i := 0; i < nLabels; i++ {
		pos := 10 + i*8
		if !hasField(text, pos, 7) {
			return formatErr(line, "R-group labels", text, "R-group line truncated before entry %d", i+1)
		}
		fileNum, err := decodeInt(field(text, pos, 3), "R-group atom number", line, false)
		if err != nil {
			return err
		}
		label, err := decodeInt(field(text, pos+4, 3), "R-group label", line, false)
		if err != nil {
			return err
		}
		a, _, err := st.atomAt(fileNum, line, "R-group atom number")
		if err != nil {
			return err
		}
		a.RLabel = label
		if label > 0 && label < 999 {
			a.Mass = float64(label)
		}
		a.Query = mol.NullQuery()
	}
	return nil
}

// parseAtomListLine handles "M  ALS": atom number at column 7, list size at
// 10, inclusion sense at 14 (F includes, T excludes), then 4-wide element
// symbols from column 16.
func (st *propState) parseAtomListLine(text string, line int) error {
	if len(text) < 15 {
		return formatErr(line, "atom list", text, "atom list line too short: %q", text)
	}
	fileNum, err := decodeInt(field(text, 7, 3), "atom list atom number", line, false)
	if err != nil {
		return err
	}
	a, idx, err := st.atomAt(fileNum, line, "atom list atom number")
	if err != nil {
		return err
	}
	nQueries, err := decodeInt(field(text, 10, 3), "atom list size", line, false)
	if err != nil {
		return err
	}
	if nQueries < 1 {
		return formatErr(line, "atom list size", text, "atom list without entries")
	}
	var children []*mol.Query
	for i := 0; i < nQueries; i++ {
		pos := 16 + i*4
		if !hasField(text, pos, 4) {
			return formatErr(line, "atom list", text, "atom list line too short: %q", text)
		}
		symb := mol.NormalizeSymbol(field(text, pos, 4))
		num, ok := mol.AtomicNumber(symb)
		if !ok {
			return formatErr(line, "atom list symbol", symb, "unknown element symbol %q", symb)
		}
		if i == 0 {
			a.AtomicNum = num
		}
		children = append(children, mol.AtomicNumEquals(num))
	}
	q := mol.NewOr(children...)
	switch text[14] {
	case 'T':
		q.Negated = true
	case 'F':
	default:
		return formatErr(line, "atom list modifier", string(text[14]),
			"unrecognized atom-list query modifier: %q", text[14])
	}
	a.Query = q
	st.m.ReplaceAtom(idx, a)
	return nil
}

// parseOldAtomList handles the legacy, prefix-less atom-list line found
// between the bond block and the properties: atom number at column 0,
// inclusion sense at 4, list size at 9, then 4-wide atomic numbers from
// column 11.
func (st *propState) parseOldAtomList(text string, line int) error {
	fileNum, err := decodeInt(field(text, 0, 3), "atom list atom number", line, false)
	if err != nil {
		return err
	}
	a, idx, err := st.atomAt(fileNum, line, "atom list atom number")
	if err != nil {
		return err
	}
	if len(text) < 10 {
		return formatErr(line, "atom list", text, "atom list line too short: %q", text)
	}
	nQueries, err := decodeInt(field(text, 9, 1), "atom list size", line, false)
	if err != nil {
		return err
	}
	if nQueries < 0 || nQueries > 5 {
		return rangeErr(line, "atom list size", nQueries, 0, 5)
	}
	var children []*mol.Query
	for i := 0; i < nQueries; i++ {
		pos := 11 + i*4
		if !hasField(text, pos, 3) {
			return formatErr(line, "atom list", text, "atom list line too short: %q", text)
		}
		num, err := decodeInt(field(text, pos, 3), "atom list atomic number", line, false)
		if err != nil {
			return err
		}
		if num < 0 || num > 200 {
			return rangeErr(line, "atom list atomic number", num, 0, 200)
		}
		if i == 0 {
			a.AtomicNum = num
		}
		children = append(children, mol.AtomicNumEquals(num))
	}
	q := mol.NewOr(children...)
	switch text[4] {
	case 'T':
		q.Negated = true
	case 'F':
	default:
		return formatErr(line, "atom list modifier", string(text[4]),
			"unrecognized atom-list query modifier: %q", text[4])
	}
	a.Query = q
	st.m.ReplaceAtom(idx, a)
	return nil
}

func (st *propState) parseAtomAlias(text, alias string, line int) error {
	if len(text) < 6 {
		return formatErr(line, "atom alias", text, "atom alias line too short: %q", text)
	}
	fileNum, err := decodeInt(field(text, 3, 3), "alias atom number", line, false)
	if err != nil {
		return err
	}
	a, _, err := st.atomAt(fileNum, line, "alias atom number")
	if err != nil {
		return err
	}
	a.Alias = alias
	return nil
}

func (st *propState) parseAtomValue(text string, line int) error {
	if len(text) < 8 {
		return formatErr(line, "atom value", text, "atom value line too short: %q", text)
	}
	fileNum, err := decodeInt(field(text, 3, 3), "value atom number", line, false)
	if err != nil {
		return err
	}
	a, _, err := st.atomAt(fileNum, line, "value atom number")
	if err != nil {
		return err
	}
	a.Value = text[7:]
	return nil
}
