package molfile

import (
	"strings"

	"github.com/clarablanes/rdkit/mol"
)

const v30Tag = "M  V30 "

// v3000Line assembles one logical line: every physical line must begin
// with the "M  V30 " tag, and a trailing '-' continues the logical line on
// the next physical line with both the tag and the marker stripped.
func v3000Line(r *LineReader) (string, error) {
	text, err := r.ReadLine()
	if err != nil {
		return "", formatErr(r.Line(), "V3000 line", "", "EOF hit while reading V3000 block")
	}
	if len(text) < len(v30Tag) || text[:len(v30Tag)] != v30Tag {
		return "", formatErr(r.Line(), "V3000 tag", text, "line %d does not start with %q", r.Line(), v30Tag)
	}
	var sb strings.Builder
	for strings.HasSuffix(text, "-") {
		sb.WriteString(text[len(v30Tag) : len(text)-1])
		if text, err = r.ReadLine(); err != nil {
			return "", formatErr(r.Line(), "V3000 line", "", "EOF hit inside a continued V3000 line")
		}
		if len(text) < len(v30Tag) || text[:len(v30Tag)] != v30Tag {
			return "", formatErr(r.Line(), "V3000 tag", text, "line %d does not start with %q", r.Line(), v30Tag)
		}
	}
	sb.WriteString(text[len(v30Tag):])
	return sb.String(), nil
}

// tokenizeV3000 splits a logical line on whitespace, keeping quoted runs
// ('...' or "...") together with the quotes removed.
func tokenizeV3000(s string) []string {
	var tokens []string
	var cur strings.Builder
	inToken := false
	var quote byte
	flush := func() {
		if inToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inToken = false
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				cur.WriteByte(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
			inToken = true
		case ch == ' ' || ch == '\t':
			flush()
		default:
			cur.WriteByte(ch)
			inToken = true
		}
	}
	flush()
	return tokens
}

// splitAssign splits a KEY=VALUE property token; the key is upper-cased.
func splitAssign(token string) (string, string, bool) {
	parts := strings.SplitN(token, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.ToUpper(parts[0]), parts[1], true
}

// expectV3000 reads the next logical line and checks its leading literal.
func expectV3000(r *LineReader, literal string) (string, error) {
	text, err := v3000Line(r)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(text, literal) {
		return "", formatErr(r.Line(), "V3000 tag", text, "%s line not found", literal)
	}
	return text, nil
}

// parseV3000 reads a complete V3000 connection table: BEGIN CTAB, COUNTS,
// the atom and bond blocks, then the optional blocks that are recognized
// and skipped (SGROUP, OBJ3D, LINKNODE, and anything else bracketed by
// BEGIN/END), up to END CTAB.
func parseV3000(r *LineReader, m *mol.Mol, diag Diagnostics) error {
	if _, err := expectV3000(r, "BEGIN CTAB"); err != nil {
		return err
	}

	text, err := v3000Line(r)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(text, "COUNTS ") {
		return formatErr(r.Line(), "V3000 counts", text, "bad counts line: %q", text)
	}
	fields := strings.Fields(text[len("COUNTS "):])
	if len(fields) < 2 {
		return formatErr(r.Line(), "V3000 counts", text, "bad counts line: %q", text)
	}
	nAtoms, err := decodeInt(fields[0], "atom count", r.Line(), false)
	if err != nil {
		return err
	}
	nBonds, err := decodeInt(fields[1], "bond count", r.Line(), false)
	if err != nil {
		return err
	}
	if nAtoms <= 0 {
		return formatErr(r.Line(), "atom count", fields[0], "molecule has no atoms")
	}
	nSgroups, n3D := 0, 0
	if len(fields) > 2 {
		if nSgroups, err = decodeInt(fields[2], "sgroup count", r.Line(), false); err != nil {
			return err
		}
	}
	if len(fields) > 3 {
		if n3D, err = decodeInt(fields[3], "3D object count", r.Line(), false); err != nil {
			return err
		}
	}
	if len(fields) > 4 {
		if m.ChiralFlag, err = decodeInt(fields[4], "chiral flag", r.Line(), false); err != nil {
			return err
		}
	}

	conf := mol.NewConformer(nAtoms)
	if err := parseV3000AtomBlock(r, m, conf, nAtoms, diag); err != nil {
		return err
	}
	if nBonds > 0 {
		if err := parseV3000BondBlock(r, m, nBonds, diag); err != nil {
			return err
		}
	}

	if nSgroups > 0 {
		diag.Warnf("line %d: S-group information in mol block ignored", r.Line())
		if _, err := expectV3000(r, "BEGIN SGROUP"); err != nil {
			return err
		}
		for {
			text, err = v3000Line(r)
			if err != nil {
				return err
			}
			if strings.HasPrefix(text, "END SGROUP") {
				break
			}
		}
	}
	if n3D > 0 {
		diag.Warnf("line %d: 3D constraint information in mol block ignored", r.Line())
		if _, err := expectV3000(r, "BEGIN OBJ3D"); err != nil {
			return err
		}
		for {
			text, err = v3000Line(r)
			if err != nil {
				return err
			}
			if strings.HasPrefix(text, "END OBJ3D") {
				break
			}
		}
	}

	if text, err = v3000Line(r); err != nil {
		return err
	}
	for strings.HasPrefix(text, "LINKNODE") {
		if text, err = v3000Line(r); err != nil {
			return err
		}
	}
	for strings.HasPrefix(text, "BEGIN") {
		diag.Warnf("line %d: skipping block: %s", r.Line(), text)
		for {
			if text, err = v3000Line(r); err != nil {
				return err
			}
			if strings.HasPrefix(text, "END") {
				break
			}
		}
		if text, err = v3000Line(r); err != nil {
			return err
		}
	}
	if !strings.HasPrefix(text, "END CTAB") {
		return formatErr(r.Line(), "V3000 tag", text, "END CTAB line not found")
	}

	if m.DimHint == 2 {
		conf.SetIs3D(false)
	} else if m.DimHint == 3 {
		conf.SetIs3D(true)
	}
	m.DimHint = 0
	m.AttachConformer(conf)
	return nil
}

func parseV3000AtomBlock(r *LineReader, m *mol.Mol, conf *mol.Conformer, nAtoms int, diag Diagnostics) error {
	if _, err := expectV3000(r, "BEGIN ATOM"); err != nil {
		return err
	}
	for i := 0; i < nAtoms; i++ {
		text, err := v3000Line(r)
		if err != nil {
			return err
		}
		line := r.Line()
		tokens := tokenizeV3000(strings.TrimSpace(text))
		if len(tokens) < 6 {
			return formatErr(line, "atom line", text, "bad atom line: %q", text)
		}
		fileNum, err := decodeInt(tokens[0], "atom number", line, false)
		if err != nil {
			return err
		}
		next := 1
		negate := false
		if tokens[next] == "NOT" {
			negate = true
			next++
			if len(tokens) < 7 {
				return formatErr(line, "atom line", text, "bad atom line: %q", text)
			}
		}
		a, err := parseV3000AtomSymbol(tokens[next], negate, line)
		if err != nil {
			return err
		}
		next++

		var pos mol.Point3D
		if pos.X, err = decodeFloat(tokens[next], "x coordinate", line, false); err != nil {
			return err
		}
		if pos.Y, err = decodeFloat(tokens[next+1], "y coordinate", line, false); err != nil {
			return err
		}
		if pos.Z, err = decodeFloat(tokens[next+2], "z coordinate", line, false); err != nil {
			return err
		}
		if a.MapNum, err = decodeInt(tokens[next+3], "atom map number", line, false); err != nil {
			return err
		}
		next += 4

		idx := m.AddAtom(a)
		if err := applyV3000AtomProps(m, idx, tokens[next:], line); err != nil {
			return err
		}
		m.SetAtomBookmark(fileNum, idx)
		conf.SetPosition(idx, pos)
	}
	if _, err := expectV3000(r, "END ATOM"); err != nil {
		return err
	}
	return nil
}

// parseV3000AtomSymbol resolves a symbol token. A bracketed list [A,B,C],
// optionally NOT-negated, becomes an OR query over the listed elements,
// matching the legacy atom-list semantics; NOT on a plain symbol is
// invalid.
func parseV3000AtomSymbol(token string, negate bool, line int) (*mol.Atom, error) {
	if strings.HasPrefix(token, "[") {
		if !strings.HasSuffix(token, "]") {
			return nil, formatErr(line, "atom symbol", token, "bad atom token %q", token)
		}
		a := &mol.Atom{NoImplicitH: true}
		var children []*mol.Query
		for _, part := range strings.Split(token[1:len(token)-1], ",") {
			symb := strings.TrimSpace(part)
			if symb == "" {
				continue
			}
			num, ok := mol.AtomicNumber(symb)
			if !ok {
				return nil, formatErr(line, "atom symbol", symb, "unknown element symbol %q", symb)
			}
			if len(children) == 0 {
				a.AtomicNum = num
			}
			children = append(children, mol.AtomicNumEquals(num))
		}
		if len(children) == 0 {
			return nil, formatErr(line, "atom symbol", token, "empty atom list %q", token)
		}
		q := mol.NewOr(children...)
		q.Negated = negate
		a.Query = q
		return a, nil
	}
	if negate {
		return nil, formatErr(line, "atom symbol", token, "NOT tokens only supported for atom lists")
	}
	return atomFromSymbol(token, 0, line)
}

// applyV3000AtomProps applies trailing KEY=VALUE tokens with the same
// semantics as the corresponding V2000 property lines. HCOUNT=-1 and
// RBCNT=-1 mean "exactly 0" by convention.
func applyV3000AtomProps(m *mol.Mol, idx int, tokens []string, line int) error {
	for _, token := range tokens {
		key, val, ok := splitAssign(token)
		if !ok {
			return formatErr(line, "atom property", token, "invalid atom property %q for atom %d", token, idx+1)
		}
		a := m.Atom(idx)
		switch key {
		case "CHG":
			chg, err := decodeInt(val, "CHG", line, false)
			if err != nil {
				return err
			}
			if a.Query == nil {
				a.Charge = chg
			} else {
				a.ExpandQuery(mol.ChargeEquals(chg), mol.CombineAnd)
			}
		case "RAD":
			rad, err := decodeInt(val, "RAD", line, false)
			if err != nil {
				return err
			}
			switch rad {
			case 0:
			case 1, 3:
				a.RadicalElectrons = 2
			case 2:
				a.RadicalElectrons = 1
			default:
				return formatErr(line, "RAD", val, "unrecognized RAD value %q for atom %d", val, idx+1)
			}
		case "MASS":
			mass, err := decodeFloat(val, "MASS", line, false)
			if err != nil {
				return err
			}
			if mass <= 0 {
				return formatErr(line, "MASS", val, "bad value for MASS: %q for atom %d", val, idx+1)
			}
			if a.Query == nil {
				a.Mass = mass
			} else {
				a.ExpandQuery(mol.MassEquals(int(mass)), mol.CombineAnd)
			}
		case "CFG":
			cfg, err := decodeInt(val, "CFG", line, false)
			if err != nil {
				return err
			}
			switch cfg {
			case 0:
			case 1, 2, 3:
				a.Parity = cfg
			default:
				return formatErr(line, "CFG", val, "unrecognized CFG value %q for atom %d", val, idx+1)
			}
		case "HCOUNT":
			if val == "0" {
				continue
			}
			hcount, err := decodeInt(val, "HCOUNT", line, false)
			if err != nil {
				return err
			}
			if hcount == -1 {
				hcount = 0
			}
			a = upgradeToQueryAtom(m, idx)
			a.ExpandQuery(mol.HCountEquals(hcount), mol.CombineAnd)
		case "UNSAT":
			if val == "1" {
				a = upgradeToQueryAtom(m, idx)
				a.ExpandQuery(mol.Unsaturated(), mol.CombineAnd)
			}
		case "RBCNT":
			if val == "0" {
				continue
			}
			rbcount, err := decodeInt(val, "RBCNT", line, false)
			if err != nil {
				return err
			}
			if rbcount == -1 {
				rbcount = 0
			}
			a = upgradeToQueryAtom(m, idx)
			a.ExpandQuery(mol.RingBondCountEquals(rbcount), mol.CombineAnd)
		case "AAMAP":
			mapno, err := decodeInt(val, "AAMAP", line, false)
			if err != nil {
				return err
			}
			if mapno != 0 {
				a.MapNum = mapno
			}
		}
	}
	return nil
}

func parseV3000BondBlock(r *LineReader, m *mol.Mol, nBonds int, diag Diagnostics) error {
	if _, err := expectV3000(r, "BEGIN BOND"); err != nil {
		return err
	}
	for i := 0; i < nBonds; i++ {
		text, err := v3000Line(r)
		if err != nil {
			return err
		}
		line := r.Line()
		tokens := strings.Fields(strings.TrimSpace(text))
		if len(tokens) < 4 {
			return formatErr(line, "bond line", text, "bond line %d is too short", line)
		}
		fileNum, err := decodeInt(tokens[0], "bond number", line, false)
		if err != nil {
			return err
		}
		orderCode, err := decodeInt(tokens[1], "bond order", line, false)
		if err != nil {
			return err
		}
		beginNum, err := decodeInt(tokens[2], "bond begin atom", line, false)
		if err != nil {
			return err
		}
		endNum, err := decodeInt(tokens[3], "bond end atom", line, false)
		if err != nil {
			return err
		}

		begin, ok := m.AtomWithBookmark(beginNum)
		if !ok {
			return rangeErr(line, "bond begin atom", beginNum, 1, m.NumAtoms())
		}
		end, ok := m.AtomWithBookmark(endNum)
		if !ok {
			return rangeErr(line, "bond end atom", endNum, 1, m.NumAtoms())
		}

		b := &mol.Bond{Begin: begin, End: end}
		applyBondOrder(b, orderCode, line, diag)
		if b.Type == mol.BondAromatic {
			b.Aromatic = true
		}

		for _, token := range tokens[4:] {
			key, val, ok := splitAssign(token)
			if !ok {
				return formatErr(line, "bond property", token, "bad bond property %q on line %d", token, line)
			}
			switch key {
			case "CFG":
				cfg, err := decodeInt(val, "CFG", line, false)
				if err != nil {
					return err
				}
				switch cfg {
				case 0:
				case 1:
					b.Dir = mol.DirWedgeBegin
					m.SetChiralityPossible(true)
				case 2:
					if orderCode == 1 {
						b.Dir = mol.DirEitherUnknown
					} else if orderCode == 2 {
						b.Dir = mol.DirEitherDouble
						b.Stereo = mol.StereoAny
					}
				case 3:
					b.Dir = mol.DirHashBegin
					m.SetChiralityPossible(true)
				default:
					return formatErr(line, "CFG", val, "bad bond CFG %q on line %d", val, line)
				}
			case "TOPO":
				if val == "0" {
					continue
				}
				topo, err := decodeInt(val, "TOPO", line, false)
				if err != nil {
					return err
				}
				if err := applyBondTopology(b, topo, line); err != nil {
					return err
				}
			case "RXCTR":
				status, err := decodeInt(val, "RXCTR", line, false)
				if err != nil {
					return err
				}
				b.ReactStatus = status
			case "STBOX":
				// accepted and ignored
			}
		}

		idx, err := m.AddBond(b)
		if err != nil {
			return rangeErr(line, "bond endpoints", begin, 0, m.NumAtoms()-1)
		}
		if b.Aromatic {
			m.Atom(b.Begin).Aromatic = true
			m.Atom(b.End).Aromatic = true
		}
		m.SetBondBookmark(fileNum, idx)
	}
	if _, err := expectV3000(r, "END BOND"); err != nil {
		return err
	}
	return nil
}
