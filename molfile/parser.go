// Package molfile parses MDL Molfile connection tables (V2000 fixed-column
// and V3000 tokenized grammars) into a mol.Mol, including the substructure
// query semantics of atom/bond lists, charge and isotope overlays, and
// ring/degree/unsaturation constraints.
//
// Parsing is strict and fail-fast: a record either parses and
// post-processes completely or the caller gets an error and no molecule.
// Non-fatal format deviations are reported through a Diagnostics sink and
// never abort the parse.
package molfile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/clarablanes/rdkit/chem"
	"github.com/clarablanes/rdkit/mol"
)

// PostProcessor is the chemistry collaborator the orchestrator hands the
// raw graph to after decoding. The call order is fixed (see ReadMol);
// failures propagate to the caller unchanged.
type PostProcessor interface {
	CalcExplicitValence(*mol.Mol)
	CleanUp(*mol.Mol) error
	DetectAtomStereochemistry(*mol.Mol, *mol.Conformer) error
	RemoveHs(*mol.Mol) error
	Sanitize(*mol.Mol) error
	ClearSingleBondDirFlags(*mol.Mol)
	DetectBondStereoChemistry(*mol.Mol, *mol.Conformer) error
	AssignStereochemistry(*mol.Mol) error
}

// Options controls a parse call.
type Options struct {
	// Sanitize enables the post-parse chemistry passes. When off, the raw
	// graph is returned as decoded.
	Sanitize bool
	// RemoveHs strips plain explicit hydrogens instead of running the full
	// sanitization pass; the two are mutually exclusive per call.
	RemoveHs bool
	// Post supplies the chemistry collaborator; nil selects chem.Ops.
	Post PostProcessor
	// Diagnostics receives non-fatal format deviations; nil logs via slog.
	Diagnostics Diagnostics
}

// DefaultOptions sanitizes and removes explicit hydrogens, the common
// reading mode.
func DefaultOptions() Options {
	return Options{Sanitize: true, RemoveHs: true}
}

func (o *Options) fill() {
	if o.Post == nil {
		o.Post = chem.Ops{}
	}
	if o.Diagnostics == nil {
		o.Diagnostics = SlogDiagnostics(nil)
	}
}

// ReadMol parses one record from r. At a clean end of stream it returns
// io.EOF; any malformed content yields a *FormatError or *RangeError with
// the 1-based line number. The reader's line counter reflects the lines
// actually consumed whether or not the record parsed, so multi-record
// streams stay aligned after a failure.
func ReadMol(r *LineReader, opts Options) (*mol.Mol, error) {
	opts.fill()

	name, err := r.ReadLine()
	if err != nil {
		// A clean end of stream is io.EOF; anything else is a reader
		// failure the caller must see as such.
		return nil, err
	}
	m := mol.New()
	m.Name = name

	if m.Info, err = r.ReadLine(); err != nil {
		if err != io.EOF {
			return nil, err
		}
		return nil, formatErr(r.Line(), "header", "", "EOF hit while reading header")
	}
	if len(m.Info) >= 22 {
		switch m.Info[20:22] {
		case "2d", "2D":
			m.DimHint = 2
		case "3d", "3D":
			m.DimHint = 3
		}
	}
	if m.Comment, err = r.ReadLine(); err != nil {
		if err != io.EOF {
			return nil, err
		}
		return nil, formatErr(r.Line(), "header", "", "EOF hit while reading header")
	}

	countsText, err := r.ReadLine()
	if err != nil {
		if err != io.EOF {
			return nil, err
		}
		return nil, formatErr(r.Line(), "counts line", "", "EOF hit while reading counts line")
	}
	c, err := parseCountsLine(countsText, r.Line())
	if err != nil {
		return nil, err
	}
	m.ChiralFlag = c.ChiralFlag

	switch c.Version {
	case v2000:
		if c.NumAtoms <= 0 {
			return nil, formatErr(r.Line(), "atom count", countsText, "molecule has no atoms")
		}
		conf := mol.NewConformer(c.NumAtoms)
		if err := readV2000Atoms(r, m, conf, c.NumAtoms); err != nil {
			return nil, err
		}
		if m.DimHint == 2 {
			conf.SetIs3D(false)
		} else if m.DimHint == 3 {
			conf.SetIs3D(true)
		}
		m.DimHint = 0
		m.AttachConformer(conf)

		if err := readV2000Bonds(r, m, c.NumBonds, opts.Diagnostics); err != nil {
			return nil, err
		}
		complete, err := readV2000Properties(r, m, opts.Diagnostics)
		if err != nil {
			return nil, err
		}
		if !complete {
			return nil, formatErr(r.Line(), "record", "", "no M  END found before end of record")
		}
	case v3000:
		if c.NumAtoms != 0 || c.NumBonds != 0 {
			return nil, formatErr(r.Line(), "counts line", countsText,
				"V3000 mol blocks should have 0s in the initial counts line")
		}
		if err := parseV3000(r, m, opts.Diagnostics); err != nil {
			return nil, err
		}
	}

	if err := postProcess(m, opts); err != nil {
		return nil, err
	}
	return m, nil
}

// postProcess runs the chemistry hooks in their load-bearing order:
// valence first; atom stereo perception before any hydrogen removal
// (removing Hs can delete the very bonds carrying the wedge marks); bond
// stereo only after sanitization, because it needs ring information; the
// deferred query pass last.
func postProcess(m *mol.Mol, opts Options) error {
	post := opts.Post
	post.CalcExplicitValence(m)

	if opts.Sanitize {
		if m.ChiralityPossible() {
			if err := post.CleanUp(m); err != nil {
				return err
			}
			if err := post.DetectAtomStereochemistry(m, m.Conformer()); err != nil {
				return err
			}
		}
		if opts.RemoveHs {
			if err := post.RemoveHs(m); err != nil {
				return err
			}
		} else {
			if err := post.Sanitize(m); err != nil {
				return err
			}
		}
		post.ClearSingleBondDirFlags(m)
		if err := post.DetectBondStereoChemistry(m, m.Conformer()); err != nil {
			return err
		}
		if err := post.AssignStereochemistry(m); err != nil {
			return err
		}
	}

	completeMolQueries(m)
	return nil
}

// MolFromBlock parses a molecule from an in-memory mol block.
func MolFromBlock(block string, opts Options) (*mol.Mol, error) {
	return ReadMol(NewLineReader(strings.NewReader(block)), opts)
}

// MolFromFile parses the first (usually only) molecule in a file.
func MolFromFile(path string, opts Options) (*mol.Mol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("molfile: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadMol(NewLineReader(f), opts)
}
