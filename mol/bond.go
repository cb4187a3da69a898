package mol

// BondType is the literal order of a bond. Query bonds keep
// BondUnspecified and carry the real constraint in Bond.Query.
type BondType int

const (
	BondUnspecified BondType = iota
	BondSingle
	BondDouble
	BondTriple
	BondAromatic
)

var bondTypeNames = map[BondType]string{
	BondUnspecified: "unspecified",
	BondSingle:      "single",
	BondDouble:      "double",
	BondTriple:      "triple",
	BondAromatic:    "aromatic",
}

func (t BondType) String() string {
	if name, ok := bondTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// BondDir is the directional stereo marker drawn on a bond.
type BondDir int

const (
	DirNone BondDir = iota
	DirWedgeBegin
	DirHashBegin
	DirEitherUnknown // "either" marker on a single bond
	DirEitherDouble  // "either" marker on a double bond
)

// BondStereo is the resolved double-bond stereochemistry.
type BondStereo int

const (
	StereoNone BondStereo = iota
	StereoAny
	StereoCis
	StereoTrans
)

// Bond connects two atoms by their arena indices. Begin != End always;
// both are < the molecule's atom count by the time the bond is added.
type Bond struct {
	Begin, End  int
	Type        BondType
	Dir         BondDir
	Stereo      BondStereo
	Aromatic    bool
	Query       *Query
	ReactStatus int
}

// ExpandQuery composes q onto the bond's existing query tree, seeding the
// tree from the bond's literal order when no query is present yet.
func (b *Bond) ExpandQuery(q *Query, how Combinator) {
	if b.Query == nil {
		b.Query = BondOrderEquals(b.Type)
	}
	b.Query = combine(b.Query, q, how)
}
