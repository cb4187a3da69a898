package mol

// QueryKind discriminates the Query tagged union.
type QueryKind int

const (
	QueryNull QueryKind = iota // matches anything
	QueryAtomicNum
	QueryCharge
	QueryMass
	QueryHCount
	QueryDegree
	QueryDegreeAtMost
	QueryRingBondCount
	QueryRingBondCountAtMost
	QueryUnsaturated
	QueryInRing
	QueryBondOrder
	QueryAnd
	QueryOr
)

var queryKindNames = map[QueryKind]string{
	QueryNull:                "null",
	QueryAtomicNum:           "atomic-num",
	QueryCharge:              "charge",
	QueryMass:                "mass",
	QueryHCount:              "h-count",
	QueryDegree:              "degree",
	QueryDegreeAtMost:        "degree-at-most",
	QueryRingBondCount:       "ring-bond-count",
	QueryRingBondCountAtMost: "ring-bond-count-at-most",
	QueryUnsaturated:         "unsaturated",
	QueryInRing:              "in-ring",
	QueryBondOrder:           "bond-order",
	QueryAnd:                 "and",
	QueryOr:                  "or",
}

func (k QueryKind) String() string {
	if name, ok := queryKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Query is one node of a predicate tree. Leaf kinds test Value against a
// property of the atom or bond; And/Or composites exclusively own their
// Children. Negated applies to this node as a whole, set once by whoever
// builds the node (for example a NOT-ed atom list) and never toggled.
//
// Deferred marks a ring-bond-count leaf whose value cannot be known until
// the whole graph exists; the query-completion pass substitutes the atom's
// final degree. An explicit flag, not a reserved integer, so genuine values
// can never collide with the sentinel.
type Query struct {
	Kind     QueryKind
	Value    int
	Deferred bool
	Negated  bool
	Children []*Query
}

// Combinator selects how ExpandQuery joins a new predicate onto a tree.
type Combinator int

const (
	CombineAnd Combinator = iota
	CombineOr
)

func NullQuery() *Query               { return &Query{Kind: QueryNull} }
func AtomicNumEquals(n int) *Query    { return &Query{Kind: QueryAtomicNum, Value: n} }
func ChargeEquals(c int) *Query       { return &Query{Kind: QueryCharge, Value: c} }
func MassEquals(m int) *Query         { return &Query{Kind: QueryMass, Value: m} }
func HCountEquals(n int) *Query       { return &Query{Kind: QueryHCount, Value: n} }
func DegreeEquals(n int) *Query       { return &Query{Kind: QueryDegree, Value: n} }
func DegreeAtMost(n int) *Query       { return &Query{Kind: QueryDegreeAtMost, Value: n} }
func RingBondCountEquals(n int) *Query {
	return &Query{Kind: QueryRingBondCount, Value: n}
}
func RingBondCountAtMost(n int) *Query {
	return &Query{Kind: QueryRingBondCountAtMost, Value: n}
}
func RingBondCountDeferred() *Query {
	return &Query{Kind: QueryRingBondCount, Deferred: true}
}
func Unsaturated() *Query { return &Query{Kind: QueryUnsaturated} }
func InRing() *Query      { return &Query{Kind: QueryInRing} }
func BondOrderEquals(t BondType) *Query {
	return &Query{Kind: QueryBondOrder, Value: int(t)}
}

// NewOr builds an OR composite over the given children.
func NewOr(children ...*Query) *Query {
	return &Query{Kind: QueryOr, Children: children}
}

// NewAnd builds an AND composite over the given children.
func NewAnd(children ...*Query) *Query {
	return &Query{Kind: QueryAnd, Children: children}
}

// combine joins next onto existing. AND wraps both under a fresh AND node
// only when the existing tree is not already a plain AND; OR adds next as a
// sibling of an existing plain OR node, creating one if absent. Negated
// composites are never extended in place: the negation belongs to the node
// that owns it, so a new wrapper is built around it instead.
func combine(existing, next *Query, how Combinator) *Query {
	if existing == nil {
		return next
	}
	switch how {
	case CombineOr:
		if existing.Kind == QueryOr && !existing.Negated {
			existing.Children = append(existing.Children, next)
			return existing
		}
		return NewOr(existing, next)
	default:
		if existing.Kind == QueryAnd && !existing.Negated {
			existing.Children = append(existing.Children, next)
			return existing
		}
		return NewAnd(existing, next)
	}
}

// Walk visits q and every descendant in depth-first order.
func (q *Query) Walk(visit func(*Query)) {
	if q == nil {
		return
	}
	visit(q)
	for _, c := range q.Children {
		c.Walk(visit)
	}
}

// HasDeferred reports whether any node in the tree still awaits the
// query-completion pass.
func (q *Query) HasDeferred() bool {
	found := false
	q.Walk(func(n *Query) {
		if n.Deferred {
			found = true
		}
	})
	return found
}
