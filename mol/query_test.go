package mol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandQuerySeedsAndExtends(t *testing.T) {
	a := &Atom{AtomicNum: 6}
	a.ExpandQuery(AtomicNumEquals(6), CombineAnd)
	require.NotNil(t, a.Query)
	assert.Equal(t, QueryAtomicNum, a.Query.Kind)

	// A second AND flattens into one composite instead of nesting.
	a.ExpandQuery(ChargeEquals(-1), CombineAnd)
	a.ExpandQuery(Unsaturated(), CombineAnd)
	assert.Equal(t, QueryAnd, a.Query.Kind)
	require.Len(t, a.Query.Children, 3)
	assert.Equal(t, QueryAtomicNum, a.Query.Children[0].Kind)
	assert.Equal(t, QueryUnsaturated, a.Query.Children[2].Kind)
}

func TestExpandQueryOrDoesNotExtendNegated(t *testing.T) {
	// A negated OR owns its negation; another OR must wrap it, not join it.
	neg := NewOr(AtomicNumEquals(6), AtomicNumEquals(7))
	neg.Negated = true
	a := &Atom{Query: neg}
	a.ExpandQuery(AtomicNumEquals(8), CombineOr)

	assert.Equal(t, QueryOr, a.Query.Kind)
	assert.False(t, a.Query.Negated)
	require.Len(t, a.Query.Children, 2)
	assert.Same(t, neg, a.Query.Children[0])
}

func TestBondExpandQuerySeedsFromOrder(t *testing.T) {
	b := &Bond{Type: BondDouble}
	b.ExpandQuery(InRing(), CombineAnd)
	require.NotNil(t, b.Query)
	assert.Equal(t, QueryAnd, b.Query.Kind)
	require.Len(t, b.Query.Children, 2)
	assert.Equal(t, QueryBondOrder, b.Query.Children[0].Kind)
	assert.Equal(t, int(BondDouble), b.Query.Children[0].Value)
	assert.Equal(t, QueryInRing, b.Query.Children[1].Kind)
}

func TestHasDeferred(t *testing.T) {
	q := NewAnd(AtomicNumEquals(6), RingBondCountDeferred())
	assert.True(t, q.HasDeferred())
	assert.False(t, NewAnd(AtomicNumEquals(6)).HasDeferred())
}

func TestWalkVisitsDepthFirst(t *testing.T) {
	q := NewAnd(AtomicNumEquals(6), NewOr(ChargeEquals(1), ChargeEquals(-1)))
	var kinds []QueryKind
	q.Walk(func(n *Query) { kinds = append(kinds, n.Kind) })
	assert.Equal(t, []QueryKind{QueryAnd, QueryAtomicNum, QueryOr, QueryCharge, QueryCharge}, kinds)
}

func TestQueryKindString(t *testing.T) {
	assert.Equal(t, "ring-bond-count", QueryRingBondCount.String())
	assert.Equal(t, "unknown", QueryKind(99).String())
}
