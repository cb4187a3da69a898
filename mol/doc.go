// Package mol holds the in-memory molecular graph built by the file parsers.
//
// A Mol is an arena of atoms and bonds: indices are assigned at insertion
// time and stay stable for the life of the molecule. "Replacing" an atom
// (for example when a plain atom is upgraded to a query atom) updates the
// value stored at its index without disturbing any index held elsewhere,
// so bond endpoints and bookmarks never need rewriting.
//
// Atoms and bonds may carry a Query: a tagged-variant predicate tree used
// for substructure matching. Leaf nodes test a single property; And/Or
// composites own their children exclusively.
package mol
