// Package toddcoxeter enumerates cosets of finitely presented reflection
// groups with the Todd–Coxeter algorithm.
//
// # Overview
//
// Given a generator count, a list of relations (words that must reduce to
// the identity) and optional subgroup generators, the enumeration builds a
// table describing how every generator acts on every discovered coset. With
// an empty subgroup the cosets are the group elements themselves, giving the
// regular representation:
//
//	// Dihedral group of order 6: (g0 g1)^3 = e
//	g, err := toddcoxeter.ElementTable(2, []group.Word{{0, 1, 0, 1, 0, 1}}, 100)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(g.PointCount()) // 6
//
// All generators are assumed to be involutions. This is what makes the
// symmetric table writes and word reversal valid; it holds for Coxeter
// groups, where generators are mirrors.
//
// # Algorithm
//
// A [Tables] value owns three kinds of sub-table:
//
//   - the coset table: (coset, generator) -> coset, with unknown entries
//   - one relation table per relation: for every coset, two cursors scanning
//     the relation inward from both ends over known entries; when the
//     cursors meet the missing entry is deduced
//   - the word table: the word that first reached each coset
//
// [Tables.DiscoverNextUnknown] fills the first unknown cell (row-major order)
// with a new coset and propagates every consequence through a work queue.
// When a deduction contradicts a known entry, the two targets name the same
// coset (a coincidence). The larger index is tombstoned and redirected to the
// smaller, all references are rewritten, and the removed row's entries are
// re-queued as facts about the kept row. After the queue drains, tombstoned
// rows are compacted away so indices stay dense.
//
// # Limits
//
// Enumeration of an infinite group never closes, so every entry point takes
// a discovery limit. Hitting it is not an error: the returned [group.Group]
// is partial and lookups on unknown cells report false.
//
// # Concurrency
//
// Tables is not safe for concurrent use. The finished Group is immutable and
// may be shared.
package toddcoxeter
