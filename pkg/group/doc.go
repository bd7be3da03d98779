// Package group provides the immutable permutation table produced by coset
// enumeration.
//
// # Overview
//
// A [Group] describes how a fixed set of generators acts on a set of points.
// Points are dense indices: point 0 is always the identity element (or the
// base coset when the table was built for a subgroup), and every other point
// was discovered by applying a generator to an earlier point. Each point also
// carries the [Word] that reaches it from point 0.
//
// Every generator is assumed to be an involution, so the inverse of a word is
// its reversal. This matches reflection (Coxeter) groups where generators are
// mirrors.
//
// # Partial Tables
//
// Enumeration of an infinite group is bounded by a discovery limit, so a
// Group may be partial: some (point, generator) entries are unknown. Lookups
// report this with a boolean:
//
//	p, ok := g.MulWord(0, group.Word{0, 1, 0})
//	if !ok {
//	    // undefined under current knowledge, not a crash condition
//	}
//
// # Serialization
//
// Groups encode to JSON with unknown entries written as null, see
// [Group.MarshalJSON] and [ReadGroup]. [ToDOT] and [RenderSVG] draw the
// Cayley graph.
//
// # Concurrency
//
// A Group is never modified after construction and may be shared freely
// between goroutines.
package group
