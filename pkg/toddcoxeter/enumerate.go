package toddcoxeter

import (
	"context"

	"github.com/matzehuels/discrete/pkg/group"
)

// ElementTable enumerates the group itself (the trivial subgroup), making at
// most limit discoveries. Every point is a group element and Word(p) spells
// it in the generators.
func ElementTable(gens int, relations []group.Word, limit int) (*group.Group, error) {
	return CosetTable(gens, relations, nil, limit)
}

// CosetTable enumerates the cosets of the subgroup generated by subgroup,
// making at most limit discoveries. The result is partial if the limit was
// reached first.
func CosetTable(gens int, relations []group.Word, subgroup []group.Generator, limit int) (*group.Group, error) {
	g, _, err := Enumerate(context.Background(), gens, relations, subgroup, limit)
	return g, err
}

// Enumerate is CosetTable with cancellation and statistics. ctx is checked
// between discovery steps.
func Enumerate(ctx context.Context, gens int, relations []group.Word, subgroup []group.Generator, limit int) (*group.Group, Stats, error) {
	t, err := New(gens, relations, subgroup)
	if err != nil {
		return nil, Stats{}, err
	}
	if _, err := t.Run(ctx, limit); err != nil {
		return nil, t.Stats(), err
	}
	return t.Group(), t.Stats(), nil
}
