package coxeter

import (
	"context"
	"slices"

	derrors "github.com/matzehuels/discrete/pkg/errors"
	"github.com/matzehuels/discrete/pkg/group"
	"github.com/matzehuels/discrete/pkg/toddcoxeter"
)

// Settings is the textual description of a tiling, as stored in config
// files and accepted by the CLI and HTTP API.
type Settings struct {
	// Schlafli is the symbol, e.g. "{7,3}".
	Schlafli string `toml:"schlafli" json:"schlafli"`

	// Relations are extra relations in ParseRelation syntax. They turn the
	// (often infinite) Coxeter group into a finite quotient.
	Relations []string `toml:"relations" json:"relations,omitempty"`

	// Subgroup lists the generators that fix a tile, e.g. "0 1".
	Subgroup string `toml:"subgroup" json:"subgroup,omitempty"`
}

// DefaultSettings returns the built-in preset for rank 3 (the Klein quartic
// as a quotient of the {7,3} tiling) or rank 4 ({8,3,3} with a rank 4
// quotient relation).
func DefaultSettings(rank int) (Settings, error) {
	switch rank {
	case 3:
		return Settings{
			Schlafli:  "{7,3}",
			Relations: []string{"0 2 1;8"},
			Subgroup:  "0 1",
		}, nil
	case 4:
		return Settings{
			Schlafli:  "{8,3,3}",
			Relations: []string{"0 2 1 0 2 1 0 1;2"},
			Subgroup:  "0 1 2",
		}, nil
	}
	return Settings{}, derrors.New(derrors.ErrCodeUnsupported, "no default settings for rank %d (supported: 3, 4)", rank)
}

// Tiling is a parsed and validated set of Settings.
type Tiling struct {
	Schlafli Schlafli
	Extra    []group.Word
	Subgroup []group.Generator
}

// NewTiling parses settings and checks every generator index against the
// rank implied by the Schläfli symbol.
func NewTiling(s Settings) (*Tiling, error) {
	schlafli, err := ParseSchlafli(s.Schlafli)
	if err != nil {
		return nil, err
	}
	rank := schlafli.Rank()

	extra, err := ParseRelations(s.Relations)
	if err != nil {
		return nil, err
	}
	for _, rel := range extra {
		for _, g := range rel {
			if err := derrors.ValidateGenerator(int(g), rank); err != nil {
				return nil, derrors.Wrap(derrors.ErrCodeInvalidRelation, err, "relation %s", rel)
			}
		}
	}

	subgroup, err := ParseSubgroup(s.Subgroup)
	if err != nil {
		return nil, err
	}
	for _, g := range subgroup {
		if err := derrors.ValidateGenerator(int(g), rank); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidSubgroup, err, "subgroup %q", s.Subgroup)
		}
	}

	return &Tiling{Schlafli: schlafli, Extra: extra, Subgroup: subgroup}, nil
}

// Rank returns the number of generators.
func (t *Tiling) Rank() int {
	return t.Schlafli.Rank()
}

// Relations returns the Coxeter relations followed by the extra relations.
func (t *Tiling) Relations() []group.Word {
	return slices.Concat(t.Schlafli.Relations(), t.Extra)
}

// Quotient enumerates the element group and the tile (coset) group, each
// with at most limit discoveries.
func (t *Tiling) Quotient(limit int) (*Quotient, error) {
	return t.QuotientContext(context.Background(), limit)
}

// QuotientContext is Quotient with cancellation between discovery steps.
func (t *Tiling) QuotientContext(ctx context.Context, limit int) (*Quotient, error) {
	rels := t.Relations()
	elements, _, err := toddcoxeter.Enumerate(ctx, t.Rank(), rels, nil, limit)
	if err != nil {
		return nil, err
	}
	cosets, _, err := toddcoxeter.Enumerate(ctx, t.Rank(), rels, t.Subgroup, limit)
	if err != nil {
		return nil, err
	}
	return NewQuotient(elements, cosets)
}
