package coxeter

import (
	"strconv"
	"strings"

	derrors "github.com/matzehuels/discrete/pkg/errors"
	"github.com/matzehuels/discrete/pkg/group"
)

// ParseRelation parses a relation written as space separated generator
// indices, optionally followed by ";n" to repeat the word n times:
//
//	"0 2 1;8"  -> (g0 g2 g1)^8
//	"0 1 0 1"  -> g0 g1 g0 g1
//
// Generator indices are not checked against a rank here. The repeated word
// may hold at most [derrors.MaxRelationLength] generators.
func ParseRelation(s string) (group.Word, error) {
	body, repeat, hasRepeat := strings.Cut(strings.TrimSpace(s), ";")

	n := 1
	if hasRepeat {
		v, err := strconv.Atoi(strings.TrimSpace(repeat))
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidRelation, err, "invalid repeat count in %q", s)
		}
		if v < 1 {
			return nil, derrors.New(derrors.ErrCodeInvalidRelation, "repeat count in %q must be positive", s)
		}
		n = v
	}

	word, err := parseGenerators(body)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidRelation, err, "relation %q", s)
	}
	if len(word) == 0 {
		return nil, derrors.New(derrors.ErrCodeInvalidRelation, "relation %q is empty", s)
	}
	if err := derrors.ValidateRepeat(len(word), n); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidRelation, err, "relation %q", s)
	}
	return group.Word(word).Repeat(n), nil
}

// ParseRelations parses every string with ParseRelation.
func ParseRelations(ss []string) ([]group.Word, error) {
	out := make([]group.Word, 0, len(ss))
	for _, s := range ss {
		w, err := ParseRelation(s)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// ParseSubgroup parses space separated subgroup generator indices. An empty
// string is the trivial subgroup.
func ParseSubgroup(s string) ([]group.Generator, error) {
	gens, err := parseGenerators(s)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidSubgroup, err, "subgroup %q", s)
	}
	return gens, nil
}

func parseGenerators(s string) ([]group.Generator, error) {
	fields := strings.Fields(s)
	out := make([]group.Generator, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, derrors.New(derrors.ErrCodeInvalidGenerator, "negative generator %d", v)
		}
		out = append(out, group.Generator(v))
	}
	return out, nil
}
