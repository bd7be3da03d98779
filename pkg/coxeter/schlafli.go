package coxeter

import (
	"strconv"
	"strings"

	derrors "github.com/matzehuels/discrete/pkg/errors"
	"github.com/matzehuels/discrete/pkg/group"
)

// Infinity marks a branch with no braid relation.
const Infinity = 0

// Schlafli lists the branch orders of a linear Coxeter diagram. Entry i is
// the order of g_i g_{i+1}; generators further apart commute. A symbol with
// n entries describes a group of rank n+1.
type Schlafli []int

// ParseSchlafli parses "{7,3}", "7,3" or "7 3". Entries are integers >= 2,
// or "inf" / "∞" for [Infinity].
func ParseSchlafli(s string) (Schlafli, error) {
	body := strings.TrimSpace(s)
	body = strings.TrimPrefix(body, "{")
	body = strings.TrimSuffix(body, "}")

	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, derrors.New(derrors.ErrCodeInvalidSchlafli, "empty Schläfli symbol %q", s)
	}

	out := make(Schlafli, 0, len(fields))
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "inf", "∞":
			out = append(out, Infinity)
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidSchlafli, err, "invalid entry %q in %q", f, s)
		}
		if v < 2 {
			return nil, derrors.New(derrors.ErrCodeInvalidSchlafli, "entry %d in %q must be at least 2", v, s)
		}
		if err := derrors.ValidateRepeat(2, v); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidSchlafli, err, "entry %d in %q", v, s)
		}
		out = append(out, v)
	}
	return out, nil
}

// Rank returns the number of generators.
func (s Schlafli) Rank() int {
	return len(s) + 1
}

// Relations returns the Coxeter relations: (g_x g_{i+1})^2 for every x < i,
// then (g_i g_{i+1})^m for entry i with order m. Infinite branches add no
// braid relation.
func (s Schlafli) Relations() []group.Word {
	var rels []group.Word
	for i, m := range s {
		next := group.Generator(i + 1)
		for x := range i {
			rels = append(rels, group.Word{group.Generator(x), next}.Repeat(2))
		}
		if m != Infinity {
			rels = append(rels, group.Word{group.Generator(i), next}.Repeat(m))
		}
	}
	return rels
}

// String formats the symbol as "{7,3}".
func (s Schlafli) String() string {
	parts := make([]string, len(s))
	for i, m := range s {
		if m == Infinity {
			parts[i] = "∞"
		} else {
			parts[i] = strconv.Itoa(m)
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}
