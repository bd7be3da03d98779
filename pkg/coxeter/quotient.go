package coxeter

import (
	"encoding/json"

	derrors "github.com/matzehuels/discrete/pkg/errors"
	"github.com/matzehuels/discrete/pkg/group"
)

// Quotient pairs a group with its action on the cosets of a subgroup.
//
// InverseMap[e] is the coset reached from the base coset by the inverse of
// element e, i.e. C0·e⁻¹, or [group.None] when a partial table leaves it
// unknown.
type Quotient struct {
	Elements   *group.Group
	Cosets     *group.Group
	InverseMap []group.Point
}

// NewQuotient builds the inverse map from an element table and a coset table
// over the same generators.
func NewQuotient(elements, cosets *group.Group) (*Quotient, error) {
	if elements.GeneratorCount() != cosets.GeneratorCount() {
		return nil, derrors.New(derrors.ErrCodeInvalidInput,
			"element group has %d generators, coset group has %d",
			elements.GeneratorCount(), cosets.GeneratorCount())
	}

	inv := make([]group.Point, elements.PointCount())
	for e := range inv {
		c, ok := cosets.MulWord(group.Identity, elements.Word(group.Point(e)).Inverse())
		if !ok {
			c = group.None
		}
		inv[e] = c
	}
	return &Quotient{Elements: elements, Cosets: cosets, InverseMap: inv}, nil
}

// Inverse returns C0·e⁻¹ for element e.
func (q *Quotient) Inverse(e group.Point) (group.Point, bool) {
	if e < 0 || int(e) >= len(q.InverseMap) {
		return group.None, false
	}
	c := q.InverseMap[e]
	return c, c != group.None
}

// FiberSizes counts, for every coset, the elements mapped to it. For a
// complete quotient each count equals the subgroup order.
func (q *Quotient) FiberSizes() []int {
	sizes := make([]int, q.Cosets.PointCount())
	for _, c := range q.InverseMap {
		if c != group.None {
			sizes[c]++
		}
	}
	return sizes
}

// Complete reports whether both tables are complete.
func (q *Quotient) Complete() bool {
	return q.Elements.Complete() && q.Cosets.Complete()
}

type quotientJSON struct {
	Elements   *group.Group   `json:"elements"`
	Cosets     *group.Group   `json:"cosets"`
	InverseMap []*group.Point `json:"inverse_map"`
}

// MarshalJSON encodes unknown inverse map entries as null.
func (q *Quotient) MarshalJSON() ([]byte, error) {
	out := quotientJSON{
		Elements:   q.Elements,
		Cosets:     q.Cosets,
		InverseMap: make([]*group.Point, len(q.InverseMap)),
	}
	for i, c := range q.InverseMap {
		if c != group.None {
			out.InverseMap[i] = &c
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes both tables and recomputes the inverse map.
func (q *Quotient) UnmarshalJSON(data []byte) error {
	var in quotientJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "decode quotient")
	}
	if in.Elements == nil || in.Cosets == nil {
		return derrors.New(derrors.ErrCodeInvalidFormat, "quotient is missing a group")
	}
	decoded, err := NewQuotient(in.Elements, in.Cosets)
	if err != nil {
		return err
	}
	*q = *decoded
	return nil
}
