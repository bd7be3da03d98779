package group

import (
	"encoding/json"
	"fmt"
	"io"

	derrors "github.com/matzehuels/discrete/pkg/errors"
)

// groupJSON is the wire form of a Group. Unknown entries are null.
type groupJSON struct {
	Points     int        `json:"points"`
	Generators int        `json:"generators"`
	Table      [][]*Point `json:"table"`
	Words      []Word     `json:"words"`
}

// MarshalJSON encodes the group with one table row per point.
func (g *Group) MarshalJSON() ([]byte, error) {
	out := groupJSON{
		Points:     g.points,
		Generators: g.generators,
		Table:      make([][]*Point, g.points),
		Words:      g.words,
	}
	for p := range g.points {
		row := make([]*Point, g.generators)
		for gen := range g.generators {
			if r, ok := g.MulGen(Point(p), Generator(gen)); ok {
				row[gen] = &r
			}
		}
		out.Table[p] = row
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a group written by MarshalJSON and validates it.
func (g *Group) UnmarshalJSON(data []byte) error {
	var in groupJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "decode group")
	}
	if len(in.Table) != in.Points {
		return derrors.New(derrors.ErrCodeInvalidFormat, "table has %d rows, want %d", len(in.Table), in.Points)
	}
	table := make([]Point, 0, in.Points*in.Generators)
	for p, row := range in.Table {
		if len(row) != in.Generators {
			return derrors.New(derrors.ErrCodeInvalidFormat, "row %d has %d entries, want %d", p, len(row), in.Generators)
		}
		for _, r := range row {
			if r == nil {
				table = append(table, None)
			} else {
				table = append(table, *r)
			}
		}
	}
	decoded, err := New(in.Points, in.Generators, table, in.Words)
	if err != nil {
		return err
	}
	*g = *decoded
	return nil
}

// MarshalGroup serializes g to indented JSON.
func MarshalGroup(g *Group) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// ReadGroup decodes a group from JSON.
func ReadGroup(r io.Reader) (*Group, error) {
	var g Group
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode group: %w", err)
	}
	return &g, nil
}

// WriteGroup encodes g as indented JSON to w.
func WriteGroup(g *Group, w io.Writer) error {
	data, err := MarshalGroup(g)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
