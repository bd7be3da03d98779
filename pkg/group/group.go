package group

import (
	"fmt"
	"slices"
	"strings"

	derrors "github.com/matzehuels/discrete/pkg/errors"
)

// Group is a possibly partial permutation table over points and generators,
// plus the word reaching every point from [Identity].
//
// The zero value is an empty group with no points. Use [New] to build one
// from a table.
type Group struct {
	points     int
	generators int
	table      []Point // row-major: table[p*generators+g]
	words      []Word
}

// New creates a group from a row-major table of points*generators entries
// where table[p*generators+g] is the image of p under g, or [None] when
// unknown. words must hold one word per point.
//
// New copies its inputs and validates that every entry is either None or a
// point in range.
func New(points, generators int, table []Point, words []Word) (*Group, error) {
	if points < 0 || generators < 0 {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "negative size: %d points, %d generators", points, generators)
	}
	if len(table) != points*generators {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "table has %d entries, want %d", len(table), points*generators)
	}
	if len(words) != points {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "word table has %d entries, want %d", len(words), points)
	}
	for i, p := range table {
		if p != None && (p < 0 || int(p) >= points) {
			return nil, derrors.New(derrors.ErrCodeInvalidInput, "entry %d points to %d, outside [0, %d)", i, p, points)
		}
	}
	ws := make([]Word, len(words))
	for i, w := range words {
		for _, g := range w {
			if g < 0 || int(g) >= generators {
				return nil, derrors.New(derrors.ErrCodeInvalidGenerator, "word %d uses generator %d, outside [0, %d)", i, g, generators)
			}
		}
		ws[i] = slices.Clone(w)
		if ws[i] == nil {
			ws[i] = Word{}
		}
	}
	return &Group{
		points:     points,
		generators: generators,
		table:      slices.Clone(table),
		words:      ws,
	}, nil
}

// PointCount returns the number of discovered points.
func (g *Group) PointCount() int { return g.points }

// GeneratorCount returns the number of generators.
func (g *Group) GeneratorCount() int { return g.generators }

// MulGen applies gen to p. It reports false when the result is unknown or
// either argument is out of range.
func (g *Group) MulGen(p Point, gen Generator) (Point, bool) {
	if p < 0 || int(p) >= g.points || gen < 0 || int(gen) >= g.generators {
		return None, false
	}
	r := g.table[int(p)*g.generators+int(gen)]
	return r, r != None
}

// MulWord applies the generators of w to p in order, stopping at the first
// unknown step.
func (g *Group) MulWord(p Point, w Word) (Point, bool) {
	if p < 0 || int(p) >= g.points {
		return None, false
	}
	for _, gen := range w {
		var ok bool
		if p, ok = g.MulGen(p, gen); !ok {
			return None, false
		}
	}
	return p, true
}

// Word returns a copy of the word reaching p from [Identity].
func (g *Group) Word(p Point) Word {
	if p < 0 || int(p) >= g.points {
		return nil
	}
	return slices.Clone(g.words[p])
}

// Words returns a copy of the whole word table, indexed by point.
func (g *Group) Words() []Word {
	out := make([]Word, len(g.words))
	for i, w := range g.words {
		out[i] = slices.Clone(w)
	}
	return out
}

// Row returns the images of p under every generator, with [None] for unknown
// entries.
func (g *Group) Row(p Point) []Point {
	if p < 0 || int(p) >= g.points {
		return nil
	}
	i := int(p) * g.generators
	return slices.Clone(g.table[i : i+g.generators])
}

// UndefinedCount returns the number of unknown table entries.
func (g *Group) UndefinedCount() int {
	n := 0
	for _, p := range g.table {
		if p == None {
			n++
		}
	}
	return n
}

// Complete reports whether every entry of the table is known.
func (g *Group) Complete() bool {
	return g.UndefinedCount() == 0
}

// CheckRelation reports whether rel returns every point to itself wherever
// the walk is defined. Walks that hit an unknown entry are skipped.
func (g *Group) CheckRelation(rel Word) bool {
	for p := range g.points {
		if q, ok := g.MulWord(Point(p), rel); ok && q != Point(p) {
			return false
		}
	}
	return true
}

// String renders the table in a fixed-width text grid.
func (g *Group) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Points: %d\n", g.points)
	fmt.Fprintf(&b, "Generators: %d\n", g.generators)

	header := []string{"P\\G"}
	for gen := range g.generators {
		header = append(header, fmt.Sprintf("G%02x", gen))
	}
	b.WriteString(strings.Join(header, " "))
	b.WriteString("\n")

	for p := range g.points {
		cells := []string{fmt.Sprintf("P%02x", p)}
		for gen := range g.generators {
			if r, ok := g.MulGen(Point(p), Generator(gen)); ok {
				cells = append(cells, fmt.Sprintf("P%02x", int(r)))
			} else {
				cells = append(cells, "???")
			}
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return b.String()
}
