package toddcoxeter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/discrete/pkg/group"
)

// cosetTable holds what is currently known about the generator action.
//
// entries is row-major: entries[p*gens+g] is p·g or group.None. Whenever
// p·g = r is stored, r·g = p is stored too.
//
// tombstones[p] is group.None for active rows, otherwise the smaller row p
// was merged into. Stored entries only ever reference active rows, so
// redirect chains stay short; redirect still follows them to the end.
type cosetTable struct {
	gens       int
	entries    []group.Point
	tombstones []group.Point
}

// newCosetTable creates a table holding only the base coset.
func newCosetTable(gens int) *cosetTable {
	t := &cosetTable{gens: gens}
	t.addRow()
	return t
}

// rowCount returns the number of rows, including tombstoned ones.
func (t *cosetTable) rowCount() int {
	return len(t.tombstones)
}

// addRow appends a row of unknown entries and returns its index.
func (t *cosetTable) addRow() group.Point {
	for range t.gens {
		t.entries = append(t.entries, group.None)
	}
	t.tombstones = append(t.tombstones, group.None)
	return group.Point(len(t.tombstones) - 1)
}

// redirect follows the tombstone chain of p to its active representative.
func (t *cosetTable) redirect(p group.Point) group.Point {
	for t.tombstones[p] != group.None {
		p = t.tombstones[p]
	}
	return p
}

// active reports whether p has not been merged away.
func (t *cosetTable) active(p group.Point) bool {
	return t.tombstones[p] == group.None
}

// row returns the stored entries of p without redirecting.
func (t *cosetTable) row(p group.Point) []group.Point {
	i := int(p) * t.gens
	return t.entries[i : i+t.gens]
}

// get returns p·g, redirecting both p and the stored result.
func (t *cosetTable) get(p group.Point, g group.Generator) group.Point {
	r := t.entries[int(t.redirect(p))*t.gens+int(g)]
	if r == group.None {
		return r
	}
	return t.redirect(r)
}

// set records p·g = r and the inverse r·g = p.
func (t *cosetTable) set(p group.Point, g group.Generator, r group.Point) {
	p, r = t.redirect(p), t.redirect(r)
	t.entries[int(p)*t.gens+int(g)] = r
	t.entries[int(r)*t.gens+int(g)] = p
}

// firstUnknown returns the first unknown cell of an active row in row-major
// order.
func (t *cosetTable) firstUnknown() (group.Point, group.Generator, bool) {
	for i, e := range t.entries {
		if e == group.None && t.tombstones[i/t.gens] == group.None {
			return group.Point(i / t.gens), group.Generator(i % t.gens), true
		}
	}
	return group.None, 0, false
}

// merge tombstones replace into keep and rewrites every stored reference to
// replace. It returns the removed row's entries, already rewritten, so the
// caller can replay them as facts about keep.
func (t *cosetTable) merge(keep, replace group.Point) []group.Point {
	removed := slices.Clone(t.row(replace))
	t.tombstones[replace] = keep

	for i, e := range t.entries {
		if e == replace {
			t.entries[i] = keep
		}
	}
	for i, e := range t.tombstones {
		if e == replace {
			t.tombstones[i] = keep
		}
	}
	for i, e := range removed {
		if e == replace {
			removed[i] = keep
		}
	}
	return removed
}

// compact drops tombstoned rows and renumbers the survivors densely in their
// existing order. remap[old] is the new index of old's representative and
// dropped[old] reports whether old's row was removed.
func (t *cosetTable) compact() (remap []group.Point, dropped []bool) {
	n := t.rowCount()
	remap = make([]group.Point, n)
	dropped = make([]bool, n)

	next := group.Point(0)
	for p := range n {
		if t.active(group.Point(p)) {
			remap[p] = next
			next++
		} else {
			dropped[p] = true
		}
	}
	for p := range n {
		if dropped[p] {
			remap[p] = remap[t.redirect(group.Point(p))]
		}
	}

	entries := make([]group.Point, 0, int(next)*t.gens)
	for p := range n {
		if dropped[p] {
			continue
		}
		for _, e := range t.row(group.Point(p)) {
			if e != group.None {
				e = remap[e]
			}
			entries = append(entries, e)
		}
	}

	t.entries = entries
	t.tombstones = make([]group.Point, next)
	for i := range t.tombstones {
		t.tombstones[i] = group.None
	}
	return remap, dropped
}

// String renders the table for debugging, with "??" for unknown entries and
// "->" marking tombstoned rows.
func (t *cosetTable) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Columns: %d\n", t.gens)
	for p := range t.rowCount() {
		fmt.Fprintf(&b, "C%d:", p)
		if !t.active(group.Point(p)) {
			fmt.Fprintf(&b, " -> C%d\n", t.tombstones[p])
			continue
		}
		for _, e := range t.row(group.Point(p)) {
			if e == group.None {
				b.WriteString(" ??")
			} else {
				fmt.Fprintf(&b, " C%d", e)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
