package toddcoxeter

import (
	"slices"

	"github.com/matzehuels/discrete/pkg/group"
)

// fact states that coset·gen = result.
type fact struct {
	coset  group.Point
	gen    group.Generator
	result group.Point
}

// relationRow tracks one coset's scan of a relation. The left cursor walks
// forward from the coset, the right cursor walks backward from it (the
// relation returns to its start). Cosets reached so far are leftCoset and
// rightCoset. When left == right the single unscanned generator must map
// leftCoset to rightCoset.
type relationRow struct {
	leftCoset  group.Point
	rightCoset group.Point
	left       int
	right      int
	emitted    bool
}

// relationTable holds one row per coset for a single relation, parallel to
// the coset table's rows.
type relationTable struct {
	relation group.Word
	rows     []relationRow
}

func newRelationTable(relation group.Word) *relationTable {
	t := &relationTable{relation: slices.Clone(relation)}
	t.addRow(group.Identity)
	return t
}

// addRow starts the scan for coset p.
func (t *relationTable) addRow(p group.Point) {
	t.rows = append(t.rows, relationRow{
		leftCoset:  p,
		rightCoset: p,
		left:       0,
		right:      len(t.relation) - 1,
	})
}

// update advances every unfinished row as far as known entries allow and
// appends a fact for each row whose cursors meet. Each row emits at most
// once.
func (t *relationTable) update(cosets *cosetTable, queue []fact) []fact {
	for i := range t.rows {
		row := &t.rows[i]
		if row.emitted {
			continue
		}
		for row.left < row.right {
			next := cosets.get(row.leftCoset, t.relation[row.left])
			if next == group.None {
				break
			}
			row.leftCoset = next
			row.left++
		}
		for row.left < row.right {
			next := cosets.get(row.rightCoset, t.relation[row.right])
			if next == group.None {
				break
			}
			row.rightCoset = next
			row.right--
		}
		if row.left == row.right {
			row.emitted = true
			queue = append(queue, fact{
				coset:  row.leftCoset,
				gen:    t.relation[row.left],
				result: row.rightCoset,
			})
		}
	}
	return queue
}

// rewrite replaces references to a merged coset.
func (t *relationTable) rewrite(replace, keep group.Point) {
	for i := range t.rows {
		row := &t.rows[i]
		if row.leftCoset == replace {
			row.leftCoset = keep
		}
		if row.rightCoset == replace {
			row.rightCoset = keep
		}
	}
}

// compact drops the rows of removed cosets and renumbers the rest.
func (t *relationTable) compact(remap []group.Point, dropped []bool) {
	rows := t.rows[:0]
	for i, row := range t.rows {
		if dropped[i] {
			continue
		}
		row.leftCoset = remap[row.leftCoset]
		row.rightCoset = remap[row.rightCoset]
		rows = append(rows, row)
	}
	t.rows = rows
}
