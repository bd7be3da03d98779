package toddcoxeter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/discrete/pkg/group"
)

func TestCosetTableSetIsSymmetric(t *testing.T) {
	ct := newCosetTable(2)
	r := ct.addRow()
	ct.set(0, 1, r)

	if got := ct.get(0, 1); got != r {
		t.Errorf("get(0, 1) = %d, want %d", got, r)
	}
	if got := ct.get(r, 1); got != 0 {
		t.Errorf("get(%d, 1) = %d, want 0", r, got)
	}
	if got := ct.get(0, 0); got != group.None {
		t.Errorf("get(0, 0) = %d, want None", got)
	}
}

func TestCosetTableFirstUnknown(t *testing.T) {
	ct := newCosetTable(2)
	r := ct.addRow()
	ct.set(0, 0, r)

	p, g, ok := ct.firstUnknown()
	if !ok || p != 0 || g != 1 {
		t.Errorf("firstUnknown() = (%d, %d, %v), want (0, 1, true)", p, g, ok)
	}

	ct.set(0, 1, 0)
	ct.set(r, 1, r)
	if _, _, ok := ct.firstUnknown(); ok {
		t.Error("firstUnknown() found a cell in a full table")
	}
}

func TestCosetTableMergeAndCompact(t *testing.T) {
	ct := newCosetTable(2)
	ct.addRow()
	ct.addRow()
	ct.set(0, 0, 1)
	ct.set(1, 1, 2)

	removed := ct.merge(1, 2)
	if diff := cmp.Diff([]group.Point{group.None, 1}, removed); diff != "" {
		t.Errorf("removed row mismatch (-want +got):\n%s", diff)
	}
	if got := ct.redirect(2); got != 1 {
		t.Errorf("redirect(2) = %d, want 1", got)
	}
	if got := ct.get(2, 0); got != ct.get(1, 0) {
		t.Errorf("get through tombstone = %d, want %d", got, ct.get(1, 0))
	}
	if !strings.Contains(ct.String(), "C2: -> C1") {
		t.Errorf("String() does not show the tombstone:\n%s", ct)
	}

	remap, dropped := ct.compact()
	if diff := cmp.Diff([]group.Point{0, 1, 1}, remap); diff != "" {
		t.Errorf("remap mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{false, false, true}, dropped); diff != "" {
		t.Errorf("dropped mismatch (-want +got):\n%s", diff)
	}
	if ct.rowCount() != 2 {
		t.Errorf("rowCount() = %d, want 2", ct.rowCount())
	}
	want := []group.Point{1, group.None, 0, 1}
	if diff := cmp.Diff(want, ct.entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestCosetTableRedirectChain(t *testing.T) {
	ct := newCosetTable(1)
	for range 3 {
		ct.addRow()
	}
	ct.tombstones[3] = 2
	ct.tombstones[2] = 1

	if got := ct.redirect(3); got != 1 {
		t.Errorf("redirect(3) = %d, want 1", got)
	}
	if got := ct.redirect(ct.redirect(3)); got != 1 {
		t.Errorf("redirect is not idempotent: %d", got)
	}
}

func TestRelationTableEmitsOnce(t *testing.T) {
	ct := newCosetTable(1)
	rt := newRelationTable(group.Word{0})

	queue := rt.update(ct, nil)
	want := []fact{{coset: 0, gen: 0, result: 0}}
	if diff := cmp.Diff(want, queue, cmp.AllowUnexported(fact{})); diff != "" {
		t.Errorf("first update mismatch (-want +got):\n%s", diff)
	}
	if queue = rt.update(ct, nil); len(queue) != 0 {
		t.Errorf("second update emitted %v", queue)
	}
}

func TestRelationTableScansBothEnds(t *testing.T) {
	// (g0 g1)^2 over a partial table: 0 -g0-> 1 and 0 -g1-> 2 are known,
	// as is 1 -g1-> 3. The scan reaches 3 from the left and 2 from the
	// right, leaving 3·g0 = 2 to deduce.
	ct := newCosetTable(2)
	for range 3 {
		ct.addRow()
	}
	ct.set(0, 0, 1)
	ct.set(0, 1, 2)
	ct.set(1, 1, 3)

	rt := newRelationTable(group.Word{0, 1, 0, 1})
	queue := rt.update(ct, nil)

	want := []fact{{coset: 3, gen: 0, result: 2}}
	if diff := cmp.Diff(want, queue, cmp.AllowUnexported(fact{})); diff != "" {
		t.Errorf("facts mismatch (-want +got):\n%s", diff)
	}
}

func TestRelationTableRewriteAndCompact(t *testing.T) {
	rt := newRelationTable(group.Word{0, 1})
	rt.addRow(1)
	rt.addRow(2)

	rt.rewrite(2, 1)
	if rt.rows[2].leftCoset != 1 || rt.rows[2].rightCoset != 1 {
		t.Errorf("row 2 not rewritten: %+v", rt.rows[2])
	}

	rt.compact([]group.Point{0, 1, 1}, []bool{false, false, true})
	if len(rt.rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rt.rows))
	}
	if rt.rows[1].leftCoset != 1 {
		t.Errorf("row 1 coset = %d, want 1", rt.rows[1].leftCoset)
	}
}

func TestWordTableCompact(t *testing.T) {
	wt := newWordTable()
	wt.push(group.Word{0})
	wt.push(group.Word{1})
	wt.compact([]bool{false, true, false})

	want := []group.Word{{}, {1}}
	if diff := cmp.Diff(want, wt.words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}
