package toddcoxeter

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	derrors "github.com/matzehuels/discrete/pkg/errors"
	"github.com/matzehuels/discrete/pkg/group"
)

// Stats summarizes the work done by an enumeration.
type Stats struct {
	Points       int  `json:"points"`
	Steps        int  `json:"steps"`
	Coincidences int  `json:"coincidences"`
	Deductions   int  `json:"deductions"`
	Complete     bool `json:"complete"`
}

// Tables is the state of a coset enumeration: the coset table, one relation
// table per relation, and the word table. Outside of a call to New or
// DiscoverNextUnknown all rows are active and indices are dense.
type Tables struct {
	gens      int
	cosets    *cosetTable
	relations []*relationTable
	words     *wordTable
	stats     Stats
	logger    *log.Logger
}

// New creates the enumeration state for gens involutive generators subject
// to relations. The base coset is the subgroup generated by subgroup; with
// an empty subgroup cosets are group elements.
//
// Every subgroup generator fixes the base coset; those facts are propagated
// before New returns, so the returned tables may already be complete.
func New(gens int, relations []group.Word, subgroup []group.Generator) (*Tables, error) {
	if err := derrors.ValidateGeneratorCount(gens); err != nil {
		return nil, err
	}
	for i, rel := range relations {
		if len(rel) == 0 {
			return nil, derrors.New(derrors.ErrCodeInvalidRelation, "relation %d is empty", i)
		}
		for _, g := range rel {
			if err := derrors.ValidateGenerator(int(g), gens); err != nil {
				return nil, derrors.Wrap(derrors.ErrCodeInvalidRelation, err, "relation %d", i)
			}
		}
	}
	for _, g := range subgroup {
		if err := derrors.ValidateGenerator(int(g), gens); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidSubgroup, err, "subgroup generator")
		}
	}

	t := &Tables{
		gens:   gens,
		cosets: newCosetTable(gens),
		words:  newWordTable(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, rel := range relations {
		t.relations = append(t.relations, newRelationTable(rel))
	}

	for _, g := range subgroup {
		t.deduce(group.Identity, g, group.Identity)
	}
	t.compact()
	t.stats.Points = t.cosets.rowCount()
	return t, nil
}

// SetLogger directs debug output (discoveries, coincidences) to logger.
// A nil logger silences output.
func (t *Tables) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	t.logger = logger
}

// DiscoverNextUnknown fills the first unknown coset table entry with a new
// coset and propagates all consequences. It returns false, leaving the
// tables untouched, when every entry is already known.
func (t *Tables) DiscoverNextUnknown() bool {
	c, g, ok := t.cosets.firstUnknown()
	if !ok {
		t.stats.Complete = true
		return false
	}

	r := t.addRow()
	t.words.push(t.words.get(c).Append(g))
	t.logger.Debug("discover", "coset", c, "gen", g, "new", r)

	t.deduce(c, g, r)
	t.compact()

	t.stats.Steps++
	t.stats.Points = t.cosets.rowCount()
	return true
}

// Run calls DiscoverNextUnknown until the table is complete or limit
// discoveries have been made, and returns the number made. Reaching the
// limit is not an error; cancellation of ctx is.
//
// A single discovery can cascade into many deductions, each of which rescans
// the open rows of every relation table, so an element table with tens of
// thousands of points takes seconds. ctx is checked between discoveries;
// bound the work with limit or a deadline on ctx.
func (t *Tables) Run(ctx context.Context, limit int) (int, error) {
	if err := derrors.ValidateLimit(limit); err != nil {
		return 0, err
	}
	steps := 0
	for steps < limit {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		if !t.DiscoverNextUnknown() {
			break
		}
		steps++
	}
	if _, _, ok := t.cosets.firstUnknown(); !ok {
		t.stats.Complete = true
	}
	t.logger.Debug("enumeration finished",
		"points", t.stats.Points,
		"steps", steps,
		"coincidences", t.stats.Coincidences,
		"complete", t.stats.Complete)
	return steps, nil
}

// Group returns an immutable snapshot of the current coset table and words.
func (t *Tables) Group() *group.Group {
	g, err := group.New(t.cosets.rowCount(), t.gens, t.cosets.entries, t.words.words)
	if err != nil {
		// Tables maintains every invariant group.New checks.
		panic(fmt.Sprintf("toddcoxeter: inconsistent tables: %v", err))
	}
	return g
}

// Stats returns counters for the enumeration so far.
func (t *Tables) Stats() Stats {
	s := t.stats
	if _, _, ok := t.cosets.firstUnknown(); !ok {
		s.Complete = true
	}
	return s
}

// String renders the raw coset table for debugging.
func (t *Tables) String() string {
	return t.cosets.String()
}

// addRow appends a coset row to the coset table and every relation table.
func (t *Tables) addRow() group.Point {
	r := t.cosets.addRow()
	for _, rt := range t.relations {
		rt.addRow(r)
	}
	return r
}

// deduce records coset·gen = result and drains every consequence. After each
// fact, all relation tables are rescanned; their newly closed rows feed the
// queue. The cost per fact grows with the number of open relation rows.
func (t *Tables) deduce(coset group.Point, gen group.Generator, result group.Point) {
	queue := []fact{{coset: coset, gen: gen, result: result}}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		queue = t.apply(f, queue)
		for _, rt := range t.relations {
			queue = rt.update(t.cosets, queue)
		}
	}
}

// apply writes one fact. A conflicting entry on either side is a
// coincidence; it is resolved and the fact is queued again.
func (t *Tables) apply(f fact, queue []fact) []fact {
	c := t.cosets.redirect(f.coset)
	r := t.cosets.redirect(f.result)

	x := t.cosets.get(c, f.gen)
	if x != group.None && x != r {
		return append(t.coincidence(x, r, queue), f)
	}
	y := t.cosets.get(r, f.gen)
	if y != group.None && y != c {
		return append(t.coincidence(y, c, queue), f)
	}
	if x == group.None || y == group.None {
		t.stats.Deductions++
	}
	t.cosets.set(c, f.gen, r)
	return queue
}

// coincidence merges the larger of a and b into the smaller and queues the
// removed row's entries as facts about the kept coset.
func (t *Tables) coincidence(a, b group.Point, queue []fact) []fact {
	keep, replace := min(a, b), max(a, b)
	t.stats.Coincidences++
	t.logger.Debug("coincidence", "keep", keep, "replace", replace)

	removed := t.cosets.merge(keep, replace)
	for _, rt := range t.relations {
		rt.rewrite(replace, keep)
	}
	for g, res := range removed {
		if res != group.None {
			queue = append(queue, fact{coset: keep, gen: group.Generator(g), result: res})
		}
	}
	return queue
}

// compact removes tombstoned rows from all sub-tables.
func (t *Tables) compact() {
	remap, dropped := t.cosets.compact()
	for _, rt := range t.relations {
		rt.compact(remap, dropped)
	}
	t.words.compact(dropped)
}
