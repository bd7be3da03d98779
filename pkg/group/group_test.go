package group

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	derrors "github.com/matzehuels/discrete/pkg/errors"
)

// klein is the Klein four-group acting on itself.
func klein(t *testing.T) *Group {
	t.Helper()
	g, err := New(4, 2,
		[]Point{1, 2, 0, 3, 3, 0, 2, 1},
		[]Word{{}, {0}, {1}, {0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// partial is a two-point table with one unknown entry.
func partial(t *testing.T) *Group {
	t.Helper()
	g, err := New(2, 2,
		[]Point{1, None, 0, 1},
		[]Word{nil, {0}})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestWord(t *testing.T) {
	w := Word{0, 1, 2}

	t.Run("Append", func(t *testing.T) {
		got := w[:2].Append(0)
		if !slices.Equal(got, Word{0, 1, 0}) {
			t.Errorf("Append = %v", got)
		}
		if w[2] != 2 {
			t.Errorf("Append modified the receiver's backing array: %v", w)
		}
	})

	t.Run("Inverse", func(t *testing.T) {
		if got := w.Inverse(); !slices.Equal(got, Word{2, 1, 0}) {
			t.Errorf("Inverse = %v", got)
		}
		if got := Word(nil).Inverse(); got == nil || len(got) != 0 {
			t.Errorf("nil.Inverse() = %#v, want empty non-nil", got)
		}
	})

	t.Run("Repeat", func(t *testing.T) {
		if got := (Word{0, 1}).Repeat(3); !slices.Equal(got, Word{0, 1, 0, 1, 0, 1}) {
			t.Errorf("Repeat = %v", got)
		}
		if got := w.Repeat(0); len(got) != 0 {
			t.Errorf("Repeat(0) = %v", got)
		}
	})

	t.Run("String", func(t *testing.T) {
		if got := w.String(); got != "0 1 2" {
			t.Errorf("String() = %q", got)
		}
		if got := (Word{}).String(); got != "e" {
			t.Errorf("empty String() = %q, want e", got)
		}
	})
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		points   int
		gens     int
		table    []Point
		words    []Word
		wantCode derrors.Code
	}{
		{"NegativeSize", -1, 1, nil, nil, derrors.ErrCodeInvalidInput},
		{"ShortTable", 2, 1, []Point{1}, []Word{{}, {0}}, derrors.ErrCodeInvalidInput},
		{"ShortWords", 2, 1, []Point{1, 0}, []Word{{}}, derrors.ErrCodeInvalidInput},
		{"EntryOutOfRange", 2, 1, []Point{2, 0}, []Word{{}, {0}}, derrors.ErrCodeInvalidInput},
		{"NegativeEntry", 2, 1, []Point{-2, 0}, []Word{{}, {0}}, derrors.ErrCodeInvalidInput},
		{"WordGenerator", 2, 1, []Point{1, 0}, []Word{{}, {1}}, derrors.ErrCodeInvalidGenerator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.points, tt.gens, tt.table, tt.words)
			if got := derrors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestNewCopiesInputs(t *testing.T) {
	table := []Point{1, 0}
	words := []Word{{}, {0}}
	g, err := New(2, 1, table, words)
	if err != nil {
		t.Fatal(err)
	}
	table[0] = 0
	words[1][0] = 5

	if r, _ := g.MulGen(0, 0); r != 1 {
		t.Errorf("MulGen(0, 0) = %d after mutating input, want 1", r)
	}
	if w := g.Word(1); !slices.Equal(w, Word{0}) {
		t.Errorf("Word(1) = %v after mutating input, want [0]", w)
	}
}

func TestMulGen(t *testing.T) {
	g := partial(t)

	tests := []struct {
		name   string
		p      Point
		gen    Generator
		want   Point
		wantOK bool
	}{
		{"Known", 0, 0, 1, true},
		{"FixedPoint", 1, 1, 1, true},
		{"Unknown", 0, 1, None, false},
		{"PointOutOfRange", 2, 0, None, false},
		{"NegativePoint", -1, 0, None, false},
		{"GeneratorOutOfRange", 0, 2, None, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.MulGen(tt.p, tt.gen)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MulGen(%d, %d) = %d, %v; want %d, %v", tt.p, tt.gen, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMulWord(t *testing.T) {
	g := klein(t)

	for p, w := range g.Words() {
		got, ok := g.MulWord(Identity, w)
		if !ok || got != Point(p) {
			t.Errorf("MulWord(0, %v) = %d, %v; want %d", w, got, ok, p)
		}
	}

	if got, ok := g.MulWord(2, nil); !ok || got != 2 {
		t.Errorf("empty word moved 2 to %d (ok=%v)", got, ok)
	}

	// Short-circuits on the unknown entry even though later steps exist.
	if _, ok := partial(t).MulWord(0, Word{1, 0}); ok {
		t.Error("MulWord through an unknown entry reported ok")
	}
}

func TestCompleteness(t *testing.T) {
	if g := klein(t); !g.Complete() || g.UndefinedCount() != 0 {
		t.Errorf("klein: Complete() = %v, UndefinedCount() = %d", g.Complete(), g.UndefinedCount())
	}
	if g := partial(t); g.Complete() || g.UndefinedCount() != 1 {
		t.Errorf("partial: Complete() = %v, UndefinedCount() = %d", g.Complete(), g.UndefinedCount())
	}
}

func TestCheckRelation(t *testing.T) {
	g := klein(t)
	tests := []struct {
		rel  Word
		want bool
	}{
		{Word{0, 0}, true},
		{Word{0, 1, 0, 1}, true},
		{Word{0}, false},
		{Word{0, 1}, false},
	}
	for _, tt := range tests {
		if got := g.CheckRelation(tt.rel); got != tt.want {
			t.Errorf("CheckRelation(%v) = %v, want %v", tt.rel, got, tt.want)
		}
	}

	// Undefined walks do not count as violations.
	if !partial(t).CheckRelation(Word{1, 0, 1, 0}) {
		t.Error("partial table rejected a relation that only fails on unknown entries")
	}
}

func TestRowAndWordsAreCopies(t *testing.T) {
	g := klein(t)
	row := g.Row(0)
	row[0] = 3
	if r, _ := g.MulGen(0, 0); r != 1 {
		t.Errorf("Row() aliases the table")
	}
	ws := g.Words()
	ws[3][0] = 1
	if w := g.Word(3); !slices.Equal(w, Word{0, 1}) {
		t.Errorf("Words() aliases the word table")
	}
	if g.Row(9) != nil || g.Word(9) != nil {
		t.Error("out of range Row/Word should be nil")
	}
}

func TestString(t *testing.T) {
	want := "Points: 2\n" +
		"Generators: 2\n" +
		"P\\G G00 G01\n" +
		"P00 P01 ???\n" +
		"P01 P00 P01\n"
	if got := partial(t).String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	for name, g := range map[string]*Group{"Complete": klein(t), "Partial": partial(t)} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteGroup(g, &buf); err != nil {
				t.Fatal(err)
			}
			got, err := ReadGroup(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(g, got, cmp.AllowUnexported(Group{}), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJSONUnknownIsNull(t *testing.T) {
	data, err := MarshalGroup(partial(t))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "null") {
		t.Errorf("unknown entry not encoded as null:\n%s", data)
	}
	if !strings.Contains(string(data), `"words": [`) {
		t.Errorf("words missing:\n%s", data)
	}
}

func TestReadGroupInvalid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode derrors.Code
	}{
		{"RowCount", `{"points":2,"generators":1,"table":[[1]],"words":[[],[0]]}`, derrors.ErrCodeInvalidFormat},
		{"RowWidth", `{"points":1,"generators":1,"table":[[0,0]],"words":[[]]}`, derrors.ErrCodeInvalidFormat},
		{"EntryRange", `{"points":1,"generators":1,"table":[[4]],"words":[[]]}`, derrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGroup(strings.NewReader(tt.input))
			if got := derrors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
		})
	}

	if _, err := ReadGroup(strings.NewReader("{")); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestToDOT(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		dot := ToDOT(klein(t), DOTOptions{})
		if !strings.HasPrefix(dot, "graph Cayley {") {
			t.Errorf("unexpected header:\n%s", dot)
		}
		if !strings.Contains(dot, "layout=neato") {
			t.Error("default layout missing")
		}
		// 4 points * 2 involutions / 2 = 4 undirected edges.
		if got := strings.Count(dot, " -- "); got != 4 {
			t.Errorf("edge count = %d, want 4", got)
		}
		if strings.Contains(dot, "unknown") {
			t.Error("complete table should not reference the unknown node")
		}
	})

	t.Run("PartialWithWords", func(t *testing.T) {
		dot := ToDOT(partial(t), DOTOptions{Words: true, Layout: "circo"})
		for _, want := range []string{
			"layout=circo",
			`label="e"`,
			"p0 -- unknown",
			"p1 -- p1",
			`unknown [label="?"`,
		} {
			if !strings.Contains(dot, want) {
				t.Errorf("DOT missing %q:\n%s", want, dot)
			}
		}
	})
}
