package toddcoxeter

import "github.com/matzehuels/discrete/pkg/group"

// wordTable records, for each coset, the word that first reached it from the
// base coset. Rows are parallel to the coset table.
type wordTable struct {
	words []group.Word
}

func newWordTable() *wordTable {
	return &wordTable{words: []group.Word{{}}}
}

func (t *wordTable) push(w group.Word) {
	t.words = append(t.words, w)
}

func (t *wordTable) get(p group.Point) group.Word {
	return t.words[p]
}

// compact drops the words of removed cosets. Each surviving coset keeps its
// own word.
func (t *wordTable) compact(dropped []bool) {
	words := t.words[:0]
	for i, w := range t.words {
		if !dropped[i] {
			words = append(words, w)
		}
	}
	t.words = words
}
