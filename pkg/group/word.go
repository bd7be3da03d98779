package group

import (
	"slices"
	"strconv"
	"strings"
)

// Point is a dense index identifying a group element or coset.
type Point int

// None marks an unknown entry in a multiplication table.
const None Point = -1

// Identity is the base point every word is applied from.
const Identity Point = 0

// Generator is an index into the fixed generator set. Generators are
// involutions: applying one twice returns to the starting point.
type Generator int

// Word is a sequence of generators applied left to right.
type Word []Generator

// Append returns a new word with g added at the end. The receiver is not
// modified.
func (w Word) Append(g Generator) Word {
	out := make(Word, len(w), len(w)+1)
	copy(out, w)
	return append(out, g)
}

// Inverse returns the reversed word. This is the group inverse only because
// every generator is its own inverse.
func (w Word) Inverse() Word {
	out := slices.Clone(w)
	slices.Reverse(out)
	if out == nil {
		return Word{}
	}
	return out
}

// Repeat returns w concatenated with itself n times.
func (w Word) Repeat(n int) Word {
	out := make(Word, 0, len(w)*max(n, 0))
	for range n {
		out = append(out, w...)
	}
	return out
}

// String formats the word as space separated generator indices, or "e" for
// the empty word.
func (w Word) String() string {
	if len(w) == 0 {
		return "e"
	}
	parts := make([]string, len(w))
	for i, g := range w {
		parts[i] = strconv.Itoa(int(g))
	}
	return strings.Join(parts, " ")
}
