// Package align computes global alignments between byte sequences.
//
// The engine implements Hirschberg's divide-and-conquer reduction of the
// Needleman–Wunsch dynamic program, so an alignment of a and b needs
// O(min(len(a), len(b))) auxiliary space and O(log n) recursion depth.
package align

import "strings"

// Op is a single edit operation. Its value is the character used when
// rendering a script.
type Op byte

const (
	Match      Op = '='
	Substitute Op = '!'
	Delete     Op = '-'
	Insert     Op = '+'
)

// String returns the single-character rendering of the op.
func (o Op) String() string {
	return string(rune(o))
}

// Edit is one aligned column. A is set for Match, Substitute and Delete;
// B is set for Match, Substitute and Insert.
type Edit struct {
	Op Op
	A  byte
	B  byte
}

// swap relabels an edit computed with the operands exchanged.
func (e Edit) swap() Edit {
	switch e.Op {
	case Insert:
		e.Op = Delete
	case Delete:
		e.Op = Insert
	}
	e.A, e.B = e.B, e.A
	return e
}

// Script is an ordered edit script transforming one sequence into another.
type Script []Edit

// Counts tallies the operations of a script.
type Counts struct {
	Match      int `json:"match"`
	Substitute int `json:"substitute"`
	Delete     int `json:"delete"`
	Insert     int `json:"insert"`
}

// Edits returns the number of non-match operations.
func (c Counts) Edits() int {
	return c.Substitute + c.Delete + c.Insert
}

// Counts returns the number of operations of each kind.
func (s Script) Counts() Counts {
	var c Counts
	for _, e := range s {
		switch e.Op {
		case Match:
			c.Match++
		case Substitute:
			c.Substitute++
		case Delete:
			c.Delete++
		case Insert:
			c.Insert++
		}
	}
	return c
}

// Cost sums the cost of every edit under f.
func (s Script) Cost(f CostFunc) int {
	total := 0
	for _, e := range s {
		switch e.Op {
		case Match, Substitute:
			total += f(int(e.A), int(e.B))
		case Delete:
			total += f(int(e.A), Absent)
		case Insert:
			total += f(Absent, int(e.B))
		}
	}
	return total
}

// Source rebuilds the sequence the script transforms from.
func (s Script) Source() []byte {
	out := make([]byte, 0, len(s))
	for _, e := range s {
		if e.Op != Insert {
			out = append(out, e.A)
		}
	}
	return out
}

// Target rebuilds the sequence the script transforms into.
func (s Script) Target() []byte {
	out := make([]byte, 0, len(s))
	for _, e := range s {
		if e.Op != Delete {
			out = append(out, e.B)
		}
	}
	return out
}

// String renders the script as op characters, e.g. "==!+=".
func (s Script) String() string {
	var b strings.Builder
	b.Grow(len(s))
	for _, e := range s {
		b.WriteByte(byte(e.Op))
	}
	return b.String()
}
