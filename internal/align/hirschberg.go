package align

import (
	"errors"
	"fmt"
	"slices"
)

// ErrOutOfMemory is returned when an alignment would exceed the engine's
// input budget. The caller should treat the comparison as failed.
var ErrOutOfMemory = errors.New("alignment exceeds memory budget")

// DP predecessor indexes, in tie-break order.
type step int

const (
	stepDel step = iota
	stepSub
	stepIns
)

// Engine aligns byte sequences under a cost function.
// The zero value uses Unit cost and no input limit.
type Engine struct {
	// Cost prices each aligned column. Nil means Unit.
	Cost CostFunc

	// MaxInput bounds len(a)+len(b) in bytes. Zero disables the check.
	MaxInput int
}

// NewEngine creates an engine with the given cost function and input limit.
func NewEngine(cost CostFunc, maxInput int) *Engine {
	return &Engine{Cost: cost, MaxInput: maxInput}
}

// Align returns the edit script transforming a into b under f.
func Align(a, b []byte, f CostFunc) (Script, error) {
	return NewEngine(f, 0).Align(a, b)
}

// Align returns the edit script transforming a into b.
//
// The divide step always runs on the longer sequence while the cost vectors
// are sized by the shorter one. When a is longer the operands are swapped,
// and the result is relabelled so that it still transforms a into b.
func (e *Engine) Align(a, b []byte) (Script, error) {
	if e.MaxInput > 0 && len(a)+len(b) > e.MaxInput {
		return nil, fmt.Errorf("%w: %d bytes over limit of %d", ErrOutOfMemory, len(a)+len(b), e.MaxInput)
	}

	f := e.Cost
	if f == nil {
		f = Unit
	}

	dst := make(Script, 0, len(a)+len(b))
	if len(a) > len(b) {
		dst = hirschberg(dst, b, a, flip(f))
		for i := range dst {
			dst[i] = dst[i].swap()
		}
	} else {
		dst = hirschberg(dst, a, b, f)
	}

	// Best-effort shrink; the backing array may stay larger than needed.
	return slices.Clip(dst), nil
}

// hirschberg appends the alignment of a against b to dst. b is split in
// half at every level, which bounds the recursion depth to O(log len(b)).
func hirschberg(dst Script, a, b []byte, f CostFunc) Script {
	n := len(b)
	if n <= 1 {
		return nwAlign(dst, a, b, f)
	}

	nmid := n / 2
	left := forwardCost(a, b[:nmid], f)
	right := backwardCost(a, b[nmid:], f)

	mmid := 0
	for i := range left {
		if left[i]+right[i] < left[mmid]+right[mmid] {
			mmid = i
		}
	}

	dst = hirschberg(dst, a[:mmid], b[:nmid], f)
	return hirschberg(dst, a[mmid:], b[nmid:], f)
}

// nwAlign runs the full Needleman–Wunsch program and appends its script.
// Only used when one side is tiny, so the matrix stays linear in size.
func nwAlign(dst Script, a, b []byte, f CostFunc) Script {
	m, n := len(a), len(b)

	s := make([][]int, m+1)
	for i := range s {
		s[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		s[i][0] = s[i-1][0] + f(int(a[i-1]), Absent)
	}
	for j := 1; j <= n; j++ {
		s[0][j] = s[0][j-1] + f(Absent, int(b[j-1]))
	}
	for j := 1; j <= n; j++ {
		for i := 1; i <= m; i++ {
			_, s[i][j] = nwMin(s[i-1][j], s[i-1][j-1], s[i][j-1], int(a[i-1]), int(b[j-1]), f)
		}
	}

	// Walk back from the corner; the segment is reversed afterwards.
	start := len(dst)
	i, j := m, n
	for i > 0 && j > 0 {
		st, _ := nwMin(s[i-1][j], s[i-1][j-1], s[i][j-1], int(a[i-1]), int(b[j-1]), f)
		switch st {
		case stepDel:
			dst = append(dst, Edit{Op: Delete, A: a[i-1]})
			i--
		case stepSub:
			op := Substitute
			if a[i-1] == b[j-1] {
				op = Match
			}
			dst = append(dst, Edit{Op: op, A: a[i-1], B: b[j-1]})
			i--
			j--
		case stepIns:
			dst = append(dst, Edit{Op: Insert, B: b[j-1]})
			j--
		}
	}
	for ; i > 0; i-- {
		dst = append(dst, Edit{Op: Delete, A: a[i-1]})
	}
	for ; j > 0; j-- {
		dst = append(dst, Edit{Op: Insert, B: b[j-1]})
	}

	slices.Reverse(dst[start:])
	return dst
}

// forwardCost returns, for every i, the cost of aligning a[:i] with b.
func forwardCost(a, b []byte, f CostFunc) []int {
	m := len(a)
	s := make([]int, m+1)
	for i := 1; i <= m; i++ {
		s[i] = s[i-1] + f(int(a[i-1]), Absent)
	}
	for j := 0; j < len(b); j++ {
		y := int(b[j])
		diag := s[0]
		s[0] += f(Absent, y)
		for i := 1; i <= m; i++ {
			_, c := nwMin(s[i-1], diag, s[i], int(a[i-1]), y, f)
			diag = s[i]
			s[i] = c
		}
	}
	return s
}

// backwardCost returns, for every i, the cost of aligning a[i:] with b.
func backwardCost(a, b []byte, f CostFunc) []int {
	m := len(a)
	s := make([]int, m+1)
	for i := m - 1; i >= 0; i-- {
		s[i] = s[i+1] + f(int(a[i]), Absent)
	}
	for j := len(b) - 1; j >= 0; j-- {
		y := int(b[j])
		diag := s[m]
		s[m] += f(Absent, y)
		for i := m - 1; i >= 0; i-- {
			_, c := nwMin(s[i+1], diag, s[i], int(a[i]), y, f)
			diag = s[i]
			s[i] = c
		}
	}
	return s
}

// nwMin picks the cheapest of the three DP predecessors after adding the
// cost of the step into the current cell. Delete beats Substitute on a tie;
// Insert must be strictly cheaper than that winner.
func nwMin(del, sub, ins int, x, y int, f CostFunc) (step, int) {
	del += f(x, Absent)
	sub += f(x, y)
	ins += f(Absent, y)

	st, best := stepDel, del
	if sub < best {
		st, best = stepSub, sub
	}
	if ins < best {
		st, best = stepIns, ins
	}
	return st, best
}
