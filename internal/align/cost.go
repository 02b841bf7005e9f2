package align

// Absent stands for the missing side of an insertion or deletion.
const Absent = -1

// CostFunc prices aligning symbol a with symbol b. Either argument may be
// Absent. Symbols are passed as ints so that every byte value, including
// NUL, stays distinguishable from Absent. Costs must be non-negative.
type CostFunc func(a, b int) int

// Unit is the Levenshtein cost: 0 for equal present symbols, 1 otherwise.
func Unit(a, b int) int {
	if a == b && a != Absent {
		return 0
	}
	return 1
}

// flip returns f with its arguments exchanged.
func flip(f CostFunc) CostFunc {
	return func(a, b int) int { return f(b, a) }
}
