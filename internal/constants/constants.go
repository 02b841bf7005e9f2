// Package constants provides named constants used throughout the simcheck codebase.
// This centralizes magic numbers and fixed symbol sets for better maintainability.
package constants

// Canonicalization symbol sets
const (
	// StatementSymbols are removed and replaced by a line break.
	// They mark statement and scope boundaries, so adjacent statements stay apart.
	StatementSymbols = "{}();=,"

	// NoiseSymbols are removed without substitution (pointer/dereference noise).
	NoiseSymbols = "*"

	// QuoteSymbols are dropped from every emitted token.
	QuoteSymbols = "'\""

	// ReservedSymbols decide whether a file needs canonicalization at all.
	// A file containing none of them is compared as-is.
	ReservedSymbols = "'\"\t\n;:{"
)

// PrimitiveTypes are the keywords whose following word is a declared identifier.
var PrimitiveTypes = []string{
	"char", "int", "long", "short", "float", "double", "void", "size_t", "ssize_t",
}

// EntryPointName is never renamed so the program entry point stays visible.
const EntryPointName = "main"

// Limits
const (
	// DefaultMaxIdentifiers is the per-file identifier dictionary capacity.
	DefaultMaxIdentifiers = 500

	// DefaultMaxInputBytes bounds the combined size of two aligned streams.
	// Hirschberg is linear in space but quadratic in time.
	DefaultMaxInputBytes = 16 << 20

	// DefaultHistoryLimit is how many comparisons `history` shows by default.
	DefaultHistoryLimit = 20
)

// Paths, relative to the project root.
const (
	// StateDirName holds canonical outputs, the database and event traces.
	StateDirName = ".simcheck"

	// DefaultPrimaryCanonicalPath receives the canonical form of the first file.
	DefaultPrimaryCanonicalPath = "out.txt"

	// DefaultSecondaryCanonicalPath receives the canonical form of the second file.
	DefaultSecondaryCanonicalPath = "out2.txt"

	// DatabaseFileName is the SQLite database inside the state directory.
	DatabaseFileName = "simcheck.db"

	// EventsFileName is the JSONL comparison trace inside the state directory.
	EventsFileName = "events.jsonl"
)

// PercentScale converts a ratio in [0,1] to a percentage.
const PercentScale = 100.0
