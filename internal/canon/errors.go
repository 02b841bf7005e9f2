package canon

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentifier reports a declared name with a disallowed character.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrCapacityExceeded reports a full identifier dictionary.
	ErrCapacityExceeded = errors.New("identifier dictionary capacity exceeded")
)

// InvalidIdentifierError carries the offending declaration.
type InvalidIdentifierError struct {
	Word string // declared word as written
	Char byte   // first disallowed character
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: character %q not allowed", e.Word, e.Char)
}

// Unwrap lets errors.Is match ErrInvalidIdentifier.
func (e *InvalidIdentifierError) Unwrap() error {
	return ErrInvalidIdentifier
}
