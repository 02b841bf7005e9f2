package canon

import (
	"bytes"
	"strings"

	"github.com/nvandessel/simcheck/internal/constants"
)

type commentState int

const (
	stateNormal commentState = iota
	stateLineComment
	stateBlockComment
)

// StripComments removes // and /* */ comments.
//
// The scanner holds one pending character and decides state transitions
// from it, so a marker split across two reads is still recognized. The
// newline ending a line comment is consumed with the comment, and nothing
// is emitted in place of a comment.
func StripComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	state := stateNormal
	var prev byte
	pending := false

	for _, c := range src {
		switch state {
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				pending = false
			}
			continue
		case stateBlockComment:
			if c == '/' && pending && prev == '*' {
				state = stateNormal
				pending = false
				continue
			}
			prev, pending = c, true
			continue
		}

		if pending && prev == '/' {
			switch c {
			case '/':
				state = stateLineComment
				continue
			case '*':
				// The opening '*' must not close the comment as in "/*/".
				state = stateBlockComment
				pending = false
				continue
			}
		}

		if pending {
			out = append(out, prev)
		}
		prev, pending = c, true
	}

	if state == stateNormal && pending {
		out = append(out, prev)
	}
	return out
}

// RemoveSymbols drops every byte found in symbols. With newline set, each
// dropped byte is replaced by '\n'.
func RemoveSymbols(src []byte, symbols string, newline bool) []byte {
	out := make([]byte, 0, len(src))
	for _, c := range src {
		if strings.IndexByte(symbols, c) < 0 {
			out = append(out, c)
			continue
		}
		if newline {
			out = append(out, '\n')
		}
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// CollapseWhitespace squeezes whitespace runs in one streaming pass.
// A newline swallows every whitespace character that follows it; elsewhere
// a repeated identical whitespace character is kept once.
func CollapseWhitespace(src []byte) []byte {
	out := make([]byte, 0, len(src))
	var prev byte
	hasPrev := false
	inNewline := false

	for _, c := range src {
		if c == '\n' && !inNewline {
			inNewline = true
			out = append(out, c)
			prev, hasPrev = c, true
			continue
		}

		if inNewline {
			if isSpace(c) {
				continue
			}
			inNewline = false
		} else if hasPrev && c == prev && isSpace(c) {
			continue
		}

		out = append(out, c)
		prev, hasPrev = c, true
	}
	return out
}

// IsStream reports whether data already has the shape Canonicalize emits:
// words joined by single spaces, free of every character the pipeline
// removes or splits on. Such input is returned unchanged, which keeps
// canonicalization idempotent even for streams that still hold ':'.
func IsStream(data []byte) bool {
	if bytes.ContainsAny(data, constants.QuoteSymbols+constants.StatementSymbols+constants.NoiseSymbols+"\t\n\r[]") {
		return false
	}
	if len(data) > 0 && (data[0] == ' ' || data[len(data)-1] == ' ') {
		return false
	}
	return !bytes.Contains(data, []byte("  "))
}

// IsCanonical reports whether data can be compared without canonicalization,
// i.e. it contains none of the reserved structural characters.
func IsCanonical(data []byte) bool {
	return !bytes.ContainsAny(data, constants.ReservedSymbols)
}
