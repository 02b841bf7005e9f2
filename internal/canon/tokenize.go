package canon

import (
	"strings"

	"github.com/nvandessel/simcheck/internal/constants"
)

// declarationFields splits a line into the words used to spot declarations.
func declarationFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r'
	})
}

// tokenFields splits a line into the words that are emitted.
func tokenFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '[' || r == ']'
	})
}

func isIdentifierChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '[' || c == ']':
		return true
	}
	return false
}

// identifierName strips array brackets from a declared word: "argv[]" -> "argv".
func identifierName(word string) string {
	parts := strings.FieldsFunc(word, func(r rune) bool { return r == '[' || r == ']' })
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// registrable reports whether a declared name takes part in renaming.
func registrable(name string) bool {
	switch name {
	case "", "\n", " ", constants.EntryPointName:
		return false
	}
	return true
}

// tokenizer replaces declared identifiers with dictionary ids, line by line.
type tokenizer struct {
	keywords map[string]bool
	dict     *Dictionary
}

// declarations registers every name declared on line.
func (t *tokenizer) declarations(line string) error {
	afterType := false
	for _, word := range declarationFields(line) {
		if t.keywords[word] {
			// "long long x", "unsigned long int x": keep walking the chain.
			afterType = true
			continue
		}
		if !afterType {
			continue
		}
		afterType = false

		for i := 0; i < len(word); i++ {
			if !isIdentifierChar(word[i]) {
				return &InvalidIdentifierError{Word: word, Char: word[i]}
			}
		}

		name := identifierName(word)
		if !registrable(name) {
			continue
		}
		if _, err := t.dict.Add(name); err != nil {
			return err
		}
	}
	return nil
}

// emit appends the tokens of line, renamed and stripped of quotes.
func (t *tokenizer) emit(out []string, line string) []string {
	for _, word := range tokenFields(line) {
		word = t.dict.Replace(word)
		word = strings.Map(func(r rune) rune {
			if strings.ContainsRune(constants.QuoteSymbols, r) {
				return -1
			}
			return r
		}, word)
		if word != "" {
			out = append(out, word)
		}
	}
	return out
}

// run tokenizes the whole text and returns the emitted words.
func (t *tokenizer) run(text string) ([]string, error) {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if err := t.declarations(line); err != nil {
			return nil, err
		}
		out = t.emit(out, line)
	}
	return out, nil
}
