package canon

import (
	"fmt"
	"strconv"
)

// Dictionary maps identifier names to small integer ids in first-seen order.
// Ids start at 0. A Dictionary belongs to a single canonicalization pass.
type Dictionary struct {
	ids      map[string]int
	names    []string
	capacity int
}

// NewDictionary creates an empty dictionary holding at most capacity names.
// A capacity of zero or less means unlimited.
func NewDictionary(capacity int) *Dictionary {
	return &Dictionary{
		ids:      make(map[string]int),
		capacity: capacity,
	}
}

// Lookup returns the id of name, if registered.
func (d *Dictionary) Lookup(name string) (int, bool) {
	id, ok := d.ids[name]
	return id, ok
}

// Add registers name and returns its id. Registering a known name returns
// the existing id.
func (d *Dictionary) Add(name string) (int, error) {
	if id, ok := d.Lookup(name); ok {
		return id, nil
	}
	if d.capacity > 0 && d.Len() >= d.capacity {
		return 0, fmt.Errorf("%w: %d names registered, cannot add %q", ErrCapacityExceeded, d.Len(), name)
	}
	id := d.Len()
	d.ids[name] = id
	d.names = append(d.names, name)
	return id, nil
}

// Replace returns the decimal id of word when registered, otherwise word.
func (d *Dictionary) Replace(word string) string {
	if id, ok := d.Lookup(word); ok {
		return strconv.Itoa(id)
	}
	return word
}

// Len returns the number of registered names.
func (d *Dictionary) Len() int {
	return len(d.names)
}

// Names returns the registered names in id order.
func (d *Dictionary) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}
