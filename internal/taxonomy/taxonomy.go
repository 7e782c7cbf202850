// Package taxonomy holds the static category code to display name mapping.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// Taxonomy is an immutable bidirectional mapping between category codes and
// human-readable names. It is constructed once and injected where needed,
// never mutated.
type Taxonomy struct {
	names map[string]string
	codes map[string]string
}

// New builds a taxonomy from a code → name map. The input map is copied.
func New(entries map[string]string) *Taxonomy {
	t := &Taxonomy{
		names: make(map[string]string, len(entries)),
		codes: make(map[string]string, len(entries)),
	}
	for code, name := range entries {
		t.names[code] = name
		t.codes[strings.ToLower(name)] = code
	}
	return t
}

// Name returns the display name for a code. Unknown codes get a synthesized
// generic label rather than an error; the taxonomy never fails a render.
func (t *Taxonomy) Name(code string) string {
	if name, ok := t.names[code]; ok {
		return name
	}
	return fmt.Sprintf("Category %s", code)
}

// Code looks up a category code by display name, case-insensitively.
func (t *Taxonomy) Code(name string) (string, bool) {
	code, ok := t.codes[strings.ToLower(name)]
	return code, ok
}

// Has reports whether the code is a known taxonomy entry.
func (t *Taxonomy) Has(code string) bool {
	_, ok := t.names[code]
	return ok
}

// Codes returns all known category codes in sorted order.
func (t *Taxonomy) Codes() []string {
	codes := make([]string, 0, len(t.names))
	for code := range t.names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
