package headers

import (
	"bytes"
	"iter"
	"regexp"
	"slices"
	"strings"
)

// https://datatracker.ietf.org/doc/html/rfc9110#name-tokens
var fieldNameRegex = regexp.MustCompile(`^[a-zA-Z0-9!#$%&'*\+\-.^_\x60\|~]+$`)

// Headers is a case-insensitive collection of HTTP fields. Iteration follows
// the order in which field names were first added, so a response built the
// same way is always written the same way.
type Headers struct {
	order  []string
	values map[string]string
}

// NewHeaders creates an empty Headers collection.
func NewHeaders() *Headers {
	return &Headers{
		values: map[string]string{},
	}
}

func isValidFieldName(key []byte) bool {
	return fieldNameRegex.Match(key)
}

func validFieldValueByte(c byte) bool {
	switch {
	case c == '\t', c == ' ':
		return true
	case 0x21 <= c && c <= 0x7E: // VCHAR
		return true
	case c >= 0x80: // obs-text
		return true
	}
	return false
}

func isValidFieldValue(val []byte) bool {
	for _, b := range val {
		if !validFieldValueByte(b) {
			return false
		}
	}
	return true
}

func normalizeKey(key string) string {
	return strings.ToLower(key)
}

// Add appends a value to a field. Repeated fields are joined with ", ".
// Invalid names or values are dropped so they can never reach the wire.
func (h *Headers) Add(key, value string) {
	if !isValidFieldName([]byte(key)) || !isValidFieldValue([]byte(value)) {
		return
	}

	key = normalizeKey(key)
	if existing, ok := h.values[key]; ok {
		h.values[key] = existing + ", " + value
		return
	}
	h.order = append(h.order, key)
	h.values[key] = value
}

// Set replaces any existing value of a field, keeping its original position.
func (h *Headers) Set(key, value string) {
	if !isValidFieldName([]byte(key)) || !isValidFieldValue([]byte(value)) {
		return
	}

	key = normalizeKey(key)
	if _, ok := h.values[key]; !ok {
		h.order = append(h.order, key)
	}
	h.values[key] = value
}

// Get returns the value of a field, or "" if it is absent.
func (h *Headers) Get(key string) string {
	return h.values[normalizeKey(key)]
}

// Has reports whether a field is present, even with an empty value.
func (h *Headers) Has(key string) bool {
	_, ok := h.values[normalizeKey(key)]
	return ok
}

// Remove deletes a field.
func (h *Headers) Remove(key string) {
	key = normalizeKey(key)
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	h.order = slices.DeleteFunc(h.order, func(k string) bool { return k == key })
}

// All iterates over the fields in insertion order.
func (h *Headers) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range h.order {
			if !yield(k, h.values[k]) {
				return
			}
		}
	}
}

// Size returns the number of distinct fields.
func (h *Headers) Size() int {
	return len(h.order)
}

// Clone returns an independent copy.
func (h *Headers) Clone() *Headers {
	c := &Headers{
		order:  slices.Clone(h.order),
		values: make(map[string]string, len(h.values)),
	}
	for k, v := range h.values {
		c.values[k] = v
	}
	return c
}

// ParseFieldLine parses a single "name: value" line and adds it.
func (h *Headers) ParseFieldLine(data []byte) error {
	colonPos := bytes.IndexByte(data, ':')
	if colonPos == -1 {
		return ErrMalformedHeader
	}

	// a line starting with whitespace is not a field line
	// https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-8
	name := data[:colonPos]
	value := bytes.Trim(data[colonPos+1:], " \t")

	if !isValidFieldName(name) || !isValidFieldValue(value) {
		return ErrMalformedHeader
	}

	h.Add(string(name), string(value))
	return nil
}
