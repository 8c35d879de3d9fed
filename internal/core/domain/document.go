package domain

import (
	"bytes"
	"encoding/json"
)

// Document is a rendered output page: a JSON object whose keys keep insertion order.
type Document struct {
	keys   []string
	values map[string]any
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: make(map[string]any)}
}

// Set stores v under key. A new key is appended; an existing key keeps its position.
func (d *Document) Set(key string, v any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// GetString returns the value under key if it is a string.
func (d *Document) GetString(key string) string {
	s, _ := d.values[key].(string)
	return s
}

// Keys returns the keys in order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Without returns a copy of the document with key removed.
func (d *Document) Without(key string) *Document {
	out := NewDocument()
	for _, k := range d.keys {
		if k != key {
			out.Set(k, d.values[k])
		}
	}
	return out
}

// MarshalJSON writes the keys in insertion order without HTML escaping.
// encoding/json re-escapes Marshaler output unless the caller encodes with
// SetEscapeHTML(false), as the document writer does.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encode(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := encode(d.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
