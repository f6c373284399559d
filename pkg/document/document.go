// Package document holds helpers for the loosely typed JSON trees returned by
// remote describe/list calls. A document is whatever encoding/json produces
// for `any` with UseNumber: map[string]any, []any, string, json.Number, bool
// or nil.
package document

import (
	"bytes"
	"encoding/json"
	"io"

	"cloudcollector/internal/errors"
)

// ErrMalformed marks output that is not a single JSON value.
var ErrMalformed = errors.New("malformed document")

// Decode parses raw JSON. Blank input decodes to an empty object because a
// number of get-* calls succeed without printing anything.
func Decode(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode document"), ErrMalformed)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Mark(errors.New("decode document: trailing data after JSON value"), ErrMalformed)
	}
	return doc, nil
}

// ArrayAt returns doc[key] when doc is an object and the value is an array.
// The returned slice is a copy; its elements are shared with doc.
func ArrayAt(doc any, key string) ([]any, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	arr, ok := obj[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]any, len(arr))
	copy(out, arr)
	return out, true
}

// StringAt returns doc[key] when doc is an object and the value is a string.
func StringAt(doc any, key string) (string, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := obj[key].(string)
	return s, ok
}

// With returns a shallow copy of obj with fields set. obj is never modified.
func With(obj map[string]any, fields map[string]any) map[string]any {
	out := make(map[string]any, len(obj)+len(fields))
	for k, v := range obj {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Clone deep-copies objects and arrays. Scalars are immutable and returned
// as is.
func Clone(doc any) any {
	switch v := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = Clone(child)
		}
		return out
	default:
		return v
	}
}
