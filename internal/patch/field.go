// Package patch provides a tri-state optional value for partial updates.
package patch

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Field distinguishes an omitted value, an explicit null and a concrete value.
// The zero Field is omitted.
type Field[T any] struct {
	set   bool
	null  bool
	value T
}

// Value returns a Field holding v.
func Value[T any](v T) Field[T] { return Field[T]{set: true, value: v} }

// Null returns a Field explicitly cleared.
func Null[T any]() Field[T] { return Field[T]{set: true, null: true} }

// FromPtr maps nil to Null and a non-nil pointer to Value.
func FromPtr[T any](p *T) Field[T] {
	if p == nil {
		return Null[T]()
	}
	return Value(*p)
}

// Set reports whether the field was present at all.
func (f Field[T]) Set() bool { return f.set }

// IsNull reports whether the field was present and explicitly null.
func (f Field[T]) IsNull() bool { return f.set && f.null }

// Get returns the value and whether one is held.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.set && !f.null
}

// Ptr returns nil for null or omitted fields.
func (f Field[T]) Ptr() *T {
	if !f.set || f.null {
		return nil
	}
	v := f.value
	return &v
}

// UnmarshalJSON is only invoked for keys present in the document, which is
// what marks the field as set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
