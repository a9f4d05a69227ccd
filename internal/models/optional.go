package models

import "encoding/json"

// Optional holds either a present value or nothing. Callers must go through
// Get, which forces the unavailable branch to be handled.
type Optional[T any] struct {
	value T
	ok    bool
}

// Present wraps v as an available value.
func Present[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// Unavailable returns an empty Optional.
func Unavailable[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool {
	return o.ok
}

// MarshalJSON encodes an unavailable value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as unavailable.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Present(v)
	return nil
}
