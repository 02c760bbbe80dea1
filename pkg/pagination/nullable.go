package pagination

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Nullable is one slot of a page's item list. The API sometimes sends null in
// place of an object; such slots decode to an absent Nullable instead of failing.
type Nullable[T any] struct {
	Value T
	Valid bool
}

// Some returns a present slot holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Valid: true}
}

// None returns an absent slot.
func None[T any]() Nullable[T] {
	return Nullable[T]{}
}

// Get returns the value and whether it is present.
func (n Nullable[T]) Get() (T, bool) {
	return n.Value, n.Valid
}

// OrZero returns the value, or the zero value of T when absent.
func (n Nullable[T]) OrZero() T {
	if !n.Valid {
		var zero T
		return zero
	}
	return n.Value
}

// MarshalJSON encodes an absent slot as null.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON decodes null as an absent slot.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*n = Nullable[T]{}
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Nullable[T]{Value: v, Valid: true}
	return nil
}

// Present returns the present values of items in their original order.
// items is not modified.
func Present[T any](items []Nullable[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.Valid {
			out = append(out, item.Value)
		}
	}
	return out
}
