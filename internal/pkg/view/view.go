// Package view holds the shared pieces of the external JSON representation:
// view options, optional fields, timestamp formatting and URL building.
package view

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultVersion is the API version used when none is given.
const DefaultVersion = 1

// Options selects the shape of a view. Output depends on nothing else.
type Options struct {
	Version  int
	Detail   bool
	Past     bool
	Messages bool
}

// APIVersion returns the version to render URLs with.
func (o Options) APIVersion() int {
	if o.Version <= 0 {
		return DefaultVersion
	}
	return o.Version
}

// Optional is a field that is omitted when unset and rendered as null when set
// to nil. Use it with the `omitzero` tag option.
type Optional[T any] struct {
	Value *T
	Set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: &v, Set: true}
}

// Null returns a set Optional holding null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// OfPtr returns a set Optional holding v, which may be nil.
func OfPtr[T any](v *T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// IsZero reports whether the field is unset.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

// MarshalJSON renders the value or null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON marks the field as set; null leaves Value nil.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// ErrInvalidTime is returned by ParseTime for unrecognized formats.
var ErrInvalidTime = errors.New("invalid time")

// FormatTime renders t in RFC 1123 form in GMT.
func FormatTime(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// FormatTimePtr renders t or returns nil.
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

// ParseTime accepts RFC 1123 (as produced by FormatTime) and RFC 3339.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := http.ParseTime(s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}
