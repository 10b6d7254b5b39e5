// SPDX-License-Identifier: MPL-2.0

package svcconfig

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidField is the sentinel error wrapped by FieldTypeError.
	ErrInvalidField = errors.New("invalid value type for field")
	// ErrInvalidArray is the sentinel error wrapped by FieldArrayError.
	ErrInvalidArray = errors.New("invalid array value for field")
)

type (
	// FieldTypeError is returned when a field is present but its value
	// cannot represent the requested type. It wraps ErrInvalidField for
	// errors.Is() compatibility.
	FieldTypeError struct {
		Field string
		Want  string
	}

	// FieldArrayError is returned when a field is expected to be an array
	// of the requested element type but is not. It wraps ErrInvalidArray
	// for errors.Is() compatibility.
	FieldArrayError struct {
		Field string
		Want  string
	}
)

// Error implements the error interface.
func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("invalid value type for field %q (want %s)", e.Field, e.Want)
}

// Unwrap returns ErrInvalidField so callers can use errors.Is.
func (e *FieldTypeError) Unwrap() error { return ErrInvalidField }

// Error implements the error interface.
func (e *FieldArrayError) Error() string {
	return fmt.Sprintf("invalid array value for field %q (want %s elements)", e.Field, e.Want)
}

// Unwrap returns ErrInvalidArray so callers can use errors.Is.
func (e *FieldArrayError) Unwrap() error { return ErrInvalidArray }

// Field decodes the value at a dot-separated field path into T. The boolean
// reports presence: an absent field yields (zero, false, nil) so callers can
// fall back to their default, while a present field of the wrong shape
// yields a FieldTypeError.
//
// Supported targets are the TOML scalar types plus the usual Go narrowings:
// string, bool, int, int64, uint16, uint32, and float64.
func Field[T any](s *Snapshot, field string) (T, bool, error) {
	var zero T
	raw, ok := s.Lookup(field)
	if !ok {
		return zero, false, nil
	}
	v, ok := coerce[T](raw)
	if !ok {
		return zero, false, &FieldTypeError{Field: field, Want: fmt.Sprintf("%T", zero)}
	}
	return v, true, nil
}

// FieldOr decodes the value at field, returning def when the field is
// absent. A present-but-mistyped field still returns a FieldTypeError.
func FieldOr[T any](s *Snapshot, field string, def T) (T, error) {
	v, ok, err := Field[T](s, field)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// FieldSlice decodes the array at field into a slice of T. Absence yields
// (nil, false, nil); a non-array value or any element of the wrong shape
// yields a FieldArrayError.
func FieldSlice[T any](s *Snapshot, field string) ([]T, bool, error) {
	raw, ok := s.Lookup(field)
	if !ok {
		return nil, false, nil
	}
	var zero T
	arr, ok := raw.([]any)
	if !ok {
		return nil, false, &FieldArrayError{Field: field, Want: fmt.Sprintf("%T", zero)}
	}
	out := make([]T, 0, len(arr))
	for _, item := range arr {
		v, ok := coerce[T](item)
		if !ok {
			return nil, false, &FieldArrayError{Field: field, Want: fmt.Sprintf("%T", zero)}
		}
		out = append(out, v)
	}
	return out, true, nil
}

// FieldParse decodes a string field through a parse function, for target
// types with a textual representation (addresses, URLs, durations). A parse
// failure is reported as a FieldTypeError carrying the target type name.
func FieldParse[T any](s *Snapshot, field string, parse func(string) (T, error)) (T, bool, error) {
	var zero T
	str, ok, err := Field[string](s, field)
	if err != nil || !ok {
		// A non-string value for a parseable field is a type error for T,
		// not for string; rewrite the Want accordingly.
		var typeErr *FieldTypeError
		if errors.As(err, &typeErr) {
			typeErr.Want = fmt.Sprintf("%T", zero)
		}
		return zero, false, err
	}
	v, err := parse(str)
	if err != nil {
		return zero, false, &FieldTypeError{Field: field, Want: fmt.Sprintf("%T", zero)}
	}
	return v, true, nil
}

// FieldParseSlice decodes a string-array field element-wise through a parse
// function. Any non-string or unparseable element yields a FieldArrayError.
func FieldParseSlice[T any](s *Snapshot, field string, parse func(string) (T, error)) ([]T, bool, error) {
	var zero T
	strs, ok, err := FieldSlice[string](s, field)
	if err != nil {
		return nil, false, &FieldArrayError{Field: field, Want: fmt.Sprintf("%T", zero)}
	}
	if !ok {
		return nil, false, nil
	}
	out := make([]T, 0, len(strs))
	for _, str := range strs {
		v, parseErr := parse(str)
		if parseErr != nil {
			return nil, false, &FieldArrayError{Field: field, Want: fmt.Sprintf("%T", zero)}
		}
		out = append(out, v)
	}
	return out, true, nil
}

// coerce converts a raw tree value into T. TOML integers arrive as int64,
// so the integral targets accept int64 with a bounds check.
func coerce[T any](raw any) (T, bool) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		s, ok := raw.(string)
		if !ok {
			return out, false
		}
		*p = s
	case *bool:
		b, ok := raw.(bool)
		if !ok {
			return out, false
		}
		*p = b
	case *int:
		n, ok := rawInt(raw)
		// int is 32 bits on some platforms; reject values that would truncate.
		if !ok || int64(int(n)) != n {
			return out, false
		}
		*p = int(n)
	case *int64:
		n, ok := rawInt(raw)
		if !ok {
			return out, false
		}
		*p = n
	case *uint16:
		n, ok := rawInt(raw)
		if !ok || n < 0 || n > math.MaxUint16 {
			return out, false
		}
		*p = uint16(n)
	case *uint32:
		n, ok := rawInt(raw)
		if !ok || n < 0 || n > math.MaxUint32 {
			return out, false
		}
		*p = uint32(n)
	case *float64:
		switch n := raw.(type) {
		case float64:
			*p = n
		case int64:
			*p = float64(n)
		default:
			return out, false
		}
	default:
		v, ok := raw.(T)
		if !ok {
			return out, false
		}
		out = v
	}
	return out, true
}

// rawInt extracts an integral value from a raw tree scalar.
func rawInt(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
