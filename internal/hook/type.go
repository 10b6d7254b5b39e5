// SPDX-License-Identifier: MPL-2.0

package hook

import (
	"errors"
	"fmt"
)

const (
	// Init runs once before a service starts for the first time.
	Init Type = "init"
	// HealthCheck probes a running service's health.
	HealthCheck Type = "health_check"
	// Reconfigure reacts to a configuration change.
	Reconfigure Type = "reconfigure"
	// Run is the service's main process.
	Run Type = "run"
)

// ErrInvalidType is the sentinel error wrapped by InvalidTypeError.
var ErrInvalidType = errors.New("invalid hook type")

type (
	// Type identifies a lifecycle event. The set is closed; the canonical
	// lowercase value doubles as the hook's file name under the package's
	// hooks directory and as the tag on streamed output.
	Type string

	// InvalidTypeError is returned when a Type value is not one of the
	// four lifecycle events. It wraps ErrInvalidType for errors.Is().
	InvalidTypeError struct {
		Value Type
	}
)

// Error implements the error interface.
func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid hook type %q (must be one of init, health_check, reconfigure, run)", e.Value)
}

// Unwrap returns ErrInvalidType so callers can use errors.Is.
func (e *InvalidTypeError) Unwrap() error { return ErrInvalidType }

// Types returns all lifecycle events in their conventional order.
func Types() []Type {
	return []Type{Init, HealthCheck, Reconfigure, Run}
}

// IsValid returns whether the Type is one of the four lifecycle events,
// and a list of validation errors if it is not.
func (t Type) IsValid() (bool, []error) {
	switch t {
	case Init, HealthCheck, Reconfigure, Run:
		return true, nil
	default:
		return false, []error{&InvalidTypeError{Value: t}}
	}
}

// String returns the canonical lowercase name of the lifecycle event.
func (t Type) String() string { return string(t) }

// ParseType converts a canonical event name into a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if ok, errs := t.IsValid(); !ok {
		return "", errs[0]
	}
	return t, nil
}
