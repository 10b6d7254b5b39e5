// SPDX-License-Identifier: MPL-2.0

package hook

import (
	"errors"
	"fmt"
)

// SpawnFailureCode is the exit code reported when a hook process could not
// be spawned or its output could not be captured. Real child exit statuses
// are never negative, so the value cannot collide with one.
const SpawnFailureCode = -1

var (
	// ErrHookFailed is the sentinel error wrapped by FailedError.
	ErrHookFailed = errors.New("hook failed")

	// ErrArtifactIsTemplate is returned by Compile when the destination
	// path equals the template path. The template is the package's
	// read-only source; compiling over it would make every later compile
	// re-read already-rendered output.
	ErrArtifactIsTemplate = errors.New("hook artifact path equals template path")
)

// FailedError is returned when a hook process ran and exited non-zero, or
// could not be spawned at all. It wraps ErrHookFailed for errors.Is()
// compatibility.
type FailedError struct {
	// Type is the lifecycle event whose hook failed.
	Type Type
	// Code is the child's exit status, or SpawnFailureCode when the
	// process could not be spawned or captured.
	Code int
	// Message describes the failure.
	Message string
}

// Error implements the error interface.
func (e *FailedError) Error() string {
	return fmt.Sprintf("%s hook failed with exit code %d: %s", e.Type, e.Code, e.Message)
}

// Unwrap returns ErrHookFailed so callers can use errors.Is.
func (e *FailedError) Unwrap() error { return ErrHookFailed }

// newSpawnFailure builds the generic could-not-spawn / could-not-capture
// failure for the given event.
func newSpawnFailure(t Type, msg string) *FailedError {
	return &FailedError{Type: t, Code: SpawnFailureCode, Message: msg}
}
