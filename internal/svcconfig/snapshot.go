// SPDX-License-Identifier: MPL-2.0

package svcconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrConfigIO is the sentinel error wrapped by FileIOError.
	ErrConfigIO = errors.New("config file io error")
	// ErrConfigSyntax is the sentinel error wrapped by SyntaxError.
	ErrConfigSyntax = errors.New("config file syntax error")
)

type (
	// Snapshot is a point-in-time, tree-shaped service configuration
	// document. The tree holds tables as map[string]any, arrays as []any,
	// and scalars with their parsed TOML types. A Snapshot is immutable
	// once built; RenderData hands out deep copies.
	Snapshot struct {
		tree map[string]any
	}

	// FileIOError is returned when a configuration file cannot be read.
	// It wraps ErrConfigIO for errors.Is() compatibility.
	FileIOError struct {
		Path string
		Err  error
	}

	// SyntaxError is returned when a configuration document is not valid
	// TOML. It wraps ErrConfigSyntax for errors.Is() compatibility.
	SyntaxError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *FileIOError) Error() string {
	return fmt.Sprintf("read config file %q: %v", e.Path, e.Err)
}

// Unwrap returns ErrConfigIO so callers can use errors.Is.
func (e *FileIOError) Unwrap() error { return ErrConfigIO }

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse config document: %v", e.Err)
	}
	return fmt.Sprintf("parse config file %q: %v", e.Path, e.Err)
}

// Unwrap returns ErrConfigSyntax so callers can use errors.Is.
func (e *SyntaxError) Unwrap() error { return ErrConfigSyntax }

// Load reads and parses the TOML configuration file at path.
func Load(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileIOError{Path: path, Err: err}
	}
	snap, err := Parse(raw)
	if err != nil {
		var synErr *SyntaxError
		if errors.As(err, &synErr) {
			synErr.Path = path
		}
		return nil, err
	}
	return snap, nil
}

// Parse parses a TOML configuration document from raw bytes.
func Parse(raw []byte) (*Snapshot, error) {
	tree := map[string]any{}
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return nil, &SyntaxError{Err: err}
	}
	return &Snapshot{tree: tree}, nil
}

// FromTree builds a Snapshot from an already-assembled configuration tree.
// The tree is deep-copied so later caller mutations cannot leak in.
func FromTree(tree map[string]any) *Snapshot {
	copied, _ := deepCopy(tree).(map[string]any)
	if copied == nil {
		copied = map[string]any{}
	}
	return &Snapshot{tree: copied}
}

// RenderData converts the snapshot into template-rendering data: nested
// tables become nested maps, arrays become slices, scalars keep their
// parsed types. The result is a deep copy, so the renderer can never
// mutate the snapshot and the snapshot never retains render state.
func (s *Snapshot) RenderData() map[string]any {
	data, _ := deepCopy(s.tree).(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	return data
}

// Lookup resolves a dot-separated field path ("cfg.port") against the tree.
// The second return value reports whether the full path was present.
func (s *Snapshot) Lookup(field string) (any, bool) {
	if s == nil || field == "" {
		return nil, false
	}
	var cur any = s.tree
	for _, seg := range strings.Split(field, ".") {
		table, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = table[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// deepCopy clones tables and arrays recursively. Scalars are immutable and
// are returned as-is.
func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return val
	}
}
