// SPDX-License-Identifier: MPL-2.0

package svcconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, ErrConfigIO) {
		t.Fatalf("Load() error = %v, want ErrConfigIO", err)
	}

	var fileErr *FileIOError
	if !errors.As(err, &fileErr) {
		t.Fatalf("Load() error type = %T, want *FileIOError", err)
	}
	if fileErr.Path == "" {
		t.Error("FileIOError.Path is empty, want offending path")
	}
}

func TestLoadSyntaxError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("cfg = {unclosed\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrConfigSyntax) {
		t.Fatalf("Load() error = %v, want ErrConfigSyntax", err)
	}

	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("Load() error type = %T, want *SyntaxError", err)
	}
	if synErr.Path != path {
		t.Errorf("SyntaxError.Path = %q, want %q", synErr.Path, path)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	snap, err := Parse([]byte(`
top = "level"

[cfg]
port = 9631

[cfg.nested]
flag = true
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	tests := []struct {
		field string
		want  any
		ok    bool
	}{
		{field: "top", want: "level", ok: true},
		{field: "cfg.port", want: int64(9631), ok: true},
		{field: "cfg.nested.flag", want: true, ok: true},
		{field: "cfg.absent", ok: false},
		{field: "top.not_a_table", ok: false},
		{field: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			t.Parallel()

			got, ok := snap.Lookup(tt.field)
			if ok != tt.ok {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.field, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Lookup(%q) = %v (%T), want %v (%T)", tt.field, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestRenderDataIsDeepCopy(t *testing.T) {
	t.Parallel()

	snap, err := Parse([]byte("[cfg]\nport = 9631\nmembers = [\"a\", \"b\"]\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	data := snap.RenderData()
	cfg, ok := data["cfg"].(map[string]any)
	if !ok {
		t.Fatalf("render data cfg = %T, want map[string]any", data["cfg"])
	}

	// Mutating the handed-out data must not leak back into the snapshot.
	cfg["port"] = int64(1)
	members, _ := cfg["members"].([]any)
	if len(members) > 0 {
		members[0] = "mutated"
	}

	if got, _ := snap.Lookup("cfg.port"); got != int64(9631) {
		t.Errorf("snapshot cfg.port = %v after render-data mutation, want 9631", got)
	}
	fresh := snap.RenderData()
	freshMembers := fresh["cfg"].(map[string]any)["members"].([]any)
	if freshMembers[0] != "a" {
		t.Errorf("snapshot cfg.members[0] = %v after render-data mutation, want %q", freshMembers[0], "a")
	}
}

func TestFromTreeCopies(t *testing.T) {
	t.Parallel()

	tree := map[string]any{"cfg": map[string]any{"port": int64(1)}}
	snap := FromTree(tree)

	tree["cfg"].(map[string]any)["port"] = int64(2)

	if got, _ := snap.Lookup("cfg.port"); got != int64(1) {
		t.Errorf("snapshot cfg.port = %v after source mutation, want 1", got)
	}
}
