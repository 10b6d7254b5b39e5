// SPDX-License-Identifier: MPL-2.0

package svcconfig

import (
	"errors"
	"math"
	"net/netip"
	"strconv"
	"testing"
)

func parseSnapshot(t *testing.T, doc string) *Snapshot {
	t.Helper()
	snap, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return snap
}

func TestFieldScalars(t *testing.T) {
	t.Parallel()

	snap := parseSnapshot(t, `
name = "redis"
port = 9631
ratio = 0.5
enabled = true
`)

	name, ok, err := Field[string](snap, "name")
	if err != nil || !ok || name != "redis" {
		t.Errorf("Field[string] = (%q, %v, %v), want (redis, true, nil)", name, ok, err)
	}

	port, ok, err := Field[int](snap, "port")
	if err != nil || !ok || port != 9631 {
		t.Errorf("Field[int] = (%d, %v, %v), want (9631, true, nil)", port, ok, err)
	}

	port16, ok, err := Field[uint16](snap, "port")
	if err != nil || !ok || port16 != 9631 {
		t.Errorf("Field[uint16] = (%d, %v, %v), want (9631, true, nil)", port16, ok, err)
	}

	ratio, ok, err := Field[float64](snap, "ratio")
	if err != nil || !ok || ratio != 0.5 {
		t.Errorf("Field[float64] = (%v, %v, %v), want (0.5, true, nil)", ratio, ok, err)
	}

	enabled, ok, err := Field[bool](snap, "enabled")
	if err != nil || !ok || !enabled {
		t.Errorf("Field[bool] = (%v, %v, %v), want (true, true, nil)", enabled, ok, err)
	}
}

func TestFieldAbsentIsNotAnError(t *testing.T) {
	t.Parallel()

	snap := parseSnapshot(t, `name = "redis"`)

	v, ok, err := Field[int](snap, "missing")
	if err != nil {
		t.Fatalf("Field on absent field returned error: %v", err)
	}
	if ok || v != 0 {
		t.Errorf("Field on absent field = (%d, %v), want (0, false)", v, ok)
	}
}

func TestFieldTypeMismatch(t *testing.T) {
	t.Parallel()

	snap := parseSnapshot(t, `port = "not a number"`)

	_, _, err := Field[int](snap, "port")
	if !errors.Is(err, ErrInvalidField) {
		t.Fatalf("Field type mismatch error = %v, want ErrInvalidField", err)
	}

	var typeErr *FieldTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("error type = %T, want *FieldTypeError", err)
	}
	if typeErr.Field != "port" {
		t.Errorf("FieldTypeError.Field = %q, want %q", typeErr.Field, "port")
	}
}

func TestFieldIntRange(t *testing.T) {
	t.Parallel()

	snap := FromTree(map[string]any{
		"big":   int64(math.MaxInt64),
		"small": int64(math.MinInt64),
	})

	for _, field := range []string{"big", "small"} {
		v, ok, err := Field[int](snap, field)
		if strconv.IntSize == 64 {
			if err != nil || !ok {
				t.Errorf("Field[int](%s) = (%d, %v, %v), want the full int64 range on 64-bit", field, v, ok, err)
			}
		} else if !errors.Is(err, ErrInvalidField) {
			// On 32-bit platforms out-of-range values must error, never truncate.
			t.Errorf("Field[int](%s) error = %v, want ErrInvalidField", field, err)
		}
	}

	// In-range values decode on every platform.
	fits := FromTree(map[string]any{"fits": int64(math.MaxInt32)})
	v, ok, err := Field[int](fits, "fits")
	if err != nil || !ok || v != math.MaxInt32 {
		t.Errorf("Field[int](fits) = (%d, %v, %v), want (%d, true, nil)", v, ok, err, math.MaxInt32)
	}
}

func TestFieldOr(t *testing.T) {
	t.Parallel()

	snap := parseSnapshot(t, `worker_count = 4`)

	got, err := FieldOr(snap, "worker_count", 16)
	if err != nil || got != 4 {
		t.Errorf("FieldOr(present) = (%d, %v), want (4, nil)", got, err)
	}

	got, err = FieldOr(snap, "absent", 16)
	if err != nil || got != 16 {
		t.Errorf("FieldOr(absent) = (%d, %v), want (16, nil)", got, err)
	}
}

func TestFieldSlice(t *testing.T) {
	t.Parallel()

	snap := parseSnapshot(t, `
shards = [0, 1, 2]
names = ["a", "b"]
mixed = ["a", 1]
scalar = 5
`)

	shards, ok, err := FieldSlice[uint32](snap, "shards")
	if err != nil || !ok {
		t.Fatalf("FieldSlice[uint32] = (_, %v, %v), want (true, nil)", ok, err)
	}
	if len(shards) != 3 || shards[0] != 0 || shards[2] != 2 {
		t.Errorf("FieldSlice[uint32] = %v, want [0 1 2]", shards)
	}

	names, ok, err := FieldSlice[string](snap, "names")
	if err != nil || !ok || len(names) != 2 {
		t.Errorf("FieldSlice[string] = (%v, %v, %v), want ([a b], true, nil)", names, ok, err)
	}

	if _, _, err := FieldSlice[string](snap, "mixed"); !errors.Is(err, ErrInvalidArray) {
		t.Errorf("FieldSlice on mixed array error = %v, want ErrInvalidArray", err)
	}
	if _, _, err := FieldSlice[int](snap, "scalar"); !errors.Is(err, ErrInvalidArray) {
		t.Errorf("FieldSlice on scalar error = %v, want ErrInvalidArray", err)
	}
	if _, ok, err := FieldSlice[int](snap, "absent"); ok || err != nil {
		t.Errorf("FieldSlice on absent field = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestFieldParse(t *testing.T) {
	t.Parallel()

	snap := parseSnapshot(t, `
listen = "127.0.0.1:5562"
bogus = "not-an-addr"
`)

	addr, ok, err := FieldParse(snap, "listen", netip.ParseAddrPort)
	if err != nil || !ok {
		t.Fatalf("FieldParse = (_, %v, %v), want (true, nil)", ok, err)
	}
	if addr.Port() != 5562 {
		t.Errorf("parsed port = %d, want 5562", addr.Port())
	}

	if _, _, err := FieldParse(snap, "bogus", netip.ParseAddrPort); !errors.Is(err, ErrInvalidField) {
		t.Errorf("FieldParse on bogus value error = %v, want ErrInvalidField", err)
	}
	if _, ok, err := FieldParse(snap, "absent", netip.ParseAddrPort); ok || err != nil {
		t.Errorf("FieldParse on absent field = (%v, %v), want (false, nil)", ok, err)
	}
}
