// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// changeRecorder collects OnChange invocations for assertions.
type changeRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *changeRecorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make([]string, len(changed))
	copy(batch, changed)
	r.batches = append(r.batches, batch)
	return nil
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func (r *changeRecorder) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.batches) == 0 {
		return nil
	}
	return r.batches[len(r.batches)-1]
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestNewRequiresPaths(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Fatal("New with no paths should fail")
	}
}

func TestNewRejectsMissingPath(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := New(Config{Paths: []string{missing}}); err == nil {
		t.Fatal("New with a missing path should fail")
	}
}

func TestNewRejectsInvalidIgnorePattern(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Paths:  []string{t.TempDir()},
		Ignore: []string{"[unclosed"},
	}
	if _, err := New(cfg); err == nil {
		t.Fatal("New with an invalid ignore pattern should fail")
	}
}

func TestRunIsSingleUse(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Paths: []string{t.TempDir()}, Stderr: io.Discard})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the first Run a moment to claim the started flag
	time.Sleep(50 * time.Millisecond)
	if err := w.Run(ctx); err == nil {
		t.Error("second Run should fail")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned error on cancellation: %v", err)
	}
}

func TestWatcherDebouncesDirectoryChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := &changeRecorder{}
	w, err := New(Config{
		Paths:    []string{dir},
		Debounce: 100 * time.Millisecond,
		OnChange: rec.onChange,
		Stderr:   io.Discard,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck // cancelled at test end

	// several rapid writes should coalesce into one callback
	for i := 0; i < 3; i++ {
		name := filepath.Join(dir, "run")
		if writeErr := os.WriteFile(name, []byte("#!/bin/sh\n"), 0o644); writeErr != nil {
			t.Fatalf("write: %v", writeErr)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !waitFor(t, 3*time.Second, func() bool { return rec.count() >= 1 }) {
		t.Fatal("callback never fired")
	}
	// allow a second debounce window to elapse; no new events, no new batch
	time.Sleep(300 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Errorf("expected 1 coalesced callback, got %d", got)
	}

	changed := rec.last()
	if len(changed) != 1 || filepath.Base(changed[0]) != "run" {
		t.Errorf("unexpected changed set: %v", changed)
	}
}

func TestWatcherFiltersToWatchedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	watched := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(watched, []byte("port = 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec := &changeRecorder{}
	w, err := New(Config{
		Paths:    []string{watched},
		Debounce: 100 * time.Millisecond,
		OnChange: rec.onChange,
		Stderr:   io.Discard,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck // cancelled at test end

	// a sibling file in the same directory must not trigger the callback
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Fatalf("sibling write triggered %d callbacks", got)
	}

	if err := os.WriteFile(watched, []byte("port = 2\n"), 0o644); err != nil {
		t.Fatalf("rewrite watched: %v", err)
	}
	if !waitFor(t, 3*time.Second, func() bool { return rec.count() >= 1 }) {
		t.Fatal("watched file change never triggered the callback")
	}
}

func TestWatcherIgnoresEditorNoise(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := &changeRecorder{}
	w, err := New(Config{
		Paths:    []string{dir},
		Debounce: 100 * time.Millisecond,
		OnChange: rec.onChange,
		Stderr:   io.Discard,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck // cancelled at test end

	for _, name := range []string{".run.swp", "init~", ".DS_Store"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	time.Sleep(300 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("editor noise triggered %d callbacks: %v", got, rec.last())
	}
}

func TestWatcherCustomIgnorePattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := &changeRecorder{}
	w, err := New(Config{
		Paths:    []string{dir},
		Ignore:   []string{"**/*.bak"},
		Debounce: 100 * time.Millisecond,
		OnChange: rec.onChange,
		Stderr:   io.Discard,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck // cancelled at test end

	if err := os.WriteFile(filepath.Join(dir, "run.bak"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("ignored pattern triggered %d callbacks", got)
	}
}
