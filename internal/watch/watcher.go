// SPDX-License-Identifier: MPL-2.0

// Package watch provides file-watching with debounced change callbacks.
//
// It monitors a fixed set of files and directories (a package's hook
// templates and the service configuration file) and invokes a callback
// after a configurable debounce period. Events within the debounce window
// are coalesced so the callback fires once with the full set of changed
// paths.
package watch

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the delay before firing the onChange callback after the
// last filesystem event, so rapid successive events (an editor writing then
// renaming a temp file) coalesce into a single callback.
const defaultDebounce = 500 * time.Millisecond

// defaultIgnores lists path patterns that never trigger callbacks. These
// cover editor swap files, OS metadata, and steward's own staged artifacts
// (dot-prefixed temp files created during compile).
var defaultIgnores = []string{
	"**/.*",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Paths are the files and directories to monitor. Directories are
		// watched non-recursively; for a file, events are filtered to that
		// exact path.
		Paths []string

		// Ignore are additional doublestar-compatible glob patterns
		// (matched against base names and full paths) for paths that
		// should never trigger callbacks. Merged with built-in defaults.
		Ignore []string

		// Debounce is the quiet period after the last event before the
		// callback fires. Zero or negative values fall back to
		// defaultDebounce.
		Debounce time.Duration

		// OnChange is called after the debounce window closes with the
		// deduplicated list of changed paths. A nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Stderr is the writer for diagnostic messages. nil defaults to
		// os.Stderr.
		Stderr io.Writer
	}

	// Watcher monitors the configured paths and fires a debounced callback
	// when they change. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		files    map[string]struct{}
		ignores  []string
		stderr   io.Writer
		debounce time.Duration
		started  atomic.Bool
	}
)

// New creates a Watcher from the given Config. Every configured path must
// exist: directories are registered directly, files via their parent
// directory with per-event filtering.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("watch: no paths configured")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)
	if err := validatePatterns(ignores); err != nil {
		fsw.Close() //nolint:errcheck // best-effort cleanup
		return nil, err
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		files:    make(map[string]struct{}),
		ignores:  ignores,
		stderr:   stderr,
		debounce: debounce,
	}

	for _, p := range cfg.Paths {
		abs, absErr := filepath.Abs(p)
		if absErr != nil {
			fsw.Close() //nolint:errcheck // best-effort cleanup
			return nil, fmt.Errorf("watch: resolve path %q: %w", p, absErr)
		}
		info, statErr := os.Stat(abs)
		if statErr != nil {
			fsw.Close() //nolint:errcheck // best-effort cleanup
			return nil, fmt.Errorf("watch: stat path %q: %w", abs, statErr)
		}
		target := abs
		if !info.IsDir() {
			// fsnotify watches directories; remember the file so events
			// can be filtered to it.
			w.files[abs] = struct{}{}
			target = filepath.Dir(abs)
		}
		if addErr := w.fsw.Add(target); addErr != nil {
			fsw.Close() //nolint:errcheck // best-effort cleanup
			return nil, fmt.Errorf("watch: add path %q: %w", target, addErr)
		}
	}

	return w, nil
}

// Run blocks until ctx is cancelled, processing filesystem events and
// dispatching debounced callbacks. It returns nil on clean context
// cancellation and propagates fatal watcher errors. Run must be called
// exactly once; a second call returns an error immediately.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire drains the pending set and invokes the OnChange callback. The
	// skip-if-busy guard prevents concurrent callback invocations when the
	// callback takes longer than the debounce period; skipped batches are
	// rescheduled so pending events are not lost.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Collect(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		slices.Sort(changed)
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				fmt.Fprintf(w.stderr, "watch: callback error: %v\n", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		localTimer := timer
		mu.Unlock()
		if localTimer != nil && !localTimer.Stop() {
			select {
			case <-localTimer.C:
			default:
			}
		}
		if closeErr := w.fsw.Close(); closeErr != nil {
			fmt.Fprintf(w.stderr, "watch: close fsnotify: %v\n", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.relevant(evt.Name) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			fmt.Fprintf(w.stderr, "watch: fsnotify error: %v\n", err)
		}
	}
}

// relevant reports whether an event path should trigger the callback:
// not ignored, and, when file paths were configured for its directory,
// one of those exact files.
func (w *Watcher) relevant(path string) bool {
	if w.isIgnored(path) {
		return false
	}
	if len(w.files) == 0 {
		return true
	}
	if _, ok := w.files[path]; ok {
		return true
	}
	// Events from directories registered as whole-directory watches are
	// still relevant; only events inside a watched file's parent must
	// match the file itself.
	dir := filepath.Dir(path)
	for f := range w.files {
		if filepath.Dir(f) == dir {
			return false
		}
	}
	return true
}

// isIgnored returns true if the path matches any ignore pattern, either by
// base name or by full slash-normalized path.
func (w *Watcher) isIgnored(path string) bool {
	normalized := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(strings.TrimPrefix(pat, "**/"), base); err == nil && matched {
			return true
		}
	}
	return false
}

// validatePatterns checks that every ignore pattern is a valid doublestar
// glob so invalid globs fail at construction time.
func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if _, err := doublestar.Match(pat, ""); err != nil {
			return fmt.Errorf("watch: invalid ignore pattern %q: %w", pat, err)
		}
	}
	return nil
}
