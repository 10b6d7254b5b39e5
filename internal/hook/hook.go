// SPDX-License-Identifier: MPL-2.0

package hook

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/stewardhq/steward/internal/svcconfig"
	"github.com/stewardhq/steward/internal/template"
)

const (
	// artifactMode makes the compiled artifact directly executable by its
	// owner and group.
	artifactMode = 0o770

	// DefaultGracePeriod bounds how long a cancelled hook process may
	// linger between the termination signal and the forced kill.
	DefaultGracePeriod = 5 * time.Second
)

// Hook binds one lifecycle event to a template source and a destination
// executable. The destination path is exclusively owned by this Hook for
// writing; overlapping compiles for the same event must be serialized by
// the caller.
type Hook struct {
	// Type is the lifecycle event this hook serves.
	Type Type
	// TemplatePath is the read-only template owned by the package.
	TemplatePath string
	// Path is the destination the compiled artifact is written to. Its
	// parent directory must exist before Compile is called.
	Path string
	// GracePeriod overrides DefaultGracePeriod when positive.
	GracePeriod time.Duration
}

// New creates a Hook for the given event, template source, and destination.
func New(t Type, templatePath, path string) *Hook {
	return &Hook{Type: t, TemplatePath: templatePath, Path: path}
}

// Compile produces the executable artifact at the destination path. With a
// snapshot, the template is re-read from disk, rendered against the
// snapshot's data, and written out; with a nil snapshot the template bytes
// are copied verbatim. Either way the destination is fully replaced: the
// content is staged to a temporary file in the destination directory, made
// executable for owner and group, and renamed into place so a crash
// mid-compile can never leave a half-written artifact. The destination
// must be a different path than the template; compiling over the template
// is refused with ErrArtifactIsTemplate.
func (h *Hook) Compile(snap *svcconfig.Snapshot) error {
	if h.Path == h.TemplatePath {
		return fmt.Errorf("%s hook at %q: %w", h.Type, h.Path, ErrArtifactIsTemplate)
	}
	var content []byte
	if snap != nil {
		rendered, err := template.RenderFile(h.TemplatePath, snap.RenderData())
		if err != nil {
			return err
		}
		content = rendered
	} else {
		raw, err := os.ReadFile(h.TemplatePath)
		if err != nil {
			return &template.IOError{Path: h.TemplatePath, Err: err}
		}
		content = raw
	}
	return h.writeArtifact(content)
}

// writeArtifact atomically replaces the destination with content.
func (h *Hook) writeArtifact(content []byte) error {
	dir := filepath.Dir(h.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(h.Path)+".*")
	if err != nil {
		return fmt.Errorf("stage %s hook artifact in %q: %w", h.Type, dir, err)
	}
	tmpName := tmp.Name()

	writeErr := func() error {
		if _, err := tmp.Write(content); err != nil {
			return fmt.Errorf("write %s hook artifact %q: %w", h.Type, tmpName, err)
		}
		if err := tmp.Chmod(artifactMode); err != nil {
			return fmt.Errorf("chmod %s hook artifact %q: %w", h.Type, tmpName, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("close %s hook artifact %q: %w", h.Type, tmpName, err)
		}
		if err := os.Rename(tmpName, h.Path); err != nil {
			return fmt.Errorf("replace %s hook artifact %q: %w", h.Type, h.Path, err)
		}
		return nil
	}()
	if writeErr != nil {
		tmp.Close()       //nolint:errcheck // best-effort cleanup
		os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return writeErr
	}
	return nil
}

// Execute compiles the hook and runs the resulting artifact, streaming each
// completed stdout and stderr line to sink tagged with the event name. It
// blocks until the process exits; for a Run hook of a long-lived service
// that is the service's whole lifetime.
//
// Cancelling ctx sends the process a termination signal and, after the
// grace period, a forced kill. Exit status 0 yields nil; any other status
// yields a FailedError with that exact code; a process that could not be
// spawned or captured yields a FailedError with SpawnFailureCode. Stderr
// content reaches the sink but never affects the result.
func (h *Hook) Execute(ctx context.Context, snap *svcconfig.Snapshot, sink Sink) error {
	if err := h.Compile(snap); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if sink == nil {
		sink = discardSink{}
	}

	grace := h.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	cmd := exec.CommandContext(ctx, h.Path)
	cmd.Stdin = nil
	cmd.Cancel = func() error { return terminate(cmd) }
	cmd.WaitDelay = grace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return newSpawnFailure(h.Type, "failed to capture hook stdout")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return newSpawnFailure(h.Type, "failed to capture hook stderr")
	}

	if err := cmd.Start(); err != nil {
		return newSpawnFailure(h.Type, fmt.Sprintf("failed to spawn hook: %v", err))
	}

	// Stderr drains on its own goroutine so a chatty stderr cannot stall
	// the stdout loop; its lines feed the sink and nothing else.
	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		h.streamLines(stderr, sink) //nolint:errcheck // stderr never affects the result
	}()

	streamErr := h.streamLines(stdout, sink)
	<-stderrDone

	waitErr := cmd.Wait()
	if streamErr != nil {
		return newSpawnFailure(h.Type, "failed to read hook output")
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return &FailedError{Type: h.Type, Code: exitErr.ExitCode(), Message: "hook process exited with a failure status"}
		}
		return newSpawnFailure(h.Type, fmt.Sprintf("failed to run hook: %v", waitErr))
	}
	return nil
}

// streamLines reads r incrementally and flushes each completed line to
// sink. Lines may be arbitrarily long; the buffer grows to hold them, so
// the pipe keeps draining no matter what the process writes. A trailing
// unterminated line is flushed as well, so nothing the process wrote is
// lost.
func (h *Hook) streamLines(r io.Reader, sink Sink) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			sink.HookOutput(h.Type, strings.TrimSuffix(line, "\n"))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
