// SPDX-License-Identifier: MPL-2.0

package hook

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

type (
	// Sink receives hook output one completed line at a time, tagged with
	// the originating lifecycle event. Implementations decide where lines
	// go; the engine guarantees only that each line is flushed as soon as
	// it completes, not after the process exits.
	Sink interface {
		HookOutput(event Type, line string)
	}

	// WriterSink writes each line to W prefixed with the event name.
	WriterSink struct {
		W io.Writer
	}

	logSink struct {
		logger *log.Logger
	}

	discardSink struct{}
)

// HookOutput implements Sink.
func (s WriterSink) HookOutput(event Type, line string) {
	fmt.Fprintf(s.W, "[%s] %s\n", event, line)
}

// NewLogSink returns a Sink that emits each line through the given logger,
// with the event's canonical name as the log prefix.
func NewLogSink(logger *log.Logger) Sink {
	return logSink{logger: logger}
}

// HookOutput implements Sink.
func (s logSink) HookOutput(event Type, line string) {
	s.logger.WithPrefix(string(event)).Print(line)
}

// HookOutput implements Sink.
func (discardSink) HookOutput(Type, string) {}
