// SPDX-License-Identifier: MPL-2.0

// Package template renders hook templates against service configuration data.
//
// Templates use mustache syntax and are re-read from disk on every render, so
// on-disk edits take effect on the next lifecycle event without a restart.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/cbroglie/mustache"
)

var (
	// ErrTemplateIO is the sentinel error wrapped by IOError.
	ErrTemplateIO = errors.New("template io error")
	// ErrTemplateSyntax is the sentinel error wrapped by SyntaxError.
	ErrTemplateSyntax = errors.New("template syntax error")
	// ErrTemplateRender is the sentinel error wrapped by RenderError.
	ErrTemplateRender = errors.New("template render error")
	// ErrTemplateEncoding is the sentinel error wrapped by EncodingError.
	ErrTemplateEncoding = errors.New("template encoding error")
)

type (
	// IOError is returned when a template file cannot be read.
	// It wraps ErrTemplateIO for errors.Is() compatibility.
	IOError struct {
		Path string
		Err  error
	}

	// SyntaxError is returned when a template file is not valid mustache.
	// It wraps ErrTemplateSyntax for errors.Is() compatibility.
	SyntaxError struct {
		Path string
		Err  error
	}

	// RenderError is returned when a syntactically valid template fails
	// during rendering. It wraps ErrTemplateRender for errors.Is().
	RenderError struct {
		Path string
		Err  error
	}

	// EncodingError is returned when rendered output is not valid UTF-8.
	// It wraps ErrTemplateEncoding for errors.Is() compatibility.
	EncodingError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("read template %q: %v", e.Path, e.Err)
}

// Unwrap returns ErrTemplateIO so callers can use errors.Is.
func (e *IOError) Unwrap() error { return ErrTemplateIO }

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("compile template %q: %v", e.Path, e.Err)
}

// Unwrap returns ErrTemplateSyntax so callers can use errors.Is.
func (e *SyntaxError) Unwrap() error { return ErrTemplateSyntax }

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render template %q: %v", e.Path, e.Err)
}

// Unwrap returns ErrTemplateRender so callers can use errors.Is.
func (e *RenderError) Unwrap() error { return ErrTemplateRender }

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("render template %q: output is not valid UTF-8", e.Path)
}

// Unwrap returns ErrTemplateEncoding so callers can use errors.Is.
func (e *EncodingError) Unwrap() error { return ErrTemplateEncoding }

// RenderFile reads the template at path and renders it against data. The
// file is read fresh on every call; nothing is cached between renders.
func RenderFile(path string, data map[string]any) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}

	tmpl, err := mustache.ParseString(string(raw))
	if err != nil {
		return nil, &SyntaxError{Path: path, Err: err}
	}

	var out bytes.Buffer
	if err := tmpl.FRender(&out, data); err != nil {
		return nil, &RenderError{Path: path, Err: err}
	}
	if !utf8.Valid(out.Bytes()) {
		return nil, &EncodingError{Path: path}
	}
	return out.Bytes(), nil
}
