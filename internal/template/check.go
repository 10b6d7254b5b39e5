// SPDX-License-Identifier: MPL-2.0

package template

import (
	"bytes"
	"fmt"

	"mvdan.cc/sh/v3/syntax"
)

// CheckShell parses src as a POSIX-family shell script and reports syntax
// errors. Compiled hooks are plain executables and steward never interprets
// them itself; this is an advisory pre-flight for the common case of
// shell-scripted hooks, surfaced via the CLI's --check flag.
func CheckShell(name string, src []byte) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := parser.Parse(bytes.NewReader(src), name); err != nil {
		return fmt.Errorf("shell syntax check %q: %w", name, err)
	}
	return nil
}
