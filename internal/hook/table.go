// SPDX-License-Identifier: MPL-2.0

package hook

import (
	"context"
	"os"

	"github.com/stewardhq/steward/internal/svcconfig"
	"github.com/stewardhq/steward/pkg/pkgpath"
)

// Table is a per-package registry holding at most one Hook per lifecycle
// event. Which hooks exist is fixed at load time; picking up hooks added
// by a package upgrade requires loading a new table.
type Table struct {
	pkg   *pkgpath.Package
	hooks map[Type]*Hook
}

// LoadTable probes the package's hooks directory and builds the table. A
// missing hooks directory simply means the package declares no hooks; a
// slot is populated only when the event's template file exists. Whether a
// previously compiled artifact exists at the destination is irrelevant.
func LoadTable(pkg *pkgpath.Package) *Table {
	t := &Table{pkg: pkg, hooks: make(map[Type]*Hook, 4)}

	info, err := os.Stat(pkg.HooksDir())
	if err != nil || !info.IsDir() {
		return t
	}

	for _, ht := range Types() {
		tmplPath := pkg.HookTemplate(ht.String())
		if _, err := os.Stat(tmplPath); err != nil {
			continue
		}
		t.hooks[ht] = New(ht, tmplPath, pkg.HookPath(ht.String()))
	}
	return t
}

// Package returns the package this table was loaded for.
func (t *Table) Package() *pkgpath.Package { return t.pkg }

// Get returns the Hook for the given event, if the package defines one.
func (t *Table) Get(event Type) (*Hook, bool) {
	h, ok := t.hooks[event]
	return h, ok
}

// Defined returns the events that have a hook, in conventional order.
func (t *Table) Defined() []Type {
	out := make([]Type, 0, len(t.hooks))
	for _, ht := range Types() {
		if _, ok := t.hooks[ht]; ok {
			out = append(out, ht)
		}
	}
	return out
}

// Dispatch runs the hook for the given event. Packages opt into each
// lifecycle event independently, so dispatching an event with no hook is a
// silent no-op, never a failure.
func (t *Table) Dispatch(ctx context.Context, event Type, snap *svcconfig.Snapshot, sink Sink) error {
	h, ok := t.hooks[event]
	if !ok {
		return nil
	}
	return h.Execute(ctx, snap, sink)
}
