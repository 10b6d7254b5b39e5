// SPDX-License-Identifier: MPL-2.0

// Package pkgpath resolves the on-disk layout of an installed package.
//
// An installed package keeps its read-only payload (including hook templates)
// under its install root, while the running service owns a separate, writable
// service directory that receives the compiled hook artifacts. Both locations
// follow a fixed convention: hook templates live in <root>/hooks, compiled
// hooks in <svc>/hooks, each named after its lifecycle event.
package pkgpath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// hooksDirName is the conventional directory name for hooks on both
	// the install side and the service side.
	hooksDirName = "hooks"

	// defaultSvcDirName is the directory under the install root that
	// receives compiled artifacts when no service root is given. It must
	// be distinct from the install payload so compiled hooks can never
	// overwrite their read-only templates.
	defaultSvcDirName = "svc"
)

var (
	// ErrInvalidPackageName is the sentinel error wrapped by InvalidPackageNameError.
	ErrInvalidPackageName = errors.New("invalid package name")
	// ErrInvalidPackageRoot is the sentinel error wrapped by InvalidPackageRootError.
	ErrInvalidPackageRoot = errors.New("invalid package root")
)

type (
	// Package is a handle on one installed package's filesystem layout.
	// It performs pure path arithmetic; nothing here touches the disk.
	Package struct {
		// Name is the package name (e.g., "redis").
		Name string
		// Root is the package's read-only install directory.
		Root string
		// SvcRoot is the writable per-service state directory that owns
		// the compiled hook artifacts.
		SvcRoot string
	}

	// InvalidPackageNameError is returned when a package name is empty or
	// whitespace-only. It wraps ErrInvalidPackageName for errors.Is().
	InvalidPackageNameError struct {
		Value string
	}

	// InvalidPackageRootError is returned when a package root or service
	// root path is empty or whitespace-only. It wraps ErrInvalidPackageRoot
	// for errors.Is().
	InvalidPackageRootError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidPackageNameError) Error() string {
	return fmt.Sprintf("invalid package name %q (must be non-empty)", e.Value)
}

// Unwrap returns ErrInvalidPackageName so callers can use errors.Is.
func (e *InvalidPackageNameError) Unwrap() error { return ErrInvalidPackageName }

// Error implements the error interface.
func (e *InvalidPackageRootError) Error() string {
	return fmt.Sprintf("invalid package root %q (must be non-empty)", e.Value)
}

// Unwrap returns ErrInvalidPackageRoot so callers can use errors.Is.
func (e *InvalidPackageRootError) Unwrap() error { return ErrInvalidPackageRoot }

// New creates a Package handle for the given name, install root, and service
// root. An empty svcRoot defaults to <root>/svc, keeping compiled hooks in a
// writable directory separate from the read-only templates; a supervisor
// passes its own service directory instead.
func New(name, root, svcRoot string) (*Package, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &InvalidPackageNameError{Value: name}
	}
	if strings.TrimSpace(root) == "" {
		return nil, &InvalidPackageRootError{Value: root}
	}
	if svcRoot == "" {
		svcRoot = filepath.Join(root, defaultSvcDirName)
	}
	if strings.TrimSpace(svcRoot) == "" {
		return nil, &InvalidPackageRootError{Value: svcRoot}
	}
	return &Package{Name: name, Root: filepath.Clean(root), SvcRoot: filepath.Clean(svcRoot)}, nil
}

// FromDir creates a Package handle for a package installed at dir, deriving
// the package name from the directory's base name.
func FromDir(dir, svcRoot string) (*Package, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, &InvalidPackageRootError{Value: dir}
	}
	return New(filepath.Base(filepath.Clean(dir)), dir, svcRoot)
}

// Join joins path elements onto the package install root.
func (p *Package) Join(elem ...string) string {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = p.Root
	parts = append(parts, elem...)
	return filepath.Join(parts...)
}

// HooksDir returns the directory that holds the package's hook templates.
func (p *Package) HooksDir() string {
	return filepath.Join(p.Root, hooksDirName)
}

// HookTemplate returns the template path for the hook with the given
// canonical event name. The file may or may not exist; discovery decides.
func (p *Package) HookTemplate(name string) string {
	return filepath.Join(p.Root, hooksDirName, name)
}

// SvcHooksDir returns the service-side directory that receives compiled
// hook artifacts. Callers must ensure it exists before compiling.
func (p *Package) SvcHooksDir() string {
	return filepath.Join(p.SvcRoot, hooksDirName)
}

// HookPath returns the destination path for the compiled hook with the
// given canonical event name.
func (p *Package) HookPath(name string) string {
	return filepath.Join(p.SvcRoot, hooksDirName, name)
}
