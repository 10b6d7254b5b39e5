// SPDX-License-Identifier: MPL-2.0

// Package svcconfig holds the point-in-time service configuration snapshot
// consumed by hook compilation, plus the typed field decoding used to build
// configuration structures from it.
//
// A Snapshot is a tree of tables, arrays, and scalars parsed from a TOML
// document. The hook engine borrows a snapshot read-only for the duration of
// one template render; decoding subsystems read individual fields through the
// generic Field helpers, which implement the "parse if present, else default,
// else typed error" contract.
package svcconfig
