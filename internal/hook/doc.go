// SPDX-License-Identifier: MPL-2.0

// Package hook compiles and executes package lifecycle hooks.
//
// A package opts into each lifecycle event by shipping a template named
// after the event in its hooks directory. Compiling a hook renders that
// template against the current service configuration into an executable
// artifact; running it spawns the artifact as a child process and streams
// its output line by line to an injected sink.
//
// The engine is fully synchronous: compile, spawn, stream, and wait all
// happen on the calling goroutine's call chain, and a Run hook for a
// long-lived service blocks for the service's whole lifetime. Callers that
// need concurrency or serialization of overlapping compiles own both.
package hook
