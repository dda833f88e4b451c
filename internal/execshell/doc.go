// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions the migration tasks
// use to run the Go toolchain and the configured editor in a testable manner.
package execshell
