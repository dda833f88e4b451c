// Package apps tracks the lifecycle of named framework applications.
//
// It records which applications are started, the order they started in, and
// whether each start was permanent or temporary, so migration tasks can stop
// and restart dependent applications deterministically.
package apps
