// Package repo implements the standard repository handle registered with the
// registry: a named data-access component that delegates storage to an adapter
// and owns a pooled database process.
package repo
