// Package registry resolves repository names to typed handles.
//
// Repositories register under dotted names such as MyApp.Repo; lookups return
// the registered handle or a not-found error, never a fabricated handle.
// Handles declare capability tags that callers verify before relying on
// adapter-specific behavior.
package registry
