// Package workspace models the project layout migration tasks operate in:
// application source directories, the build output root, umbrella workspaces,
// and the priv directories that hold migration scripts.
package workspace
