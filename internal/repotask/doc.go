// Package repotask implements the convenience helpers the migration commands
// are built from: resolving which repositories to operate on, making sure a
// repository is compiled and started, locating its migrations directory, and
// restarting dependent applications after migrations run.
package repotask
