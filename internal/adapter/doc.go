// Package adapter defines the storage adapter contract repositories delegate to
// and ships Bun-backed implementations for PostgreSQL, MySQL, and SQLite.
package adapter
