// Package tasks assembles the Cobra commands for the repository migration tasks.
package tasks
