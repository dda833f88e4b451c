// Package cli wires the ectokit root command, configuration loading, and logging.
package cli
