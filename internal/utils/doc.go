// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader, LoggerFactory, and LoggingController
// abstractions that integrate Viper, environment variables, and zap logging
// for the CLI.
package utils
