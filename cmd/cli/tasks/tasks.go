package tasks

import (
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/ectokit/ectokit/internal/repotask"
)

const (
	poolSizeFlagLongConstant             = "--pool-size"
	helperProviderMissingMessageConstant = "task helper provider not configured"
	noRepositoriesResolvedMessageConstant = "no repositories resolved. Pass a repo with the -r option " +
		"or declare repositories under the ecto_repos configuration key"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// HelperProvider supplies the shared task helper facade.
type HelperProvider func() (*repotask.Helper, error)

// Configuration holds the task settings read from the application configuration.
type Configuration struct {
	// Applications lists the applications restarted after migrations run.
	Applications []string `mapstructure:"applications"`
}

func resolveHelper(provider HelperProvider) (*repotask.Helper, error) {
	if provider == nil {
		return nil, errors.New(helperProviderMissingMessageConstant)
	}
	return provider()
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// parsePoolSize scans raw tokens for a --pool-size value. Flag parsing is
// disabled on the task commands so repo flags reach the helper untouched, which
// means numeric options are picked out of the raw sequence the same way.
func parsePoolSize(arguments []string) int {
	for argumentIndex := 0; argumentIndex+1 < len(arguments); argumentIndex++ {
		if arguments[argumentIndex] != poolSizeFlagLongConstant {
			continue
		}
		poolSize, parseError := strconv.Atoi(arguments[argumentIndex+1])
		if parseError == nil && poolSize > 0 {
			return poolSize
		}
	}
	return 0
}
