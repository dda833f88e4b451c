package tasks

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ectokit/ectokit/internal/repotask"
)

const (
	ensureCommandUseConstant   = "ensure [--repo name] [-r name] [--no-compile] [--pool-size n]"
	ensureCommandShortConstant = "Compile, load, and start the selected repositories"
	ensureCommandLongConstant  = "ensure resolves each selected repository, triggers the dependency and compile " +
		"build steps, verifies the adapter capability, and starts the repository process together with the " +
		"service applications its storage adapter needs."
	repositoryEnsuredMessageConstant        = "repository started"
	repositoryAlreadyRunningMessageConstant = "repository already running"
	logFieldPoolSizeConstant                = "pool_size"
	logFieldServiceApplicationsConstant     = "service_applications"
)

// EnsureCommandBuilder assembles the ensure command.
type EnsureCommandBuilder struct {
	LoggerProvider LoggerProvider
	HelperProvider HelperProvider
}

// Build constructs the ensure command.
func (builder *EnsureCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:                ensureCommandUseConstant,
		Short:              ensureCommandShortConstant,
		Long:               ensureCommandLongConstant,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableFlagParsing: true,
		RunE:               builder.run,
	}
	return command, nil
}

func (builder *EnsureCommandBuilder) run(command *cobra.Command, arguments []string) error {
	helper, helperError := resolveHelper(builder.HelperProvider)
	if helperError != nil {
		return helperError
	}
	logger := resolveLogger(builder.LoggerProvider)

	repositoryNames := helper.ParseRepo(arguments)
	if len(repositoryNames) == 0 {
		return errors.New(noRepositoriesResolvedMessageConstant)
	}

	startOptions := repotask.StartOptions{PoolSize: parsePoolSize(arguments)}

	for _, repositoryName := range repositoryNames {
		repository, ensureError := helper.EnsureRepo(command.Context(), repositoryName, arguments)
		if ensureError != nil {
			return ensureError
		}

		startResult, startError := helper.EnsureStarted(command.Context(), repository, startOptions)
		if startError != nil {
			return startError
		}

		serviceApplicationNames := make([]string, 0, len(startResult.StartedApplications))
		for _, applicationName := range startResult.StartedApplications {
			serviceApplicationNames = append(serviceApplicationNames, string(applicationName))
		}

		if startResult.ProcessHandle == nil {
			logger.Info(
				repositoryAlreadyRunningMessageConstant,
				zap.String(logFieldRepositoryConstant, string(repositoryName)),
			)
			continue
		}

		logger.Info(
			repositoryEnsuredMessageConstant,
			zap.String(logFieldRepositoryConstant, string(repositoryName)),
			zap.Int(logFieldPoolSizeConstant, startResult.ProcessHandle.PoolSize),
			zap.Strings(logFieldServiceApplicationsConstant, serviceApplicationNames),
		)
	}

	return nil
}
