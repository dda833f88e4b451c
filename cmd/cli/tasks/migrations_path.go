package tasks

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	migrationsPathCommandUseConstant   = "migrations-path [--repo name] [-r name] [--no-compile]"
	migrationsPathCommandShortConstant = "Print the migrations directory of the selected repositories"
	migrationsPathCommandLongConstant  = "migrations-path resolves each selected repository to its migrations " +
		"directory inside the build output, verifies the directory exists, and prints one path per line. " +
		"Repositories come from repeated --repo/-r flags or from the ecto_repos configuration key."
	migrationsPathResolvedMessageConstant = "migrations path resolved"
	logFieldRepositoryConstant            = "repository"
	logFieldMigrationsPathConstant        = "migrations_path"
)

// MigrationsPathCommandBuilder assembles the migrations-path command.
type MigrationsPathCommandBuilder struct {
	LoggerProvider LoggerProvider
	HelperProvider HelperProvider
}

// Build constructs the migrations-path command.
func (builder *MigrationsPathCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:                migrationsPathCommandUseConstant,
		Short:              migrationsPathCommandShortConstant,
		Long:               migrationsPathCommandLongConstant,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableFlagParsing: true,
		RunE:               builder.run,
	}
	return command, nil
}

func (builder *MigrationsPathCommandBuilder) run(command *cobra.Command, arguments []string) error {
	helper, helperError := resolveHelper(builder.HelperProvider)
	if helperError != nil {
		return helperError
	}
	logger := resolveLogger(builder.LoggerProvider)

	repositoryNames := helper.ParseRepo(arguments)
	if len(repositoryNames) == 0 {
		return errors.New(noRepositoriesResolvedMessageConstant)
	}

	for _, repositoryName := range repositoryNames {
		repository, ensureError := helper.EnsureRepo(command.Context(), repositoryName, arguments)
		if ensureError != nil {
			return ensureError
		}

		migrationsPath, pathError := helper.EnsureMigrationsPath(repository)
		if pathError != nil {
			return pathError
		}

		logger.Debug(
			migrationsPathResolvedMessageConstant,
			zap.String(logFieldRepositoryConstant, string(repositoryName)),
			zap.String(logFieldMigrationsPathConstant, migrationsPath),
		)
		fmt.Fprintln(command.OutOrStdout(), migrationsPath)
	}

	return nil
}
