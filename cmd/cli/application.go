package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ectokit/ectokit/cmd/cli/tasks"
	"github.com/ectokit/ectokit/internal/adapter"
	"github.com/ectokit/ectokit/internal/apps"
	"github.com/ectokit/ectokit/internal/execshell"
	"github.com/ectokit/ectokit/internal/registry"
	"github.com/ectokit/ectokit/internal/repo"
	"github.com/ectokit/ectokit/internal/repotask"
	"github.com/ectokit/ectokit/internal/utils"
	"github.com/ectokit/ectokit/internal/utils/flags"
	"github.com/ectokit/ectokit/internal/workspace"
)

const (
	applicationNameConstant             = "ectokit"
	applicationShortDescriptionConstant = "Command-line migration task helpers for ectokit repositories"
	applicationLongDescriptionConstant  = "ectokit resolves configured repositories, ensures they are compiled and " +
		"started, locates their migrations directories, and restarts dependent applications after migrations run."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	verboseFlagNameConstant                 = "verbose"
	verboseFlagUsageConstant                = "Enable debug logging."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "ECTOKIT"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "ectokit CLI executed"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	repositoryAdapterMissingTemplateConstant = "repository %s does not name a storage adapter. " +
		"Set the adapter key of its configuration"
	shellExecutorCreationErrorTemplateConstant = "unable to construct shell executor: %w"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common       ApplicationCommonConfiguration `mapstructure:"common"`
	Project      workspace.ProjectConfiguration `mapstructure:"project"`
	EctoRepos    []string                       `mapstructure:"ecto_repos"`
	Repositories []RepositoryConfiguration      `mapstructure:"repositories"`
	Tasks        tasks.Configuration            `mapstructure:"tasks"`
}

// RepositoryConfiguration pairs a dotted repository name with its settings.
// Repositories are configured as a list because dotted names collide with the
// key delimiter of the configuration loader when used as map keys.
type RepositoryConfiguration struct {
	Name     string         `mapstructure:"name"`
	Settings map[string]any `mapstructure:",remain"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	loggingController     *utils.LoggingController
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	verboseFlagValue      bool
	taskHelper            *repotask.Helper
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfiguration, _ := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	flags.AddToggleFlag(cobraCommand.PersistentFlags(), &application.verboseFlagValue, verboseFlagNameConstant, "", false, verboseFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	helperProvider := func() (*repotask.Helper, error) {
		return application.resolveTaskHelper()
	}
	taskConfigurationProvider := func() tasks.Configuration {
		return application.configuration.Tasks
	}

	migrationsPathBuilder := tasks.MigrationsPathCommandBuilder{
		LoggerProvider: loggerProvider,
		HelperProvider: helperProvider,
	}
	if migrationsPathCommand, buildError := migrationsPathBuilder.Build(); buildError == nil {
		cobraCommand.AddCommand(migrationsPathCommand)
	}

	ensureBuilder := tasks.EnsureCommandBuilder{
		LoggerProvider: loggerProvider,
		HelperProvider: helperProvider,
	}
	if ensureCommand, buildError := ensureBuilder.Build(); buildError == nil {
		cobraCommand.AddCommand(ensureCommand)
	}

	restartBuilder := tasks.RestartCommandBuilder{
		LoggerProvider:        loggerProvider,
		HelperProvider:        helperProvider,
		ConfigurationProvider: taskConfigurationProvider,
	}
	if restartCommand, buildError := restartBuilder.Build(); buildError == nil {
		cobraCommand.AddCommand(restartCommand)
	}

	editBuilder := tasks.EditCommandBuilder{
		LoggerProvider: loggerProvider,
		HelperProvider: helperProvider,
	}
	if editCommand, buildError := editBuilder.Build(); buildError == nil {
		cobraCommand.AddCommand(editCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.verboseFlagValue {
		application.configuration.Common.LogLevel = string(utils.LogLevelDebug)
	}

	logger, loggingController, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger
	application.loggingController = loggingController
	application.taskHelper = nil

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

// resolveTaskHelper builds the shared task helper from the loaded configuration,
// registering every configured repository with its storage adapter.
func (application *Application) resolveTaskHelper() (*repotask.Helper, error) {
	if application.taskHelper != nil {
		return application.taskHelper, nil
	}

	project := workspace.NewProject(application.configuration.Project)
	lifecycle := apps.NewLifecycle(application.logger)
	repositoryRegistry := registry.NewRegistry(lifecycle)

	for _, repositoryConfiguration := range application.configuration.Repositories {
		repositorySettings := adapter.Settings(repositoryConfiguration.Settings)
		adapterName, adapterConfigured := repositorySettings.AdapterName()
		if !adapterConfigured {
			return nil, fmt.Errorf(repositoryAdapterMissingTemplateConstant, repositoryConfiguration.Name)
		}
		storageAdapter, adapterError := adapter.ForName(adapterName)
		if adapterError != nil {
			return nil, adapterError
		}
		repositoryHandle := repo.New(registry.RepositoryName(repositoryConfiguration.Name), repositorySettings, storageAdapter, application.logger)
		if registerError := repositoryRegistry.Register(repositoryHandle); registerError != nil {
			return nil, registerError
		}
	}

	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, fmt.Errorf(shellExecutorCreationErrorTemplateConstant, executorError)
	}

	configuredRepositories := make([]registry.RepositoryName, 0, len(application.configuration.EctoRepos))
	for _, repositoryName := range application.configuration.EctoRepos {
		configuredRepositories = append(configuredRepositories, registry.RepositoryName(repositoryName))
	}

	application.taskHelper = &repotask.Helper{
		Logger:            application.logger,
		LoggingController: application.loggingController,
		Registry:          repositoryRegistry,
		Lifecycle:         lifecycle,
		Project:           project,
		BuildSteps: repotask.ShellBuildSteps{
			Shell:            shellExecutor,
			WorkingDirectory: project.RootDirectory(),
		},
		Shell:                  shellExecutor,
		ConfiguredRepositories: configuredRepositories,
	}
	return application.taskHelper, nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}
		if flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}
