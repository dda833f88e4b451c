package tasks

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ectokit/ectokit/internal/apps"
	"github.com/ectokit/ectokit/internal/workspace"
)

const (
	restartCommandUseConstant   = "restart [migration...]"
	restartCommandShortConstant = "Restart the configured applications after migrations ran"
	restartCommandLongConstant  = "restart stops the applications named under the tasks.applications configuration " +
		"key in reverse order and starts them again in the original order, suppressing console logging for the " +
		"duration. With no migration arguments nothing changed and nothing is restarted."
	noApplicationsConfiguredMessageConstant = "no applications configured for restart. " +
		"Declare them under the tasks.applications configuration key"
	applicationsRestartedMessageConstant  = "applications restarted"
	nothingToRestartMessageConstant       = "no migrations reported, nothing to restart"
	logFieldApplicationsConstant          = "applications"
	logFieldMigrationCountConstant        = "migration_count"
	undeclaredApplicationTemplateConstant = "application %s is not declared in the workspace. " +
		"Add an app.yaml manifest for it or remove it from tasks.applications"
)

// RestartCommandBuilder assembles the restart command.
type RestartCommandBuilder struct {
	LoggerProvider        LoggerProvider
	HelperProvider        HelperProvider
	ConfigurationProvider func() Configuration
}

// Build constructs the restart command.
func (builder *RestartCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           restartCommandUseConstant,
		Short:         restartCommandShortConstant,
		Long:          restartCommandLongConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          builder.run,
	}
	return command, nil
}

func (builder *RestartCommandBuilder) run(command *cobra.Command, arguments []string) error {
	helper, helperError := resolveHelper(builder.HelperProvider)
	if helperError != nil {
		return helperError
	}
	logger := resolveLogger(builder.LoggerProvider)

	applicationNames := builder.configuredApplications()
	if len(applicationNames) == 0 {
		return errors.New(noApplicationsConfiguredMessageConstant)
	}

	if len(arguments) == 0 {
		logger.Info(nothingToRestartMessageConstant)
		return nil
	}

	if validationError := validateApplicationsAgainstManifests(helper.Project, applicationNames); validationError != nil {
		return validationError
	}

	for _, applicationName := range applicationNames {
		if !helper.Lifecycle.Registered(applicationName) {
			helper.Lifecycle.Register(apps.Application{Name: applicationName})
		}
		if startError := helper.Lifecycle.EnsureStarted(command.Context(), applicationName, apps.StartModePermanent); startError != nil {
			return startError
		}
	}

	if restartError := helper.RestartAppsIfMigrated(command.Context(), applicationNames, arguments); restartError != nil {
		return restartError
	}

	logger.Info(
		applicationsRestartedMessageConstant,
		zap.Int(logFieldMigrationCountConstant, len(arguments)),
		zap.Strings(logFieldApplicationsConstant, applicationNamesAsStrings(applicationNames)),
	)
	return nil
}

func (builder *RestartCommandBuilder) configuredApplications() []apps.ApplicationName {
	if builder.ConfigurationProvider == nil {
		return nil
	}
	configuration := builder.ConfigurationProvider()
	applicationNames := make([]apps.ApplicationName, 0, len(configuration.Applications))
	for _, applicationName := range configuration.Applications {
		applicationNames = append(applicationNames, apps.ApplicationName(applicationName))
	}
	return applicationNames
}

// validateApplicationsAgainstManifests rejects configured application names the
// workspace manifests do not declare. A workspace without manifests skips the
// check because there is nothing to validate against.
func validateApplicationsAgainstManifests(project *workspace.Project, applicationNames []apps.ApplicationName) error {
	manifests, discoveryError := project.DiscoverApplications()
	if discoveryError != nil {
		return discoveryError
	}
	if len(manifests) == 0 {
		return nil
	}

	declaredApplications := make(map[string]struct{}, len(manifests))
	for _, manifest := range manifests {
		declaredApplications[manifest.Name] = struct{}{}
	}
	for _, applicationName := range applicationNames {
		if _, declared := declaredApplications[string(applicationName)]; !declared {
			return fmt.Errorf(undeclaredApplicationTemplateConstant, applicationName)
		}
	}
	return nil
}

func applicationNamesAsStrings(applicationNames []apps.ApplicationName) []string {
	stringNames := make([]string, 0, len(applicationNames))
	for _, applicationName := range applicationNames {
		stringNames = append(stringNames, string(applicationName))
	}
	return stringNames
}
