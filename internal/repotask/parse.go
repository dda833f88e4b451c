package repotask

import (
	"go.uber.org/zap"

	"github.com/ectokit/ectokit/internal/registry"
)

const (
	repoFlagLongConstant  = "--repo"
	repoFlagShortConstant = "-r"

	missingRepositoriesWarningMessageConstant = "could not find repositories for the application"
	missingRepositoriesRemediationConstant    = "avoid this warning by passing the -r flag or by setting the repositories " +
		"managed by this application under the ecto_repos key of its configuration"
	logFieldApplicationConstant = "application"
	logFieldRemediationConstant = "remediation"
)

// ParseRepo scans raw CLI tokens for --repo and -r flag pairs and returns the
// named repositories in flag order, duplicates included. When no repo flags are
// present it falls back to the repositories configured for the host application
// under the ecto_repos key; if that is empty as well it returns no repositories,
// warning once when the project appears to rely on the framework.
func (helper *Helper) ParseRepo(arguments []string) []registry.RepositoryName {
	repositoryNames := []registry.RepositoryName{}

	argumentIndex := 0
	for argumentIndex < len(arguments) {
		currentArgument := arguments[argumentIndex]
		if (currentArgument == repoFlagLongConstant || currentArgument == repoFlagShortConstant) && argumentIndex+1 < len(arguments) {
			repositoryNames = append(repositoryNames, registry.RepositoryName(arguments[argumentIndex+1]))
			argumentIndex += 2
			continue
		}
		// Unrecognized tokens are skipped; a trailing repo flag with no value
		// lands here and is dropped without an error.
		argumentIndex++
	}

	if len(repositoryNames) > 0 {
		return repositoryNames
	}

	if len(helper.ConfiguredRepositories) > 0 {
		configuredNames := make([]registry.RepositoryName, len(helper.ConfiguredRepositories))
		copy(configuredNames, helper.ConfiguredRepositories)
		return configuredNames
	}

	dependencyPresent, querySupported := helper.resolveDependencyProbe()()
	if dependencyPresent || !querySupported {
		helper.warnMissingRepositories()
	}

	return []registry.RepositoryName{}
}

func (helper *Helper) warnMissingRepositories() {
	helper.warningMutex.Lock()
	defer helper.warningMutex.Unlock()

	if helper.configurationWarningIssued {
		return
	}
	helper.configurationWarningIssued = true

	helper.resolveLogger().Warn(
		missingRepositoriesWarningMessageConstant,
		zap.String(logFieldApplicationConstant, helper.Project.Name()),
		zap.String(logFieldRemediationConstant, missingRepositoriesRemediationConstant),
	)
}
