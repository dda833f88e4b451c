package repotask

import (
	"fmt"

	"github.com/ectokit/ectokit/internal/registry"
	"github.com/ectokit/ectokit/internal/workspace"
)

const missingMigrationsDirectoryTemplateConstant = "could not find migrations directory %q for repo %s. " +
	"This may be because you are in a new project and the migration directory has not been created yet"

// MigrationsPath resolves the repository's migrations directory relative to the
// owning application's build output, which is where compiled tasks read
// migration scripts from.
func (helper *Helper) MigrationsPath(repository registry.Repository) (string, error) {
	settings := repository.Configuration()
	owningApplication, owningApplicationError := settings.OwningApplication()
	if owningApplicationError != nil {
		return "", owningApplicationError
	}
	privOverride, _ := settings.PrivDirectory()
	return helper.Project.BuildMigrationsDirectory(owningApplication, string(repository.Name()), privOverride), nil
}

// SourceMigrationsPath resolves the repository's migrations directory relative
// to the owning application's source tree, which is where generators write new
// migration scripts to.
func (helper *Helper) SourceMigrationsPath(repository registry.Repository) (string, error) {
	settings := repository.Configuration()
	owningApplication, owningApplicationError := settings.OwningApplication()
	if owningApplicationError != nil {
		return "", owningApplicationError
	}
	privOverride, _ := settings.PrivDirectory()
	return helper.Project.SourceMigrationsDirectory(owningApplication, string(repository.Name()), privOverride), nil
}

// EnsureMigrationsPath resolves the build-side migrations directory and verifies
// it exists. Umbrella workspaces skip the existence check because the relative
// layout of build output is not reliable there.
func (helper *Helper) EnsureMigrationsPath(repository registry.Repository) (string, error) {
	migrationsDirectory, resolveError := helper.MigrationsPath(repository)
	if resolveError != nil {
		return "", resolveError
	}

	if helper.Project.Umbrella() {
		return migrationsDirectory, nil
	}

	if verifyError := workspace.VerifyMigrationsDirectory(migrationsDirectory); verifyError != nil {
		return "", fmt.Errorf(missingMigrationsDirectoryTemplateConstant, migrationsDirectory, repository.Name())
	}
	return migrationsDirectory, nil
}
