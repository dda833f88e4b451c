package repotask

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ectokit/ectokit/internal/apps"
	"github.com/ectokit/ectokit/internal/registry"
)

const (
	noCompileFlagConstant = "--no-compile"

	repositoryLoadFailedTemplateConstant = "could not load %s, error: %v. Please configure your app accordingly " +
		"or pass a repo with the -r option."
	adapterExpectationMessageConstant = "Please configure your app accordingly or pass a repo with the -r option."
	adapterNotProvidedTemplateConstant = "module %s does not expose a storage adapter. " + adapterExpectationMessageConstant
	repositoryStartFailedTemplateConstant = "could not start repo %s, error: %v"
)

// DatabaseProvider exposes the open database handle of a started repository.
type DatabaseProvider interface {
	Database() (*bun.DB, error)
}

// StartOptions tunes how EnsureStarted launches the repository process.
type StartOptions struct {
	// PoolSize overrides the connection pool size; zero keeps the default of one.
	PoolSize int
}

// StartResult reports the outcome of EnsureStarted.
type StartResult struct {
	// ProcessHandle identifies the freshly started repository process. It is nil
	// when the repository was already running before the call.
	ProcessHandle *registry.ProcessHandle
	// StartedApplications lists the service applications the storage adapter
	// started on behalf of the repository, in start order.
	StartedApplications []apps.ApplicationName
}

// EnsureRepo resolves a repository name to a loaded, adapter-backed handle. It
// runs the dependency and compile build steps first (compilation is skipped when
// the arguments carry --no-compile) and fails with remediation text when the
// repository cannot be resolved or does not declare the adapter capability.
func (helper *Helper) EnsureRepo(executionContext context.Context, repositoryName registry.RepositoryName, arguments []string) (registry.Repository, error) {
	if helper.BuildSteps != nil {
		if loadError := helper.BuildSteps.LoadPaths(executionContext, arguments); loadError != nil {
			return nil, loadError
		}
		if !containsArgument(arguments, noCompileFlagConstant) {
			if compileError := helper.BuildSteps.Compile(executionContext, arguments); compileError != nil {
				return nil, compileError
			}
		}
	}

	repository, lookupError := helper.Registry.Lookup(repositoryName)
	if lookupError != nil {
		return nil, fmt.Errorf(repositoryLoadFailedTemplateConstant, repositoryName, lookupError)
	}

	if capabilityError := registry.EnsureImplements(repository, registry.CapabilityAdapter, adapterExpectationMessageConstant); capabilityError != nil {
		return nil, capabilityError
	}
	if _, providesAdapter := repository.(registry.AdapterProvider); !providesAdapter {
		return nil, fmt.Errorf(adapterNotProvidedTemplateConstant, repositoryName)
	}

	return repository, nil
}

// EnsureStarted launches the repository process and the service applications its
// storage adapter depends on, then verifies the database connection when the
// repository exposes one. A repository that is already running is treated as
// success with a nil process handle.
func (helper *Helper) EnsureStarted(executionContext context.Context, repository registry.Repository, options StartOptions) (StartResult, error) {
	if !helper.Lifecycle.Registered(frameworkApplicationNameConstant) {
		helper.Lifecycle.Register(apps.Application{Name: frameworkApplicationNameConstant})
	}
	if frameworkStartError := helper.Lifecycle.EnsureStarted(executionContext, frameworkApplicationNameConstant, apps.StartModePermanent); frameworkStartError != nil {
		return StartResult{}, frameworkStartError
	}

	startedApplications := []apps.ApplicationName{}
	if adapterProvider, providesAdapter := repository.(registry.AdapterProvider); providesAdapter {
		adapterApplications, serviceStartError := adapterProvider.Adapter().StartServices(
			executionContext,
			helper.Lifecycle,
			repository.Configuration(),
			apps.StartModeTemporary,
		)
		if serviceStartError != nil {
			return StartResult{}, serviceStartError
		}
		startedApplications = adapterApplications
	}

	processHandle, startError := repository.Start(executionContext, options.PoolSize)
	if errors.Is(startError, apps.ErrAlreadyStarted) {
		return StartResult{StartedApplications: startedApplications}, nil
	}
	if startError != nil {
		return StartResult{}, fmt.Errorf(repositoryStartFailedTemplateConstant, repository.Name(), startError)
	}

	if databaseProvider, providesDatabase := repository.(DatabaseProvider); providesDatabase {
		if verifyError := verifyDatabaseConnection(executionContext, databaseProvider); verifyError != nil {
			return StartResult{}, fmt.Errorf(repositoryStartFailedTemplateConstant, repository.Name(), verifyError)
		}
	}

	return StartResult{ProcessHandle: processHandle, StartedApplications: startedApplications}, nil
}

func verifyDatabaseConnection(executionContext context.Context, databaseProvider DatabaseProvider) error {
	database, databaseError := databaseProvider.Database()
	if databaseError != nil {
		return databaseError
	}
	if database == nil {
		return nil
	}
	return database.PingContext(executionContext)
}

func containsArgument(arguments []string, target string) bool {
	for _, argument := range arguments {
		if argument == target {
			return true
		}
	}
	return false
}
