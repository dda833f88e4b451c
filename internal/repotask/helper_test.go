package repotask_test

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"github.com/ectokit/ectokit/internal/adapter"
	"github.com/ectokit/ectokit/internal/apps"
	"github.com/ectokit/ectokit/internal/registry"
)

const (
	testOwningApplicationNameConstant  = "music_db"
	testRepositoryNameConstant         = "MusicDB.Repo"
	testSecondRepositoryNameConstant   = "MusicDB.ReplicaRepo"
	testServiceApplicationNameConstant = "ectokit_sql"
	testDriverApplicationNameConstant  = "pq"
	testAdapterNameConstant            = "postgres"
)

type fakeBuildSteps struct {
	loadPathsCalls int
	compileCalls   int
	loadPathsError error
	compileError   error
}

func (steps *fakeBuildSteps) LoadPaths(context.Context, []string) error {
	steps.loadPathsCalls++
	return steps.loadPathsError
}

func (steps *fakeBuildSteps) Compile(context.Context, []string) error {
	steps.compileCalls++
	return steps.compileError
}

type fakeAdapter struct {
	serviceApplications []apps.ApplicationName
	startServicesError  error
}

func (storageAdapter *fakeAdapter) Name() string {
	return testAdapterNameConstant
}

func (storageAdapter *fakeAdapter) StartServices(executionContext context.Context, lifecycle *apps.Lifecycle, settings adapter.Settings, mode apps.StartMode) ([]apps.ApplicationName, error) {
	if storageAdapter.startServicesError != nil {
		return nil, storageAdapter.startServicesError
	}
	startedApplications := []apps.ApplicationName{}
	for _, applicationName := range storageAdapter.serviceApplications {
		if lifecycle.Started(applicationName) {
			continue
		}
		if !lifecycle.Registered(applicationName) {
			lifecycle.Register(apps.Application{Name: applicationName})
		}
		if startError := lifecycle.Start(executionContext, applicationName, mode); startError != nil {
			return startedApplications, startError
		}
		startedApplications = append(startedApplications, applicationName)
	}
	return startedApplications, nil
}

func (storageAdapter *fakeAdapter) OpenConnection(context.Context, adapter.Settings, int) (*bun.DB, error) {
	return nil, errors.New("fake adapter does not open connections")
}

type fakeRepository struct {
	repositoryName registry.RepositoryName
	settings       adapter.Settings
	storageAdapter adapter.Adapter
	capabilities   []registry.Capability
	startError     error
	databaseError  error
	running        bool
	startPoolSizes []int
}

func newFakeRepository(repositoryName registry.RepositoryName, settings adapter.Settings) *fakeRepository {
	return &fakeRepository{
		repositoryName: repositoryName,
		settings:       settings,
		storageAdapter: &fakeAdapter{serviceApplications: []apps.ApplicationName{testServiceApplicationNameConstant, testDriverApplicationNameConstant}},
		capabilities:   []registry.Capability{registry.CapabilityAdapter, registry.CapabilityMigrations},
	}
}

func (repository *fakeRepository) Name() registry.RepositoryName {
	return repository.repositoryName
}

func (repository *fakeRepository) Configuration() adapter.Settings {
	return repository.settings
}

func (repository *fakeRepository) Capabilities() []registry.Capability {
	return repository.capabilities
}

func (repository *fakeRepository) Adapter() adapter.Adapter {
	return repository.storageAdapter
}

func (repository *fakeRepository) Start(executionContext context.Context, poolSize int) (*registry.ProcessHandle, error) {
	if repository.running {
		return nil, apps.ErrAlreadyStarted
	}
	if repository.startError != nil {
		return nil, repository.startError
	}
	repository.running = true
	repository.startPoolSizes = append(repository.startPoolSizes, poolSize)
	return &registry.ProcessHandle{RepositoryName: repository.repositoryName, PoolSize: poolSize}, nil
}

func (repository *fakeRepository) Stop(context.Context) error {
	repository.running = false
	return nil
}

func (repository *fakeRepository) Database() (*bun.DB, error) {
	return nil, repository.databaseError
}
