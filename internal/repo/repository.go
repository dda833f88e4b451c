package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ectokit/ectokit/internal/adapter"
	"github.com/ectokit/ectokit/internal/apps"
	"github.com/ectokit/ectokit/internal/registry"
)

const (
	defaultPoolSizeConstant                = 1
	repositoryNotStartedTemplateConstant   = "repository %s is not started"
	repositoryStartedMessageConstant       = "repository process started"
	repositoryStoppedMessageConstant       = "repository process stopped"
	logFieldRepositoryNameConstant         = "repository"
	logFieldPoolSizeConstant               = "pool_size"
)

// Repository is the standard adapter-backed repository handle.
type Repository struct {
	name           registry.RepositoryName
	settings       adapter.Settings
	storageAdapter adapter.Adapter
	logger         *zap.Logger

	mutex         sync.Mutex
	database      *bun.DB
	processHandle *registry.ProcessHandle
}

// New constructs a repository handle delegating storage to the supplied adapter.
func New(repositoryName registry.RepositoryName, settings adapter.Settings, storageAdapter adapter.Adapter, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		name:           repositoryName,
		settings:       settings,
		storageAdapter: storageAdapter,
		logger:         logger,
	}
}

// Name returns the dotted repository name.
func (repository *Repository) Name() registry.RepositoryName {
	return repository.name
}

// Configuration returns the repository's key-value settings.
func (repository *Repository) Configuration() adapter.Settings {
	return repository.settings
}

// Capabilities lists the capability tags this repository declares.
func (repository *Repository) Capabilities() []registry.Capability {
	return []registry.Capability{registry.CapabilityAdapter, registry.CapabilityMigrations}
}

// Adapter returns the storage adapter the repository delegates to.
func (repository *Repository) Adapter() adapter.Adapter {
	return repository.storageAdapter
}

// Start opens the repository's pooled database process. A non-positive pool
// size falls back to the repository's pool_size setting and then to one. A
// second start returns apps.ErrAlreadyStarted without touching the existing
// process.
func (repository *Repository) Start(executionContext context.Context, poolSize int) (*registry.ProcessHandle, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	if repository.database != nil {
		return nil, apps.ErrAlreadyStarted
	}

	if poolSize <= 0 {
		poolSize = repository.settings.PoolSize(defaultPoolSizeConstant)
	}

	database, openError := repository.storageAdapter.OpenConnection(executionContext, repository.settings, poolSize)
	if openError != nil {
		return nil, openError
	}

	repository.database = database
	repository.processHandle = &registry.ProcessHandle{RepositoryName: repository.name, PoolSize: poolSize}
	repository.logger.Debug(
		repositoryStartedMessageConstant,
		zap.String(logFieldRepositoryNameConstant, string(repository.name)),
		zap.Int(logFieldPoolSizeConstant, poolSize),
	)
	return repository.processHandle, nil
}

// Stop closes the repository's database process.
func (repository *Repository) Stop(executionContext context.Context) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	if repository.database == nil {
		return fmt.Errorf(repositoryNotStartedTemplateConstant, repository.name)
	}

	closeError := repository.database.Close()
	repository.database = nil
	repository.processHandle = nil
	if closeError != nil {
		return closeError
	}

	repository.logger.Debug(
		repositoryStoppedMessageConstant,
		zap.String(logFieldRepositoryNameConstant, string(repository.name)),
	)
	return nil
}

// Database returns the open database handle for started repositories.
func (repository *Repository) Database() (*bun.DB, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	if repository.database == nil {
		return nil, fmt.Errorf(repositoryNotStartedTemplateConstant, repository.name)
	}
	return repository.database, nil
}
