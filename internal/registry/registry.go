package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/ectokit/ectokit/internal/adapter"
	"github.com/ectokit/ectokit/internal/apps"
)

const (
	capabilityAdapterStringConstant              = "adapter"
	capabilityMigrationsStringConstant           = "migrations"
	repositoryNotFoundTemplateConstant           = "repository %s is not registered"
	repositoryAlreadyRegisteredTemplateConstant  = "repository %s is already registered"
	capabilityMissingTemplateConstant            = "module %s does not declare the %s capability. %s"
)

// RepositoryName identifies a registered repository by its dotted module name.
type RepositoryName string

// Capability tags behavior a repository declares support for.
type Capability string

// Capabilities recognized by the migration tasks.
const (
	CapabilityAdapter    Capability = Capability(capabilityAdapterStringConstant)
	CapabilityMigrations Capability = Capability(capabilityMigrationsStringConstant)
)

// Repository is the typed handle to a configured data-access component.
type Repository interface {
	// Name returns the dotted repository name.
	Name() RepositoryName
	// Configuration returns the repository's key-value settings.
	Configuration() adapter.Settings
	// Capabilities lists the capability tags the repository declares.
	Capabilities() []Capability
	// Start launches the repository process with the requested pool size.
	Start(executionContext context.Context, poolSize int) (*ProcessHandle, error)
	// Stop shuts the repository process down.
	Stop(executionContext context.Context) error
}

// AdapterProvider marks repository handles backed by a storage adapter.
type AdapterProvider interface {
	// Adapter returns the storage adapter the repository delegates to.
	Adapter() adapter.Adapter
}

// ProcessHandle identifies a running repository process.
type ProcessHandle struct {
	RepositoryName RepositoryName
	PoolSize       int
}

// NotFoundError reports a lookup for an unregistered repository name.
type NotFoundError struct {
	RepositoryName RepositoryName
}

// Error describes the missing repository.
func (lookupError NotFoundError) Error() string {
	return fmt.Sprintf(repositoryNotFoundTemplateConstant, lookupError.RepositoryName)
}

// Registry stores repository handles by name.
type Registry struct {
	mutex        sync.RWMutex
	repositories map[RepositoryName]Repository
	lifecycle    *apps.Lifecycle
}

// NewRegistry constructs an empty repository registry bound to the supplied lifecycle ledger.
func NewRegistry(lifecycle *apps.Lifecycle) *Registry {
	return &Registry{
		repositories: map[RepositoryName]Repository{},
		lifecycle:    lifecycle,
	}
}

// Lifecycle returns the application lifecycle ledger repositories start their processes in.
func (repositoryRegistry *Registry) Lifecycle() *apps.Lifecycle {
	return repositoryRegistry.lifecycle
}

// Register stores a repository handle, rejecting duplicate names.
func (repositoryRegistry *Registry) Register(repository Repository) error {
	repositoryRegistry.mutex.Lock()
	defer repositoryRegistry.mutex.Unlock()

	repositoryName := repository.Name()
	if _, exists := repositoryRegistry.repositories[repositoryName]; exists {
		return fmt.Errorf(repositoryAlreadyRegisteredTemplateConstant, repositoryName)
	}
	repositoryRegistry.repositories[repositoryName] = repository
	return nil
}

// Lookup resolves a repository name to its handle or returns NotFoundError.
func (repositoryRegistry *Registry) Lookup(repositoryName RepositoryName) (Repository, error) {
	repositoryRegistry.mutex.RLock()
	defer repositoryRegistry.mutex.RUnlock()

	repository, exists := repositoryRegistry.repositories[repositoryName]
	if !exists {
		return nil, NotFoundError{RepositoryName: repositoryName}
	}
	return repository, nil
}

// RegisteredNames lists registered repository names in no particular order.
func (repositoryRegistry *Registry) RegisteredNames() []RepositoryName {
	repositoryRegistry.mutex.RLock()
	defer repositoryRegistry.mutex.RUnlock()

	repositoryNames := make([]RepositoryName, 0, len(repositoryRegistry.repositories))
	for repositoryName := range repositoryRegistry.repositories {
		repositoryNames = append(repositoryNames, repositoryName)
	}
	return repositoryNames
}

// EnsureImplements verifies that the repository declares the requested capability,
// returning an error carrying the supplied expectation message when it does not.
func EnsureImplements(repository Repository, capability Capability, expectationMessage string) error {
	for _, declaredCapability := range repository.Capabilities() {
		if declaredCapability == capability {
			return nil
		}
	}
	return fmt.Errorf(capabilityMissingTemplateConstant, repository.Name(), capability, expectationMessage)
}
