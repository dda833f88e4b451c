package apps

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const (
	startModePermanentStringConstant         = "permanent"
	startModeTemporaryStringConstant         = "temporary"
	applicationNotRegisteredTemplateConstant = "application %s is not registered"
	applicationNotStartedTemplateConstant    = "application %s is not started"
	applicationStartFailedTemplateConstant   = "could not start application %s: %w"
	applicationStopFailedTemplateConstant    = "could not stop application %s: %w"
	applicationStartedMessageConstant        = "application started"
	applicationStoppedMessageConstant        = "application stopped"
	logFieldApplicationNameConstant          = "application"
	logFieldStartModeConstant                = "start_mode"
)

// ErrAlreadyStarted reports that an application was already running when a start was requested.
var ErrAlreadyStarted = errors.New("application already started")

// ApplicationName identifies a registered application.
type ApplicationName string

// StartMode determines how an application start failure affects the caller.
type StartMode string

// Supported start modes.
const (
	StartModePermanent StartMode = StartMode(startModePermanentStringConstant)
	StartModeTemporary StartMode = StartMode(startModeTemporaryStringConstant)
)

// Application couples an application name with its start and stop behavior.
type Application struct {
	Name  ApplicationName
	Start func(executionContext context.Context) error
	Stop  func(executionContext context.Context) error
}

type startedApplication struct {
	mode StartMode
}

// Lifecycle is the in-process ledger of registered and started applications.
type Lifecycle struct {
	logger     *zap.Logger
	mutex      sync.Mutex
	registered map[ApplicationName]Application
	started    map[ApplicationName]startedApplication
	startOrder []ApplicationName
}

// NewLifecycle constructs an empty lifecycle ledger logging through the supplied logger.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{
		logger:     logger,
		registered: map[ApplicationName]Application{},
		started:    map[ApplicationName]startedApplication{},
	}
}

// Register records an application definition, replacing any previous definition under the same name.
func (lifecycle *Lifecycle) Register(application Application) {
	lifecycle.mutex.Lock()
	defer lifecycle.mutex.Unlock()
	lifecycle.registered[application.Name] = application
}

// Registered reports whether an application definition exists under the supplied name.
func (lifecycle *Lifecycle) Registered(applicationName ApplicationName) bool {
	lifecycle.mutex.Lock()
	defer lifecycle.mutex.Unlock()
	_, exists := lifecycle.registered[applicationName]
	return exists
}

// Start starts a registered application. Starting an already running application returns ErrAlreadyStarted.
func (lifecycle *Lifecycle) Start(executionContext context.Context, applicationName ApplicationName, mode StartMode) error {
	lifecycle.mutex.Lock()
	defer lifecycle.mutex.Unlock()

	application, registered := lifecycle.registered[applicationName]
	if !registered {
		return fmt.Errorf(applicationNotRegisteredTemplateConstant, applicationName)
	}

	if _, running := lifecycle.started[applicationName]; running {
		return ErrAlreadyStarted
	}

	if application.Start != nil {
		if startError := application.Start(executionContext); startError != nil {
			return fmt.Errorf(applicationStartFailedTemplateConstant, applicationName, startError)
		}
	}

	lifecycle.started[applicationName] = startedApplication{mode: mode}
	lifecycle.startOrder = append(lifecycle.startOrder, applicationName)
	lifecycle.logger.Debug(
		applicationStartedMessageConstant,
		zap.String(logFieldApplicationNameConstant, string(applicationName)),
		zap.String(logFieldStartModeConstant, string(mode)),
	)
	return nil
}

// EnsureStarted starts an application unless it is already running, treating both outcomes as success.
func (lifecycle *Lifecycle) EnsureStarted(executionContext context.Context, applicationName ApplicationName, mode StartMode) error {
	startError := lifecycle.Start(executionContext, applicationName, mode)
	if errors.Is(startError, ErrAlreadyStarted) {
		return nil
	}
	return startError
}

// Stop stops a running application and removes it from the started set.
func (lifecycle *Lifecycle) Stop(executionContext context.Context, applicationName ApplicationName) error {
	lifecycle.mutex.Lock()
	defer lifecycle.mutex.Unlock()

	if _, running := lifecycle.started[applicationName]; !running {
		return fmt.Errorf(applicationNotStartedTemplateConstant, applicationName)
	}

	application, registered := lifecycle.registered[applicationName]
	if registered && application.Stop != nil {
		if stopError := application.Stop(executionContext); stopError != nil {
			return fmt.Errorf(applicationStopFailedTemplateConstant, applicationName, stopError)
		}
	}

	delete(lifecycle.started, applicationName)
	lifecycle.startOrder = removeApplicationName(lifecycle.startOrder, applicationName)
	lifecycle.logger.Debug(
		applicationStoppedMessageConstant,
		zap.String(logFieldApplicationNameConstant, string(applicationName)),
	)
	return nil
}

// StartedApplications lists running applications in the order they started.
func (lifecycle *Lifecycle) StartedApplications() []ApplicationName {
	lifecycle.mutex.Lock()
	defer lifecycle.mutex.Unlock()

	applicationNames := make([]ApplicationName, len(lifecycle.startOrder))
	copy(applicationNames, lifecycle.startOrder)
	return applicationNames
}

// Started reports whether the named application is currently running.
func (lifecycle *Lifecycle) Started(applicationName ApplicationName) bool {
	lifecycle.mutex.Lock()
	defer lifecycle.mutex.Unlock()

	_, running := lifecycle.started[applicationName]
	return running
}

func removeApplicationName(applicationNames []ApplicationName, target ApplicationName) []ApplicationName {
	remaining := applicationNames[:0]
	for _, applicationName := range applicationNames {
		if applicationName != target {
			remaining = append(remaining, applicationName)
		}
	}
	return remaining
}
