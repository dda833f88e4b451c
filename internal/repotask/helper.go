package repotask

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ectokit/ectokit/internal/apps"
	"github.com/ectokit/ectokit/internal/execshell"
	"github.com/ectokit/ectokit/internal/registry"
	"github.com/ectokit/ectokit/internal/utils"
	"github.com/ectokit/ectokit/internal/workspace"
)

const (
	frameworkApplicationNameConstant = "ectokit"
	frameworkModulePathConstant      = "github.com/ectokit/ectokit"
	goModuleFileNameConstant         = "go.mod"
)

// BuildSteps triggers dependency resolution and compilation before a repository is loaded.
type BuildSteps interface {
	// LoadPaths resolves project dependencies for the supplied CLI arguments.
	LoadPaths(executionContext context.Context, arguments []string) error
	// Compile builds the project sources for the supplied CLI arguments.
	Compile(executionContext context.Context, arguments []string) error
}

// FrameworkDependencyProbe reports whether the project declares the framework
// dependency and whether the dependency query is supported at all.
type FrameworkDependencyProbe func() (dependencyPresent bool, querySupported bool)

// EnvironmentLookup resolves environment variables; it matches os.LookupEnv.
type EnvironmentLookup func(variableName string) (string, bool)

// Helper bundles the collaborators the migration task helpers operate on.
type Helper struct {
	Logger                 *zap.Logger
	LoggingController      *utils.LoggingController
	Registry               *registry.Registry
	Lifecycle              *apps.Lifecycle
	Project                *workspace.Project
	BuildSteps             BuildSteps
	Shell                  *execshell.ShellExecutor
	ConfiguredRepositories []registry.RepositoryName
	DependencyProbe        FrameworkDependencyProbe
	Environment            EnvironmentLookup

	warningMutex               sync.Mutex
	configurationWarningIssued bool
}

func (helper *Helper) resolveLogger() *zap.Logger {
	if helper.Logger != nil {
		return helper.Logger
	}
	return zap.NewNop()
}

func (helper *Helper) resolveEnvironment() EnvironmentLookup {
	if helper.Environment != nil {
		return helper.Environment
	}
	return os.LookupEnv
}

func (helper *Helper) resolveDependencyProbe() FrameworkDependencyProbe {
	if helper.DependencyProbe != nil {
		return helper.DependencyProbe
	}
	return GoModuleDependencyProbe(helper.Project.RootDirectory())
}

// GoModuleDependencyProbe inspects the go.mod file under the supplied root to
// determine whether the framework dependency is declared. An unreadable module
// file reports the dependency query itself as unsupported.
func GoModuleDependencyProbe(rootDirectory string) FrameworkDependencyProbe {
	return func() (bool, bool) {
		moduleFileContent, readError := os.ReadFile(filepath.Join(rootDirectory, goModuleFileNameConstant))
		if readError != nil {
			return false, false
		}
		return strings.Contains(string(moduleFileContent), frameworkModulePathConstant), true
	}
}

// ShellBuildSteps implements BuildSteps over the Go toolchain.
type ShellBuildSteps struct {
	Shell            *execshell.ShellExecutor
	WorkingDirectory string
}

var goModDownloadArguments = []string{"mod", "download"}
var goBuildArguments = []string{"build", "./..."}

// LoadPaths downloads the project's module dependencies.
func (steps ShellBuildSteps) LoadPaths(executionContext context.Context, arguments []string) error {
	_, executionError := steps.Shell.ExecuteGo(executionContext, execshell.CommandDetails{
		Arguments:        goModDownloadArguments,
		WorkingDirectory: steps.WorkingDirectory,
	})
	return executionError
}

// Compile builds every package in the project.
func (steps ShellBuildSteps) Compile(executionContext context.Context, arguments []string) error {
	_, executionError := steps.Shell.ExecuteGo(executionContext, execshell.CommandDetails{
		Arguments:        goBuildArguments,
		WorkingDirectory: steps.WorkingDirectory,
	})
	return executionError
}
