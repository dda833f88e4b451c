package tasks_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ectokit/ectokit/cmd/cli/tasks"
	"github.com/ectokit/ectokit/internal/adapter"
	"github.com/ectokit/ectokit/internal/apps"
	"github.com/ectokit/ectokit/internal/registry"
	"github.com/ectokit/ectokit/internal/repo"
	"github.com/ectokit/ectokit/internal/repotask"
	"github.com/ectokit/ectokit/internal/utils"
	"github.com/ectokit/ectokit/internal/workspace"
)

const (
	testApplicationNameConstant = "music_db"
	testRepositoryNameConstant  = "MusicDB.Repo"
	testAdapterNameConstant     = "sqlite"
)

// newTaskHelper wires a helper around a single sqlite-backed repository rooted
// in a temporary project directory.
func newTaskHelper(testInstance *testing.T, databaseName string) *repotask.Helper {
	testInstance.Helper()

	lifecycle := apps.NewLifecycle(zap.NewNop())
	repositoryRegistry := registry.NewRegistry(lifecycle)

	repositorySettings := adapter.Settings{
		"otp_app":  testApplicationNameConstant,
		"adapter":  testAdapterNameConstant,
		"database": databaseName,
	}
	storageAdapter, adapterError := adapter.ForName(testAdapterNameConstant)
	require.NoError(testInstance, adapterError)
	require.NoError(testInstance, repositoryRegistry.Register(repo.New(testRepositoryNameConstant, repositorySettings, storageAdapter, zap.NewNop())))

	return &repotask.Helper{
		Logger:            zap.NewNop(),
		LoggingController: utils.NewLoggingController(zap.NewAtomicLevelAt(zap.InfoLevel)),
		Registry:          repositoryRegistry,
		Lifecycle:         lifecycle,
		Project: workspace.NewProject(workspace.ProjectConfiguration{
			Name:          testApplicationNameConstant,
			RootDirectory: testInstance.TempDir(),
		}),
	}
}

func staticHelperProvider(helper *repotask.Helper) tasks.HelperProvider {
	return func() (*repotask.Helper, error) {
		return helper, nil
	}
}
