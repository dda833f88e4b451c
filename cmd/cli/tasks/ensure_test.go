package tasks_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ectokit/ectokit/cmd/cli/tasks"
)

func TestEnsureCommandStartsRepositoryAndServices(testInstance *testing.T) {
	databasePath := filepath.Join(testInstance.TempDir(), "music")
	helper := newTaskHelper(testInstance, databasePath)

	builder := tasks.EnsureCommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		HelperProvider: staticHelperProvider(helper),
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	command.SetArgs([]string{"-r", testRepositoryNameConstant, "--pool-size", "2"})

	require.NoError(testInstance, command.Execute())

	require.True(testInstance, helper.Lifecycle.Started("ectokit"))
	require.True(testInstance, helper.Lifecycle.Started("ectokit_sql"))
	require.True(testInstance, helper.Lifecycle.Started("sqlite_driver"))

	repository, lookupError := helper.Registry.Lookup(testRepositoryNameConstant)
	require.NoError(testInstance, lookupError)
	testInstance.Cleanup(func() {
		_ = repository.Stop(context.Background())
	})

	// A second run treats the running repository as success.
	command.SetArgs([]string{"-r", testRepositoryNameConstant})
	require.NoError(testInstance, command.Execute())
}

func TestEnsureCommandFailsForUnknownRepository(testInstance *testing.T) {
	helper := newTaskHelper(testInstance, "music")

	builder := tasks.EnsureCommandBuilder{
		HelperProvider: staticHelperProvider(helper),
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	command.SetArgs([]string{"--repo", "MusicDB.MissingRepo"})

	executionError := command.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "MusicDB.MissingRepo")
	require.Contains(testInstance, executionError.Error(), "-r option")
}
