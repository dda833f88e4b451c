package repotask_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ectokit/ectokit/internal/adapter"
	"github.com/ectokit/ectokit/internal/apps"
	"github.com/ectokit/ectokit/internal/registry"
	"github.com/ectokit/ectokit/internal/repotask"
	"github.com/ectokit/ectokit/internal/workspace"
)

func newEnsureHelper(testInstance *testing.T) (*repotask.Helper, *fakeBuildSteps, *fakeRepository) {
	testInstance.Helper()

	lifecycle := apps.NewLifecycle(zap.NewNop())
	repositoryRegistry := registry.NewRegistry(lifecycle)
	repository := newFakeRepository(testRepositoryNameConstant, adapter.Settings{"otp_app": testOwningApplicationNameConstant})
	require.NoError(testInstance, repositoryRegistry.Register(repository))

	buildSteps := &fakeBuildSteps{}
	helper := &repotask.Helper{
		Logger:     zap.NewNop(),
		Registry:   repositoryRegistry,
		Lifecycle:  lifecycle,
		Project:    workspace.NewProject(workspace.ProjectConfiguration{Name: testOwningApplicationNameConstant}),
		BuildSteps: buildSteps,
	}
	return helper, buildSteps, repository
}

func TestEnsureRepoRunsBuildStepsAndReturnsHandle(testInstance *testing.T) {
	helper, buildSteps, _ := newEnsureHelper(testInstance)

	repository, ensureError := helper.EnsureRepo(context.Background(), testRepositoryNameConstant, []string{"migrate"})
	require.NoError(testInstance, ensureError)
	require.Equal(testInstance, registry.RepositoryName(testRepositoryNameConstant), repository.Name())
	require.Equal(testInstance, 1, buildSteps.loadPathsCalls)
	require.Equal(testInstance, 1, buildSteps.compileCalls)
}

func TestEnsureRepoSkipsCompilationWhenRequested(testInstance *testing.T) {
	helper, buildSteps, _ := newEnsureHelper(testInstance)

	_, ensureError := helper.EnsureRepo(context.Background(), testRepositoryNameConstant, []string{"migrate", "--no-compile"})
	require.NoError(testInstance, ensureError)
	require.Equal(testInstance, 1, buildSteps.loadPathsCalls)
	require.Zero(testInstance, buildSteps.compileCalls)
}

func TestEnsureRepoFailsWithRemediationForUnknownRepository(testInstance *testing.T) {
	helper, _, _ := newEnsureHelper(testInstance)

	_, ensureError := helper.EnsureRepo(context.Background(), testSecondRepositoryNameConstant, nil)
	require.Error(testInstance, ensureError)
	require.Contains(testInstance, ensureError.Error(), testSecondRepositoryNameConstant)
	require.Contains(testInstance, ensureError.Error(), "-r option")
}

func TestEnsureRepoFailsWhenAdapterCapabilityMissing(testInstance *testing.T) {
	helper, _, repository := newEnsureHelper(testInstance)
	repository.capabilities = []registry.Capability{registry.CapabilityMigrations}

	_, ensureError := helper.EnsureRepo(context.Background(), testRepositoryNameConstant, nil)
	require.Error(testInstance, ensureError)
	require.Contains(testInstance, ensureError.Error(), testRepositoryNameConstant)
	require.Contains(testInstance, ensureError.Error(), string(registry.CapabilityAdapter))
}

func TestEnsureStartedStartsFrameworkServicesAndRepository(testInstance *testing.T) {
	helper, _, repository := newEnsureHelper(testInstance)

	startResult, startError := helper.EnsureStarted(context.Background(), repository, repotask.StartOptions{})
	require.NoError(testInstance, startError)
	require.NotNil(testInstance, startResult.ProcessHandle)
	require.Equal(testInstance, []apps.ApplicationName{testServiceApplicationNameConstant, testDriverApplicationNameConstant}, startResult.StartedApplications)
	require.True(testInstance, helper.Lifecycle.Started("ectokit"))
}

func TestEnsureStartedHonorsPoolSizeOption(testInstance *testing.T) {
	helper, _, repository := newEnsureHelper(testInstance)

	startResult, startError := helper.EnsureStarted(context.Background(), repository, repotask.StartOptions{PoolSize: 4})
	require.NoError(testInstance, startError)
	require.Equal(testInstance, 4, startResult.ProcessHandle.PoolSize)
	require.Equal(testInstance, []int{4}, repository.startPoolSizes)
}

func TestEnsureStartedTreatsRunningRepositoryAsSuccess(testInstance *testing.T) {
	helper, _, repository := newEnsureHelper(testInstance)
	repository.running = true

	startResult, startError := helper.EnsureStarted(context.Background(), repository, repotask.StartOptions{})
	require.NoError(testInstance, startError)
	require.Nil(testInstance, startResult.ProcessHandle)
}

func TestEnsureStartedSurfacesRepositoryStartFailures(testInstance *testing.T) {
	helper, _, repository := newEnsureHelper(testInstance)
	repository.startError = errors.New("connection refused")

	_, startError := helper.EnsureStarted(context.Background(), repository, repotask.StartOptions{})
	require.Error(testInstance, startError)
	require.Contains(testInstance, startError.Error(), testRepositoryNameConstant)
	require.Contains(testInstance, startError.Error(), "connection refused")
}

func TestEnsureStartedSurfacesConnectionVerificationFailures(testInstance *testing.T) {
	helper, _, repository := newEnsureHelper(testInstance)
	repository.databaseError = errors.New("database handle lost")

	_, startError := helper.EnsureStarted(context.Background(), repository, repotask.StartOptions{})
	require.Error(testInstance, startError)
	require.Contains(testInstance, startError.Error(), testRepositoryNameConstant)
	require.Contains(testInstance, startError.Error(), "database handle lost")
}
