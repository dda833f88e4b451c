package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ectokit/ectokit/internal/registry"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testRepositoryNameConstant        = "MusicDB.Repo"
	testConfigurationContentConstant  = `common:
  log_level: info
  log_format: console
project:
  name: music_db
ecto_repos:
  - MusicDB.Repo
repositories:
  - name: MusicDB.Repo
    otp_app: music_db
    adapter: sqlite
    database: music
tasks:
  applications:
    - music_db
`
)

func writeTestConfiguration(testInstance *testing.T) string {
	testInstance.Helper()
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o644))
	return configurationPath
}

func TestEmbeddedDefaultConfigurationParses(testInstance *testing.T) {
	configurationContent, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, configurationType)
	require.NotEmpty(testInstance, configurationContent)

	parsedConfiguration := map[string]any{}
	require.NoError(testInstance, yaml.Unmarshal(configurationContent, &parsedConfiguration))
	require.Contains(testInstance, parsedConfiguration, "ecto_repos")
	require.Contains(testInstance, parsedConfiguration, "repositories")
}

func TestApplicationLoadsConfigurationFile(testInstance *testing.T) {
	configurationPath := writeTestConfiguration(testInstance)

	application := NewApplication()
	application.rootCommand.SetArgs([]string{"--config", configurationPath, "restart"})

	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, "music_db", application.configuration.Project.Name)
	require.Equal(testInstance, []string{testRepositoryNameConstant}, application.configuration.EctoRepos)
	require.Equal(testInstance, []string{"music_db"}, application.configuration.Tasks.Applications)
}

func TestResolveTaskHelperRegistersConfiguredRepositories(testInstance *testing.T) {
	application := NewApplication()
	application.logger = zap.NewNop()
	application.configuration = ApplicationConfiguration{
		EctoRepos: []string{testRepositoryNameConstant},
		Repositories: []RepositoryConfiguration{
			{
				Name: testRepositoryNameConstant,
				Settings: map[string]any{
					"otp_app":  "music_db",
					"adapter":  "sqlite",
					"database": "music",
				},
			},
		},
	}

	helper, helperError := application.resolveTaskHelper()
	require.NoError(testInstance, helperError)
	require.Equal(testInstance, []registry.RepositoryName{testRepositoryNameConstant}, helper.ConfiguredRepositories)

	repository, lookupError := helper.Registry.Lookup(testRepositoryNameConstant)
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, registry.RepositoryName(testRepositoryNameConstant), repository.Name())

	// Providers hand out the same helper on repeated calls.
	secondHelper, secondError := application.resolveTaskHelper()
	require.NoError(testInstance, secondError)
	require.Same(testInstance, helper, secondHelper)
}

func TestResolveTaskHelperRejectsRepositoriesWithoutAdapter(testInstance *testing.T) {
	application := NewApplication()
	application.logger = zap.NewNop()
	application.configuration = ApplicationConfiguration{
		Repositories: []RepositoryConfiguration{
			{Name: testRepositoryNameConstant, Settings: map[string]any{"otp_app": "music_db"}},
		},
	}

	_, helperError := application.resolveTaskHelper()
	require.Error(testInstance, helperError)
	require.Contains(testInstance, helperError.Error(), testRepositoryNameConstant)
	require.Contains(testInstance, helperError.Error(), "adapter")
}
