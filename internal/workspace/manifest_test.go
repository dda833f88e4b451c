package workspace_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ectokit/ectokit/internal/workspace"
)

const (
	testManifestTemplateConstant     = "name: %s\nversion: %s\n"
	testManifestFileNameConstant     = "app.yaml"
	testFirstManifestNameConstant    = "accounts"
	testSecondManifestNameConstant   = "billing"
	testManifestVersionConstant      = "0.1.0"
	testNamelessManifestContent      = "version: 0.1.0\n"
)

func writeManifest(testInstance *testing.T, directory string, applicationName string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(directory, 0o755))
	manifestContent := fmt.Sprintf(testManifestTemplateConstant, applicationName, testManifestVersionConstant)
	require.NoError(testInstance, os.WriteFile(filepath.Join(directory, testManifestFileNameConstant), []byte(manifestContent), 0o600))
}

func TestLoadApplicationManifestRequiresName(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	manifestPath := filepath.Join(temporaryDirectory, testManifestFileNameConstant)
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(testNamelessManifestContent), 0o600))

	_, loadError := workspace.LoadApplicationManifest(manifestPath)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), manifestPath)
}

func TestDiscoverApplicationsInUmbrellaWorkspace(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	writeManifest(testInstance, filepath.Join(temporaryDirectory, "apps", testSecondManifestNameConstant), testSecondManifestNameConstant)
	writeManifest(testInstance, filepath.Join(temporaryDirectory, "apps", testFirstManifestNameConstant), testFirstManifestNameConstant)

	project := workspace.NewProject(workspace.ProjectConfiguration{
		Name:          testFirstManifestNameConstant,
		RootDirectory: temporaryDirectory,
		AppsPath:      "apps",
	})

	manifests, discoveryError := project.DiscoverApplications()
	require.NoError(testInstance, discoveryError)
	require.Len(testInstance, manifests, 2)
	require.Equal(testInstance, testFirstManifestNameConstant, manifests[0].Name)
	require.Equal(testInstance, testSecondManifestNameConstant, manifests[1].Name)
}

func TestDiscoverApplicationsInFlatProject(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	writeManifest(testInstance, temporaryDirectory, testFirstManifestNameConstant)

	project := workspace.NewProject(workspace.ProjectConfiguration{
		Name:          testFirstManifestNameConstant,
		RootDirectory: temporaryDirectory,
	})

	manifests, discoveryError := project.DiscoverApplications()
	require.NoError(testInstance, discoveryError)
	require.Len(testInstance, manifests, 1)
	require.Equal(testInstance, testFirstManifestNameConstant, manifests[0].Name)

	emptyProject := workspace.NewProject(workspace.ProjectConfiguration{RootDirectory: testInstance.TempDir()})
	emptyManifests, emptyError := emptyProject.DiscoverApplications()
	require.NoError(testInstance, emptyError)
	require.Empty(testInstance, emptyManifests)
}
