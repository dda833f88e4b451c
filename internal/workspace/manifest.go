package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	applicationManifestFileNameConstant   = "app.yaml"
	manifestReadErrorTemplateConstant     = "unable to read application manifest %s: %w"
	manifestParseErrorTemplateConstant    = "unable to parse application manifest %s: %w"
	manifestNameMissingTemplateConstant   = "application manifest %s does not declare a name"
	appsDirectoryReadErrorTemplateConstant = "unable to read applications directory %s: %w"
)

// ApplicationManifest describes one application declared inside the workspace.
type ApplicationManifest struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// LoadApplicationManifest reads and validates a single app.yaml manifest.
func LoadApplicationManifest(manifestPath string) (ApplicationManifest, error) {
	manifestContent, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return ApplicationManifest{}, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, readError)
	}

	var manifest ApplicationManifest
	if unmarshalError := yaml.Unmarshal(manifestContent, &manifest); unmarshalError != nil {
		return ApplicationManifest{}, fmt.Errorf(manifestParseErrorTemplateConstant, manifestPath, unmarshalError)
	}
	if len(manifest.Name) == 0 {
		return ApplicationManifest{}, fmt.Errorf(manifestNameMissingTemplateConstant, manifestPath)
	}
	return manifest, nil
}

// DiscoverApplications loads the manifests of every application in the workspace.
// Umbrella projects scan the apps directory; flat projects read the root manifest
// when one exists and otherwise report no manifests.
func (project *Project) DiscoverApplications() ([]ApplicationManifest, error) {
	if !project.Umbrella() {
		rootManifestPath := filepath.Join(project.rootDirectory, applicationManifestFileNameConstant)
		if _, statError := os.Stat(rootManifestPath); statError != nil {
			return nil, nil
		}
		rootManifest, loadError := LoadApplicationManifest(rootManifestPath)
		if loadError != nil {
			return nil, loadError
		}
		return []ApplicationManifest{rootManifest}, nil
	}

	appsDirectory := filepath.Join(project.rootDirectory, project.appsPath)
	directoryEntries, readError := os.ReadDir(appsDirectory)
	if readError != nil {
		return nil, fmt.Errorf(appsDirectoryReadErrorTemplateConstant, appsDirectory, readError)
	}

	manifests := []ApplicationManifest{}
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}
		manifestPath := filepath.Join(appsDirectory, directoryEntry.Name(), applicationManifestFileNameConstant)
		if _, statError := os.Stat(manifestPath); statError != nil {
			continue
		}
		manifest, loadError := LoadApplicationManifest(manifestPath)
		if loadError != nil {
			return nil, loadError
		}
		manifests = append(manifests, manifest)
	}

	sort.Slice(manifests, func(firstIndex int, secondIndex int) bool {
		return manifests[firstIndex].Name < manifests[secondIndex].Name
	})
	return manifests, nil
}
