package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	defaultBuildDirectoryNameConstant          = "_build"
	privDirectoryNameConstant                  = "priv"
	migrationsDirectoryNameConstant            = "migrations"
	repositoryNameSeparatorConstant            = "."
	underscoreSeparatorConstant                = '_'
	migrationsDirectoryMissingTemplateConstant = "migrations directory %s does not exist"
	migrationsPathIsFileTemplateConstant       = "migrations path %s is not a directory"
)

// ProjectConfiguration carries the persisted project layout settings.
type ProjectConfiguration struct {
	Name           string `mapstructure:"name"`
	RootDirectory  string `mapstructure:"root_directory"`
	BuildDirectory string `mapstructure:"build_directory"`
	AppsPath       string `mapstructure:"apps_path"`
}

// Project describes the workspace migration tasks resolve paths against.
type Project struct {
	name           string
	rootDirectory  string
	buildDirectory string
	appsPath       string
}

// NewProject builds a Project from configuration, applying layout defaults.
func NewProject(configuration ProjectConfiguration) *Project {
	rootDirectory := configuration.RootDirectory
	if len(rootDirectory) == 0 {
		rootDirectory = "."
	}
	buildDirectory := configuration.BuildDirectory
	if len(buildDirectory) == 0 {
		buildDirectory = filepath.Join(rootDirectory, defaultBuildDirectoryNameConstant)
	}
	return &Project{
		name:           configuration.Name,
		rootDirectory:  rootDirectory,
		buildDirectory: buildDirectory,
		appsPath:       configuration.AppsPath,
	}
}

// Name returns the host application name.
func (project *Project) Name() string {
	return project.name
}

// RootDirectory returns the workspace root the project was configured with.
func (project *Project) RootDirectory() string {
	return project.rootDirectory
}

// Umbrella reports whether the project is a multi-application workspace.
func (project *Project) Umbrella() bool {
	return len(project.appsPath) > 0
}

// ApplicationSourceDirectory returns the source tree root of the named application.
func (project *Project) ApplicationSourceDirectory(applicationName string) string {
	if project.Umbrella() {
		return filepath.Join(project.rootDirectory, project.appsPath, applicationName)
	}
	return project.rootDirectory
}

// ApplicationBuildDirectory returns the build output root of the named application.
func (project *Project) ApplicationBuildDirectory(applicationName string) string {
	return filepath.Join(project.buildDirectory, applicationName)
}

// SourcePrivDirectory resolves a repository's priv directory inside the application source tree.
func (project *Project) SourcePrivDirectory(applicationName string, repositoryName string, privOverride string) string {
	return filepath.Join(project.ApplicationSourceDirectory(applicationName), relativePrivDirectory(repositoryName, privOverride))
}

// BuildPrivDirectory resolves a repository's priv directory inside the application build output.
func (project *Project) BuildPrivDirectory(applicationName string, repositoryName string, privOverride string) string {
	return filepath.Join(project.ApplicationBuildDirectory(applicationName), relativePrivDirectory(repositoryName, privOverride))
}

// SourceMigrationsDirectory resolves the migrations directory inside the application source tree.
func (project *Project) SourceMigrationsDirectory(applicationName string, repositoryName string, privOverride string) string {
	return filepath.Join(project.SourcePrivDirectory(applicationName, repositoryName, privOverride), migrationsDirectoryNameConstant)
}

// BuildMigrationsDirectory resolves the migrations directory inside the application build output.
func (project *Project) BuildMigrationsDirectory(applicationName string, repositoryName string, privOverride string) string {
	return filepath.Join(project.BuildPrivDirectory(applicationName, repositoryName, privOverride), migrationsDirectoryNameConstant)
}

// VerifyMigrationsDirectory confirms the supplied path exists and is a directory.
func VerifyMigrationsDirectory(migrationsDirectory string) error {
	directoryInformation, statError := os.Stat(migrationsDirectory)
	if statError != nil {
		return fmt.Errorf(migrationsDirectoryMissingTemplateConstant, migrationsDirectory)
	}
	if !directoryInformation.IsDir() {
		return fmt.Errorf(migrationsPathIsFileTemplateConstant, migrationsDirectory)
	}
	return nil
}

func relativePrivDirectory(repositoryName string, privOverride string) string {
	if len(privOverride) > 0 {
		return filepath.FromSlash(privOverride)
	}
	return filepath.Join(privDirectoryNameConstant, UnderscoreLastSegment(repositoryName))
}

// UnderscoreLastSegment converts the final dotted segment of a repository name
// to snake case, so MusicDB.ListenRepo resolves under priv/listen_repo.
func UnderscoreLastSegment(repositoryName string) string {
	segments := strings.Split(repositoryName, repositoryNameSeparatorConstant)
	lastSegment := segments[len(segments)-1]

	var builder strings.Builder
	runes := []rune(lastSegment)
	for runeIndex, currentRune := range runes {
		if unicode.IsUpper(currentRune) {
			previousIsLower := runeIndex > 0 && unicode.IsLower(runes[runeIndex-1])
			nextIsLower := runeIndex+1 < len(runes) && unicode.IsLower(runes[runeIndex+1])
			if runeIndex > 0 && (previousIsLower || nextIsLower) {
				builder.WriteRune(underscoreSeparatorConstant)
			}
			builder.WriteRune(unicode.ToLower(currentRune))
			continue
		}
		builder.WriteRune(currentRune)
	}
	return builder.String()
}
