package repotask

import (
	"context"

	"github.com/ectokit/ectokit/internal/apps"
)

// RestartAppsIfMigrated restarts the supplied applications after migrations ran.
// When the migration list is empty nothing changed and nothing is restarted.
// Otherwise logging is suppressed for the duration of the restart so shutdown
// and startup noise does not drown the task output: every application is stopped
// in reverse order, then started again in the original order. Logging is
// restored even when a stop or start call fails; the first failure is returned
// after restoration and already-stopped applications are not rolled back.
func (helper *Helper) RestartAppsIfMigrated(executionContext context.Context, applicationNames []apps.ApplicationName, migrations []string) error {
	if len(migrations) == 0 {
		return nil
	}

	if helper.LoggingController != nil {
		helper.LoggingController.Suppress()
		defer helper.LoggingController.Restore()
	}

	for applicationIndex := len(applicationNames) - 1; applicationIndex >= 0; applicationIndex-- {
		if stopError := helper.Lifecycle.Stop(executionContext, applicationNames[applicationIndex]); stopError != nil {
			return stopError
		}
	}

	for _, applicationName := range applicationNames {
		if startError := helper.Lifecycle.Start(executionContext, applicationName, apps.StartModePermanent); startError != nil {
			return startError
		}
	}

	return nil
}
