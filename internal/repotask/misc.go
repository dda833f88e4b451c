package repotask

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ectokit/ectokit/internal/execshell"
)

const (
	editorEnvironmentVariableNameConstant = "ECTO_EDITOR"
	shellCommandFlagConstant              = "-c"
	editorCommandTemplateConstant         = "%s %s"
	umbrellaViolationTemplateConstant     = "cannot run task %s from umbrella project root. " +
		"Change directory to one of the umbrella applications and try again"
)

// OpenInEditor shells out to the editor named by ECTO_EDITOR with the supplied
// path and reports whether an editor was configured. The editor command runs
// fire-and-forget; its exit status is not inspected. When the variable is unset
// or empty no command is issued and false is returned.
func (helper *Helper) OpenInEditor(executionContext context.Context, path string) bool {
	editorCommand, editorConfigured := helper.resolveEnvironment()(editorEnvironmentVariableNameConstant)
	if !editorConfigured || len(editorCommand) == 0 {
		return false
	}

	commandLine := fmt.Sprintf(editorCommandTemplateConstant, editorCommand, strconv.Quote(path))
	if helper.Shell != nil {
		_, _ = helper.Shell.ExecuteShell(executionContext, execshell.CommandDetails{
			Arguments: []string{shellCommandFlagConstant, commandLine},
		})
	}
	return true
}

// NoUmbrella fails when the named task is invoked from an umbrella workspace root.
func (helper *Helper) NoUmbrella(taskName string) error {
	if helper.Project.Umbrella() {
		return fmt.Errorf(umbrellaViolationTemplateConstant, taskName)
	}
	return nil
}
