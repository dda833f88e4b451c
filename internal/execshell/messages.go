package execshell

import (
	"fmt"
	"strings"
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	unknownFailureMessageConstant           = "unknown error"

	goBuildSubcommandNameConstant       = "build"
	goModSubcommandNameConstant         = "mod"
	goBuildStartMessageConstant         = "Compiling project sources"
	goBuildSuccessMessageConstant       = "Project sources compiled"
	goModDownloadStartMessageConstant   = "Resolving project dependencies"
	goModDownloadSuccessMessageConstant = "Project dependencies resolved"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	if specializedMessage, found := formatter.describeGoCommand(command, goBuildStartMessageConstant, goModDownloadStartMessageConstant); found {
		return specializedMessage
	}
	return fmt.Sprintf(genericStartTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	if specializedMessage, found := formatter.describeGoCommand(command, goBuildSuccessMessageConstant, goModDownloadSuccessMessageConstant); found {
		return specializedMessage
	}
	return fmt.Sprintf(genericSuccessTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	standardErrorSuffix := ""
	if len(result.StandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(standardErrorSuffixTemplateConstant, result.StandardError)
	}
	return fmt.Sprintf(genericFailureTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode, standardErrorSuffix)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, formatter.formatCommandLabel(command), failureMessage)
}

func (formatter CommandMessageFormatter) describeGoCommand(command ShellCommand, buildMessage string, modDownloadMessage string) (string, bool) {
	if command.Name != ToolGo || len(command.Details.Arguments) == 0 {
		return "", false
	}
	switch command.Details.Arguments[0] {
	case goBuildSubcommandNameConstant:
		return buildMessage, true
	case goModSubcommandNameConstant:
		return modDownloadMessage, true
	default:
		return "", false
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, strings.Join(commandParts, commandArgumentsJoinSeparatorConstant), formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	if len(command.Details.WorkingDirectory) == 0 {
		return ""
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, command.Details.WorkingDirectory)
}

func commandLabel(command ShellCommand) string {
	return CommandMessageFormatter{}.formatCommandLabel(command)
}
