package tasks

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	editCommandUseConstant   = "edit path"
	editCommandShortConstant = "Open a migration file in the configured editor"
	editCommandLongConstant  = "edit shells out to the editor named by the ECTO_EDITOR environment variable " +
		"with the supplied path. The editor's exit status is not inspected."
	editorNotConfiguredTemplateConstant = "no editor configured for %s. Set the ECTO_EDITOR environment variable " +
		"to an editor command and try again"
)

// EditCommandBuilder assembles the edit command.
type EditCommandBuilder struct {
	LoggerProvider LoggerProvider
	HelperProvider HelperProvider
}

// Build constructs the edit command.
func (builder *EditCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           editCommandUseConstant,
		Short:         editCommandShortConstant,
		Long:          editCommandLongConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ExactArgs(1),
		RunE:          builder.run,
	}
	return command, nil
}

func (builder *EditCommandBuilder) run(command *cobra.Command, arguments []string) error {
	helper, helperError := resolveHelper(builder.HelperProvider)
	if helperError != nil {
		return helperError
	}

	if !helper.OpenInEditor(command.Context(), arguments[0]) {
		return fmt.Errorf(editorNotConfiguredTemplateConstant, arguments[0])
	}
	return nil
}
