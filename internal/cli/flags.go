package cli

import (
	stderrors "errors"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/tui"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a general error.
	ExitError = 1
	// ExitInvalidInput indicates invalid user input.
	ExitInvalidInput = 2
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = tui.FormatText
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = tui.FormatJSON
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// Offline replaces the Notion API with the local snapshot store.
	Offline bool
	// Author overrides the configured revision author.
	Author string
}

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().BoolVar(&flags.Offline, "offline", false, "use the local snapshot store instead of the Notion API")
	cmd.PersistentFlags().StringVar(&flags.Author, "author", "", "author recorded on revisions (default: config author or $USER)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// boundFlags are the global flags also settable as NOTIONFLOW_* variables.
func boundFlags() []string {
	return []string{"output", "verbose", "quiet", "offline", "author"}
}

// BindGlobalFlags binds global flags to Viper so NOTIONFLOW_OUTPUT,
// NOTIONFLOW_OFFLINE and friends work as defaults.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Root().PersistentFlags() finds the flags even from a subcommand.
	rootFlags := cmd.Root().PersistentFlags()

	for _, name := range boundFlags() {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	return nil
}

// ApplyBoundFlags copies the resolved flag and environment values into flags.
// An explicit flag wins over the environment.
func ApplyBoundFlags(v *viper.Viper, flags *GlobalFlags) {
	flags.Output = v.GetString("output")
	flags.Verbose = v.GetBool("verbose")
	flags.Quiet = v.GetBool("quiet")
	flags.Offline = v.GetBool("offline")
	flags.Author = v.GetString("author")
	if flags.Verbose && flags.Quiet {
		flags.Quiet = false
	}
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// ExitCodeForError returns the exit code for err: ExitSuccess for nil,
// ExitInvalidInput for bad flags, arguments or values, ExitError otherwise.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.IsExitCode2Error(err) {
		return ExitInvalidInput
	}

	for _, sentinel := range []error{errors.ErrInvalidOutputFormat, errors.ErrInvalidArgument, errors.ErrEmptyValue} {
		if stderrors.Is(err, sentinel) {
			return ExitInvalidInput
		}
	}

	if isInvalidInputError(err.Error()) {
		return ExitInvalidInput
	}

	return ExitError
}

// isInvalidInputError catches Cobra's built-in flag and argument errors.
func isInvalidInputError(errMsg string) bool {
	invalidInputPatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
		"accepts ",
		"requires at least",
	}

	for _, pattern := range invalidInputPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
