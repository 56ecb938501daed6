// Package cli provides the command-line interface for notionflow.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/notionflow/internal/errors"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the logger initialized by the root command's
// PersistentPreRunE.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// It MUST only be called after the root command's PersistentPreRunE has
// executed; before that it returns a zero-value logger that discards output.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates the root command. env supplies configuration, logging
// and store construction so tests can run commands against local state.
func newRootCmd(env *cmdEnv, info BuildInfo) *cobra.Command {
	v := viper.New()
	flags := env.flags

	cmd := &cobra.Command{
		Use:   "notionflow",
		Short: "Task workflow on top of Notion databases",
		Long: `notionflow tracks tasks, versions and projects stored in Notion databases.

Tasks move Backlog → Claimed → In Progress → Completed. A task can only start
once every task it depends on is Completed. Every change is recorded in a
per-entity revision history that can be replayed and audited.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			ApplyBoundFlags(v, flags)

			if !IsValidOutputFormat(flags.Output) {
				return errors.NewExitCode2Error(
					fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats()))
			}

			logger := env.newLogger(flags.Verbose, flags.Quiet).
				With().
				Str("invocation_id", uuid.NewString()).
				Logger()

			globalLoggerMu.Lock()
			globalLogger = logger
			globalLoggerMu.Unlock()

			cmd.SetContext(logger.WithContext(cmd.Context()))
			logger.Debug().Str("command", cmd.CommandPath()).Bool("offline", flags.Offline).Msg("command started")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddInitCommand(cmd, env)
	AddConfigCommand(cmd, env)
	AddTaskCommand(cmd, env)
	AddHistoryCommand(cmd, env)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command. A failing command has its error rendered
// through the error envelope before it is returned; map it to a process
// exit code with ExitCodeForError.
func Execute(ctx context.Context, info BuildInfo) error {
	env := newCmdEnv(&GlobalFlags{})
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(env, info)
	return execute(ctx, cmd, env.flags)
}

func execute(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags) error {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		renderError(cmd.OutOrStdout(), cmd.ErrOrStderr(), flags.Output, err)
	}
	return err
}
