package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrz1836/notionflow/internal/config"
	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/ctxutil"
	"github.com/mrz1836/notionflow/internal/errors"
)

// InitFlags holds flags for the init command.
type InitFlags struct {
	WorkspaceID string
	TasksDB     string
	VersionsDB  string
	ProjectsDB  string
}

// formRunner is an interface that matches huh.Form's Run method.
type formRunner interface {
	Run() error
}

// createInitForm builds the interactive init form.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var createInitForm = defaultCreateInitForm

// stdinIsTerminal reports whether prompts can be shown.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func defaultCreateInitForm(flags *InitFlags) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tasks database ID").
				Description("The Notion database holding tasks").
				Value(&flags.TasksDB).
				Validate(validateDatabaseID),
			huh.NewInput().
				Title("Versions database ID").
				Description("The Notion database holding versions (releases)").
				Value(&flags.VersionsDB).
				Validate(validateDatabaseID),
			huh.NewInput().
				Title("Projects database ID").
				Description("The Notion database holding projects").
				Value(&flags.ProjectsDB).
				Validate(validateDatabaseID),
			huh.NewInput().
				Title("Workspace ID (optional)").
				Value(&flags.WorkspaceID),
		),
	)
}

func validateDatabaseID(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("database ID %w", errors.ErrEmptyValue)
	}
	return nil
}

// AddInitCommand adds the init command to the root command.
func AddInitCommand(root *cobra.Command, env *cmdEnv) {
	flags := &InitFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the workspace file mapping databases to their IDs",
		Long: `Write the workspace file that maps the Tasks, Versions and Projects
databases to their Notion IDs.

Missing IDs are prompted for on a terminal. Unless --offline is set, each ID
is checked against the Notion API before the file is written.

Examples:
  notionflow init --tasks-db 1a2b... --versions-db 3c4d... --projects-db 5e6f...
  notionflow init --offline --tasks-db tasks --versions-db versions --projects-db projects`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), env, flags)
		},
	}

	cmd.Flags().StringVar(&flags.WorkspaceID, "workspace-id", "", "Notion workspace ID")
	cmd.Flags().StringVar(&flags.TasksDB, "tasks-db", "", "Tasks database ID")
	cmd.Flags().StringVar(&flags.VersionsDB, "versions-db", "", "Versions database ID")
	cmd.Flags().StringVar(&flags.ProjectsDB, "projects-db", "", "Projects database ID")

	root.AddCommand(cmd)
}

type initResponse struct {
	Message   string            `json:"message"`
	Path      string            `json:"path"`
	Workspace *config.Workspace `json:"workspace"`
	Verified  map[string]string `json:"verified,omitempty"`
}

// databaseVerifier is implemented by stores that can look databases up.
type databaseVerifier interface {
	DatabaseTitle(ctx context.Context, databaseID string) (string, error)
}

func runInit(ctx context.Context, w io.Writer, env *cmdEnv, flags *InitFlags) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if err := collectInitInput(flags, env.jsonOutput()); err != nil {
		return err
	}

	ws := &config.Workspace{
		WorkspaceID: strings.TrimSpace(flags.WorkspaceID),
		Databases: map[string]string{
			constants.DatabaseTasks:    strings.TrimSpace(flags.TasksDB),
			constants.DatabaseVersions: strings.TrimSpace(flags.VersionsDB),
			constants.DatabaseProjects: strings.TrimSpace(flags.ProjectsDB),
		},
	}

	cfg, err := env.loadConfig(ctx, env.flags)
	if err != nil {
		return err
	}

	verified, err := verifyDatabases(ctx, env, cfg, ws)
	if err != nil {
		return err
	}

	path, err := cfg.WorkspacePath()
	if err != nil {
		return err
	}
	if err := config.SaveWorkspace(path, ws); err != nil {
		return err
	}

	out := env.output(w)
	msg := "workspace initialized"
	if env.jsonOutput() {
		return out.JSON(initResponse{Message: msg, Path: path, Workspace: ws, Verified: verified})
	}

	out.Success(fmt.Sprintf("%s at %s", msg, path))
	rows := make([][]string, 0, len(ws.Databases))
	for _, name := range ws.Names() {
		rows = append(rows, []string{name, ws.Databases[name], verified[name]})
	}
	out.Table([]string{"DATABASE", "ID", "TITLE"}, rows)
	return nil
}

// collectInitInput prompts for missing database IDs on a terminal. Without
// one, every ID must come from flags.
func collectInitInput(flags *InitFlags, jsonMode bool) error {
	if flags.TasksDB != "" && flags.VersionsDB != "" && flags.ProjectsDB != "" {
		return nil
	}

	if jsonMode || !stdinIsTerminal() {
		var missing []string
		for _, f := range []struct{ name, value string }{
			{"--tasks-db", flags.TasksDB},
			{"--versions-db", flags.VersionsDB},
			{"--projects-db", flags.ProjectsDB},
		} {
			if f.value == "" {
				missing = append(missing, f.name)
			}
		}
		return errors.NewExitCode2Error(fmt.Errorf("%w: missing %s", errors.ErrNonInteractiveMode, strings.Join(missing, ", ")))
	}

	if err := createInitForm(flags).Run(); err != nil {
		return fmt.Errorf("init form: %w", err)
	}
	for _, v := range []string{flags.TasksDB, flags.VersionsDB, flags.ProjectsDB} {
		if err := validateDatabaseID(v); err != nil {
			return errors.NewExitCode2Error(err)
		}
	}
	return nil
}

// verifyDatabases fetches each database title when the store supports it.
// Offline runs skip verification.
func verifyDatabases(ctx context.Context, env *cmdEnv, cfg *config.Config, ws *config.Workspace) (map[string]string, error) {
	if env.flags.Offline {
		return nil, nil
	}

	logger := GetLogger()
	st, closeStore, err := env.openStore(ctx, cfg, false, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeStore() }()

	verifier, ok := st.(databaseVerifier)
	if !ok {
		return nil, nil
	}

	titles := make(map[string]string, len(ws.Databases))
	for _, name := range ws.Names() {
		title, err := verifier.DatabaseTitle(ctx, ws.Databases[name])
		if err != nil {
			return nil, fmt.Errorf("verify %s database: %w", name, err)
		}
		titles[name] = title
		logger.Debug().Str("database", name).Str("title", title).Msg("database verified")
	}
	return titles, nil
}
