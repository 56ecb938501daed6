package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/domain"
	"github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/history"
	"github.com/mrz1836/notionflow/internal/tui"
)

// AddHistoryCommand adds the history command group to the root command.
func AddHistoryCommand(root *cobra.Command, env *cmdEnv) {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the change history of tasks, versions and projects",
		Long: `Inspect the change history recorded for every task, version and project
change made through notionflow.

Entity types: ` + strings.Join(entityTypes(), ", "),
	}

	addHistoryShowCommand(cmd, env)
	addHistoryRevisionCommand(cmd, env)
	addHistoryCompareCommand(cmd, env)
	addHistoryAuditCommand(cmd, env)

	root.AddCommand(cmd)
}

func entityTypes() []string {
	return []string{constants.EntityTask, constants.EntityVersion, constants.EntityProject, constants.EntityOrganization}
}

func parseEntityType(s string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(entityTypes(), t) {
		return "", errors.NewExitCode2Error(fmt.Errorf("entity type %q (want one of %s): %w",
			s, strings.Join(entityTypes(), ", "), errors.ErrInvalidArgument))
	}
	return t, nil
}

func parseRevisionNumber(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.NewExitCode2Error(fmt.Errorf("%s %q must be a non-negative integer: %w", name, s, errors.ErrInvalidArgument))
	}
	return n, nil
}

type historyResponse struct {
	Message    string            `json:"message"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Revisions  []domain.Revision `json:"revisions"`
}

func addHistoryShowCommand(parent *cobra.Command, env *cmdEnv) {
	parent.AddCommand(&cobra.Command{
		Use:     "show <entity-type> <id>",
		Short:   "List every revision of an entity, oldest first",
		Example: "  notionflow history show task 2f6c0c3e",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityType, err := parseEntityType(args[0])
			if err != nil {
				return err
			}
			id := args[1]

			return env.withApp(cmd.Context(), func(app *App) error {
				revs, err := app.Tracker.GetHistory(cmd.Context(), id, entityType)
				if err != nil {
					return err
				}
				if revs == nil {
					revs = []domain.Revision{}
				}

				msg := fmt.Sprintf("%d revision(s) of %s %s", len(revs), entityType, id)
				out := env.output(cmd.OutOrStdout())
				if env.jsonOutput() {
					return out.JSON(historyResponse{Message: msg, EntityType: entityType, EntityID: id, Revisions: revs})
				}
				if len(revs) == 0 {
					out.Info(fmt.Sprintf("no history for %s %s", entityType, id))
					return nil
				}
				out.Success(msg)
				writeRevisionTable(out, revs, false)
				return nil
			})
		},
	})
}

// writeRevisionTable prints one row per revision. withEntity adds the
// entity columns used by the audit view.
func writeRevisionTable(out tui.Output, revs []domain.Revision, withEntity bool) {
	headers := []string{"REV", "WHEN", "AUTHOR", "ACTION", "CHANGES", "REASON"}
	if withEntity {
		headers = append([]string{"TYPE", "ENTITY"}, headers...)
	}

	rows := make([][]string, 0, len(revs))
	for _, r := range revs {
		props := make([]string, 0, len(r.Changes))
		for _, c := range r.Changes {
			props = append(props, c.Property)
		}
		row := []string{
			strconv.Itoa(r.RevisionID),
			tui.RelativeTime(r.Timestamp),
			r.Author,
			r.Action(),
			tui.Truncate(strings.Join(props, ", "), titleWidth),
			r.Reason,
		}
		if withEntity {
			row = append([]string{r.EntityType, r.EntityID}, row...)
		}
		rows = append(rows, row)
	}
	out.Table(headers, rows)
}

type revisionResponse struct {
	Message    string         `json:"message"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	RevisionID int            `json:"revision_id"`
	Properties map[string]any `json:"properties"`
}

func addHistoryRevisionCommand(parent *cobra.Command, env *cmdEnv) {
	parent.AddCommand(&cobra.Command{
		Use:     "revision <entity-type> <id> <n>",
		Short:   "Reconstruct an entity's properties as of revision n",
		Example: "  notionflow history revision task 2f6c0c3e 3",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityType, err := parseEntityType(args[0])
			if err != nil {
				return err
			}
			id := args[1]
			n, err := parseRevisionNumber("revision", args[2])
			if err != nil {
				return err
			}

			return env.withApp(cmd.Context(), func(app *App) error {
				state, err := app.Tracker.GetRevision(cmd.Context(), id, entityType, n)
				if err != nil {
					return err
				}
				if state == nil {
					return fmt.Errorf("revision %d of %s %s: %w", n, entityType, id, errors.ErrNotFound)
				}

				msg := fmt.Sprintf("%s %s as of revision %d", entityType, id, n)
				out := env.output(cmd.OutOrStdout())
				if env.jsonOutput() {
					return out.JSON(revisionResponse{Message: msg, EntityType: entityType, EntityID: id, RevisionID: n, Properties: state})
				}
				out.Success(msg)
				writePropertyTable(out, state)
				return nil
			})
		},
	})
}

func writePropertyTable(out tui.Output, state map[string]any) {
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	slices.Sort(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, formatValue(state[name])})
	}
	out.Table([]string{"PROPERTY", "VALUE"}, rows)
}

// formatValue renders a plain history value for text output.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

type compareResponse struct {
	Message    string                  `json:"message"`
	EntityType string                  `json:"entity_type"`
	EntityID   string                  `json:"entity_id"`
	From       int                     `json:"from"`
	To         int                     `json:"to"`
	Changes    []domain.PropertyChange `json:"changes"`
}

func addHistoryCompareCommand(parent *cobra.Command, env *cmdEnv) {
	parent.AddCommand(&cobra.Command{
		Use:   "compare <entity-type> <id> <from> <to>",
		Short: "List the property changes made after revision from, up to and including to",
		Long: `List the property changes made after revision <from>, up to and including
revision <to>, in the order they were made. A property changed twice in the
range is listed twice.`,
		Example: "  notionflow history compare task 2f6c0c3e 1 4",
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityType, err := parseEntityType(args[0])
			if err != nil {
				return err
			}
			id := args[1]
			from, err := parseRevisionNumber("from", args[2])
			if err != nil {
				return err
			}
			to, err := parseRevisionNumber("to", args[3])
			if err != nil {
				return err
			}
			if from > to {
				return errors.NewExitCode2Error(fmt.Errorf("from %d is after to %d: %w", from, to, errors.ErrInvalidArgument))
			}

			return env.withApp(cmd.Context(), func(app *App) error {
				changes, err := app.Tracker.CompareRevisions(cmd.Context(), id, entityType, from, to)
				if err != nil {
					return err
				}

				msg := fmt.Sprintf("%d change(s) to %s %s between revisions %d and %d", len(changes), entityType, id, from, to)
				out := env.output(cmd.OutOrStdout())
				if env.jsonOutput() {
					return out.JSON(compareResponse{Message: msg, EntityType: entityType, EntityID: id, From: from, To: to, Changes: changes})
				}
				out.Success(msg)
				writeChangeTable(out, changes)
				return nil
			})
		},
	})
}

func writeChangeTable(out tui.Output, changes []domain.PropertyChange) {
	if len(changes) == 0 {
		return
	}
	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, []string{c.Property, formatValue(c.From), formatValue(c.To)})
	}
	out.Table([]string{"PROPERTY", "FROM", "TO"}, rows)
}

type auditFlags struct {
	days       int
	entityType string
	project    string
}

type auditResponse struct {
	Message string `json:"message"`
	*domain.AuditLog
}

func addHistoryAuditCommand(parent *cobra.Command, env *cmdEnv) {
	flags := &auditFlags{}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent revisions across all entities, newest first",
		Example: `  notionflow history audit --days 7
  notionflow history audit --type task --project p-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.days < 0 {
				return errors.NewExitCode2Error(fmt.Errorf("--days must not be negative: %w", errors.ErrInvalidArgument))
			}
			entityType := ""
			if flags.entityType != "" {
				t, err := parseEntityType(flags.entityType)
				if err != nil {
					return err
				}
				entityType = t
			}

			return env.withApp(cmd.Context(), func(app *App) error {
				audit, err := app.Tracker.GetAuditLog(cmd.Context(), history.AuditQuery{
					ProjectID:  flags.project,
					Days:       flags.days,
					EntityType: entityType,
				})
				if err != nil {
					return err
				}

				msg := fmt.Sprintf("%d revision(s) since %s", audit.Summary.Total, audit.Since.Format("2006-01-02"))
				out := env.output(cmd.OutOrStdout())
				if env.jsonOutput() {
					return out.JSON(auditResponse{Message: msg, AuditLog: audit})
				}
				if audit.Summary.Total == 0 {
					out.Info(msg)
					return nil
				}
				out.Success(msg)
				writeRevisionTable(out, audit.Revisions, true)
				out.Table([]string{"AUTHOR", "REVISIONS"}, countRows(audit.Summary.ByAuthor))
				out.Table([]string{"ACTION", "REVISIONS"}, countRows(audit.Summary.ByAction))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&flags.days, "days", constants.DefaultAuditDays, "look back this many days before today")
	cmd.Flags().StringVar(&flags.entityType, "type", "", "only show this entity type")
	cmd.Flags().StringVar(&flags.project, "project", "", "only show entities in this project")

	parent.AddCommand(cmd)
}

// countRows sorts a summary dimension by count, then key.
func countRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return strings.Compare(a, b)
	})

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, strconv.Itoa(counts[k])})
	}
	return rows
}
