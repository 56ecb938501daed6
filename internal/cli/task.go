package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/domain"
	"github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/notion/property"
	"github.com/mrz1836/notionflow/internal/selector"
	"github.com/mrz1836/notionflow/internal/task"
	"github.com/mrz1836/notionflow/internal/tui"
)

// AddTaskCommand adds the task command group to the root command.
func AddTaskCommand(root *cobra.Command, env *cmdEnv) {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, inspect and move tasks through the workflow",
		Long: `Create, inspect and move tasks through the workflow.

Tasks move Backlog → Claimed → In Progress → Completed. A task can only be
started once every task it depends on is Completed.`,
	}

	addTaskCreateCommand(cmd, env)
	addTaskShowCommand(cmd, env)
	addTaskTransitionCommands(cmd, env)
	addTaskUpdateCommand(cmd, env)
	addTaskNextCommand(cmd, env)
	addTaskPickCommand(cmd, env)
	addTaskDepsCommand(cmd, env)
	addTaskDependCommand(cmd, env)

	root.AddCommand(cmd)
}

// taskResponse is the JSON payload of commands returning one task.
type taskResponse struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

func writeTask(w io.Writer, env *cmdEnv, msg string, t *domain.Task) error {
	out := env.output(w)
	if env.jsonOutput() {
		return out.JSON(taskResponse{Message: msg, Task: t})
	}
	if msg != "" {
		out.Success(msg)
	}
	out.Table([]string{"FIELD", "VALUE"}, taskRows(t))
	return nil
}

func taskRows(t *domain.Task) [][]string {
	rows := [][]string{
		{"ID", t.ID},
		{"Title", t.Title},
		{"Status", tui.FormatStatus(t.Status)},
	}
	if t.Priority != "" {
		rows = append(rows, []string{"Priority", lipgloss.NewStyle().Foreground(tui.PriorityColor(t.Priority)).Render(string(t.Priority))})
	}
	if t.Type != "" {
		rows = append(rows, []string{"Type", t.Type})
	}
	if t.VersionID != "" {
		rows = append(rows, []string{"Version", t.VersionID})
	}
	if len(t.DependencyIDs) > 0 {
		rows = append(rows, []string{"Depends on", strings.Join(t.DependencyIDs, ", ")})
	}
	if t.EstimatedHours != nil {
		rows = append(rows, []string{"Estimate", formatHours(*t.EstimatedHours)})
	}
	if t.ActualHours != nil {
		rows = append(rows, []string{"Actual", formatHours(*t.ActualHours)})
	}
	if !t.CreatedTime.IsZero() {
		rows = append(rows, []string{"Created", tui.RelativeTime(t.CreatedTime)})
	}
	return rows
}

// titleWidth caps task titles in tables.
const titleWidth = 60

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

func parsePriorityFlag(s string) (constants.Priority, error) {
	if s == "" {
		return "", nil
	}
	p, ok := constants.ParsePriority(s)
	if !ok {
		return "", errors.NewExitCode2Error(fmt.Errorf("priority %q (want one of Critical, High, Medium, Low): %w", s, errors.ErrInvalidArgument))
	}
	return p, nil
}

// optionalFloat returns &v when the flag was set on the command line.
func optionalFloat(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

// hoursFlag reads an optional hours flag, rejecting negative values.
func hoursFlag(cmd *cobra.Command, name string, v float64) (*float64, error) {
	hours := optionalFloat(cmd, name, v)
	if hours != nil && *hours < 0 {
		return nil, errors.NewExitCode2Error(fmt.Errorf("--%s must not be negative: %w", name, errors.ErrInvalidArgument))
	}
	return hours, nil
}

type taskCreateFlags struct {
	version   string
	priority  string
	taskType  string
	desc      string
	dependsOn []string
	estimate  float64
}

func addTaskCreateCommand(parent *cobra.Command, env *cmdEnv) {
	flags := &taskCreateFlags{}

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a Backlog task",
		Example: `  notionflow task create "Add OAuth login" --version v-1 --priority High
  notionflow task create "Write docs" --version v-1 --depends-on t-1 --depends-on t-2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, err := parsePriorityFlag(flags.priority)
			if err != nil {
				return err
			}
			estimate, err := hoursFlag(cmd, "estimate", flags.estimate)
			if err != nil {
				return err
			}
			return env.withApp(cmd.Context(), func(app *App) error {
				t, err := app.Engine.Create(cmd.Context(), task.CreateRequest{
					Title:          args[0],
					VersionID:      flags.version,
					Priority:       priority,
					Type:           flags.taskType,
					Description:    flags.desc,
					DependencyIDs:  flags.dependsOn,
					EstimatedHours: estimate,
					Author:         app.Author,
				})
				if err != nil {
					return err
				}
				return writeTask(cmd.OutOrStdout(), env, fmt.Sprintf("created task %s", t.ID), t)
			})
		},
	}

	cmd.Flags().StringVar(&flags.version, "version", "", "version (release) ID the task belongs to")
	cmd.Flags().StringVar(&flags.priority, "priority", "", "priority: Critical, High, Medium or Low")
	cmd.Flags().StringVar(&flags.taskType, "type", "", "task type, e.g. Feature or Bug")
	cmd.Flags().StringVar(&flags.desc, "description", "", "task description (markdown)")
	cmd.Flags().StringArrayVar(&flags.dependsOn, "depends-on", nil, "ID of a task this one depends on (repeatable)")
	cmd.Flags().Float64Var(&flags.estimate, "estimate", 0, "estimated hours")
	_ = cmd.MarkFlagRequired("version")

	parent.AddCommand(cmd)
}

func addTaskShowCommand(parent *cobra.Command, env *cmdEnv) {
	parent.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd.Context(), func(app *App) error {
				t, err := app.Engine.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := writeTask(cmd.OutOrStdout(), env, "", t); err != nil {
					return err
				}
				if !env.jsonOutput() && t.Description != "" {
					out := env.output(cmd.OutOrStdout())
					out.Info("Description")
					out.Markdown(t.Description)
				}
				return nil
			})
		},
	})
}

// addTaskTransitionCommands adds claim, start and complete.
func addTaskTransitionCommands(parent *cobra.Command, env *cmdEnv) {
	parent.AddCommand(&cobra.Command{
		Use:   "claim <id>",
		Short: "Move a Backlog task to Claimed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd.Context(), func(app *App) error {
				t, err := app.Engine.Claim(cmd.Context(), args[0], app.Author)
				if err != nil {
					return err
				}
				return writeTask(cmd.OutOrStdout(), env, fmt.Sprintf("claimed task %s", t.ID), t)
			})
		},
	})

	parent.AddCommand(&cobra.Command{
		Use:   "start <id>",
		Short: "Move a task to In Progress once its dependencies are completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd.Context(), func(app *App) error {
				t, err := app.Engine.Start(cmd.Context(), args[0], app.Author)
				if err != nil {
					return err
				}
				return writeTask(cmd.OutOrStdout(), env, fmt.Sprintf("started task %s", t.ID), t)
			})
		},
	})

	var hours float64
	complete := &cobra.Command{
		Use:   "complete <id>",
		Short: "Move a task to Completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actual, err := hoursFlag(cmd, "hours", hours)
			if err != nil {
				return err
			}
			return env.withApp(cmd.Context(), func(app *App) error {
				t, err := app.Engine.Complete(cmd.Context(), args[0], app.Author, actual)
				if err != nil {
					return err
				}
				return writeTask(cmd.OutOrStdout(), env, fmt.Sprintf("completed task %s", t.ID), t)
			})
		},
	}
	complete.Flags().Float64Var(&hours, "hours", 0, "actual hours spent")
	parent.AddCommand(complete)
}

type taskUpdateFlags struct {
	title    string
	priority string
	taskType string
	desc     string
	estimate float64
	reason   string
}

func addTaskUpdateCommand(parent *cobra.Command, env *cmdEnv) {
	flags := &taskUpdateFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit task fields other than status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props := property.Bag{}
			if cmd.Flags().Changed("title") {
				props[constants.PropTitle] = property.NewTitle(flags.title)
			}
			if cmd.Flags().Changed("priority") {
				p, err := parsePriorityFlag(flags.priority)
				if err != nil {
					return err
				}
				props[constants.PropPriority] = property.NewSelect(string(p))
			}
			if cmd.Flags().Changed("type") {
				props[constants.PropType] = property.NewSelect(flags.taskType)
			}
			if cmd.Flags().Changed("description") {
				props[constants.PropDescription] = property.NewRichText(flags.desc)
			}
			estimate, err := hoursFlag(cmd, "estimate", flags.estimate)
			if err != nil {
				return err
			}
			if estimate != nil {
				props[constants.PropEstimatedHours] = property.NewNumber(*estimate)
			}
			if len(props) == 0 {
				return errors.NewExitCode2Error(fmt.Errorf("no fields to update: %w", errors.ErrEmptyValue))
			}

			return env.withApp(cmd.Context(), func(app *App) error {
				t, err := app.Engine.Update(cmd.Context(), args[0], app.Author, props, flags.reason)
				if err != nil {
					return err
				}
				return writeTask(cmd.OutOrStdout(), env, fmt.Sprintf("updated task %s", t.ID), t)
			})
		},
	}

	cmd.Flags().StringVar(&flags.title, "title", "", "new title")
	cmd.Flags().StringVar(&flags.priority, "priority", "", "new priority")
	cmd.Flags().StringVar(&flags.taskType, "type", "", "new task type")
	cmd.Flags().StringVar(&flags.desc, "description", "", "new description (markdown)")
	cmd.Flags().Float64Var(&flags.estimate, "estimate", 0, "new estimated hours")
	cmd.Flags().StringVar(&flags.reason, "reason", "edit", "reason recorded in the change history")

	parent.AddCommand(cmd)
}

func addTaskNextCommand(parent *cobra.Command, env *cmdEnv) {
	var project string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the first Backlog or Claimed task that is ready to start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withApp(cmd.Context(), func(app *App) error {
				t, err := app.Engine.Next(cmd.Context(), project)
				if err != nil {
					return err
				}
				return writeTask(cmd.OutOrStdout(), env, fmt.Sprintf("next task %s", t.ID), t)
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "only consider tasks in this project")

	parent.AddCommand(cmd)
}

type taskPickFlags struct {
	skills      []string
	maxPriority string
	exclude     []string
	count       int
	project     string
	version     string
}

type pickResponse struct {
	Message         string                      `json:"message"`
	Recommendations []domain.TaskRecommendation `json:"recommendations"`
}

func addTaskPickCommand(parent *cobra.Command, env *cmdEnv) {
	flags := &taskPickFlags{}

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Recommend Backlog tasks ranked by priority and skill match",
		Example: `  notionflow task pick --skills go,api --count 3
  notionflow task pick --max-priority Medium --exclude '^wip'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			maxPriority, err := parsePriorityFlag(flags.maxPriority)
			if err != nil {
				return err
			}
			if flags.count < 0 {
				return errors.NewExitCode2Error(fmt.Errorf("--count must not be negative: %w", errors.ErrInvalidArgument))
			}

			return env.withApp(cmd.Context(), func(app *App) error {
				recs, err := app.Selector.PickBestTasks(cmd.Context(), selector.Options{
					Skills:          flags.skills,
					MaxPriority:     maxPriority,
					ExcludePatterns: flags.exclude,
					Count:           flags.count,
					ProjectID:       flags.project,
					VersionID:       flags.version,
				})
				if err != nil {
					return err
				}

				msg := fmt.Sprintf("%d recommended task(s)", len(recs))
				out := env.output(cmd.OutOrStdout())
				if env.jsonOutput() {
					return out.JSON(pickResponse{Message: msg, Recommendations: recs})
				}
				if len(recs) == 0 {
					out.Info("no backlog tasks match")
					return nil
				}
				out.Success(msg)
				rows := make([][]string, 0, len(recs))
				for _, r := range recs {
					rows = append(rows, []string{
						strconv.Itoa(r.MatchScore),
						r.Task.ID,
						tui.Truncate(r.Task.Title, titleWidth),
						r.MatchReason,
					})
				}
				out.Table([]string{"SCORE", "ID", "TITLE", "REASON"}, rows)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&flags.skills, "skills", nil, "skills to match against title and description")
	cmd.Flags().StringVar(&flags.maxPriority, "max-priority", "", "skip tasks above this priority")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "regular expression; skip tasks whose title matches (repeatable)")
	cmd.Flags().IntVar(&flags.count, "count", 0, "number of recommendations (default from config)")
	cmd.Flags().StringVar(&flags.project, "project", "", "only consider tasks in this project")
	cmd.Flags().StringVar(&flags.version, "version", "", "only consider tasks in this version")

	parent.AddCommand(cmd)
}

type depsResponse struct {
	Message   string          `json:"message"`
	TaskID    string          `json:"task_id"`
	Readiness *task.Readiness `json:"readiness"`
	Cycle     []string        `json:"cycle,omitempty"`
}

func addTaskDepsCommand(parent *cobra.Command, env *cmdEnv) {
	parent.AddCommand(&cobra.Command{
		Use:   "deps <id>",
		Short: "Show whether a task can start and what blocks it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd.Context(), func(app *App) error {
				id := args[0]
				readiness, err := app.Engine.CanStart(cmd.Context(), id)
				if err != nil {
					return err
				}
				cycle, err := app.Engine.Repository().DetectCycle(cmd.Context(), id)
				if err != nil {
					return err
				}

				msg := fmt.Sprintf("task %s is ready to start", id)
				if !readiness.Ready {
					msg = fmt.Sprintf("task %s is blocked by %d dependenc%s", id, len(readiness.Blocking), pluralY(len(readiness.Blocking)))
				}

				out := env.output(cmd.OutOrStdout())
				if env.jsonOutput() {
					return out.JSON(depsResponse{Message: msg, TaskID: id, Readiness: readiness, Cycle: cycle})
				}

				if readiness.Ready {
					out.Success(msg)
				} else {
					out.Warning(msg)
				}
				if len(readiness.Dependencies) > 0 {
					rows := make([][]string, 0, len(readiness.Dependencies))
					for _, d := range readiness.Dependencies {
						title := ""
						if d.Task != nil {
							title = tui.Truncate(d.Task.Title, titleWidth)
						}
						status := d.Describe()
						if d.State == task.DependencyResolved {
							status = tui.FormatStatus(d.Task.Status)
						}
						rows = append(rows, []string{d.ID, title, status})
					}
					out.Table([]string{"DEPENDENCY", "TITLE", "STATUS"}, rows)
				}
				if cycle != nil {
					out.Warning("dependency cycle: " + strings.Join(cycle, " → "))
				}
				return nil
			})
		},
	})
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func addTaskDependCommand(parent *cobra.Command, env *cmdEnv) {
	var remove bool

	cmd := &cobra.Command{
		Use:   "depend <id> <dependency-id>",
		Short: "Make a task depend on another, or drop the dependency with --remove",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, depID := args[0], args[1]
			return env.withApp(cmd.Context(), func(app *App) error {
				var (
					t   *domain.Task
					err error
					msg string
				)
				if remove {
					t, err = app.Engine.RemoveDependency(cmd.Context(), id, depID, app.Author)
					msg = fmt.Sprintf("task %s no longer depends on %s", id, depID)
				} else {
					t, err = app.Engine.AddDependency(cmd.Context(), id, depID, app.Author)
					msg = fmt.Sprintf("task %s now depends on %s", id, depID)
				}
				if err != nil {
					return err
				}
				return writeTask(cmd.OutOrStdout(), env, msg, t)
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "remove the dependency instead of adding it")

	parent.AddCommand(cmd)
}
