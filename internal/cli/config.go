package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/notionflow/internal/config"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, env *cmdEnv) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect notionflow configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after all layers are merged",
		Long: `Print the effective configuration after defaults, the global and project
config files, NOTIONFLOW_* variables and flags are merged.

The Notion token is never printed; only whether its variable is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), env)
		},
	})

	root.AddCommand(cmd)
}

// configPaths lists the resolved file locations.
type configPaths struct {
	Global    string `yaml:"global_config" json:"global_config"`
	Project   string `yaml:"project_config" json:"project_config"`
	Workspace string `yaml:"workspace" json:"workspace"`
	History   string `yaml:"history" json:"history"`
	Log       string `yaml:"log" json:"log"`
}

type configShowResponse struct {
	Message  string         `json:"message"`
	Config   map[string]any `json:"config"`
	Paths    configPaths    `json:"paths"`
	TokenSet bool           `json:"token_set"`
}

func runConfigShow(ctx context.Context, w io.Writer, env *cmdEnv) error {
	cfg, err := env.loadConfig(ctx, env.flags)
	if err != nil {
		return err
	}

	paths, err := resolveConfigPaths(cfg)
	if err != nil {
		return err
	}
	tokenSet := os.Getenv(cfg.Notion.TokenEnvVar) != ""

	out := env.output(w)
	if env.jsonOutput() {
		// Round-trip through YAML so keys and durations match the config file.
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return out.JSON(configShowResponse{Message: "effective configuration", Config: m, Paths: paths, TokenSet: tokenSet})
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, _ = fmt.Fprint(w, string(data))
	_, _ = fmt.Fprintln(w)

	rows := [][]string{
		{"global config", paths.Global},
		{"project config", paths.Project},
		{"workspace", paths.Workspace},
		{"history", paths.History},
		{"log", paths.Log},
	}
	out.Table([]string{"FILE", "PATH"}, rows)

	if tokenSet {
		out.Success(fmt.Sprintf("$%s is set", cfg.Notion.TokenEnvVar))
	} else {
		out.Warning(fmt.Sprintf("$%s is not set; only --offline commands will work", cfg.Notion.TokenEnvVar))
	}
	return nil
}

func resolveConfigPaths(cfg *config.Config) (configPaths, error) {
	var (
		p   configPaths
		err error
	)
	if p.Global, err = config.GlobalConfigPath(); err != nil {
		return p, err
	}
	p.Project = config.ProjectConfigPath()
	if p.Workspace, err = cfg.WorkspacePath(); err != nil {
		return p, err
	}
	if p.History, err = cfg.HistoryPath(); err != nil {
		return p, err
	}
	if p.Log, err = LogFilePath(); err != nil {
		return p, err
	}
	return p, nil
}
