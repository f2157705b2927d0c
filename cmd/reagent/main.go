// Command reagent runs the ReAct orchestration engine either as a one-shot
// CLI query or as an HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reagent/internal/config"
	"reagent/internal/observability"
	"reagent/internal/toolregistry"
	"reagent/internal/tools/builtin"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:   "reagent",
		Short: "Tool-using agent loop over an OpenAI-compatible completion backend",
		Long: `reagent drives a reasoning-and-acting loop against a text completion
backend: the model thinks, picks a tool, the tool runs, and the observation
is fed back until the model produces a final answer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file (optional)")

	root.AddCommand(newAskCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newToolsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// appRuntime bundles everything the subcommands need at startup.
type appRuntime struct {
	cfg      *config.Config
	logger   *observability.Logger
	registry *toolregistry.Registry
}

func loadRuntime() (*appRuntime, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	registry := toolregistry.NewRegistry()
	builtin.RegisterAll(registry, builtin.Config{
		WorkspaceDir:   cfg.Tools.WorkspaceDir,
		CommandTimeout: cfg.Tools.CommandTimeout(),
	})

	return &appRuntime{cfg: cfg, logger: logger, registry: registry}, nil
}
