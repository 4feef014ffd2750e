// Planwright: project planning MCP server.
//
// Planwright keeps projects as phases, tasks and task dependencies in a
// local SQLite database, refuses dependencies that would make the plan
// impossible to schedule, and can draft plans and answer progress questions
// with Claude.
//
// Usage:
//
//	planwright serve                          # Start MCP server (stdio transport)
//	planwright check [--project ID]           # Audit stored dependency graphs
//	planwright import --project ID plan.json  # Import a plan file
//	planwright waves --project ID             # Print execution waves
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/planwright/internal/config"
	"github.com/HendryAvila/planwright/internal/logging"
	pwserver "github.com/HendryAvila/planwright/internal/server"
	"github.com/HendryAvila/planwright/internal/store"
	"github.com/HendryAvila/planwright/internal/updater"
)

var (
	flagConfig  string
	flagProject int64
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planwright",
		Short: "Project planning MCP server with cycle-safe task dependencies",
		Long: `Planwright stores projects as phases, tasks and dependencies, rejects
dependencies that would create a cycle, and exposes everything to AI
coding tools over MCP.

Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "planwright": {
        "command": "planwright",
        "args": ["serve"]
      }
    }
  }`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: <data dir>/config.yaml)")

	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	root.AddCommand(initCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(importCmd())
	root.AddCommand(wavesCmd())
	return root
}

// loadConfig reads the config and builds the stderr logger.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr), nil
}

// openStore opens the configured store for the offline commands.
func openStore() (*store.Store, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.New(store.Config{DataDir: cfg.DataDir})
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			s, cleanup, err := pwserver.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			// Best-effort; logged to stderr so stdout stays MCP-only.
			go checkForUpdates(cmd.Context(), logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- server.ServeStdio(s) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				return nil
			}
		},
	}
}

func versionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "planwright v%s\n", pwserver.Version)
			if !check {
				return nil
			}
			return runVersionCheck(cmd.Context(), updater.NewChecker(), pwserver.Version, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flagConfig
			if path == "" {
				cfg := config.Default()
				if home := os.Getenv(config.EnvHome); home != "" {
					cfg.DataDir = home
				}
				path = filepath.Join(cfg.DataDir, config.FileName)
			}
			created, err := config.WriteDefault(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", green("✓"), path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s already exists\n", dim("·"), path)
			}
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit stored dependency graphs for cycles",
		Long: `Check walks every project's dependencies (or one project's with --project)
and reports any cycle. Exits non-zero when a cycle is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return runCheck(cmd.Context(), s, flagProject, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Int64Var(&flagProject, "project", 0, "Only check this project")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import --project ID FILE",
		Short: "Import a plan JSON file into a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagProject <= 0 {
				return fmt.Errorf("--project is required")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read plan: %w", err)
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return runImport(cmd.Context(), s, flagProject, string(data), cmd.OutOrStdout())
		},
	}
	cmd.Flags().Int64Var(&flagProject, "project", 0, "Project to import into")
	return cmd
}

func wavesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waves --project ID",
		Short: "Print the tasks that can run in parallel, wave by wave",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flagProject <= 0 {
				return fmt.Errorf("--project is required")
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return runWaves(cmd.Context(), s, flagProject, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Int64Var(&flagProject, "project", 0, "Project ID")
	return cmd
}

func checkForUpdates(ctx context.Context, logger *slog.Logger) {
	res, err := updater.NewChecker().Check(ctx, pwserver.Version)
	if err != nil {
		logger.Debug("update check failed", "err", err)
		return
	}
	if res.UpdateAvailable {
		logger.Info("update available", "current", res.CurrentVersion, "latest", res.LatestVersion, "release", res.ReleaseURL)
	}
}
