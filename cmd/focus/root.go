// ABOUTME: Root Cobra command for focus CLI.
// ABOUTME: Loads config, sets up logging, and handles storage lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/charm"
	"github.com/harperreed/focus/internal/config"
	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/models"
	"github.com/harperreed/focus/internal/storage"
)

// skipStorage marks commands that never open the configured backend.
const skipStorage = "skip-storage"

// fileOptional marks commands that read a CSV argument instead of storage when one is given.
const fileOptional = "file-optional"

var (
	cfg    *config.Config
	repo   storage.Repository
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "focus"})

	flagVerbose bool
	flagBackend string
	flagDataDir string
)

var rootCmd = &cobra.Command{
	Use:   "focus",
	Short: "Personal analytics for daily focus",
	Long: `Focus is a CLI tool for finding out what drives your next-day focus.

You log one row per day (sleep, exercise, screen time, study, social time,
nutrition, caffeine, stress, a cycle flag, and a 0-10 focus score). Focus
then describes the data, correlates every metric with tomorrow's focus, runs
a few standard tests, and fits several regression models on a time-ordered
split so the reported scores never peek into the future.

QUICK START:

  $ focus generate --days 120 -o sample.csv   # Synthetic data to play with
  $ focus analyze sample.csv                  # Full report from a CSV
  $ focus load sample.csv                     # Store the rows
  $ focus add --sleep-hours 7.5 --focus-score 8 --stress-level 3
  $ focus list                                # Recent days
  $ focus analyze                             # Full report from storage

REPORTS:

  $ focus analyze --format markdown -o report.md
  $ focus analyze --plots ./plots            # PNG charts alongside
  $ focus describe                           # Just the descriptive stats

STORAGE:

  SQLite (default) at ~/.local/share/focus/focus.db, or Charm KV with
  cloud sync when "backend": "charm" is set in ~/.config/focus/config.json
  or FOCUS_BACKEND=charm.

MCP INTEGRATION:

  Run 'focus mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "focus": { "command": "focus", "args": ["mcp"] }
    }
  }`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if flagBackend != "" {
			cfg.Backend = flagBackend
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}

		level, err := cfg.GetLogLevel()
		if err != nil {
			return err
		}
		if flagVerbose {
			level = log.DebugLevel
		}
		logger.SetLevel(level)

		if !needsStorage(cmd, args) {
			return nil
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		if client, ok := repo.(*charm.Client); ok {
			client.SetLogger(logger)
		}
		logger.Debug("storage opened", "backend", cfg.GetBackend(), "data_dir", cfg.GetDataDir())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStorage()
	},
}

// Execute runs the root command and releases storage even when a command fails.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeStorage(); err == nil {
		err = cerr
	}
	return err
}

func needsStorage(cmd *cobra.Command, args []string) bool {
	switch cmd.Name() {
	case "help", "version", "completion":
		return false
	}
	if cmd.Annotations[skipStorage] == "true" {
		return false
	}
	if cmd.Annotations[fileOptional] == "true" && len(args) > 0 {
		return false
	}
	return true
}

func closeStorage() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo = nil
	return err
}

// analysisOptions returns the configured analysis settings wired to the CLI logger.
func analysisOptions() analysis.Options {
	opts := cfg.AnalysisOptions()
	opts.Logger = logger
	return opts
}

// loadDataset reads a CSV when a path is given and stored observations
// otherwise, keeping only days on or after since.
func loadDataset(args []string, since string) (*dataset.Dataset, error) {
	sinceDay, err := parseDate(since)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		ds, err := dataset.LoadCSV(args[0])
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded csv", "path", args[0], "rows", ds.Len())
		if sinceDay == nil {
			return ds, nil
		}
		var kept []*models.Observation
		for _, o := range ds.Observations() {
			if !o.Date.Before(*sinceDay) {
				kept = append(kept, o)
			}
		}
		return dataset.New(kept)
	}

	obs, err := repo.ListObservations(sinceDay, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	logger.Debug("loaded stored observations", "rows", len(obs))
	return dataset.New(obs)
}

// parseDate parses an optional YYYY-MM-DD flag value.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", s)
	}
	return &t, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite or charm (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory for the SQLite database (overrides config)")
}
