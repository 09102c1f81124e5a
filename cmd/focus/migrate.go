// ABOUTME: CLI command for copying observations between storage backends.
// ABOUTME: Moves data from Charm KV to SQLite or back, refusing a non-empty destination.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/config"
	"github.com/harperreed/focus/internal/storage"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy observations between storage backends",
	Long: `Copy every stored observation from one backend to the other.

By default data moves from Charm KV into SQLite. The destination must be
empty unless --force is given, in which case days it already holds make
the migration stop at the first clash.

USAGE:

  focus migrate --dry-run                  # Preview what would be copied
  focus migrate                            # Charm KV → SQLite
  focus migrate --from sqlite --to charm   # SQLite → Charm KV

AFTER MIGRATION:

  Switch backends with "backend" in ~/.config/focus/config.json or the
  FOCUS_BACKEND environment variable.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == migrateTo {
			return fmt.Errorf("source and destination are both %s", migrateFrom)
		}
		out := cmd.OutOrStdout()

		src, err := openBackend(migrateFrom)
		if err != nil {
			return err
		}
		defer src.Close()

		count, err := src.CountObservations()
		if err != nil {
			return fmt.Errorf("failed to count %s observations: %w", migrateFrom, err)
		}

		if migrateDryRun {
			fmt.Fprintln(out, color.YellowString("Dry run mode - no changes will be made"))
			fmt.Fprintf(out, "  Would copy %d observations from %s to %s\n", count, migrateFrom, migrateTo)
			return nil
		}

		dst, err := openBackend(migrateTo)
		if err != nil {
			return err
		}
		defer dst.Close()

		existing, err := dst.CountObservations()
		if err != nil {
			return fmt.Errorf("failed to count %s observations: %w", migrateTo, err)
		}
		if existing > 0 && !migrateForce {
			return fmt.Errorf("%s already holds %d observations; use --force to merge", migrateTo, existing)
		}

		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			if summary != nil {
				fmt.Fprintln(out, color.YellowString("⚠ Copied %d of %d observations before failing", summary.Observations, count))
			}
			return fmt.Errorf("migration failed: %w", err)
		}

		fmt.Fprintln(out, color.GreenString("✓ Migrated %d observations from %s to %s", summary.Observations, migrateFrom, migrateTo))
		return nil
	},
}

// openBackend opens the named backend with the rest of the loaded config.
func openBackend(backend string) (storage.Repository, error) {
	c := config.Config{Backend: backend, DataDir: cfg.DataDir}
	r, err := c.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", backend, err)
	}
	return r, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "charm", "source backend: sqlite or charm")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "sqlite", "destination backend: sqlite or charm")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "copy even when the destination already has data")
	rootCmd.AddCommand(migrateCmd)
}
