// ABOUTME: CLI commands for Charm-based sync of the focus KV store.
// ABOUTME: Supports link, unlink, status, repair, reset, and wipe operations.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/charm"
)

var syncRepairForce bool

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync focus data across devices",
	Long: `Sync focus data across devices using Charm Cloud.

Only used with the charm backend ("backend": "charm" in config.json or
FOCUS_BACKEND=charm). Data is E2E encrypted with your SSH key before
upload, and syncs automatically after each add, load, import or delete.

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)`,
}

var syncLinkCmd = &cobra.Command{
	Use:         "link",
	Short:       "Link this device to Charm",
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("\n✓ Device linked to Charm"))

		client, err := charm.InitClient()
		if err != nil {
			fmt.Fprintln(out, color.YellowString("⚠ Could not open the focus store: %v", err))
			return nil
		}
		defer client.Close()
		if err := client.Sync(); err != nil {
			fmt.Fprintln(out, color.YellowString("⚠ Initial sync failed: %v", err))
		} else {
			fmt.Fprintln(out, color.GreenString("✓ Initial sync complete"))
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:         "unlink",
	Short:       "Disconnect from Charm",
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Device unlinked from Charm"))
		fmt.Fprintln(cmd.OutOrStdout(), "Your local focus data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show sync status",
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Backend:", cfg.GetBackend())

		client, err := charm.InitClient()
		if err != nil {
			fmt.Fprintln(out, color.YellowString("Charm store unavailable: %v", err))
			fmt.Fprintln(out, "\nRun 'focus sync link' to connect to Charm.")
			return nil
		}
		defer client.Close()

		id, err := client.ID()
		if err != nil {
			fmt.Fprintln(out, color.YellowString("Not linked to Charm"))
			fmt.Fprintln(out, "\nRun 'focus sync link' to connect to Charm.")
			return nil
		}

		host := os.Getenv("CHARM_HOST")
		fmt.Fprintln(out, "Charm ID:", id)
		fmt.Fprintln(out, "Server:", host)
		if client.IsReadOnly() {
			fmt.Fprintln(out, color.YellowString("⚠ Read-only: another focus process holds the store"))
		}
		fmt.Fprintln(out)

		n, err := client.CountObservations()
		if err != nil {
			return fmt.Errorf("failed to count observations: %w", err)
		}
		fmt.Fprintln(out, color.GreenString("✓ Connected to Charm"))
		fmt.Fprintf(out, "  Observations: %d\n", n)
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:         "wipe",
	Short:       "Delete all cloud and local data",
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will PERMANENTLY DELETE all cloud backups and local focus data.")
		if !confirm(cmd, "Type 'wipe' to confirm: ", "wipe") {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		result, err := kv.Wipe(charm.DBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		fmt.Fprintln(out, color.GreenString("✓ Data wiped successfully"))
		fmt.Fprintf(out, "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Fprintf(out, "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:         "repair",
	Short:       "Repair database corruption",
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Repairing focus database...")
		result, err := kv.Repair(charm.DBName, syncRepairForce)

		if result.WalCheckpointed {
			fmt.Fprintln(out, color.GreenString("  ✓ WAL checkpointed"))
		}
		if result.ShmRemoved {
			fmt.Fprintln(out, color.GreenString("  ✓ SHM file removed"))
		}
		if result.IntegrityOK {
			fmt.Fprintln(out, color.GreenString("  ✓ Integrity check passed"))
		} else {
			fmt.Fprintln(out, color.RedString("  ✗ Integrity check failed"))
		}
		if result.Vacuumed {
			fmt.Fprintln(out, color.GreenString("  ✓ Database vacuumed"))
		}

		if err != nil {
			if !syncRepairForce {
				fmt.Fprintln(out, color.YellowString("\nRun with --force to attempt recovery."))
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		fmt.Fprintln(out, color.GreenString("\n✓ Repair complete"))
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Reset local data and restore from cloud",
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will DELETE all local focus data and restore from cloud.")
		if !confirm(cmd, "Continue? [y/N]: ", "y", "yes") {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		if err := kv.Reset(charm.DBName); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		fmt.Fprintln(out, color.GreenString("✓ Local data reset and restored from cloud"))
		return nil
	},
}

func runCharm(args ...string) error {
	c := exec.Command("charm", args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// confirm prompts on the command's input and reports whether the answer is one of accepted.
func confirm(cmd *cobra.Command, prompt string, accepted ...string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	for _, a := range accepted {
		if answer == a {
			return true
		}
	}
	return false
}

func init() {
	syncRepairCmd.Flags().BoolVar(&syncRepairForce, "force", false, "attempt recovery even if integrity checks fail")

	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)
	rootCmd.AddCommand(syncCmd)
}
