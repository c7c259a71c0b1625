package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ifrec/internal/backup"
	"github.com/Veraticus/ifrec/internal/cli"
	"github.com/spf13/cobra"
)

func restoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore raw files from the latest backup",
		Long: `Copy every file of the most recent day bucket under data.backup_root back
into data.raw_root, undoing that day's repairs.`,
		RunE: runRestore,
	}

	cmd.Flags().Bool("dry-run", false, "list the files that would be restored without writing")

	return cmd
}

func runRestore(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := newBackupStore(cfg)
	bucket, restored, err := store.RestoreLatest(cfg.Data.RawRoot, dryRun)
	if errors.Is(err, backup.ErrNoBackups) {
		fmt.Fprintln(out, cli.FormatWarning("No backups found in "+store.Root()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore from %s failed after %d files: %w", bucket, len(restored), err)
	}

	verb := "Restored"
	if dryRun {
		verb = "Would restore"
	}
	for _, r := range restored {
		fmt.Fprintf(out, "  %s %s\n", cli.SubtleStyle.Render(cli.FolderIcon), r.Target)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s %d files from backup %s", verb, len(restored), bucket)))

	slog.Info("restore complete", "bucket", bucket, "files", len(restored), "dry_run", dryRun)
	return nil
}
