package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/ifrec/internal/cli"
	"github.com/Veraticus/ifrec/internal/model"
	"github.com/Veraticus/ifrec/internal/tui"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded validation runs",
		Long: `List past runs from the audit database, newest first. With --run, show the
individual check records of one run. With --interactive, browse runs and their
records in a terminal UI.`,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().String("run", "", "show the records of this run ID")
	cmd.Flags().BoolP("interactive", "i", false, "browse runs in an interactive terminal UI")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("run")
	interactive, _ := cmd.Flags().GetBool("interactive")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	if interactive {
		return tui.Browse(ctx, store, limit)
	}

	if runID != "" {
		run, err := store.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		if run.Kind == model.RunKindTable {
			tables, err := store.GetTableResults(ctx, runID)
			if err != nil {
				return err
			}
			return printTableResults(cmd, tables)
		}
		results, err := store.GetRunResults(ctx, runID)
		if err != nil {
			return err
		}
		return printRunResults(cmd, results)
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return printRuns(cmd, runs)
}

func printRuns(cmd *cobra.Command, runs []model.Run) error {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No runs recorded yet. Run 'ifrec validate' first."))
		return nil
	}

	fmt.Fprintln(out, cli.FormatTitle("Validation Runs"))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("ID"),
		cli.TableHeaderStyle.Render("Kind"),
		cli.TableHeaderStyle.Render("Started"),
		cli.TableHeaderStyle.Render("Duration"),
		cli.TableHeaderStyle.Render("Passed"),
		cli.TableHeaderStyle.Render("Fixed"),
		cli.TableHeaderStyle.Render("Failed")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 36),
		strings.Repeat("─", 5),
		strings.Repeat("─", 19),
		strings.Repeat("─", 8),
		strings.Repeat("─", 6),
		strings.Repeat("─", 5),
		strings.Repeat("─", 6)); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, r := range runs {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID,
			r.Kind,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(10*time.Millisecond),
			r.Passed,
			r.Fixed,
			r.Failed); err != nil {
			return fmt.Errorf("failed to write run row: %w", err)
		}
	}
	return w.Flush()
}

func printRunResults(cmd *cobra.Command, results []model.ValidationResult) error {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No records for this run."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Dataset"),
		cli.TableHeaderStyle.Render("Validation"),
		cli.TableHeaderStyle.Render("Status"),
		cli.TableHeaderStyle.Render("Lines"),
		cli.TableHeaderStyle.Render("Details")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range results {
		row := r.ReportRow()
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			row.DatasetName,
			row.ValidationName,
			cli.FormatStatus(r.Status),
			row.AffectedLinesCount,
			row.Details); err != nil {
			return fmt.Errorf("failed to write result row: %w", err)
		}
	}
	return w.Flush()
}
