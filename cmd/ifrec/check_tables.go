package main

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/ifrec/internal/cli"
	"github.com/Veraticus/ifrec/internal/common"
	"github.com/Veraticus/ifrec/internal/model"
	"github.com/Veraticus/ifrec/internal/report"
	"github.com/Veraticus/ifrec/internal/table"
	"github.com/spf13/cobra"
)

func checkTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-tables",
		Short: "Run table validations on parsed outputs",
		Long: `Load each dataset under table_validation and run its checks: allowed
values, numeric bounds, uniqueness of column combinations and time-series
completeness per group.`,
		RunE: runCheckTables,
	}

	cmd.Flags().Bool("include-passed", false, "include passed checks in the report")
	cmd.Flags().Bool("no-store", false, "do not record the run in the audit database")
	cmd.Flags().Bool("fail-on-error", false, "exit with an error when any check failed")

	return cmd
}

func runCheckTables(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	includePassed, _ := cmd.Flags().GetBool("include-passed")
	noStore, _ := cmd.Flags().GetBool("no-store")
	failOnError, _ := cmd.Flags().GetBool("fail-on-error")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("include-passed") {
		includePassed = cfg.Tables.ReportIncludePassed
	}
	if len(cfg.Tables.Datasets) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No table validations configured."))
		return nil
	}

	codec, err := newCodec(cfg)
	if err != nil {
		return err
	}

	started := time.Now()
	results := table.RunAll(cfg.Tables, codec)

	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
		}
	}
	slog.Info("Output validation summary", "passed", len(results)-failed, "failed", failed)

	if err := printTableResults(cmd, results); err != nil {
		return err
	}

	rows, err := report.TableRows(results, includePassed)
	if err != nil {
		return err
	}
	path, err := report.SaveTable(cfg.Data.ReportDir, started, rows)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess("Report written to "+path))

	if !noStore {
		if err := recordRun(ctx, cfg, &model.Run{
			Kind:       model.RunKindTable,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Passed:     len(results) - failed,
			Failed:     failed,
		}, nil, results); err != nil {
			return err
		}
	}

	if failOnError && failed > 0 {
		return fmt.Errorf("%w: %d of %d table checks failed", common.ErrValidationFailed, failed, len(results))
	}
	return nil
}

func printTableResults(cmd *cobra.Command, results []model.TableResult) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("Table Validations"))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Dataset"),
		cli.TableHeaderStyle.Render("Validation"),
		cli.TableHeaderStyle.Render("Status"),
		cli.TableHeaderStyle.Render("Errors"),
		cli.TableHeaderStyle.Render("Details")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 12),
		strings.Repeat("─", 26),
		strings.Repeat("─", 6),
		strings.Repeat("─", 6),
		strings.Repeat("─", 30)); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.DatasetName,
			r.ValidationName,
			cli.FormatStatus(model.Status(r.StatusString())),
			r.ErrorCount,
			r.Details); err != nil {
			return fmt.Errorf("failed to write result row: %w", err)
		}
	}
	return w.Flush()
}
