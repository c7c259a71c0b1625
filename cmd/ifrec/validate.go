package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/ifrec/internal/cli"
	"github.com/Veraticus/ifrec/internal/common"
	"github.com/Veraticus/ifrec/internal/model"
	"github.com/Veraticus/ifrec/internal/report"
	"github.com/Veraticus/ifrec/internal/validation"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate and repair raw CSV files",
		Long: `Run the configured quote checks on every raw file of every dataset.

Files with odd quote counts in a field have the stray quotes removed; fields
with unescaped quote pairs have them doubled. Datasets configured with the
ignore strategy drop the affected lines instead. Each modified file is backed
up once per day, and a repair that removes more than half of a file's lines is
rolled back.`,
		RunE: runValidate,
	}

	cmd.Flags().StringSlice("dataset", nil, "only validate these datasets")
	cmd.Flags().Bool("include-passed", false, "include passed checks in the report")
	cmd.Flags().String("format", "", "report format: csv or xlsx (default from config)")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")
	cmd.Flags().Bool("no-store", false, "do not record the run in the audit database")
	cmd.Flags().Bool("fail-on-error", false, "exit with an error when any check failed")

	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	datasets, _ := cmd.Flags().GetStringSlice("dataset")
	includePassed, _ := cmd.Flags().GetBool("include-passed")
	formatFlag, _ := cmd.Flags().GetString("format")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	noStore, _ := cmd.Flags().GetBool("no-store")
	failOnError, _ := cmd.Flags().GetBool("fail-on-error")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("include-passed") {
		includePassed = cfg.Validation.ReportIncludePassed
	}
	if formatFlag == "" {
		formatFlag = cfg.ReportFormat
	}
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	jobs, err := validation.Plan(cfg.Validation, datasets...)
	if err != nil {
		return common.NewUserError("Cannot plan validation", err)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No files to validate. Check data_validation in your config."))
		return nil
	}

	var progress *cli.Progress
	if !noProgress {
		progress = cli.NewProgress(cmd.ErrOrStderr(), len(jobs), "Validating files...")
	}

	runner := validation.NewRunner(engine,
		validation.WithWorkers(cfg.Validation.Workers),
		validation.WithFileCallback(func(validation.Job, []model.ValidationResult) {
			progress.Step()
		}))

	started := time.Now()
	results, runErr := runner.Execute(ctx, jobs)
	progress.Finish()

	summary := report.Summarize(results)
	report.LogSummary(summary)
	fmt.Fprintln(out, cli.RenderSummary(summary))

	path, err := report.Save(cfg.Data.ReportDir, started, format, report.Rows(results, includePassed))
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess("Report written to "+path))

	counts := results.Counts()
	if !noStore {
		if err := recordRun(ctx, cfg, &model.Run{
			Kind:       model.RunKindRaw,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Passed:     counts.Passed,
			Fixed:      counts.Fixed,
			Failed:     counts.Failed,
		}, results, nil); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if failOnError && counts.Failed > 0 {
		return fmt.Errorf("%w: %d of %d checks failed", common.ErrValidationFailed, counts.Failed, counts.Total())
	}
	return nil
}
