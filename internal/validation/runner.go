// Package validation drives raw-file validation across configured datasets.
package validation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/Veraticus/ifrec/internal/model"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownDataset is returned when a requested dataset is not configured.
var ErrUnknownDataset = errors.New("dataset not configured")

// FileValidator validates and repairs a single file.
type FileValidator interface {
	ValidateAndFix(path string, validations map[string]model.Strategy, dataset string) []model.ValidationResult
}

// Job is one file scheduled for validation.
type Job struct {
	Validations map[string]model.Strategy
	Dataset     string
	Path        string
}

// Runner validates files of every configured dataset. Files are independent
// and run concurrently; a file is only ever touched by one goroutine.
type Runner struct {
	validator FileValidator
	onFile    func(Job, []model.ValidationResult)
	workers   int
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many files are processed at once. Zero or less uses
// the number of CPUs.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithFileCallback registers fn to be called after each file completes.
// It may be called from several goroutines.
func WithFileCallback(fn func(Job, []model.ValidationResult)) Option {
	return func(r *Runner) {
		r.onFile = fn
	}
}

// NewRunner creates a runner using validator for each file.
func NewRunner(validator FileValidator, opts ...Option) *Runner {
	r := &Runner{validator: validator}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = runtime.NumCPU()
	}
	return r
}

// Plan lists the files to validate, dataset by dataset in name order. When
// only is non-empty, datasets not named in it are skipped.
func Plan(cfg model.DataValidationConfig, only ...string) ([]Job, error) {
	if !cfg.Enabled {
		slog.Info("data validation is disabled")
		return nil, nil
	}

	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		if _, ok := cfg.Datasets[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
		}
		wanted[name] = true
	}

	names := make([]string, 0, len(cfg.Datasets))
	for name := range cfg.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	var jobs []Job
	for _, name := range names {
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		ds := cfg.Datasets[name]
		if len(ds.Validations) == 0 {
			slog.Debug("no validations configured", "dataset", name)
			continue
		}

		files, err := Files(ds.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to list files for %s: %w", name, err)
		}
		if len(files) == 0 {
			slog.Warn("no files found for dataset", "dataset", name, "path", ds.Path)
			continue
		}

		slog.Info("validating dataset", "dataset", name, "files", len(files))
		for _, f := range files {
			jobs = append(jobs, Job{Dataset: name, Path: f, Validations: ds.Validations})
		}
	}
	return jobs, nil
}

// Files resolves a dataset path: a directory yields its *.csv files sorted by
// name, a file yields itself, a missing path yields nothing.
func Files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Run plans and executes validation for cfg.
func (r *Runner) Run(ctx context.Context, cfg model.DataValidationConfig, only ...string) (Results, error) {
	jobs, err := Plan(cfg, only...)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, jobs)
}

// Execute validates every job. Results keep job order regardless of which
// file finished first. Cancelling ctx stops new files from starting; files
// already in progress run to completion.
func (r *Runner) Execute(ctx context.Context, jobs []Job) (Results, error) {
	perFile := make([][]model.ValidationResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results := r.validator.ValidateAndFix(job.Path, job.Validations, job.Dataset)
			perFile[i] = results
			logFile(job, results)
			if r.onFile != nil {
				r.onFile(job, results)
			}
			return nil
		})
	}

	waitErr := g.Wait()

	var all Results
	for _, results := range perFile {
		all = all.Append(results...)
	}
	logDatasets(all)

	if waitErr != nil {
		return all, fmt.Errorf("validation interrupted: %w", waitErr)
	}
	if err := ctx.Err(); err != nil {
		return all, fmt.Errorf("validation interrupted: %w", err)
	}
	return all, nil
}

func logFile(job Job, results []model.ValidationResult) {
	for _, res := range results {
		switch res.Status {
		case model.StatusFailed:
			slog.Warn("validation failed",
				"dataset", job.Dataset,
				"file", filepath.Base(job.Path),
				"validation", res.ValidationName,
				"strategy", res.Strategy)
		case model.StatusFixed:
			slog.Info("validation fixed",
				"dataset", job.Dataset,
				"file", filepath.Base(job.Path),
				"validation", res.ValidationName,
				"fixes", res.FixesApplied)
		}
	}
}

func logDatasets(all Results) {
	for _, name := range all.Datasets() {
		c := all.ForDataset(name).Counts()
		slog.Info("dataset summary",
			"dataset", name,
			"passed", c.Passed,
			"fixed", c.Fixed,
			"failed", c.Failed)
	}
}
