package validation

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/ifrec/internal/backup"
	"github.com/Veraticus/ifrec/internal/model"
	"github.com/Veraticus/ifrec/internal/quotes"
	"github.com/Veraticus/ifrec/internal/repair"
	"github.com/Veraticus/ifrec/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingValidator struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (v *recordingValidator) ValidateAndFix(path string, validations map[string]model.Strategy, dataset string) []model.ValidationResult {
	v.calls.Add(1)
	n := v.inFlight.Add(1)
	for {
		p := v.peak.Load()
		if n <= p || v.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(v.delay)
	v.inFlight.Add(-1)

	return []model.ValidationResult{{
		FilePath:       path,
		DatasetName:    dataset,
		ValidationName: "check_redundant_quotes",
		Status:         model.StatusPassed,
		Strategy:       validations["check_redundant_quotes"],
	}}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "b.csv"), "h\n")
	testutil.WriteFile(t, filepath.Join(dir, "a.CSV"), "h\n")
	testutil.WriteFile(t, filepath.Join(dir, "notes.txt"), "x")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub.csv"), 0750))

	files, err := Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.csv")}, files)

	files, err = Files(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.csv")}, files)

	files, err = Files(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "pl", "202401.csv"), "h\n")
	testutil.WriteFile(t, filepath.Join(dir, "pl", "202402.csv"), "h\n")
	testutil.WriteFile(t, filepath.Join(dir, "cad.csv"), "h\n")

	fix := map[string]model.Strategy{"check_redundant_quotes": model.StrategyFix}
	cfg := model.DataValidationConfig{
		Enabled: true,
		Datasets: map[string]model.DatasetConfig{
			"monthly_pl": {Path: filepath.Join(dir, "pl"), Validations: fix},
			"cadastro":   {Path: filepath.Join(dir, "cad.csv"), Validations: fix},
			"empty":      {Path: filepath.Join(dir, "nothing"), Validations: fix},
			"unchecked":  {Path: filepath.Join(dir, "cad.csv")},
		},
	}

	jobs, err := Plan(cfg)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "cadastro", jobs[0].Dataset)
	assert.Equal(t, "monthly_pl", jobs[1].Dataset)
	assert.Equal(t, filepath.Join(dir, "pl", "202401.csv"), jobs[1].Path)
	assert.Equal(t, filepath.Join(dir, "pl", "202402.csv"), jobs[2].Path)

	jobs, err = Plan(cfg, "monthly_pl")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	_, err = Plan(cfg, "nope")
	assert.ErrorIs(t, err, ErrUnknownDataset)

	cfg.Enabled = false
	jobs, err = Plan(cfg)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestRunner_ExecuteKeepsJobOrderAndLimit(t *testing.T) {
	v := &recordingValidator{delay: 5 * time.Millisecond}

	var mu sync.Mutex
	var seen []string
	r := NewRunner(v, WithWorkers(2), WithFileCallback(func(job Job, _ []model.ValidationResult) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.Path)
	}))

	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = Job{Dataset: "ds", Path: filepath.Join("f", string(rune('a'+i))+".csv")}
	}

	results, err := r.Execute(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 8)
	for i, res := range results {
		assert.Equal(t, jobs[i].Path, res.FilePath)
	}
	assert.Len(t, seen, 8)
	assert.LessOrEqual(t, v.peak.Load(), int32(2))
	assert.Equal(t, int32(8), v.calls.Load())
}

func TestRunner_ExecuteCancelled(t *testing.T) {
	v := &recordingValidator{}
	r := NewRunner(v, WithWorkers(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := r.Execute(ctx, []Job{{Path: "a.csv"}, {Path: "b.csv"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Zero(t, v.calls.Load())
}

func TestRunner_RunRepairsDatasets(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "01_raw")
	testutil.WriteFile(t, filepath.Join(raw, "pl", "a.csv"), "h;v\n1;x\"y\n2;ok\n")
	testutil.WriteFile(t, filepath.Join(raw, "pl", "b.csv"), "h;v\n1;ok\n")
	testutil.WriteFile(t, filepath.Join(raw, "blc", "c.csv"), "h;v\n1;\"q\"\n2;ok\n3;ok\n")

	codec, err := quotes.NewCodec("latin1")
	require.NoError(t, err)
	engine := repair.NewEngine(quotes.NewClassifier(codec), backup.NewStore(filepath.Join(dir, "bak")))

	both := map[string]model.Strategy{
		"check_redundant_quotes": model.StrategyFix,
		"check_malformed_quotes": model.StrategyFix,
	}
	cfg := model.DataValidationConfig{
		Enabled: true,
		Workers: 3,
		Datasets: map[string]model.DatasetConfig{
			"pl":  {Path: filepath.Join(raw, "pl"), Validations: both},
			"blc": {Path: filepath.Join(raw, "blc"), Validations: both},
		},
	}

	results, err := NewRunner(engine, WithWorkers(cfg.Workers)).Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, results, 6)

	assert.Equal(t, []string{"blc", "pl"}, results.Datasets())
	assert.Equal(t, Counts{Passed: 4, Fixed: 2}, results.Counts())
	assert.Equal(t, Counts{Passed: 1, Fixed: 1}, results.ForDataset("blc").Counts())

	assert.Equal(t, "h;v\n1;xy\n2;ok\n", testutil.ReadFile(t, filepath.Join(raw, "pl", "a.csv")))
	assert.Equal(t, "h;v\n1;\"\"q\"\"\n2;ok\n3;ok\n", testutil.ReadFile(t, filepath.Join(raw, "blc", "c.csv")))
}

func TestResults(t *testing.T) {
	var r Results
	r = r.Append(
		model.ValidationResult{DatasetName: "a", Status: model.StatusPassed},
		model.ValidationResult{DatasetName: "b", Status: model.StatusFailed},
		model.ValidationResult{DatasetName: "a", Status: model.StatusFixed},
	)
	assert.Equal(t, Counts{Passed: 1, Fixed: 1, Failed: 1}, r.Counts())
	assert.Equal(t, 3, r.Counts().Total())
	assert.Equal(t, []string{"a", "b"}, r.Datasets())
	assert.Len(t, r.ForDataset("a"), 2)
}
