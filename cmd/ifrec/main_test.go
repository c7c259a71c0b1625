package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/ifrec/internal/common"
	"github.com/Veraticus/ifrec/internal/storage"
	"github.com/Veraticus/ifrec/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workspace struct {
	root   string
	raw    string
	config string
}

func newWorkspace(t *testing.T, strategy string) *workspace {
	t.Helper()
	root := t.TempDir()
	ws := &workspace{
		root:   root,
		raw:    filepath.Join(root, "data", "01_raw"),
		config: filepath.Join(root, "ifrec.yaml"),
	}

	testutil.WriteTree(t, ws.raw, map[string]string{
		"pl/202401.csv":  "cnpj;nome;pl\n1;Fundo \"A;100\n2;Fundo B;200\n",
		"pl/202402.csv":  "cnpj;nome;pl\n1;Fundo A;110\n2;Fundo B;210\n",
		"cad/cad_fi.csv": "cnpj;classe\n1;\"Renda\" Fixa\n2;Multimercado\n3;Acoes\n",
	})
	testutil.WriteFile(t, filepath.Join(root, "data", "04_feature", "features.csv"),
		"cnpj;rating;periodo\n1;AA;202401\n1;AA;202403\n2;ZZ;202401\n")

	testutil.WriteFile(t, ws.config, fmt.Sprintf(`
data:
  raw_root: %[1]s/data/01_raw
  backup_root: %[1]s/data/backups
  database: %[1]s/data/ifrec.db
  report_dir: %[1]s/data/08_reporting
data_validation:
  workers: 2
  datasets:
    monthly_pl:
      path: %[1]s/data/01_raw/pl
      validations:
        check_redundant_quotes: %[2]s
        check_malformed_quotes: fix
    cadastro:
      path: %[1]s/data/01_raw/cad/cad_fi.csv
      validations:
        check_malformed_quotes: fix
        check_unknown: fix
table_validation:
  datasets:
    features:
      path: %[1]s/data/04_feature/features.csv
      checks:
        - name: validate_allowed_values
          column: rating
          allowed: [AA, A]
        - name: validate_time_completeness
          time_column: periodo
          group_column: cnpj
`, root, strategy))

	return ws
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (ws *workspace) openStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(ws.root, "data", "ifrec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestValidateCommand_Fix(t *testing.T) {
	ws := newWorkspace(t, "fix")

	out, err := execute(t, "validate", "--config", ws.config, "--no-progress", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Data Validation Summary")
	assert.Contains(t, out, "Report written to")

	assert.Equal(t, "cnpj;nome;pl\n1;Fundo A;100\n2;Fundo B;200\n",
		testutil.ReadFile(t, filepath.Join(ws.raw, "pl", "202401.csv")))
	assert.Equal(t, "cnpj;classe\n1;\"\"Renda\"\" Fixa\n2;Multimercado\n3;Acoes\n",
		testutil.ReadFile(t, filepath.Join(ws.raw, "cad", "cad_fi.csv")))

	reports, err := filepath.Glob(filepath.Join(ws.root, "data", "08_reporting", "validation_report_*.csv"))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	report := testutil.ReadFile(t, reports[0])
	assert.True(t, strings.HasPrefix(report, "timestamp,dataset_name,validation_name"))
	assert.Contains(t, report, "monthly_pl/202401.csv,check_redundant_quotes,fixed")
	assert.NotContains(t, report, "passed")

	runs, err := ws.openStore(t).ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Fixed)
	assert.Equal(t, 3, runs[0].Passed)
	assert.Zero(t, runs[0].Failed)

	out, err = execute(t, "history", "--config", ws.config, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].ID)

	out, err = execute(t, "history", "--config", ws.config, "--run", runs[0].ID, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "cadastro/cad_fi.csv")
}

func TestValidateCommand_DatasetFilterAndRestore(t *testing.T) {
	ws := newWorkspace(t, "ignore")
	original := testutil.ReadFile(t, filepath.Join(ws.raw, "pl", "202401.csv"))

	_, err := execute(t, "validate", "--config", ws.config, "--no-progress", "--no-store",
		"--dataset", "monthly_pl", "--format", "xlsx", "--log-level", "error")
	require.NoError(t, err)

	assert.Equal(t, "cnpj;nome;pl\n2;Fundo B;200\n",
		testutil.ReadFile(t, filepath.Join(ws.raw, "pl", "202401.csv")))
	assert.Contains(t, testutil.ReadFile(t, filepath.Join(ws.raw, "cad", "cad_fi.csv")), "\"Renda\" Fixa",
		"datasets outside the filter are untouched")

	reports, err := filepath.Glob(filepath.Join(ws.root, "data", "08_reporting", "*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	out, err := execute(t, "restore", "--config", ws.config, "--dry-run", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Would restore 1 files")
	assert.NotEqual(t, original, testutil.ReadFile(t, filepath.Join(ws.raw, "pl", "202401.csv")))

	out, err = execute(t, "restore", "--config", ws.config, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 1 files")
	assert.Equal(t, original, testutil.ReadFile(t, filepath.Join(ws.raw, "pl", "202401.csv")))
}

func TestValidateCommand_UnknownDataset(t *testing.T) {
	ws := newWorkspace(t, "fix")
	_, err := execute(t, "validate", "--config", ws.config, "--no-progress", "--dataset", "nope", "--log-level", "error")

	var ue *common.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Cannot plan validation", ue.UserMessage)
}

func TestCheckTablesCommand(t *testing.T) {
	ws := newWorkspace(t, "fix")

	out, err := execute(t, "check-tables", "--config", ws.config, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "validate_allowed_values")
	assert.Contains(t, out, "1 groups have gaps (1 missing months)")

	_, err = execute(t, "check-tables", "--config", ws.config, "--no-store", "--fail-on-error", "--log-level", "error")
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	runs, err := ws.openStore(t).ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Failed)
}

func TestRestoreCommand_NoBackups(t *testing.T) {
	ws := newWorkspace(t, "fix")
	out, err := execute(t, "restore", "--config", ws.config, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "No backups found")
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ifrec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report_format: pdf\n"), 0600))

	_, err := execute(t, "validate", "--config", path, "--log-level", "error")
	var ue *common.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Configuration is invalid", ue.UserMessage)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "ifrec dev\n", out)
}
