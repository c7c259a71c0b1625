package table

import (
	"path/filepath"
	"testing"

	"github.com/Veraticus/ifrec/internal/model"
	"github.com/Veraticus/ifrec/internal/quotes"
	"github.com/Veraticus/ifrec/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAll(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"features.csv": "fund;rating\nA;AA\nB;C\n",
		"nav.csv":      "fund;period\nA;202401\nA;202402\n",
	})

	codec, err := quotes.NewCodec(quotes.DefaultEncoding)
	require.NoError(t, err)

	cfg := model.TableValidationConfig{
		Datasets: map[string]model.TableDatasetConfig{
			"nav": {
				Path: filepath.Join(dir, "nav.csv"),
				Checks: []model.TableCheckConfig{
					{Name: "validate_time_completeness", TimeColumn: "period", GroupColumn: "fund"},
				},
			},
			"features": {
				Path: filepath.Join(dir, "features.csv"),
				Checks: []model.TableCheckConfig{
					{Name: "validate_allowed_values", Column: "rating", Allowed: []string{"AA"}},
				},
			},
			"absent": {Path: filepath.Join(dir, "absent.csv")},
		},
	}

	results := RunAll(cfg, codec)
	require.Len(t, results, 3)

	assert.Equal(t, "absent", results[0].DatasetName)
	assert.False(t, results[0].Passed)
	assert.Contains(t, results[0].Details, "Error loading table")

	assert.Equal(t, "features", results[1].DatasetName)
	assert.False(t, results[1].Passed)

	assert.Equal(t, "nav", results[2].DatasetName)
	assert.True(t, results[2].Passed)
}
