package repair

import (
	"path/filepath"
	"testing"

	"github.com/Veraticus/ifrec/internal/model"
	"github.com/Veraticus/ifrec/internal/quotes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndFix_RunsRedundantBeforeMalformed(t *testing.T) {
	env := newTestEnv(t)
	path := env.write(t, "f.csv", "h;a;b;c\n7;x\"y;a\"b\"c;z\n8;ok;ok;ok\n")

	results := env.engine.ValidateAndFix(path, map[string]model.Strategy{
		"check_malformed_quotes": model.StrategyFix,
		"check_redundant_quotes": model.StrategyFix,
	}, "cvm_pl")

	require.Len(t, results, 2)
	assert.Equal(t, "check_redundant_quotes", results[0].ValidationName)
	assert.Equal(t, "check_malformed_quotes", results[1].ValidationName)
	for _, r := range results {
		assert.Equal(t, model.StatusFixed, r.Status)
		assert.Equal(t, []int{2}, r.AffectedLines)
		assert.Equal(t, 1, r.FixesApplied)
		assert.Equal(t, "cvm_pl", r.DatasetName)
		assert.Equal(t, model.StrategyFix, r.Strategy)
	}
	assert.Equal(t, "h;a;b;c\n7;xy;a\"\"b\"\"c;z\n8;ok;ok;ok\n", read(t, path))

	classifier := quotes.NewClassifier(mustCodec(t))
	for _, check := range quotes.Checks() {
		out, err := classifier.Check(path, check)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPassed, out.Status)
	}
}

func TestValidateAndFix_EscapedPairsPass(t *testing.T) {
	env := newTestEnv(t)
	content := "h;t\n123;AB\"\"CD\"\"EF;456\n"
	path := env.write(t, "f.csv", content)

	results := env.engine.ValidateAndFix(path, map[string]model.Strategy{
		"check_redundant_quotes": model.StrategyFix,
		"check_malformed_quotes": model.StrategyFix,
	}, "")

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, model.StatusPassed, r.Status)
		assert.Zero(t, r.FixesApplied)
	}
	assert.Equal(t, content, read(t, path))
	assert.NoDirExists(t, filepath.Join(env.dir, "backup"))
}

func TestValidateAndFix_IgnoreStrategy(t *testing.T) {
	env := newTestEnv(t)
	path := env.write(t, "f.csv", "h\n1;ok\n2;a\"b\n3;ok\n4;ok\n")

	results := env.engine.ValidateAndFix(path, map[string]model.Strategy{
		"check_redundant_quotes": model.StrategyIgnore,
	}, "ds")

	require.Len(t, results, 1)
	assert.Equal(t, model.StatusFixed, results[0].Status)
	assert.Equal(t, model.StrategyIgnore, results[0].Strategy)
	assert.Equal(t, []int{3}, results[0].AffectedLines)
	assert.Equal(t, "Removed 1 lines", results[0].Details)
	assert.Equal(t, "h\n1;ok\n3;ok\n4;ok\n", read(t, path))
}

func TestValidateAndFix_RollbackIsFailed(t *testing.T) {
	env := newTestEnv(t)
	original := "h\n1;a\"b\n2;a\"b\n3;a\"b\n4;ok\n"
	path := env.write(t, "f.csv", original)

	results := env.engine.ValidateAndFix(path, map[string]model.Strategy{
		"check_redundant_quotes": model.StrategyIgnore,
	}, "ds")

	require.Len(t, results, 1)
	assert.Equal(t, model.StatusFailed, results[0].Status)
	assert.Equal(t, []int{2, 3, 4}, results[0].AffectedLines)
	assert.Zero(t, results[0].FixesApplied)
	assert.Contains(t, results[0].Details, "IGNORE reverted")
	assert.Equal(t, original, read(t, path))
}

func TestValidateAndFix_UnknownCheckSkipped(t *testing.T) {
	env := newTestEnv(t)
	path := env.write(t, "f.csv", "h\n1\n")

	results := env.engine.ValidateAndFix(path, map[string]model.Strategy{
		"check_unicorns":         model.StrategyFix,
		"check_redundant_quotes": model.StrategyFix,
		"check_malformed_quotes": model.Strategy("shrug"),
	}, "")

	require.Len(t, results, 1)
	assert.Equal(t, "check_redundant_quotes", results[0].ValidationName)
	assert.Equal(t, model.StatusPassed, results[0].Status)
}

func TestValidateAndFix_UnreadableFile(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "01_raw", "missing.csv")

	results := env.engine.ValidateAndFix(path, map[string]model.Strategy{
		"check_redundant_quotes": model.StrategyFix,
		"check_malformed_quotes": model.StrategyIgnore,
	}, "ds")

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, model.StatusFailed, r.Status)
		assert.Contains(t, r.Details, "Error reading file")
	}
}

func TestApplyStrategy(t *testing.T) {
	unrepairable := quotes.Check(0)
	require.False(t, unrepairable.Repairable())

	tests := []struct {
		name       string
		check      quotes.Check
		strategy   model.Strategy
		affected   []int
		wantPrefix string
		wantFile   string
		wantLines  []int
	}{
		{
			name:      "fix repairs in place",
			check:     quotes.RedundantQuotes,
			strategy:  model.StrategyFix,
			affected:  []int{2},
			wantFile:  "h;a\n1;xy\n2;ok\n",
			wantLines: []int{2},
		},
		{
			name:       "fix without repair falls back to ignore",
			check:      unrepairable,
			strategy:   model.StrategyFix,
			affected:   []int{2},
			wantPrefix: "Fallback to IGNORE: ",
			wantFile:   "h;a\n2;ok\n",
			wantLines:  []int{2},
		},
		{
			name:      "ignore removes lines",
			check:     quotes.RedundantQuotes,
			strategy:  model.StrategyIgnore,
			affected:  []int{2},
			wantFile:  "h;a\n2;ok\n",
			wantLines: []int{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			path := env.write(t, "f.csv", "h;a\n1;x\"y\n2;ok\n")

			fix, prefix := env.engine.applyStrategy(path, tt.check, tt.strategy, tt.affected)

			require.True(t, fix.Success, fix.Details)
			assert.Equal(t, tt.wantPrefix, prefix)
			assert.Equal(t, tt.wantLines, fix.Lines)
			assert.Equal(t, tt.wantFile, read(t, path))
		})
	}
}
