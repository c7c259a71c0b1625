package backup

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(day string) func() time.Time {
	ts, err := time.Parse(dayLayout, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts.Add(10 * time.Hour) }
}

func writeRaw(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultRawMarker, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestStore_BackupMirrorsRelativePath(t *testing.T) {
	dir := t.TempDir()
	raw := writeRaw(t, dir, "cvm/pl/202401.csv", "a;b\n1;2\n")
	store := NewStore(filepath.Join(dir, "backup"), WithClock(fixedClock("2026-03-14")))

	got, err := store.Backup(raw)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup", "2026-03-14", "cvm", "pl", "202401.csv"), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "a;b\n1;2\n", string(data))
}

func TestStore_BackupOutsideRawKeepsFullPath(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "cvm_pl", "data.csv")
	second := filepath.Join(dir, "cvm_blc", "data.csv")
	for path, content := range map[string]string{first: "pl;h\n1\n", second: "blc;h\n1\n2\n"} {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
	store := NewStore(filepath.Join(dir, "backup"), WithClock(fixedClock("2026-03-14")))

	gotFirst, err := store.Backup(first)
	require.NoError(t, err)
	gotSecond, err := store.Backup(second)
	require.NoError(t, err)

	bucket := filepath.Join(dir, "backup", "2026-03-14")
	assert.Equal(t, filepath.Join(bucket, ExternalDir, first), gotFirst)
	assert.Equal(t, filepath.Join(bucket, ExternalDir, second), gotSecond)
	assert.NotEqual(t, gotFirst, gotSecond)

	data, err := os.ReadFile(gotFirst)
	require.NoError(t, err)
	assert.Equal(t, "pl;h\n1\n", string(data))
	data, err = os.ReadFile(gotSecond)
	require.NoError(t, err)
	assert.Equal(t, "blc;h\n1\n2\n", string(data))
}

func TestStore_RestoreLatestExternalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outside", "data.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte("original"), 0600))
	store := NewStore(filepath.Join(dir, "backup"), WithClock(fixedClock("2026-03-14")))

	_, err := store.Backup(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("changed"), 0600))

	rawRoot := filepath.Join(dir, DefaultRawMarker)
	_, restored, err := store.RestoreLatest(rawRoot, false)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, path, restored[0].Target)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	assert.NoFileExists(t, filepath.Join(rawRoot, "data.csv"))
}

func TestStore_BackupOncePerDay(t *testing.T) {
	dir := t.TempDir()
	raw := writeRaw(t, dir, "f.csv", "first")
	store := NewStore(filepath.Join(dir, "backup"), WithClock(fixedClock("2026-03-14")))

	first, err := store.Backup(raw)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(raw, []byte("second"), 0600))
	second, err := store.Backup(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestStore_BackupNewDayNewBucket(t *testing.T) {
	dir := t.TempDir()
	raw := writeRaw(t, dir, "f.csv", "monday")
	root := filepath.Join(dir, "backup")

	_, err := NewStore(root, WithClock(fixedClock("2026-03-16"))).Backup(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(raw, []byte("tuesday"), 0600))
	_, err = NewStore(root, WithClock(fixedClock("2026-03-17"))).Backup(raw)
	require.NoError(t, err)

	buckets, err := NewStore(root).Buckets()
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-17", "2026-03-16"}, buckets)
}

func TestStore_BackupConcurrentSameBucket(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "backup"), WithClock(fixedClock("2026-03-14")))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		raw := writeRaw(t, dir, filepath.Join("ds", string(rune('a'+i))+".csv"), "h\n")
		wg.Add(1)
		go func(i int, raw string) {
			defer wg.Done()
			_, errs[i] = store.Backup(raw)
		}(i, raw)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestStore_BackupFailsWhenRootUnusable(t *testing.T) {
	dir := t.TempDir()
	raw := writeRaw(t, dir, "f.csv", "data")
	root := filepath.Join(dir, "backup")
	require.NoError(t, os.WriteFile(root, []byte("not a directory"), 0600))

	_, err := NewStore(root).Backup(raw)
	assert.Error(t, err)
}

func TestStore_Restore(t *testing.T) {
	dir := t.TempDir()
	raw := writeRaw(t, dir, "f.csv", "original")
	store := NewStore(filepath.Join(dir, "backup"))

	bak, err := store.Backup(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(raw, []byte("broken"), 0600))

	require.NoError(t, store.Restore(bak, raw))
	data, err := os.ReadFile(raw)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestStore_RestoreLatest(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "backup")
	rawRoot := filepath.Join(dir, DefaultRawMarker)

	a := writeRaw(t, dir, "cvm/blc_1/a.csv", "old-a")
	b := writeRaw(t, dir, "cvm/pl/b.csv", "old-b")

	_, err := NewStore(root, WithClock(fixedClock("2026-01-01"))).Backup(a)
	require.NoError(t, err)

	latest := NewStore(root, WithClock(fixedClock("2026-01-02")))
	_, err = latest.Backup(a)
	require.NoError(t, err)
	_, err = latest.Backup(b)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(a, []byte("fixed-a"), 0600))
	require.NoError(t, os.WriteFile(b, []byte("fixed-b"), 0600))

	bucket, restored, err := latest.RestoreLatest(rawRoot, true)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02", bucket)
	assert.Len(t, restored, 2)
	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "fixed-a", string(data), "dry run must not write")

	_, restored, err = latest.RestoreLatest(rawRoot, false)
	require.NoError(t, err)
	assert.Len(t, restored, 2)

	for path, want := range map[string]string{a: "old-a", b: "old-b"} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

func TestStore_RestoreLatestWithoutBackups(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing"))
	_, _, err := store.RestoreLatest(t.TempDir(), false)
	assert.ErrorIs(t, err, ErrNoBackups)
}

func TestStore_BucketsIgnoresStrayEntries(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2026-02-01"), 0750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scratch"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2026-02-02"), nil, 0600))

	buckets, err := NewStore(root).Buckets()
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02-01"}, buckets)
}
