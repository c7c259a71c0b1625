// Package backup keeps day-bucketed copies of raw files taken before they
// are modified, and restores them.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultRawMarker is the directory name that anchors relative backup paths.
const DefaultRawMarker = "01_raw"

// ExternalDir holds backups of files that live outside the raw tree, mirrored
// by absolute path.
const ExternalDir = "_external"

const dayLayout = "2006-01-02"

// ErrNoBackups is returned when the backup root holds no day buckets.
var ErrNoBackups = errors.New("no backups found")

// Store writes backups to <root>/<YYYY-MM-DD>/<relative path>. At most one
// backup exists per file per day; later calls on the same day return the
// existing copy so it always holds the first pre-image of the day.
type Store struct {
	now       func() time.Time
	root      string
	rawMarker string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to pick the day bucket.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithRawMarker overrides the directory name that relative paths are taken from.
func WithRawMarker(marker string) Option {
	return func(s *Store) {
		s.rawMarker = marker
	}
}

// NewStore creates a backup store rooted at root.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root:      root,
		rawMarker: DefaultRawMarker,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the backup root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns where today's backup of file lives, without creating it.
func (s *Store) Path(file string) string {
	return filepath.Join(s.root, s.now().Format(dayLayout), s.relative(file))
}

// Backup copies file into today's bucket unless a copy is already there.
func (s *Store) Backup(file string) (string, error) {
	dst := s.Path(file)

	// Several workers may create the same bucket at once.
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := os.Stat(dst); err == nil {
		slog.Debug("backup already exists, skipping", "file", filepath.Base(file), "backup", dst)
		return dst, nil
	}

	if err := copyFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", filepath.Base(file), err)
	}

	slog.Debug("backed up file", "file", filepath.Base(file), "backup", dst)
	return dst, nil
}

// Restore copies a backup over the original file.
func (s *Store) Restore(backupPath, originalPath string) error {
	if err := copyFile(backupPath, originalPath); err != nil {
		return fmt.Errorf("failed to restore %s: %w", filepath.Base(originalPath), err)
	}
	slog.Info("restored file from backup", "file", filepath.Base(originalPath))
	return nil
}

// Buckets lists the day buckets under the root, newest first.
func (s *Store) Buckets() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup root: %w", err)
	}

	buckets := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := time.Parse(dayLayout, entry.Name()); err != nil {
			continue
		}
		buckets = append(buckets, entry.Name())
	}

	sort.Sort(sort.Reverse(sort.StringSlice(buckets)))
	return buckets, nil
}

// Restored describes one file written back by RestoreLatest.
type Restored struct {
	Backup string
	Target string
}

// RestoreLatest copies every file of the newest bucket back under rawRoot,
// keeping its relative path. Files kept under ExternalDir go back to their
// original absolute path. With dryRun set nothing is written.
func (s *Store) RestoreLatest(rawRoot string, dryRun bool) (string, []Restored, error) {
	buckets, err := s.Buckets()
	if err != nil {
		return "", nil, err
	}
	if len(buckets) == 0 {
		return "", nil, fmt.Errorf("%w in %s", ErrNoBackups, s.root)
	}

	bucket := buckets[0]
	bucketDir := filepath.Join(s.root, bucket)

	var restored []Restored
	err = filepath.WalkDir(bucketDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(bucketDir, path)
		if relErr != nil {
			return relErr
		}
		dst := target(rawRoot, rel)

		if !dryRun {
			if mkErr := os.MkdirAll(filepath.Dir(dst), 0750); mkErr != nil {
				return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), mkErr)
			}
			if cpErr := copyFile(path, dst); cpErr != nil {
				return fmt.Errorf("failed to restore %s: %w", rel, cpErr)
			}
		}

		restored = append(restored, Restored{Backup: path, Target: dst})
		return nil
	})
	if err != nil {
		return bucket, restored, err
	}

	return bucket, restored, nil
}

// relative returns file's path below the raw marker directory. A file outside
// the raw tree is keyed by its full absolute path under ExternalDir, so files
// sharing a base name never share a backup.
func (s *Store) relative(file string) string {
	clean := filepath.Clean(file)
	parts := strings.Split(filepath.ToSlash(clean), "/")
	for i, part := range parts {
		if part == s.rawMarker && i+1 < len(parts) {
			return filepath.Join(parts[i+1:]...)
		}
	}

	abs, err := filepath.Abs(clean)
	if err != nil {
		abs = clean
	}
	return filepath.Join(ExternalDir, strings.TrimPrefix(abs, filepath.VolumeName(abs)))
}

// target maps a path relative to a bucket back to the file it was taken from.
func target(rawRoot, rel string) string {
	prefix := ExternalDir + string(filepath.Separator)
	if strings.HasPrefix(rel, prefix) {
		return string(filepath.Separator) + strings.TrimPrefix(rel, prefix)
	}
	return filepath.Join(rawRoot, rel)
}

// copyFile copies src to dst through a temp file and an atomic rename.
func copyFile(src, dst string) error {
	// #nosec G304 - src is a configured raw file or one of our backups
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			slog.Error("failed to close source file", "error", closeErr)
		}
	}()

	info, err := source.Stat()
	if err != nil {
		return err
	}

	tmpDst := dst + ".tmp"
	// #nosec G304 - tmpDst is derived from a validated destination
	destination, err := os.OpenFile(tmpDst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		if closeErr := destination.Close(); closeErr != nil {
			slog.Error("failed to close destination file after copy error", "error", closeErr)
		}
		if rmErr := os.Remove(tmpDst); rmErr != nil {
			slog.Error("failed to remove temporary file after copy error", "error", rmErr)
		}
		return err
	}

	if err := destination.Close(); err != nil {
		if rmErr := os.Remove(tmpDst); rmErr != nil {
			slog.Error("failed to remove temporary file after close error", "error", rmErr)
		}
		return err
	}

	if err := os.Chtimes(tmpDst, info.ModTime(), info.ModTime()); err != nil {
		slog.Debug("failed to preserve modification time", "file", dst, "error", err)
	}

	return os.Rename(tmpDst, dst)
}
