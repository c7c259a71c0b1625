package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// WriteTree writes every file of tree under root. Keys are slash-separated
// paths relative to root.
func WriteTree(t *testing.T, root string, tree map[string]string) {
	t.Helper()
	for rel, content := range tree {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test fixture path
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
