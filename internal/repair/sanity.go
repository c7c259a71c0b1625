package repair

import (
	"bytes"
	"fmt"
	"os"
)

// sanityCheck compares raw line counts of the repaired file and its backup.
// It only guards against catastrophic loss; it says nothing about content.
func (e *Engine) sanityCheck(fixedPath, backupPath string) (bool, string) {
	after, err := countLines(fixedPath)
	if err != nil {
		return false, fmt.Sprintf("Sanity check failed: %v", err)
	}
	before, err := countLines(backupPath)
	if err != nil {
		return false, fmt.Sprintf("Sanity check failed: %v", err)
	}

	if float64(after) < float64(before)*e.minRetained {
		loss := (1 - float64(after)/float64(before)) * 100
		return false, fmt.Sprintf("Too many lines removed: %d -> %d (%.1f%% reduction)", before, after, loss)
	}
	return true, "Sanity check passed"
}

// countLines counts lines the way a line iterator would: every newline ends
// a line and a final unterminated line counts too.
func countLines(path string) (int, error) {
	// #nosec G304 - path is a raw file or its backup
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n := bytes.Count(data, []byte("\n"))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		n++
	}
	return n, nil
}
