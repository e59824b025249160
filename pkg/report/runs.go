package report

import (
	"os"
	"path/filepath"
	"sort"
)

// SavedRun points at a prior run directory containing a summary file.
type SavedRun struct {
	Name string
	Dir  string
}

// FindSavedRuns lists the run directories directly under root that carry a
// summary.txt, most recent first. Directory names embed the run timestamp,
// so a reverse lexical sort orders them newest to oldest.
func FindSavedRuns(root string) []SavedRun {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var runs []SavedRun
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, summaryName)); err != nil {
			continue
		}
		runs = append(runs, SavedRun{Name: e.Name(), Dir: dir})
	}
	sort.Slice(runs, func(a, b int) bool { return runs[a].Name > runs[b].Name })
	return runs
}
