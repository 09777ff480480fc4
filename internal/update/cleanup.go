package update

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// stagingPrefix names the per-run download directories.
const stagingPrefix = ".tether-update-"

// Leftover is a file or directory an interrupted update left next to the binary.
type Leftover struct {
	Path    string
	ModTime time.Time
}

// SweepResult reports what Sweep removed.
type SweepResult struct {
	Removed []Leftover
}

// Leftovers lists staging directories and backups in the target's directory,
// oldest first.
func (r *BinaryReplacer) Leftovers() ([]Leftover, error) {
	dir := filepath.Dir(r.currentPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	backupName := filepath.Base(r.backupPath)
	var leftovers []Leftover
	for _, entry := range entries {
		name := entry.Name()
		if name != backupName && !(entry.IsDir() && strings.HasPrefix(name, stagingPrefix)) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // Removed while listing
		}
		leftovers = append(leftovers, Leftover{
			Path:    filepath.Join(dir, name),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(leftovers, func(i, j int) bool {
		return leftovers[i].ModTime.Before(leftovers[j].ModTime)
	})

	return leftovers, nil
}

// Sweep removes leftovers older than minAge. Run it before any update
// starts; a younger staging directory may belong to a concurrent run.
func (r *BinaryReplacer) Sweep(minAge time.Duration) (*SweepResult, error) {
	leftovers, err := r.Leftovers()
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	var errs *multierror.Error
	cutoff := time.Now().Add(-minAge)

	for _, l := range leftovers {
		if l.ModTime.After(cutoff) {
			continue
		}
		if err := os.RemoveAll(l.Path); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to remove %s: %w", l.Path, err))
			continue
		}
		result.Removed = append(result.Removed, l)
	}

	return result, errs.ErrorOrNil()
}
