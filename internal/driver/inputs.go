package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"wgsmaster/internal/seqio"
)

// ErrNoInputs is returned when no submission file matches.
var ErrNoInputs = errors.New("no input files")

// ListInputs expands paths into the sorted list of submission files. A
// directory contributes the files whose base name matches pattern (its
// subdirectories too when recursive); a file is taken as given.
func ListInputs(paths []string, pattern string, recursive bool) ([]string, error) {
	if pattern == "" {
		pattern = "*" + seqio.DefaultExt
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("input pattern %q: %w", pattern, err)
	}
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if ok, _ := filepath.Match(pattern, d.Name()); ok {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Сортируем для детерминированного порядка
	slices.Sort(files)
	files = slices.Compact(files)
	if len(files) == 0 {
		return nil, ErrNoInputs
	}
	return files, nil
}
