package seqio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wgsmaster/internal/accession"
	"wgsmaster/internal/project"
)

// OutputName maps an input file to its processed-output path: the suffix is
// appended to the base name, and with preservePaths the input's directory
// relative to inputRoot is recreated under outDir.
func OutputName(input, inputRoot, outDir, suffix string, preservePaths bool) string {
	name := filepath.Base(input) + suffix
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), name)
	}
	if preservePaths && inputRoot != "" {
		if rel, err := filepath.Rel(inputRoot, filepath.Dir(input)); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.Join(outDir, rel, name)
		}
	}
	return filepath.Join(outDir, name)
}

// MasterName is the path of the master record: the master accession
// (prefix, version, zero ordinal) with the stream extension.
func MasterName(outDir string, cfg *project.Config, width int) string {
	return filepath.Join(outDir, accession.MasterAccession(cfg, width)+DefaultExt)
}

// IDMapping pairs a submitter entry key with its assigned accession.
type IDMapping struct {
	Key       string
	Accession string
}

// WriteIDMap writes "key<TAB>accession" lines.
func WriteIDMap(path string, rows []IDMapping) error {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.Key + "\t" + r.Accession
	}
	return writeLines(path, lines)
}

// WriteFileList writes one output path per line, in processing order.
func WriteFileList(path string, files []string) error {
	return writeLines(path, files)
}

func writeLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}
