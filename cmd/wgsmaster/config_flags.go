package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wgsmaster/internal/project"
)

// addConfigFlags registers the project option overrides shared by
// process and check.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("manifest", "", "path to "+project.ManifestName+" (default: searched upward from the inputs)")
	f.String("prefix", "", "accession prefix (four or six letters)")
	f.Int("acc-version", 0, "assembly version of the accession prefix")
	f.String("kind", "", "project kind (wgs|tsa|tls)")
	f.String("source", "", "archive (ncbi|embl|ddbj)")
	f.Bool("tpa", false, "third-party annotation project")
	f.Bool("pre-assigned", false, "records already carry project accessions")
	f.String("sort", "", "accession order (unsorted|length-desc|length-asc|by-id)")
	f.Bool("secondary-accs", false, "allow secondary accessions")
	f.Bool("ignore-general-ids", false, "skip general id checks")
	f.Bool("require-general-id", false, "reject records without a general id")
	f.Bool("replace-db-name", false, "rewrite general id databases to the project name")
	f.Bool("fix-tech", false, "correct MolInfo.tech")
	f.Bool("fix-biomol", false, "correct MolInfo.biomol")
	f.Bool("fix-mol", false, "correct instance mol")
	f.String("rna-biomol", "", "expected TSA biomol (mRNA|rRNA|ncRNA|transcribed-RNA)")
	f.Bool("dblink-override", false, "take DBLink from the first record")
	f.String("submission-date", "", "force the submission date (YYYY-MM-DD)")
	f.String("scaffold", "", "scaffold kind (none|chromosomal|tpa-chromosomal|genomic|tpa-genomic)")
	f.String("scaffold-prefix", "", "accession prefix of the scaffold project")
	f.String("pattern", "", "input file pattern (default *.msgpack)")
	f.Bool("recursive", false, "descend into input subdirectories")
	f.String("taxonomy", "", "taxonomy snapshot (YAML)")
	f.String("biblio", "", "publication snapshot (YAML)")
}

// addOutputFlags registers the flags that only make sense when files are written.
func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("out-dir", "", "directory for processed records and the master")
	f.String("suffix", "", "suffix inserted before the extension of output names")
	f.Bool("preserve-paths", false, "mirror input subdirectories under --out-dir")
	f.String("id-map", "", "write a key to accession map here")
	f.String("file-list", "", "write the list of produced files here")
}

// settings is everything a run needs, merged from the manifest and flags.
type settings struct {
	cfg       project.Config
	paths     []string
	inputRoot string
	pattern   string
	recursive bool
	output    project.OutputOptions
	lookup    project.LookupOptions
	manifest  string
}

// loadSettings reads the manifest (explicit or found upward from the first
// input) and applies flag overrides on top of it.
func loadSettings(cmd *cobra.Command, args []string) (*settings, error) {
	s := &settings{paths: args}
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest flag: %w", err)
	}

	var m *project.Manifest
	if manifestPath != "" {
		if m, err = project.DecodeManifest(manifestPath); err != nil {
			return nil, err
		}
	} else {
		start := "."
		if len(args) > 0 {
			start = manifestSearchDir(args[0])
		}
		found, ok, err := project.LoadManifest(start)
		if err != nil {
			return nil, err
		}
		if ok {
			m = found
		}
	}
	if m != nil {
		s.cfg = m.Config
		s.output = m.Output
		s.lookup = m.Lookup
		s.pattern = m.Input.Pattern
		s.recursive = m.Input.Recursive
		s.manifest = m.Path
		if len(s.paths) == 0 && m.Input.Dir != "" {
			s.paths = []string{m.Input.Dir}
		}
	}

	if err := applyConfigFlags(cmd, s); err != nil {
		return nil, err
	}
	if s.cfg.Prefix == "" {
		return nil, fmt.Errorf("%w: no accession prefix (set --prefix or add %s)", project.ErrInvalidConfig, project.ManifestName)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(s.paths) == 1 {
		if isDir(s.paths[0]) {
			s.inputRoot = s.paths[0]
		}
	}
	return s, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func manifestSearchDir(path string) string {
	if isDir(path) {
		return path
	}
	return filepath.Dir(path)
}

// applyConfigFlags overrides manifest values with the flags the user set.
func applyConfigFlags(cmd *cobra.Command, s *settings) error {
	f := cmd.Flags()
	var firstErr error
	str := func(name string, apply func(string) error) {
		if firstErr != nil || !f.Changed(name) {
			return
		}
		v, err := f.GetString(name)
		if err == nil {
			err = apply(v)
		}
		if err != nil {
			firstErr = fmt.Errorf("--%s: %w", name, err)
		}
	}
	flag := func(name string, dst *bool) {
		if firstErr != nil || !f.Changed(name) {
			return
		}
		v, err := f.GetBool(name)
		if err != nil {
			firstErr = fmt.Errorf("failed to get %s flag: %w", name, err)
			return
		}
		*dst = v
	}
	fix := func(name string, bit project.FixFlags) {
		on := s.cfg.Fix.Has(bit)
		flag(name, &on)
		if on {
			s.cfg.Fix |= bit
		} else {
			s.cfg.Fix &^= bit
		}
	}
	cfg := &s.cfg

	str("prefix", func(v string) error { cfg.Prefix = strings.ToUpper(strings.TrimSpace(v)); return nil })
	if f.Changed("acc-version") {
		v, err := f.GetInt("acc-version")
		if err != nil {
			return fmt.Errorf("failed to get acc-version flag: %w", err)
		}
		cfg.Version = v
	}
	str("kind", func(v string) (err error) { cfg.Kind, err = project.ParseKind(v); return })
	str("source", func(v string) (err error) { cfg.Source, err = project.ParseSource(v); return })
	str("sort", func(v string) (err error) { cfg.Sort, err = project.ParseSortOrder(v); return })
	str("scaffold", func(v string) (err error) { cfg.Scaffold, err = project.ParseScaffoldKind(v); return })
	str("scaffold-prefix", func(v string) error { cfg.ScaffoldPrefix = strings.ToUpper(strings.TrimSpace(v)); return nil })
	str("rna-biomol", func(v string) error {
		bits, err := project.ParseRNAOverride(v)
		if err != nil {
			return err
		}
		cfg.Fix &^= project.OverrideRRNA | project.OverrideNcRNA | project.OverrideTranscribedRNA
		cfg.Fix |= bits
		return nil
	})
	str("submission-date", func(v string) error {
		if strings.TrimSpace(v) == "" {
			cfg.SubmissionDate = nil
			return nil
		}
		d, err := project.ParseDate(v)
		if err != nil {
			return err
		}
		cfg.SubmissionDate = &d
		return nil
	})
	flag("tpa", &cfg.TPA)
	flag("pre-assigned", &cfg.AccessionsPreAssigned)
	flag("secondary-accs", &cfg.SecondaryAccsAllowed)
	flag("ignore-general-ids", &cfg.IgnoreGeneralIDs)
	flag("require-general-id", &cfg.RequireGeneralID)
	flag("replace-db-name", &cfg.ReplaceDBName)
	flag("dblink-override", &cfg.DBLinkOverride)
	fix("fix-tech", project.FixTech)
	fix("fix-biomol", project.FixBiomol)
	fix("fix-mol", project.FixMol)

	str("pattern", func(v string) error { s.pattern = v; return nil })
	flag("recursive", &s.recursive)
	str("taxonomy", func(v string) error { s.lookup.Taxonomy = v; return nil })
	str("biblio", func(v string) error { s.lookup.Biblio = v; return nil })

	// output flags exist on process only
	if f.Lookup("out-dir") != nil {
		str("out-dir", func(v string) error { s.output.Dir = v; return nil })
		str("suffix", func(v string) error { s.output.Suffix = v; return nil })
		flag("preserve-paths", &s.output.PreservePaths)
		str("id-map", func(v string) error { s.output.IDMap = v; return nil })
		str("file-list", func(v string) error { s.output.FileList = v; return nil })
	}
	return firstErr
}
