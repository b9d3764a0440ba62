package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"wgsmaster/internal/seqdoc"
)

// ManifestName is the per-project manifest file looked up from the working directory.
const ManifestName = "wgsproject.toml"

// Manifest is a decoded wgsproject.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
	Input  InputOptions
	Output OutputOptions
	Lookup LookupOptions
}

// InputOptions locate the submission files.
type InputOptions struct {
	Dir       string
	Pattern   string
	Recursive bool
}

// OutputOptions control where processed records are written.
type OutputOptions struct {
	Dir           string
	Suffix        string
	PreservePaths bool
	IDMap         string
	FileList      string
}

// LookupOptions point at local taxonomy and bibliographic tables.
type LookupOptions struct {
	Taxonomy string
	Biblio   string
}

type manifestFile struct {
	Project    projectSection    `toml:"project"`
	Accessions accessionsSection `toml:"accessions"`
	IDs        idsSection        `toml:"ids"`
	Fix        fixSection        `toml:"fix"`
	DBLink     dblinkSection     `toml:"dblink"`
	Submission submissionSection `toml:"submission"`
	Scaffold   scaffoldSection   `toml:"scaffold"`
	Input      inputSection      `toml:"input"`
	Output     outputSection     `toml:"output"`
	Lookup     lookupSection     `toml:"lookup"`
}

type projectSection struct {
	Prefix  string `toml:"prefix"`
	Version int    `toml:"version"`
	Kind    string `toml:"kind"`
	Source  string `toml:"source"`
	TPA     bool   `toml:"tpa"`
}

type accessionsSection struct {
	PreAssigned      bool   `toml:"pre_assigned"`
	Sort             string `toml:"sort"`
	SecondaryAllowed bool   `toml:"secondary_allowed"`
}

type idsSection struct {
	IgnoreGeneral  bool `toml:"ignore_general"`
	RequireGeneral bool `toml:"require_general"`
	ReplaceDBName  bool `toml:"replace_db_name"`
}

type fixSection struct {
	Tech      bool   `toml:"tech"`
	Biomol    bool   `toml:"biomol"`
	Mol       bool   `toml:"mol"`
	RNABiomol string `toml:"rna_biomol"`
}

type dblinkSection struct {
	Override bool `toml:"override"`
}

type submissionSection struct {
	Date string `toml:"date"`
}

type scaffoldSection struct {
	Kind   string `toml:"kind"`
	Prefix string `toml:"prefix"`
}

type inputSection struct {
	Dir       string `toml:"dir"`
	Pattern   string `toml:"pattern"`
	Recursive bool   `toml:"recursive"`
}

type outputSection struct {
	Dir           string `toml:"dir"`
	Suffix        string `toml:"suffix"`
	PreservePaths bool   `toml:"preserve_paths"`
	IDMap         string `toml:"id_map"`
	FileList      string `toml:"file_list"`
}

type lookupSection struct {
	Taxonomy string `toml:"taxonomy"`
	Biblio   string `toml:"biblio"`
}

// FindManifest walks up from startDir to locate wgsproject.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and decodes the manifest governing startDir.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := DecodeManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// DecodeManifest parses a manifest file and validates the resulting Config.
// Relative input/output/lookup paths are resolved against the manifest directory.
func DecodeManifest(path string) (*Manifest, error) {
	var raw manifestFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return nil, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "prefix") || strings.TrimSpace(raw.Project.Prefix) == "" {
		return nil, fmt.Errorf("%s: missing [project].prefix", path)
	}
	if !meta.IsDefined("project", "version") {
		return nil, fmt.Errorf("%s: missing [project].version", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0].String())
	}

	cfg, err := raw.config()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	root := filepath.Dir(path)
	m := &Manifest{
		Path:   path,
		Root:   root,
		Config: cfg,
		Input: InputOptions{
			Dir:       resolveRel(root, raw.Input.Dir),
			Pattern:   raw.Input.Pattern,
			Recursive: raw.Input.Recursive,
		},
		Output: OutputOptions{
			Dir:           resolveRel(root, raw.Output.Dir),
			Suffix:        raw.Output.Suffix,
			PreservePaths: raw.Output.PreservePaths,
			IDMap:         resolveRel(root, raw.Output.IDMap),
			FileList:      resolveRel(root, raw.Output.FileList),
		},
		Lookup: LookupOptions{
			Taxonomy: resolveRel(root, raw.Lookup.Taxonomy),
			Biblio:   resolveRel(root, raw.Lookup.Biblio),
		},
	}
	return m, nil
}

func (raw *manifestFile) config() (Config, error) {
	cfg := Config{
		Prefix:                strings.ToUpper(strings.TrimSpace(raw.Project.Prefix)),
		Version:               raw.Project.Version,
		TPA:                   raw.Project.TPA,
		AccessionsPreAssigned: raw.Accessions.PreAssigned,
		SecondaryAccsAllowed:  raw.Accessions.SecondaryAllowed,
		IgnoreGeneralIDs:      raw.IDs.IgnoreGeneral,
		RequireGeneralID:      raw.IDs.RequireGeneral,
		ReplaceDBName:         raw.IDs.ReplaceDBName,
		DBLinkOverride:        raw.DBLink.Override,
		ScaffoldPrefix:        strings.ToUpper(strings.TrimSpace(raw.Scaffold.Prefix)),
	}
	var err error
	if cfg.Kind, err = ParseKind(raw.Project.Kind); err != nil {
		return Config{}, err
	}
	if cfg.Source, err = ParseSource(raw.Project.Source); err != nil {
		return Config{}, err
	}
	if cfg.Sort, err = ParseSortOrder(raw.Accessions.Sort); err != nil {
		return Config{}, err
	}
	if cfg.Scaffold, err = ParseScaffoldKind(raw.Scaffold.Kind); err != nil {
		return Config{}, err
	}
	if raw.Fix.Tech {
		cfg.Fix |= FixTech
	}
	if raw.Fix.Biomol {
		cfg.Fix |= FixBiomol
	}
	if raw.Fix.Mol {
		cfg.Fix |= FixMol
	}
	override, err := ParseRNAOverride(raw.Fix.RNABiomol)
	if err != nil {
		return Config{}, err
	}
	cfg.Fix |= override
	if s := strings.TrimSpace(raw.Submission.Date); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			return Config{}, err
		}
		cfg.SubmissionDate = &d
	}
	return cfg, nil
}

// ParseRNAOverride maps rRNA|ncRNA|transcribed-RNA to the matching override bit.
func ParseRNAOverride(s string) (FixFlags, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mrna":
		return 0, nil
	case "rrna":
		return OverrideRRNA, nil
	case "ncrna":
		return OverrideNcRNA, nil
	case "transcribed-rna", "transcribed_rna":
		return OverrideTranscribedRNA, nil
	}
	return 0, fmt.Errorf("%w: unknown RNA biomol %q (expected rRNA|ncRNA|transcribed-RNA)", ErrInvalidConfig, s)
}

// ParseDate reads a YYYY-MM-DD submission date.
func ParseDate(s string) (seqdoc.Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return seqdoc.Date{}, fmt.Errorf("%w: submission date %q: expected YYYY-MM-DD", ErrInvalidConfig, s)
	}
	return seqdoc.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

func resolveRel(root, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}
