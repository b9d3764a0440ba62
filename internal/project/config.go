package project

import (
	"errors"
	"fmt"
	"strings"

	"wgsmaster/internal/seqdoc"
)

// ErrInvalidConfig marks configuration problems detected by Validate.
var ErrInvalidConfig = errors.New("invalid project configuration")

// Kind is the sequencing project kind.
type Kind uint8

const (
	KindWGS Kind = iota
	KindTSA
	KindTLS
)

func (k Kind) String() string {
	switch k {
	case KindTSA:
		return "TSA"
	case KindTLS:
		return "TLS"
	}
	return "WGS"
}

// ParseKind accepts wgs|tsa|tls in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wgs":
		return KindWGS, nil
	case "tsa":
		return KindTSA, nil
	case "tls":
		return KindTLS, nil
	}
	return KindWGS, fmt.Errorf("%w: unknown project kind %q (expected wgs|tsa|tls)", ErrInvalidConfig, s)
}

// Source is the archive the project is submitted through.
type Source uint8

const (
	SourceNCBI Source = iota
	SourceEMBL
	SourceDDBJ
)

func (s Source) String() string {
	switch s {
	case SourceEMBL:
		return "embl"
	case SourceDDBJ:
		return "ddbj"
	}
	return "ncbi"
}

func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ncbi", "genbank":
		return SourceNCBI, nil
	case "embl", "ena":
		return SourceEMBL, nil
	case "ddbj":
		return SourceDDBJ, nil
	}
	return SourceNCBI, fmt.Errorf("%w: unknown source %q (expected ncbi|embl|ddbj)", ErrInvalidConfig, s)
}

// ScaffoldKind says whether the submission is a scaffold project and which kind.
type ScaffoldKind uint8

const (
	ScaffoldNone ScaffoldKind = iota
	ScaffoldRegularChromosomal
	ScaffoldTPAChromosomal
	ScaffoldGenomic
	ScaffoldTPAGenomic
)

func (s ScaffoldKind) String() string {
	switch s {
	case ScaffoldRegularChromosomal:
		return "chromosomal"
	case ScaffoldTPAChromosomal:
		return "tpa-chromosomal"
	case ScaffoldGenomic:
		return "genomic"
	case ScaffoldTPAGenomic:
		return "tpa-genomic"
	}
	return "none"
}

// IsChromosomal reports the regular/TPA chromosomal scaffold kinds.
func (s ScaffoldKind) IsChromosomal() bool {
	return s == ScaffoldRegularChromosomal || s == ScaffoldTPAChromosomal
}

func ParseScaffoldKind(s string) (ScaffoldKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ScaffoldNone, nil
	case "chromosomal", "regular":
		return ScaffoldRegularChromosomal, nil
	case "tpa-chromosomal", "tpa":
		return ScaffoldTPAChromosomal, nil
	case "genomic":
		return ScaffoldGenomic, nil
	case "tpa-genomic":
		return ScaffoldTPAGenomic, nil
	}
	return ScaffoldNone, fmt.Errorf("%w: unknown scaffold kind %q", ErrInvalidConfig, s)
}

// SortOrder controls the order in which entries receive accession ordinals.
type SortOrder uint8

const (
	SortUnsorted SortOrder = iota
	SortLengthDesc
	SortLengthAsc
	SortByID
)

func (s SortOrder) String() string {
	switch s {
	case SortLengthDesc:
		return "length-desc"
	case SortLengthAsc:
		return "length-asc"
	case SortByID:
		return "by-id"
	}
	return "unsorted"
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unsorted", "none":
		return SortUnsorted, nil
	case "length-desc", "desc":
		return SortLengthDesc, nil
	case "length-asc", "asc":
		return SortLengthAsc, nil
	case "by-id", "id":
		return SortByID, nil
	}
	return SortUnsorted, fmt.Errorf("%w: unknown sort order %q (expected unsorted|length-desc|length-asc|by-id)", ErrInvalidConfig, s)
}

// FixFlags is the fix-tech bitmask. The low bits permit silent correction
// of the MolInfo triple; the Override bits select the RNA biomol a TSA
// project expects instead of mRNA.
type FixFlags uint16

const (
	FixTech FixFlags = 1 << iota
	FixBiomol
	FixMol
	OverrideRRNA
	OverrideNcRNA
	OverrideTranscribedRNA
)

func (f FixFlags) Has(bit FixFlags) bool { return f&bit != 0 }

// Config is the immutable project configuration consumed by the core.
type Config struct {
	Prefix  string
	Version int
	Kind    Kind
	Source  Source
	TPA     bool

	AccessionsPreAssigned bool
	IgnoreGeneralIDs      bool
	RequireGeneralID      bool
	ReplaceDBName         bool
	Fix                   FixFlags
	Sort                  SortOrder
	DBLinkOverride        bool
	SubmissionDate        *seqdoc.Date
	Scaffold              ScaffoldKind
	ScaffoldPrefix        string
	SecondaryAccsAllowed  bool
}

// IDPrefix is the accession prefix followed by the two-digit version.
func (c *Config) IDPrefix() string {
	return fmt.Sprintf("%s%02d", c.Prefix, c.Version)
}

// AccKind is the archive id family new accessions are created in.
func (c *Config) AccKind() seqdoc.AccKind {
	switch c.Source {
	case SourceEMBL:
		if c.TPA {
			return seqdoc.AccTPE
		}
		return seqdoc.AccEMBL
	case SourceDDBJ:
		if c.TPA {
			return seqdoc.AccTPD
		}
		return seqdoc.AccDDBJ
	}
	if c.TPA {
		return seqdoc.AccTPG
	}
	return seqdoc.AccGenBank
}

// NucDBName is the general-id database expected on nucleotide sequences.
func (c *Config) NucDBName() string {
	return c.Kind.String() + ":" + c.Prefix
}

// ProtDBName is the general-id database expected on protein sequences.
func (c *Config) ProtDBName() string {
	return c.Kind.String() + ":" + c.IDPrefix()
}

// Keyword is the GenBank keyword every record of the project carries.
func (c *Config) Keyword() string {
	if c.TPA {
		return "TPA"
	}
	return c.Kind.String()
}

// Expectation is the MolInfo/instance triple a project kind requires.
type Expectation struct {
	Biomol seqdoc.Biomol
	Tech   seqdoc.Tech
	Mol    seqdoc.Mol
}

// Expected returns the triple for the project kind, honouring the RNA
// biomol override bits for TSA.
func (c *Config) Expected() Expectation {
	switch c.Kind {
	case KindTSA:
		biomol := seqdoc.BiomolMRNA
		switch {
		case c.Fix.Has(OverrideRRNA):
			biomol = seqdoc.BiomolRRNA
		case c.Fix.Has(OverrideNcRNA):
			biomol = seqdoc.BiomolNcRNA
		case c.Fix.Has(OverrideTranscribedRNA):
			biomol = seqdoc.BiomolTranscribedRNA
		}
		return Expectation{Biomol: biomol, Tech: seqdoc.TechTSA, Mol: seqdoc.MolRNA}
	case KindTLS:
		return Expectation{Biomol: seqdoc.BiomolRRNA, Tech: seqdoc.TechTargeted, Mol: seqdoc.MolRNA}
	}
	return Expectation{Biomol: seqdoc.BiomolGenomic, Tech: seqdoc.TechWGS, Mol: seqdoc.MolDNA}
}

// ChromosomeCheck reports whether records must carry a chromosome subtype.
func (c *Config) ChromosomeCheck() bool {
	return c.Scaffold.IsChromosomal() && c.ScaffoldPrefix != ""
}

// Validate checks option consistency.
func (c *Config) Validate() error {
	var errs []error
	if n := len(c.Prefix); n != 4 && n != 6 {
		errs = append(errs, fmt.Errorf("%w: accession prefix %q must have 4 or 6 letters", ErrInvalidConfig, c.Prefix))
	}
	for _, r := range c.Prefix {
		if r < 'A' || r > 'Z' {
			errs = append(errs, fmt.Errorf("%w: accession prefix %q must be upper-case letters", ErrInvalidConfig, c.Prefix))
			break
		}
	}
	if c.Version < 1 || c.Version > 99 {
		errs = append(errs, fmt.Errorf("%w: version %d out of range 1..99", ErrInvalidConfig, c.Version))
	}
	overrides := 0
	for _, bit := range []FixFlags{OverrideRRNA, OverrideNcRNA, OverrideTranscribedRNA} {
		if c.Fix.Has(bit) {
			overrides++
		}
	}
	if overrides > 1 {
		errs = append(errs, fmt.Errorf("%w: at most one RNA biomol override may be set", ErrInvalidConfig))
	}
	if overrides > 0 && c.Kind != KindTSA {
		errs = append(errs, fmt.Errorf("%w: RNA biomol override requires a TSA project", ErrInvalidConfig))
	}
	if c.RequireGeneralID && c.IgnoreGeneralIDs {
		errs = append(errs, fmt.Errorf("%w: require-general-id and ignore-general-ids cannot be used together", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
