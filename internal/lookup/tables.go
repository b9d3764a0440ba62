package lookup

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"wgsmaster/internal/seqdoc"
)

var fold = cases.Fold()

type organismEntry struct {
	TaxName  string   `yaml:"taxname"`
	TaxID    int      `yaml:"taxid"`
	Common   string   `yaml:"common,omitempty"`
	Lineage  string   `yaml:"lineage,omitempty"`
	Division string   `yaml:"division,omitempty"`
	Synonyms []string `yaml:"synonyms,omitempty"`
}

type taxonomyFile struct {
	Organisms []organismEntry `yaml:"organisms"`
}

// TaxonomyTable is a taxonomy snapshot loaded from YAML.
type TaxonomyTable struct {
	byID   map[int]*organismEntry
	byName map[string]*organismEntry
}

// LoadTaxonomy reads a taxonomy snapshot:
//
//	organisms:
//	  - taxname: Homo sapiens
//	    taxid: 9606
//	    lineage: Eukaryota; Metazoa; Chordata
//	    synonyms: [human]
func LoadTaxonomy(path string) (*TaxonomyTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes a taxonomy snapshot from YAML bytes.
func ParseTaxonomy(data []byte) (*TaxonomyTable, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("taxonomy: parse: %w", err)
	}
	t := &TaxonomyTable{
		byID:   make(map[int]*organismEntry, len(f.Organisms)),
		byName: make(map[string]*organismEntry, len(f.Organisms)),
	}
	for i := range f.Organisms {
		e := &f.Organisms[i]
		if strings.TrimSpace(e.TaxName) == "" {
			return nil, fmt.Errorf("taxonomy: entry %d has no taxname", i)
		}
		if e.TaxID != 0 {
			t.byID[e.TaxID] = e
		}
		t.byName[foldName(e.TaxName)] = e
		for _, syn := range e.Synonyms {
			t.byName[foldName(syn)] = e
		}
	}
	return t, nil
}

func foldName(s string) string { return fold.String(strings.Join(strings.Fields(s), " ")) }

// Len returns the number of organisms in the table.
func (t *TaxonomyTable) Len() int { return len(t.byName) }

func (t *TaxonomyTable) LookupOrg(ctx context.Context, org seqdoc.OrgRef) (seqdoc.OrgRef, error) {
	if err := ctx.Err(); err != nil {
		return seqdoc.OrgRef{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	e, ok := t.byID[org.TaxID]
	if !ok || org.TaxID == 0 {
		e, ok = t.byName[foldName(org.TaxName)]
	}
	if !ok {
		return seqdoc.OrgRef{}, fmt.Errorf("%w: organism %q", ErrNotFound, org.TaxName)
	}
	out := org
	out.TaxName = e.TaxName
	out.TaxID = e.TaxID
	if e.Lineage != "" {
		out.Lineage = e.Lineage
	}
	if e.Division != "" {
		out.Division = e.Division
	}
	if out.Common == "" {
		out.Common = e.Common
	}
	return out, nil
}

type publicationEntry struct {
	PMID    int      `yaml:"pmid"`
	Title   string   `yaml:"title"`
	Authors []string `yaml:"authors,omitempty"`
	Journal string   `yaml:"journal,omitempty"`
	Year    int      `yaml:"year,omitempty"`
}

type biblioFile struct {
	Publications []publicationEntry `yaml:"publications"`
}

// BiblioTable is a publication snapshot keyed by PubMed id.
type BiblioTable struct {
	byPMID map[int]publicationEntry
}

// LoadBiblio reads a publication snapshot:
//
//	publications:
//	  - pmid: 12345
//	    title: A genome
//	    authors: [Doe J]
//	    journal: Nature
//	    year: 2020
func LoadBiblio(path string) (*BiblioTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("biblio: read %s: %w", path, err)
	}
	return ParseBiblio(data)
}

// ParseBiblio decodes a publication snapshot from YAML bytes.
func ParseBiblio(data []byte) (*BiblioTable, error) {
	var f biblioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("biblio: parse: %w", err)
	}
	t := &BiblioTable{byPMID: make(map[int]publicationEntry, len(f.Publications))}
	for i, e := range f.Publications {
		if e.PMID <= 0 {
			return nil, fmt.Errorf("biblio: entry %d has no pmid", i)
		}
		t.byPMID[e.PMID] = e
	}
	return t, nil
}

func (t *BiblioTable) LookupPub(ctx context.Context, pub seqdoc.Pub) (seqdoc.Pub, error) {
	if err := ctx.Err(); err != nil {
		return seqdoc.Pub{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if pub.PMID <= 0 {
		return seqdoc.Pub{}, fmt.Errorf("%w: publication has no pmid", ErrNotFound)
	}
	e, ok := t.byPMID[pub.PMID]
	if !ok {
		return seqdoc.Pub{}, fmt.Errorf("%w: pmid %d", ErrNotFound, pub.PMID)
	}
	out := pub
	out.Title = e.Title
	out.Journal = e.Journal
	out.Year = e.Year
	if len(e.Authors) > 0 {
		out.Authors = append([]string(nil), e.Authors...)
	}
	return out, nil
}
