package lookup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wgsmaster/internal/seqdoc"
)

const taxonomyYAML = `
organisms:
  - taxname: Homo sapiens
    taxid: 9606
    common: human
    lineage: Eukaryota; Metazoa; Chordata
    division: PRI
    synonyms: [man]
  - taxname: Escherichia coli
    taxid: 562
    lineage: Bacteria; Proteobacteria
`

func TestTaxonomyLookup(t *testing.T) {
	tab, err := ParseTaxonomy([]byte(taxonomyYAML))
	if err != nil {
		t.Fatalf("ParseTaxonomy: %v", err)
	}
	ctx := context.Background()

	got, err := tab.LookupOrg(ctx, seqdoc.OrgRef{TaxName: "homo  SAPIENS"})
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if got.TaxName != "Homo sapiens" || got.TaxID != 9606 || got.Division != "PRI" {
		t.Fatalf("unexpected org %+v", got)
	}

	got, err = tab.LookupOrg(ctx, seqdoc.OrgRef{TaxName: "whatever", TaxID: 562})
	if err != nil || got.TaxName != "Escherichia coli" {
		t.Fatalf("by id: got %+v, %v", got, err)
	}

	got, err = tab.LookupOrg(ctx, seqdoc.OrgRef{TaxName: "Man"})
	if err != nil || got.TaxID != 9606 {
		t.Fatalf("by synonym: got %+v, %v", got, err)
	}

	if _, err := tab.LookupOrg(ctx, seqdoc.OrgRef{TaxName: "Unknown beast"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := tab.LookupOrg(cancelled, seqdoc.OrgRef{TaxName: "Homo sapiens"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable on cancelled context, got %v", err)
	}
}

func TestParseTaxonomyErrors(t *testing.T) {
	if _, err := ParseTaxonomy([]byte("organisms:\n  - taxid: 1\n")); err == nil {
		t.Fatalf("entry without taxname must fail")
	}
	if _, err := ParseTaxonomy([]byte("organisms: [")); err == nil {
		t.Fatalf("malformed yaml must fail")
	}
}

func TestBiblioFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biblio.yaml")
	body := "publications:\n  - pmid: 42\n    title: A genome\n    authors: [Doe J]\n    year: 2020\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	tab, err := LoadBiblio(path)
	if err != nil {
		t.Fatalf("LoadBiblio: %v", err)
	}
	got, err := tab.LookupPub(context.Background(), seqdoc.Pub{Kind: seqdoc.PubArticle, PMID: 42})
	if err != nil {
		t.Fatalf("LookupPub: %v", err)
	}
	if got.Title != "A genome" || got.Year != 2020 || got.Kind != seqdoc.PubArticle || len(got.Authors) != 1 {
		t.Fatalf("unexpected pub %+v", got)
	}
	if _, err := tab.LookupPub(context.Background(), seqdoc.Pub{PMID: 7}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := tab.LookupPub(context.Background(), seqdoc.Pub{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("no pmid: want ErrNotFound, got %v", err)
	}
}

func TestOffline(t *testing.T) {
	if _, err := (Offline{}).LookupOrg(context.Background(), seqdoc.OrgRef{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	org := seqdoc.OrgRef{TaxName: "x"}
	if got, err := (Nop{}).LookupOrg(context.Background(), org); err != nil || got != org {
		t.Fatalf("Nop must echo, got %+v %v", got, err)
	}
}
