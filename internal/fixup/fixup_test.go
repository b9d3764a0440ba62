package fixup

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/lookup"
	"wgsmaster/internal/master"
	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
	"wgsmaster/internal/validate"
)

func nuc(ids []seqdoc.Identifier, descrs ...seqdoc.Descriptor) *seqdoc.Document {
	return seqdoc.NewSeq(&seqdoc.Sequence{
		IDs:    ids,
		Inst:   seqdoc.Inst{Mol: seqdoc.MolDNA, Repr: seqdoc.ReprRaw, Length: 10},
		Descrs: descrs,
	})
}

func TestDropDescriptorsAfterValidate(t *testing.T) {
	set := seqdoc.NewSet(seqdoc.ClassNucProt, nuc(
		[]seqdoc.Identifier{seqdoc.General("WGS:AAAA", "c1")},
		seqdoc.MolInfoDescr(seqdoc.MolInfo{Biomol: seqdoc.BiomolGenomic, Tech: seqdoc.TechWGS}),
		seqdoc.Opaque(seqdoc.DescrRegion, "r"),
	))
	set.Set.Descrs = []seqdoc.Descriptor{
		seqdoc.Title("t"),
		seqdoc.Comment("keep"),
		seqdoc.UserDescr(seqdoc.UserObject{Type: "Junk"}),
	}
	cfg := &project.Config{Prefix: "AAAA", Version: 1}
	report := validate.Validate(set, cfg, diag.Location{}, nil)
	if n := DropDescriptors(report); n != 3 {
		t.Fatalf("want 3 removed, got %d", n)
	}
	if diff := cmp.Diff([]seqdoc.Descriptor{seqdoc.Comment("keep")}, set.Set.Descrs); diff != "" {
		t.Fatalf("set descrs mismatch (-want +got):\n%s", diff)
	}
	if got := len(set.Set.Children[0].Seq.Descrs); got != 1 {
		t.Fatalf("sequence should keep only MolInfo, got %d", got)
	}
	if report.Drops != nil {
		t.Fatalf("drops must be consumed")
	}
}

func TestApplyMolFixes(t *testing.T) {
	cfg := &project.Config{Prefix: "GAAA", Version: 1, Kind: project.KindTSA, Fix: project.FixBiomol | project.FixMol}
	doc := nuc([]seqdoc.Identifier{seqdoc.General("TSA:GAAA", "c1")},
		seqdoc.MolInfoDescr(seqdoc.MolInfo{Biomol: seqdoc.BiomolGenomic, Tech: seqdoc.TechWGS}))
	bag := diag.NewBag(0)
	report := validate.Validate(doc, cfg, diag.Location{}, diag.BagReporter{Bag: bag})
	if report.Verdict() != validate.Fail {
		t.Fatalf("tech mismatch is not fixable here, want fail, got %v", report.Verdict())
	}
	if !ApplyMolFixes(doc, cfg, report, diag.BagReporter{Bag: bag}) {
		t.Fatalf("expected fixes")
	}
	mi := doc.Seq.Descrs[0].MolInfo
	if mi.Biomol != seqdoc.BiomolMRNA || mi.Tech != seqdoc.TechWGS || doc.Seq.Inst.Mol != seqdoc.MolRNA {
		t.Fatalf("unexpected state biomol=%v tech=%v mol=%v", mi.Biomol, mi.Tech, doc.Seq.Inst.Mol)
	}
}

func TestApplyMolFixesAddsMissingMolInfo(t *testing.T) {
	cfg := &project.Config{Prefix: "AAAA", Version: 1, Fix: project.FixBiomol | project.FixTech}
	doc := nuc([]seqdoc.Identifier{seqdoc.General("WGS:AAAA", "c1")})
	report := validate.Validate(doc, cfg, diag.Location{}, nil)
	if report.Verdict() != validate.Pass {
		t.Fatalf("missing MolInfo with both fix bits is a warning, got %v", report.Verdict())
	}
	ApplyMolFixes(doc, cfg, report, nil)
	d, _ := seqdoc.FindDescr(doc, seqdoc.DescrMolInfo)
	if d == nil || d.MolInfo.Tech != seqdoc.TechWGS {
		t.Fatalf("MolInfo must be added, got %v", d)
	}
}

func TestReplaceDbNamesWarnsOncePerClass(t *testing.T) {
	cfg := &project.Config{Prefix: "AAAA", Version: 1, ReplaceDBName: true}
	sum := master.NewSummary(nil)
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	for _, tag := range []string{"c1", "c2"} {
		prot := seqdoc.NewSeq(&seqdoc.Sequence{
			IDs:  []seqdoc.Identifier{seqdoc.General("CENTER", "p"+tag)},
			Inst: seqdoc.Inst{Mol: seqdoc.MolAA},
		})
		doc := seqdoc.NewSet(seqdoc.ClassNucProt, nuc([]seqdoc.Identifier{seqdoc.General("CENTER", tag)},
			seqdoc.MolInfoDescr(seqdoc.MolInfo{Biomol: seqdoc.BiomolGenomic, Tech: seqdoc.TechWGS})), prot)
		report := validate.Validate(doc, cfg, diag.Location{}, nil)
		if n := ReplaceDbNames(doc, cfg, sum, report, rep); n != 2 {
			t.Fatalf("want 2 replaced ids, got %d", n)
		}
		seqs := seqdoc.Sequences(doc)
		if seqs[0].IDs[0].DB != "WGS:AAAA" || seqs[1].IDs[0].DB != "WGS:AAAA01" {
			t.Fatalf("unexpected dbs %v %v", seqs[0].IDs, seqs[1].IDs)
		}
	}
	if got := bag.Len(); got != 2 {
		t.Fatalf("want one warning per class, got %d: %v", got, bag.Items())
	}
}

func TestOverrideSubmissionDate(t *testing.T) {
	doc := nuc(nil,
		seqdoc.PubDescr(seqdoc.Pub{Kind: seqdoc.PubSub, Date: &seqdoc.Date{Year: 2000}}),
		seqdoc.PubDescr(seqdoc.Pub{Kind: seqdoc.PubArticle, Year: 2001}))
	date := &seqdoc.Date{Year: 2024, Month: 1, Day: 2}
	if n := OverrideSubmissionDate(doc, date); n != 1 {
		t.Fatalf("want 1 forced date, got %d", n)
	}
	if got := *doc.Seq.Descrs[0].Pub.Date; got != *date {
		t.Fatalf("date: got %v", got)
	}
	if doc.Seq.Descrs[1].Pub.Date != nil {
		t.Fatalf("articles must be untouched")
	}
}

type fakeTaxonomy struct {
	calls int
	err   error
}

func (f *fakeTaxonomy) LookupOrg(_ context.Context, org seqdoc.OrgRef) (seqdoc.OrgRef, error) {
	f.calls++
	if f.err != nil {
		return seqdoc.OrgRef{}, f.err
	}
	org.TaxName = "Homo sapiens"
	org.TaxID = 9606
	return org, nil
}

func TestOrganisms(t *testing.T) {
	src := seqdoc.SourceDescr(seqdoc.BioSource{Org: seqdoc.OrgRef{TaxName: "human"}})
	doc := nuc(nil, src)
	bag := diag.NewBag(0)
	Organisms(context.Background(), doc, &fakeTaxonomy{}, diag.Location{}, diag.BagReporter{Bag: bag})
	if got := doc.Seq.Descrs[0].Source.Org; got.TaxName != "Homo sapiens" || got.TaxID != 9606 {
		t.Fatalf("organism not normalised: %+v", got)
	}
	if items := bag.Items(); len(items) != 1 || items[0].Code != diag.OrganismLookupReplaced {
		t.Fatalf("unexpected diagnostics %v", items)
	}

	tax := &fakeTaxonomy{err: lookup.ErrUnavailable}
	doc = nuc(nil, src, src)
	bag = diag.NewBag(0)
	Organisms(context.Background(), doc, tax, diag.Location{}, diag.BagReporter{Bag: bag})
	if tax.calls != 1 {
		t.Fatalf("unavailable service must not be retried within a record, got %d calls", tax.calls)
	}
	if items := bag.Items(); len(items) != 1 || items[0].Code != diag.ServerTaxonomyUnavailable || items[0].Severity != diag.SevWarning {
		t.Fatalf("unexpected diagnostics %v", items)
	}

	bag = diag.NewBag(0)
	Organisms(context.Background(), nuc(nil, src), &fakeTaxonomy{err: lookup.ErrNotFound}, diag.Location{}, diag.BagReporter{Bag: bag})
	if !bag.HasErrors() {
		t.Fatalf("unknown organism must be an error")
	}
}

func TestPublications(t *testing.T) {
	tab, err := lookup.ParseBiblio([]byte("publications:\n  - pmid: 42\n    title: Canonical\n"))
	if err != nil {
		t.Fatal(err)
	}
	doc := nuc(nil,
		seqdoc.PubDescr(seqdoc.Pub{Kind: seqdoc.PubArticle, PMID: 42, Title: "draft"}),
		seqdoc.PubDescr(seqdoc.Pub{Kind: seqdoc.PubArticle, PMID: 43, Title: "other"}))
	bag := diag.NewBag(0)
	Publications(context.Background(), doc, tab, diag.Location{}, diag.BagReporter{Bag: bag})
	if doc.Seq.Descrs[0].Pub.Title != "Canonical" || doc.Seq.Descrs[1].Pub.Title != "other" {
		t.Fatalf("unexpected pubs %+v %+v", doc.Seq.Descrs[0].Pub, doc.Seq.Descrs[1].Pub)
	}
	if items := bag.Items(); len(items) != 1 || items[0].Code != diag.RefPubNotFound {
		t.Fatalf("unexpected diagnostics %v", items)
	}
}
