package accession

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
)

func TestWidth(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 6},
		{1, 6},
		{999_999, 6},
		{1_000_000, 7},
		{9_999_999, 7},
		{10_000_000, 8},
	}
	for _, tt := range tests {
		if got := Width(tt.n); got != tt.want {
			t.Fatalf("Width(%d): want %d, got %d", tt.n, tt.want, got)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format("AAAA", 1, 42, 6); got != "AAAA01000042" {
		t.Fatalf("want AAAA01000042, got %s", got)
	}
	if got := Format("ABCDEF", 12, 1, 8); got != "ABCDEF1200000001" {
		t.Fatalf("want ABCDEF1200000001, got %s", got)
	}
	cfg := &project.Config{Prefix: "AAAA", Version: 3}
	if got := MasterAccession(cfg, 7); got != "AAAA030000000" {
		t.Fatalf("master: got %s", got)
	}
}

func nucRecord(ids ...seqdoc.Identifier) *seqdoc.Document {
	return seqdoc.NewSeq(&seqdoc.Sequence{
		IDs:  ids,
		Inst: seqdoc.Inst{Mol: seqdoc.MolDNA, Repr: seqdoc.ReprRaw, Length: 100},
	})
}

func TestAssignDeterministic(t *testing.T) {
	cfg := &project.Config{Prefix: "AAAA", Version: 1}
	const n = 25
	a := NewAssigner(cfg, nil, Width(n))
	seen := make(map[string]bool)
	for i := 1; i <= n; i++ {
		doc := nucRecord(seqdoc.Local(fmt.Sprintf("contig%d", i)))
		acc, ok := a.Assign(doc, diag.Location{File: "f"}, diag.NopReporter{})
		if !ok {
			t.Fatalf("record %d: not assigned", i)
		}
		want := Format("AAAA", 1, i, Width(n))
		if acc != want {
			t.Fatalf("record %d: want %s, got %s", i, want, acc)
		}
		if seen[acc] {
			t.Fatalf("duplicate accession %s", acc)
		}
		seen[acc] = true
		if got := doc.Seq.IDs[0]; got.Kind != seqdoc.IDAccession || got.Value != acc {
			t.Fatalf("record %d: new accession must be first id, got %v", i, got)
		}
	}
	first, last := a.Range()
	if first != "AAAA01000001" || last != "AAAA01000025" {
		t.Fatalf("range: got %s..%s", first, last)
	}
}

func TestAssignReplacesSameKind(t *testing.T) {
	cfg := &project.Config{Prefix: "AAAA", Version: 1}
	a := NewAssigner(cfg, nil, 6)
	doc := nucRecord(
		seqdoc.Accession(seqdoc.AccGenBank, "XX000001", 1),
		seqdoc.Accession(seqdoc.AccEMBL, "YY000001", 1),
		seqdoc.Local("c1"),
	)
	if _, ok := a.Assign(doc, diag.Location{}, nil); !ok {
		t.Fatalf("not assigned")
	}
	want := []seqdoc.Identifier{
		seqdoc.Accession(seqdoc.AccGenBank, "AAAA01000001", 1),
		seqdoc.Accession(seqdoc.AccEMBL, "YY000001", 1),
		seqdoc.Local("c1"),
	}
	if diff := cmp.Diff(want, doc.Seq.IDs); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignSkippedWhenPreAssigned(t *testing.T) {
	cfg := &project.Config{Prefix: "AAAA", Version: 1, AccessionsPreAssigned: true}
	a := NewAssigner(cfg, nil, 6)
	doc := nucRecord(seqdoc.Local("c1"))
	if _, ok := a.Assign(doc, diag.Location{}, nil); ok {
		t.Fatalf("pre-assigned project must not assign")
	}
	if len(doc.Seq.IDs) != 1 || doc.Seq.IDs[0].Kind != seqdoc.IDLocal {
		t.Fatalf("ids changed: %v", doc.Seq.IDs)
	}
}

func TestAssignDuplicateEntry(t *testing.T) {
	cfg := &project.Config{Prefix: "AAAA", Version: 1}
	a := NewAssigner(cfg, nil, 6)
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	a.Assign(nucRecord(seqdoc.Local("c1")), diag.Location{File: "a"}, rep)
	if _, ok := a.Assign(nucRecord(seqdoc.Local("c1")), diag.Location{File: "b"}, rep); ok {
		t.Fatalf("duplicate key must not be assigned twice")
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.AccDuplicateEntry {
		t.Fatalf("expected AccDuplicateEntry, got %v", items)
	}
}

func TestPlanSortOrders(t *testing.T) {
	entries := []Entry{
		{Key: "lcl|c", Length: 10},
		{Key: "lcl|a", Length: 30},
		{Key: "lcl|b", Length: 20},
		{Key: "lcl|d", Length: 20},
	}
	tests := []struct {
		order project.SortOrder
		want  []string
	}{
		{project.SortUnsorted, []string{"lcl|c", "lcl|a", "lcl|b", "lcl|d"}},
		{project.SortLengthDesc, []string{"lcl|a", "lcl|b", "lcl|d", "lcl|c"}},
		{project.SortLengthAsc, []string{"lcl|c", "lcl|b", "lcl|d", "lcl|a"}},
		{project.SortByID, []string{"lcl|a", "lcl|b", "lcl|c", "lcl|d"}},
	}
	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			o, dups, err := Plan(entries, tt.order)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if len(dups) != 0 {
				t.Fatalf("unexpected duplicates %v", dups)
			}
			if diff := cmp.Diff(tt.want, o.Keys()); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
			if ord, ok := o.Lookup(tt.want[0]); !ok || ord != 1 {
				t.Fatalf("first key ordinal: got %d, %v", ord, ok)
			}
		})
	}
}

func TestPlanDuplicates(t *testing.T) {
	o, dups, err := Plan([]Entry{{Key: "x", File: "a"}, {Key: "x", File: "b"}}, project.SortUnsorted)
	if err != nil {
		t.Fatal(err)
	}
	if o.Len() != 1 || len(dups) != 1 || dups[0].File != "b" {
		t.Fatalf("want one key and the second occurrence as duplicate, got %d %v", o.Len(), dups)
	}
}

func TestAssignUsesPlan(t *testing.T) {
	cfg := &project.Config{Prefix: "AAAA", Version: 1}
	o, _, err := Plan([]Entry{{Key: "lcl|short", Length: 5}, {Key: "lcl|long", Length: 50}}, project.SortLengthDesc)
	if err != nil {
		t.Fatal(err)
	}
	a := NewAssigner(cfg, o, Width(o.Len()))
	acc, _ := a.Assign(nucRecord(seqdoc.Local("short")), diag.Location{}, nil)
	if acc != "AAAA01000002" {
		t.Fatalf("short entry: want AAAA01000002, got %s", acc)
	}
	acc, _ = a.Assign(nucRecord(seqdoc.Local("long")), diag.Location{}, nil)
	if acc != "AAAA01000001" {
		t.Fatalf("long entry: want AAAA01000001, got %s", acc)
	}
}

func TestExpandRange(t *testing.T) {
	got, err := ExpandRange("AB123456-AB123460")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"AB123456", "AB123457", "AB123458", "AB123459", "AB123460"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("range mismatch (-want +got):\n%s", diff)
	}

	got, err = ExpandRange("AB000099-000101")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"AB000099", "AB000100", "AB000101"}, got); diff != "" {
		t.Fatalf("bare end mismatch (-want +got):\n%s", diff)
	}

	got, err = ExpandRange("AB123456")
	if err != nil || len(got) != 1 || got[0] != "AB123456" {
		t.Fatalf("single: got %v, %v", got, err)
	}

	for _, bad := range []string{"AB10-CD12", "AB12-AB10", "AB1x-AB12", "AB100-AB1000", ""} {
		if _, err := ExpandRange(bad); !errors.Is(err, ErrBadRange) {
			t.Fatalf("%q: expected ErrBadRange, got %v", bad, err)
		}
	}
}

func TestValid(t *testing.T) {
	cfg := &project.Config{Prefix: "AAAA", Version: 1}
	scaffold := &project.Config{Prefix: "AAAA", Version: 1, Scaffold: project.ScaffoldRegularChromosomal}
	tests := []struct {
		name string
		cfg  *project.Config
		acc  string
		want bool
	}{
		{"project 6", cfg, "AAAA01000001", true},
		{"project 8", cfg, "AAAA0100000001", true},
		{"wrong version", cfg, "AAAA02000001", false},
		{"too short", cfg, "AAAA0100001", false},
		{"too long", cfg, "AAAA01000000001", false},
		{"non digit", cfg, "AAAA01A00001", false},
		{"other prefix", cfg, "BBBB01000001", false},
		{"scaffold without scaffold kind", cfg, "CM000001", false},
		{"scaffold", scaffold, "CM000001", true},
		{"scaffold too long", scaffold, "CM000000001", false},
		{"scaffold wrong table", scaffold, "KN000001", false},
		{"empty", cfg, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.acc, tt.cfg); got != tt.want {
				t.Fatalf("Valid(%q): want %v, got %v", tt.acc, tt.want, got)
			}
		})
	}
}
