package seqdoc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func nucProt(nucID string) *Document {
	nuc := &Sequence{
		IDs:  []Identifier{Local(nucID)},
		Inst: Inst{Mol: MolDNA, Length: 100},
	}
	prot := &Sequence{
		IDs:  []Identifier{Local(nucID + "_p1")},
		Inst: Inst{Mol: MolAA, Length: 30},
	}
	return NewSet(ClassNucProt, NewSeq(nuc), NewSeq(prot))
}

func TestIdentifierLabel(t *testing.T) {
	tests := []struct {
		id   Identifier
		want string
	}{
		{Local("contig1"), "lcl|contig1"},
		{General("WGS:AAAA", "contig1"), "gnl|WGS:AAAA|contig1"},
		{Accession(AccGenBank, "AAAA01000001", 1), "gb|AAAA01000001.1"},
		{Accession(AccTPE, "BAAA01000001", 0), "tpe|BAAA01000001"},
	}
	for _, tt := range tests {
		if got := tt.id.Label(); got != tt.want {
			t.Fatalf("Label() = %q, want %q", got, tt.want)
		}
	}
}

func TestRecordIDPrefersNucleotide(t *testing.T) {
	doc := NewSet(ClassNucProt,
		NewSeq(&Sequence{IDs: []Identifier{Local("p")}, Inst: Inst{Mol: MolAA}}),
		NewSeq(&Sequence{IDs: []Identifier{Local("n")}, Inst: Inst{Mol: MolDNA}}),
	)
	if got := RecordID(doc); got != "lcl|n" {
		t.Fatalf("RecordID = %q, want lcl|n", got)
	}
}

func TestNucSequences(t *testing.T) {
	doc := NewSet(ClassGenBank, nucProt("a"), nucProt("b"))
	nucs := NucSequences(doc)
	if len(nucs) != 2 {
		t.Fatalf("expected 2 nucleotide sequences, got %d", len(nucs))
	}
	if len(Sequences(doc)) != 4 {
		t.Fatalf("expected 4 sequences")
	}
}

func TestFindDescrDepthFirst(t *testing.T) {
	doc := nucProt("a")
	doc.Set.Children[0].Seq.Descrs = []Descriptor{CreateDateDescr(Date{Year: 2020, Month: 1, Day: 2})}
	doc.Set.Children[1].Seq.Descrs = []Descriptor{CreateDateDescr(Date{Year: 2021})}

	d, owner := FindDescr(doc, DescrCreateDate)
	if d == nil || owner != doc.Set.Children[0] {
		t.Fatalf("expected create date from the nucleotide leaf")
	}
	if d.Date.String() != "2020-01-02" {
		t.Fatalf("unexpected date %s", d.Date)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := nucProt("a")
	doc.Set.Descrs = []Descriptor{
		UserDescr(UserObject{Type: "DBLink", Fields: []UserField{{Label: "BioProject", Values: []string{"PRJNA1"}}}}),
		GenBankDescr(GenBankBlock{Keywords: []string{"WGS"}}),
	}
	cp := doc.Clone()
	if diff := cmp.Diff(doc, cp); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}
	cp.Set.Descrs[0].User.Fields[0].Values[0] = "PRJNA2"
	cp.Set.Descrs[1].GenBank.Keywords[0] = "TSA"
	cp.Set.Children[0].Seq.IDs[0] = Local("changed")

	if doc.Set.Descrs[0].User.Fields[0].Values[0] != "PRJNA1" {
		t.Fatalf("user object shared between clone and original")
	}
	if doc.Set.Descrs[1].GenBank.Keywords[0] != "WGS" {
		t.Fatalf("keywords shared between clone and original")
	}
	if doc.Set.Children[0].Seq.IDs[0].Value != "a" {
		t.Fatalf("ids shared between clone and original")
	}
}

func TestUserObjectEqualAndKey(t *testing.T) {
	a := &UserObject{Type: "DBLink", Fields: []UserField{{Label: "BioProject", Values: []string{"PRJNA1"}}}}
	b := &UserObject{Type: "DBLink", Fields: []UserField{{Label: "BioProject", Values: []string{"PRJNA2"}}}}
	if a.Equal(b) || a.Key() == b.Key() {
		t.Fatalf("objects with different values must differ")
	}
	c := a.Clone()
	if !a.Equal(&c) || a.Key() != c.Key() {
		t.Fatalf("clone must be equal")
	}
}
