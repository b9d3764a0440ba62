// Package seqdoc holds the in-memory record tree a submission file decodes
// into: Sets as internal nodes, Sequences as leaves, each with ordered
// identifier and descriptor lists.
package seqdoc

import "fmt"

// SetClass classifies an internal node of the record tree.
type SetClass uint8

const (
	ClassOther SetClass = iota
	ClassGenBank
	ClassPubSet
	ClassNucProt
	ClassSegSet
	ClassParts
	ClassGenProdSet
	ClassWGSSet
	ClassEcoSet
	ClassPhySet
	ClassPopSet
	ClassMutSet
	ClassSmallGenomeSet
)

var setClassNames = [...]string{
	ClassOther:          "other",
	ClassGenBank:        "genbank",
	ClassPubSet:         "pub-set",
	ClassNucProt:        "nuc-prot",
	ClassSegSet:         "seg-set",
	ClassParts:          "parts",
	ClassGenProdSet:     "gen-prod-set",
	ClassWGSSet:         "wgs-set",
	ClassEcoSet:         "eco-set",
	ClassPhySet:         "phy-set",
	ClassPopSet:         "pop-set",
	ClassMutSet:         "mut-set",
	ClassSmallGenomeSet: "small-genome-set",
}

func (c SetClass) String() string {
	if int(c) < len(setClassNames) {
		return setClassNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Mol is the molecule type of a sequence instance.
type Mol uint8

const (
	MolUnknown Mol = iota
	MolDNA
	MolRNA
	MolAA
	MolNA
	MolOther
)

func (m Mol) String() string {
	switch m {
	case MolDNA:
		return "dna"
	case MolRNA:
		return "rna"
	case MolAA:
		return "aa"
	case MolNA:
		return "na"
	case MolOther:
		return "other"
	}
	return "not-set"
}

// IsNucleotide reports whether the molecule is DNA, RNA or generic nucleic acid.
func (m Mol) IsNucleotide() bool {
	return m == MolDNA || m == MolRNA || m == MolNA
}

// Repr is the representation class of a sequence instance.
type Repr uint8

const (
	ReprRaw Repr = iota
	ReprSeg
	ReprDelta
	ReprVirtual
	ReprConst
	ReprMap
	ReprRef
	ReprOther
)

// Annot is an attached feature table. Its content is opaque to this package.
type Annot struct {
	Name string `msgpack:"name,omitempty"`
	Data []byte `msgpack:"data,omitempty"`
}

// Inst is the instance metadata of a sequence.
type Inst struct {
	Mol    Mol  `msgpack:"mol"`
	Repr   Repr `msgpack:"repr"`
	Length int  `msgpack:"len"`
}

// History lists the accessions a sequence replaces.
type History struct {
	Replaces []Identifier `msgpack:"replaces,omitempty"`
}

// Sequence is a leaf of the record tree.
type Sequence struct {
	IDs    []Identifier `msgpack:"ids"`
	Inst   Inst         `msgpack:"inst"`
	Descrs []Descriptor `msgpack:"descrs,omitempty"`
	Annots []Annot      `msgpack:"annots,omitempty"`
	Hist   *History     `msgpack:"hist,omitempty"`
}

// IsNucleotide reports whether the sequence instance is a nucleic acid.
func (s *Sequence) IsNucleotide() bool {
	return s != nil && s.Inst.Mol.IsNucleotide()
}

// Set is an internal node of the record tree.
type Set struct {
	Class    SetClass     `msgpack:"class"`
	Descrs   []Descriptor `msgpack:"descrs,omitempty"`
	Annots   []Annot      `msgpack:"annots,omitempty"`
	Children []*Document  `msgpack:"children"`
}

// Document is one node of a record: exactly one of Set and Seq is non-nil.
type Document struct {
	Set *Set      `msgpack:"set,omitempty"`
	Seq *Sequence `msgpack:"seq,omitempty"`
}

// NewSet wraps children into a set node.
func NewSet(class SetClass, children ...*Document) *Document {
	return &Document{Set: &Set{Class: class, Children: children}}
}

// NewSeq wraps a sequence into a leaf node.
func NewSeq(seq *Sequence) *Document {
	return &Document{Seq: seq}
}

// IsSet reports whether the node is an internal node.
func (d *Document) IsSet() bool { return d != nil && d.Set != nil }

// IsSeq reports whether the node is a leaf.
func (d *Document) IsSeq() bool { return d != nil && d.Seq != nil }

// Valid reports whether exactly one variant is populated.
func (d *Document) Valid() bool {
	return d != nil && (d.Set == nil) != (d.Seq == nil)
}

// Descrs returns the descriptor list of the node, whichever variant it is.
func (d *Document) Descrs() []Descriptor {
	switch {
	case d == nil:
		return nil
	case d.Set != nil:
		return d.Set.Descrs
	case d.Seq != nil:
		return d.Seq.Descrs
	}
	return nil
}

// SetDescrs replaces the descriptor list of the node.
func (d *Document) SetDescrs(descrs []Descriptor) {
	switch {
	case d == nil:
	case d.Set != nil:
		d.Set.Descrs = descrs
	case d.Seq != nil:
		d.Seq.Descrs = descrs
	}
}

// AddDescr appends a descriptor to the node.
func (d *Document) AddDescr(ds ...Descriptor) {
	d.SetDescrs(append(d.Descrs(), ds...))
}
