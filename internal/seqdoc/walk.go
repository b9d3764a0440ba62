package seqdoc

// Walk visits the tree in pre-order. Returning false from fn skips the
// children of the current node.
func Walk(doc *Document, fn func(node *Document, depth int) bool) {
	walk(doc, 0, fn)
}

func walk(doc *Document, depth int, fn func(*Document, int) bool) {
	if doc == nil {
		return
	}
	if !fn(doc, depth) {
		return
	}
	if doc.Set != nil {
		for _, child := range doc.Set.Children {
			walk(child, depth+1, fn)
		}
	}
}

// Sequences returns every leaf in pre-order.
func Sequences(doc *Document) []*Sequence {
	var out []*Sequence
	Walk(doc, func(node *Document, _ int) bool {
		if node.Seq != nil {
			out = append(out, node.Seq)
		}
		return true
	})
	return out
}

// NucSequences returns the nucleotide leaves in pre-order.
func NucSequences(doc *Document) []*Sequence {
	var out []*Sequence
	for _, seq := range Sequences(doc) {
		if seq.IsNucleotide() {
			out = append(out, seq)
		}
	}
	return out
}

// FirstNuc returns the first nucleotide leaf, or nil.
func FirstNuc(doc *Document) *Sequence {
	var found *Sequence
	Walk(doc, func(node *Document, _ int) bool {
		if found != nil {
			return false
		}
		if node.Seq != nil && node.Seq.IsNucleotide() {
			found = node.Seq
			return false
		}
		return true
	})
	return found
}

// IsProteinOnly reports whether the node is a protein leaf.
func IsProteinOnly(doc *Document) bool {
	return doc != nil && doc.Seq != nil && !doc.Seq.IsNucleotide()
}

// RecordID names a record by the first identifier of its nucleotide sequence,
// falling back to the first sequence of any kind.
func RecordID(doc *Document) string {
	if nuc := FirstNuc(doc); nuc != nil {
		return FirstLabel(nuc.IDs)
	}
	seqs := Sequences(doc)
	if len(seqs) > 0 {
		return FirstLabel(seqs[0].IDs)
	}
	return ""
}

// FindDescr returns the first descriptor of the given kind in a depth-first
// scan of the record, together with the node carrying it.
func FindDescr(doc *Document, kind DescrKind) (*Descriptor, *Document) {
	var (
		found *Descriptor
		owner *Document
	)
	Walk(doc, func(node *Document, _ int) bool {
		if found != nil {
			return false
		}
		descrs := node.Descrs()
		for i := range descrs {
			if descrs[i].Kind == kind {
				found = &descrs[i]
				owner = node
				return false
			}
		}
		return true
	})
	return found, owner
}
