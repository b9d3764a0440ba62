package normalize

import (
	"fmt"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/seqdoc"
)

// FlattenResult summarises a flattening pass.
type FlattenResult struct {
	OK        bool
	Collapsed int
}

// IsPassThrough reports the container classes that are dissolved into
// their parent.
func IsPassThrough(c seqdoc.SetClass) bool {
	switch c {
	case seqdoc.ClassGenBank, seqdoc.ClassPubSet, seqdoc.ClassGenProdSet,
		seqdoc.ClassWGSSet, seqdoc.ClassEcoSet, seqdoc.ClassPhySet,
		seqdoc.ClassPopSet, seqdoc.ClassMutSet, seqdoc.ClassSmallGenomeSet:
		return true
	case seqdoc.ClassOther, seqdoc.ClassNucProt, seqdoc.ClassSegSet, seqdoc.ClassParts:
		return false
	}
	return false
}

type flattener struct {
	where diag.Location
	rep   diag.Reporter
	res   FlattenResult
}

// FlattenWrapperSets replaces every pass-through set below doc by its
// children, spliced into the parent at the same position. Descriptors of a
// dissolved set are copied onto each hoisted child; annotations on it are
// an error and clear FlattenResult.OK. A pass-through root is left to
// SplitRecords.
func FlattenWrapperSets(doc *seqdoc.Document, where diag.Location, rep diag.Reporter) FlattenResult {
	f := &flattener{where: where, rep: rep, res: FlattenResult{OK: true}}
	if doc.IsSet() {
		doc.Set.Children = f.children(doc.Set.Children)
	}
	return f.res
}

// SplitRecords turns the decoded root of a file into its top-level records,
// dissolving a root wrapper set and flattening the rest.
func SplitRecords(root *seqdoc.Document, where diag.Location, rep diag.Reporter) ([]*seqdoc.Document, FlattenResult) {
	f := &flattener{where: where, rep: rep, res: FlattenResult{OK: true}}
	if root == nil {
		return nil, f.res
	}
	return f.children([]*seqdoc.Document{root}), f.res
}

func (f *flattener) children(in []*seqdoc.Document) []*seqdoc.Document {
	out := make([]*seqdoc.Document, 0, len(in))
	for _, c := range in {
		if c == nil {
			continue
		}
		if !c.IsSet() {
			out = append(out, c)
			continue
		}
		if !IsPassThrough(c.Set.Class) {
			c.Set.Children = f.children(c.Set.Children)
			out = append(out, c)
			continue
		}
		f.res.Collapsed++
		if len(c.Set.Annots) > 0 {
			f.res.OK = false
			if f.rep != nil {
				f.rep.Report(diag.InputSeqAnnotInWrapperSet, diag.SevError, f.where,
					fmt.Sprintf("%s set carries %d annotation(s)", c.Set.Class, len(c.Set.Annots)), nil)
			}
		}
		if len(c.Set.Descrs) > 0 {
			for _, h := range c.Set.Children {
				if h == nil {
					continue
				}
				h.SetDescrs(append(seqdoc.CloneDescrs(c.Set.Descrs), h.Descrs()...))
			}
		}
		out = append(out, f.children(c.Set.Children)...)
	}
	return out
}
