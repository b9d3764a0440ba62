package master

import (
	"fmt"
	"slices"
	"strings"

	"wgsmaster/internal/seqdoc"
)

// pubSet is the running intersection of publications keyed by identity.
type pubSet struct {
	keys   []string
	byKey  map[string]seqdoc.Pub
	seeded bool
}

// PubKey identifies a publication across records: the PubMed id when
// present, otherwise kind, title, authors and year, case-folded. The
// Cit-sub date is not part of the identity.
func PubKey(p *seqdoc.Pub) string {
	if p.PMID > 0 {
		return fmt.Sprintf("pmid:%d", p.PMID)
	}
	authors := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		authors[i] = fold.String(strings.TrimSpace(a))
	}
	return fmt.Sprintf("%s|%s|%s|%d", p.Kind, fold.String(strings.TrimSpace(p.Title)), strings.Join(authors, ";"), p.Year)
}

// FoldCommonPubs intersects the summary's common publications with the
// publications of one record. The first record seeds the set; the first
// occurrence of each publication is the one kept.
func FoldCommonPubs(s *Summary, pubs []seqdoc.Pub) {
	s.pubs.fold(pubs)
}

func (ps *pubSet) fold(pubs []seqdoc.Pub) {
	cur := make(map[string]seqdoc.Pub, len(pubs))
	var order []string
	for i := range pubs {
		k := PubKey(&pubs[i])
		if _, dup := cur[k]; dup {
			continue
		}
		cur[k] = pubs[i]
		order = append(order, k)
	}
	if !ps.seeded {
		ps.seeded = true
		ps.keys = order
		ps.byKey = make(map[string]seqdoc.Pub, len(cur))
		for k, p := range cur {
			ps.byKey[k] = clonePub(p)
		}
		return
	}
	if len(ps.keys) == 0 {
		return
	}
	ps.keys = slices.DeleteFunc(ps.keys, func(k string) bool {
		if _, ok := cur[k]; ok {
			return false
		}
		delete(ps.byKey, k)
		return true
	})
}

// clonePub detaches a kept publication from the record it came from.
func clonePub(p seqdoc.Pub) seqdoc.Pub {
	p.Authors = slices.Clone(p.Authors)
	if p.Date != nil {
		d := *p.Date
		p.Date = &d
	}
	return p
}

func (ps *pubSet) values() []seqdoc.Pub {
	out := make([]seqdoc.Pub, 0, len(ps.keys))
	for _, k := range ps.keys {
		out = append(out, ps.byKey[k])
	}
	return out
}

// recordPubs collects the publications of a record, skipping protein leaves.
func recordPubs(doc *seqdoc.Document) []seqdoc.Pub {
	var out []seqdoc.Pub
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		if seqdoc.IsProteinOnly(node) {
			return false
		}
		for _, d := range node.Descrs() {
			if d.Kind == seqdoc.DescrPub && d.Pub != nil {
				out = append(out, *d.Pub)
			}
		}
		return true
	})
	return out
}
