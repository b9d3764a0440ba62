package fixup

import (
	"context"
	"errors"
	"fmt"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/lookup"
	"wgsmaster/internal/seqdoc"
)

// Organisms normalises every BioSource of the record through the taxonomy
// service. Unknown organisms are errors; an unreachable service only
// degrades to "no data".
func Organisms(ctx context.Context, doc *seqdoc.Document, tax lookup.Taxonomy, where diag.Location, rep diag.Reporter) {
	if tax == nil {
		return
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}
	unavailable := false
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		descrs := node.Descrs()
		for i := range descrs {
			src := descrs[i].Source
			if descrs[i].Kind != seqdoc.DescrSource || src == nil {
				continue
			}
			if unavailable {
				return false
			}
			got, err := tax.LookupOrg(ctx, src.Org)
			switch {
			case err == nil:
				if got.TaxName != src.Org.TaxName {
					rep.Report(diag.OrganismLookupReplaced, diag.SevInfo, where,
						fmt.Sprintf("organism %q normalised to %q", src.Org.TaxName, got.TaxName), nil)
				}
				src.Org = got
			case errors.Is(err, lookup.ErrNotFound):
				rep.Report(diag.OrganismNotFound, diag.SevError, where,
					fmt.Sprintf("organism %q not found in taxonomy", src.Org.TaxName), nil)
			default:
				unavailable = true
				rep.Report(diag.ServerTaxonomyUnavailable, diag.SevWarning, where,
					fmt.Sprintf("taxonomy lookup failed: %v", err), nil)
				return false
			}
		}
		return true
	})
}

// Publications refreshes publications carrying a PubMed id. Both a missing
// entry and an unreachable service leave the publication untouched.
func Publications(ctx context.Context, doc *seqdoc.Document, bib lookup.Bibliographic, where diag.Location, rep diag.Reporter) {
	if bib == nil {
		return
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}
	unavailable := false
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		descrs := node.Descrs()
		for i := range descrs {
			p := descrs[i].Pub
			if descrs[i].Kind != seqdoc.DescrPub || p == nil || p.PMID <= 0 {
				continue
			}
			if unavailable {
				return false
			}
			got, err := bib.LookupPub(ctx, *p)
			switch {
			case err == nil:
				*p = got
			case errors.Is(err, lookup.ErrNotFound):
				rep.Report(diag.RefPubNotFound, diag.SevWarning, where,
					fmt.Sprintf("publication pmid %d not found", p.PMID), nil)
			default:
				unavailable = true
				rep.Report(diag.ServerBiblioUnavailable, diag.SevWarning, where,
					fmt.Sprintf("bibliographic lookup failed: %v", err), nil)
				return false
			}
		}
		return true
	})
}
