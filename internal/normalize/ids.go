package normalize

import (
	"fmt"
	"slices"

	"golang.org/x/text/cases"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/seqdoc"
)

// sentinelDBs are general-id databases written by submission tools; ids in
// them carry no information and are dropped.
var sentinelDBs = []string{"TMSMART", "BankIt", "NCBIFILE"}

var fold = cases.Fold()

// IsSentinelDB reports whether db names a submission-tool database.
func IsSentinelDB(db string) bool {
	f := fold.String(db)
	for _, s := range sentinelDBs {
		if fold.String(s) == f {
			return true
		}
	}
	return false
}

// NormalizeIdentifiers puts archive accessions first, removes sentinel
// general ids, and drops the local id when a general id remains. A local
// tag that differs from the general tag is reported and the call returns
// false; the local id is dropped either way. Applying it twice is the same
// as applying it once.
func NormalizeIdentifiers(seq *seqdoc.Sequence, where diag.Location, rep diag.Reporter) bool {
	if seq == nil || len(seq.IDs) == 0 {
		return true
	}
	ids := make([]seqdoc.Identifier, 0, len(seq.IDs))
	for _, id := range seq.IDs {
		if id.Kind == seqdoc.IDGeneral && IsSentinelDB(id.DB) {
			continue
		}
		ids = append(ids, id)
	}
	slices.SortStableFunc(ids, func(a, b seqdoc.Identifier) int {
		switch {
		case a.IsSpecial() && !b.IsSpecial():
			return -1
		case !a.IsSpecial() && b.IsSpecial():
			return 1
		}
		return 0
	})

	ok := true
	local := slices.IndexFunc(ids, func(id seqdoc.Identifier) bool { return id.Kind == seqdoc.IDLocal })
	general := slices.IndexFunc(ids, func(id seqdoc.Identifier) bool { return id.Kind == seqdoc.IDGeneral })
	if local >= 0 && general >= 0 {
		if ids[local].Tag() != ids[general].Tag() {
			ok = false
			if rep != nil {
				rep.Report(diag.SeqGeneralLocalIdsDiffer, diag.SevCritical, where,
					fmt.Sprintf("general/local ids differ: %s vs %s", ids[general].Label(), ids[local].Label()), nil)
			}
		}
		ids = slices.DeleteFunc(ids, func(id seqdoc.Identifier) bool { return id.Kind == seqdoc.IDLocal })
	}
	seq.IDs = ids
	return ok
}

// NormalizeDocument applies NormalizeIdentifiers to every sequence of the
// record and reports whether all of them passed.
func NormalizeDocument(doc *seqdoc.Document, where diag.Location, rep diag.Reporter) bool {
	ok := true
	for _, seq := range seqdoc.Sequences(doc) {
		loc := where
		if loc.Record == "" {
			loc.Record = seqdoc.FirstLabel(seq.IDs)
		}
		if !NormalizeIdentifiers(seq, loc, rep) {
			ok = false
		}
	}
	return ok
}
