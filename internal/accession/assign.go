package accession

import (
	"errors"
	"fmt"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
)

var errTooMany = errors.New("accession ordinal space exhausted")

// Assigner stamps project accessions onto nucleotide sequences.
type Assigner struct {
	cfg      *project.Config
	order    *Order
	width    int
	assigned map[string]diag.Location
	first    string
	last     string
	lastOrd  int
	firstOrd int
}

// NewAssigner binds an Order (usually from Plan) and the ordinal width for the run.
func NewAssigner(cfg *project.Config, order *Order, width int) *Assigner {
	if order == nil {
		order = NewOrder()
	}
	return &Assigner{
		cfg:      cfg,
		order:    order,
		width:    width,
		assigned: make(map[string]diag.Location),
	}
}

// Order exposes the entry ordering shared with the master summary.
func (a *Assigner) Order() *Order { return a.order }

// Width is the ordinal width used for this run.
func (a *Assigner) Width() int { return a.width }

// Assign gives the record's nucleotide sequence its project accession and
// returns it. Pre-assigned projects are left untouched. Any existing
// accession of the project's archive kind is replaced; the new id goes first.
func (a *Assigner) Assign(doc *seqdoc.Document, where diag.Location, rep diag.Reporter) (string, bool) {
	if a.cfg.AccessionsPreAssigned {
		return "", false
	}
	nuc := seqdoc.FirstNuc(doc)
	if nuc == nil {
		return "", false
	}
	key := seqdoc.FirstLabel(nuc.IDs)
	if key == "" {
		emit(rep, diag.AccMissing, diag.SevError, where, "nucleotide sequence has no identifier to key the accession on")
		return "", false
	}
	if prev, dup := a.assigned[key]; dup {
		diag.ReportError(rep, diag.AccDuplicateEntry, where,
			fmt.Sprintf("entry %s already received an accession", key)).
			WithNote(prev, "first occurrence").
			Emit()
		return "", false
	}
	ordinal, _, err := a.order.Insert(key)
	if err != nil {
		emit(rep, diag.AccTooMany, diag.SevFatal, where, err.Error())
		return "", false
	}
	a.assigned[key] = where

	acc := Format(a.cfg.Prefix, a.cfg.Version, ordinal, a.width)
	kind := a.cfg.AccKind()
	ids := nuc.IDs[:0:0]
	for _, id := range nuc.IDs {
		if id.Kind == seqdoc.IDAccession && id.Acc == kind {
			continue
		}
		ids = append(ids, id)
	}
	nuc.IDs = append([]seqdoc.Identifier{seqdoc.Accession(kind, acc, 1)}, ids...)

	if a.first == "" || ordinal < a.firstOrd {
		a.first, a.firstOrd = acc, ordinal
	}
	if ordinal > a.lastOrd {
		a.last, a.lastOrd = acc, ordinal
	}
	return acc, true
}

// Range returns the lowest and highest accession assigned so far.
func (a *Assigner) Range() (first, last string) {
	return a.first, a.last
}

func emit(rep diag.Reporter, code diag.Code, sev diag.Severity, where diag.Location, msg string) {
	if rep == nil {
		return
	}
	rep.Report(code, sev, where, msg, nil)
}
