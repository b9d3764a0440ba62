package master

import (
	"slices"

	"wgsmaster/internal/accession"
	"wgsmaster/internal/diag"
	"wgsmaster/internal/seqdoc"
	"wgsmaster/internal/validate"
)

// DateState is the outcome of folding one record's date into the summary.
type DateState uint8

const (
	DateNoIssues DateState = iota
	DateDiffers
	DateMissing
)

func (s DateState) String() string {
	switch s {
	case DateDiffers:
		return "differs"
	case DateMissing:
		return "missing"
	}
	return "no-issues"
}

// dateTracker holds the first date seen. Once a later record disagrees the
// held value is cleared for good; later records are not compared again.
type dateTracker struct {
	value    *seqdoc.Date
	diverged bool
	missing  bool
}

func (t *dateTracker) observe(d *seqdoc.Date) DateState {
	if d == nil {
		t.missing = true
		return DateMissing
	}
	switch {
	case t.diverged:
		return DateNoIssues
	case t.value == nil:
		v := *d
		t.value = &v
		return DateNoIssues
	case t.value.Equal(*d):
		return DateNoIssues
	}
	t.value = nil
	t.diverged = true
	return DateDiffers
}

// Common returns the date every record agreed on.
func (t *dateTracker) Common() (seqdoc.Date, bool) {
	if t.value == nil || t.diverged || t.missing {
		return seqdoc.Date{}, false
	}
	return *t.value, true
}

// stringSet is a running intersection that remembers first-seen order.
type stringSet struct {
	items  []string
	seeded bool
}

func (s *stringSet) fold(cur []string) {
	if !s.seeded {
		s.seeded = true
		for _, v := range cur {
			if !slices.Contains(s.items, v) {
				s.items = append(s.items, v)
			}
		}
		return
	}
	if len(s.items) == 0 {
		return
	}
	s.items = slices.DeleteFunc(s.items, func(v string) bool { return !slices.Contains(cur, v) })
}

// exhausted reports a seeded set that became empty; it can never refill.
func (s *stringSet) exhausted() bool { return s.seeded && len(s.items) == 0 }

func (s *stringSet) values() []string { return slices.Clone(s.items) }

// Summary is the run-wide accumulator every record is folded into, in file
// order. Each "common" field only ever shrinks: once a value is empty or
// disagreeing it stays that way.
type Summary struct {
	Records    int
	NucRecords int
	Verdicts   [3]int

	comments    stringSet
	structured  stringSet
	structObjs  map[string]*seqdoc.UserObject
	keywords    stringSet
	sawKeywords bool
	pubs        pubSet

	Org           *seqdoc.BioSource
	SameOrg       bool
	orgDivergedAt diag.Location

	DBLink            *seqdoc.UserObject
	DBLinkEmpty       bool
	DBLinkEmptyAt     diag.Location
	DBLinkDifferent   bool
	DBLinkDifferentAt diag.Location

	GPID    bool
	gpidObj *seqdoc.UserObject

	Create dateTracker
	Update dateTracker

	IDType      validate.IDType
	IDTypeMixed bool

	// OrderOfEntries maps first-seen entry keys to accession ordinals.
	OrderOfEntries *accession.Order

	NucDBNameWarned  bool
	ProtDBNameWarned bool
}

// NewSummary returns an empty summary sharing the given entry order.
func NewSummary(order *accession.Order) *Summary {
	if order == nil {
		order = accession.NewOrder()
	}
	return &Summary{
		structObjs:     make(map[string]*seqdoc.UserObject),
		OrderOfEntries: order,
	}
}

// Comments returns the comments common to every record folded so far.
func (s *Summary) Comments() []string { return s.comments.values() }

// StructuredLabels returns the structured-comment labels common to every record.
func (s *Summary) StructuredLabels() []string { return s.structured.values() }

// Keywords returns the GenBank keywords common to every record.
func (s *Summary) Keywords() []string { return s.keywords.values() }

// Pubs returns the publications common to every record.
func (s *Summary) Pubs() []seqdoc.Pub { return s.pubs.values() }

// CreateDate returns the create date every record agreed on.
func (s *Summary) CreateDate() (seqdoc.Date, bool) { return s.Create.Common() }

// UpdateDate returns the update date every record agreed on.
func (s *Summary) UpdateDate() (seqdoc.Date, bool) { return s.Update.Common() }

// Count returns how many records were folded with verdict v.
func (s *Summary) Count(v validate.Verdict) int {
	if int(v) < len(s.Verdicts) {
		return s.Verdicts[v]
	}
	return 0
}
