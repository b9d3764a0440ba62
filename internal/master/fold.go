package master

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/seqdoc"
	"wgsmaster/internal/validate"
)

var fold = cases.Fold()

// Fold merges one validated record into the summary. It never fails: data
// problems become diagnostics located at (file, record).
func Fold(s *Summary, doc *seqdoc.Document, report *validate.RecordReport, file string, rep diag.Reporter) {
	tally := &diag.Tally{Next: rep}
	where := diag.Location{File: file, Record: report.RecordID}
	s.Records++
	if report.NucCount > 0 {
		s.NucRecords++
	}

	if !s.comments.exhausted() {
		s.comments.fold(recordComments(doc))
	}
	s.foldStructured(doc)
	s.keywords.fold(report.Keywords)
	if len(report.Keywords) > 0 {
		s.sawKeywords = true
	}
	FoldCommonPubs(s, recordPubs(doc))
	s.foldBioSource(doc, where, tally)
	s.foldDBLink(doc, where, tally)
	s.foldGPID(doc)
	s.foldDates(doc, where, tally)
	s.foldIDType(report.IDType, where, tally)

	report.Absorb(tally)
	s.Verdicts[report.Verdict()]++
}

// recordComments gathers comment strings depth-first, skipping protein leaves.
func recordComments(doc *seqdoc.Document) []string {
	var out []string
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		if seqdoc.IsProteinOnly(node) {
			return false
		}
		for _, d := range node.Descrs() {
			if d.Kind == seqdoc.DescrComment {
				out = append(out, d.Text)
			}
		}
		return true
	})
	return out
}

// structuredLabel names a structured comment by its prefix field, falling
// back to its full content.
func structuredLabel(u *seqdoc.UserObject) string {
	if f, ok := u.Field(seqdoc.StructuredCommentPrefix); ok && f.Value != "" {
		return f.Value
	}
	return u.Key()
}

func (s *Summary) foldStructured(doc *seqdoc.Document) {
	if s.structured.exhausted() {
		return
	}
	var labels []string
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		if seqdoc.IsProteinOnly(node) {
			return false
		}
		descrs := node.Descrs()
		for i := range descrs {
			if !descrs[i].IsUser(seqdoc.UserStructuredComment) {
				continue
			}
			label := structuredLabel(descrs[i].User)
			labels = append(labels, label)
			if _, ok := s.structObjs[label]; !ok && !s.structured.seeded {
				obj := descrs[i].User.Clone()
				s.structObjs[label] = &obj
			}
		}
		return true
	})
	s.structured.fold(labels)
}

// topLevelSources returns the BioSources on the record root, or on the
// nucleotide sequence when the root carries none.
func topLevelSources(doc *seqdoc.Document) []*seqdoc.BioSource {
	collect := func(descrs []seqdoc.Descriptor) []*seqdoc.BioSource {
		var out []*seqdoc.BioSource
		for i := range descrs {
			if descrs[i].Kind == seqdoc.DescrSource && descrs[i].Source != nil {
				out = append(out, descrs[i].Source)
			}
		}
		return out
	}
	if out := collect(doc.Descrs()); len(out) > 0 {
		return out
	}
	if nuc := seqdoc.FirstNuc(doc); nuc != nil {
		return collect(nuc.Descrs)
	}
	return nil
}

// SameOrganism compares organisms by case-folded taxonomic name and, when
// both carry one, taxonomy id.
func SameOrganism(a, b *seqdoc.OrgRef) bool {
	if a.TaxID != 0 && b.TaxID != 0 && a.TaxID != b.TaxID {
		return false
	}
	return fold.String(strings.TrimSpace(a.TaxName)) == fold.String(strings.TrimSpace(b.TaxName))
}

func (s *Summary) foldBioSource(doc *seqdoc.Document, where diag.Location, rep diag.Reporter) {
	sources := topLevelSources(doc)
	switch {
	case len(sources) > 1:
		rep.Report(diag.SubmissionMultipleBioSources, diag.SevFatal, where,
			fmt.Sprintf("record has %d top-level BioSource descriptors", len(sources)), nil)
		return
	case len(sources) == 0:
		rep.Report(diag.OrganismMissing, diag.SevError, where, "record has no BioSource", nil)
		return
	}
	src := sources[0]
	if s.Org == nil {
		cp := *src
		cp.Subtypes = append([]seqdoc.Subtype(nil), src.Subtypes...)
		s.Org = &cp
		s.SameOrg = true
		return
	}
	if s.SameOrg && !SameOrganism(&s.Org.Org, &src.Org) {
		s.SameOrg = false
		s.orgDivergedAt = where
		rep.Report(diag.SubmissionDifferentOrganism, diag.SevWarning, where,
			fmt.Sprintf("organism %q differs from %q", src.Org.TaxName, s.Org.Org.TaxName), nil)
	}
}

// recordDBLinks collects DBLink user objects depth-first. different is set
// as soon as two of them disagree.
func recordDBLinks(doc *seqdoc.Document) (first *seqdoc.UserObject, found, different bool) {
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		if different {
			return false
		}
		descrs := node.Descrs()
		for i := range descrs {
			if !descrs[i].IsUser(seqdoc.UserDBLink) {
				continue
			}
			found = true
			if first == nil {
				first = descrs[i].User
				continue
			}
			if !first.Equal(descrs[i].User) {
				different = true
				return false
			}
		}
		return true
	})
	return first, found, different
}

func (s *Summary) foldDBLink(doc *seqdoc.Document, where diag.Location, rep diag.Reporter) {
	link, found, different := recordDBLinks(doc)
	switch {
	case !found:
		if !s.DBLinkEmpty {
			s.DBLinkEmpty = true
			s.DBLinkEmptyAt = where
			rep.Report(diag.MasterMissingDBLink, diag.SevInfo, where, "record has no DBLink", nil)
		}
		return
	case different:
		s.markDBLinkDifferent(where, rep, "record carries conflicting DBLink objects")
		return
	}
	if s.DBLink == nil && !s.DBLinkDifferent {
		cp := link.Clone()
		s.DBLink = &cp
		return
	}
	if s.DBLink != nil && !s.DBLink.Equal(link) {
		s.markDBLinkDifferent(where, rep, "DBLink differs from the first record's")
	}
}

func (s *Summary) markDBLinkDifferent(where diag.Location, rep diag.Reporter, msg string) {
	if s.DBLinkDifferent {
		return
	}
	s.DBLinkDifferent = true
	s.DBLinkDifferentAt = where
	rep.Report(diag.SubmissionDifferentDBLinkInEntry, diag.SevWarning, where, msg, nil)
}

func (s *Summary) foldGPID(doc *seqdoc.Document) {
	if s.GPID {
		return
	}
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		descrs := node.Descrs()
		for i := range descrs {
			if descrs[i].IsUser(seqdoc.UserGenomeProjects) {
				s.GPID = true
				obj := descrs[i].User.Clone()
				s.gpidObj = &obj
				return false
			}
		}
		return !s.GPID
	})
}

func firstDate(doc *seqdoc.Document, kind seqdoc.DescrKind) *seqdoc.Date {
	d, _ := seqdoc.FindDescr(doc, kind)
	if d == nil {
		return nil
	}
	return d.Date
}

func (s *Summary) foldDates(doc *seqdoc.Document, where diag.Location, rep diag.Reporter) {
	if s.Create.observe(firstDate(doc, seqdoc.DescrCreateDate)) == DateDiffers {
		rep.Report(diag.MasterDifferentCreateDate, diag.SevWarning, where, "create date differs between records", nil)
	}
	if s.Update.observe(firstDate(doc, seqdoc.DescrUpdateDate)) == DateDiffers {
		rep.Report(diag.MasterDifferentUpdateDate, diag.SevWarning, where, "update date differs between records", nil)
	}
}

func (s *Summary) foldIDType(t validate.IDType, where diag.Location, rep diag.Reporter) {
	if t == validate.IDNone {
		return
	}
	if s.IDType == validate.IDNone {
		s.IDType = t
		return
	}
	if t != s.IDType && !s.IDTypeMixed {
		s.IDTypeMixed = true
		rep.Report(diag.SubmissionMixedIDTypes, diag.SevError, where,
			fmt.Sprintf("record uses %s ids while earlier records use %s ids", t, s.IDType), nil)
	}
}
