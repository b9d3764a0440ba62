package master

import (
	"slices"

	"wgsmaster/internal/accession"
	"wgsmaster/internal/diag"
	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
	"wgsmaster/internal/validate"
)

// Range is the span of accessions assigned in the run.
type Range struct {
	First string
	Last  string
}

// ProjectsObjectType is the user object type recording the accession span,
// e.g. "WGSProjects".
func ProjectsObjectType(kind project.Kind) string {
	return kind.String() + "Projects"
}

// Build synthesises the master record from the summary: one virtual
// nucleotide sequence named prefix+version+zero ordinal that carries what
// all records agree on.
func Build(s *Summary, cfg *project.Config, width int, span Range) *seqdoc.Document {
	exp := cfg.Expected()
	seq := &seqdoc.Sequence{
		IDs: []seqdoc.Identifier{
			seqdoc.Accession(cfg.AccKind(), accession.MasterAccession(cfg, width), 1),
		},
		Inst: seqdoc.Inst{Mol: exp.Mol, Repr: seqdoc.ReprVirtual},
	}
	add := func(d seqdoc.Descriptor) { seq.Descrs = append(seq.Descrs, d) }

	add(seqdoc.MolInfoDescr(seqdoc.MolInfo{Biomol: exp.Biomol, Tech: exp.Tech}))
	if s.Org != nil && s.SameOrg {
		src := *s.Org
		src.Subtypes = slices.Clone(s.Org.Subtypes)
		add(seqdoc.SourceDescr(src))
	}
	for _, c := range s.Comments() {
		add(seqdoc.Comment(c))
	}
	for _, label := range s.StructuredLabels() {
		if obj, ok := s.structObjs[label]; ok {
			add(seqdoc.UserDescr(obj.Clone()))
		}
	}
	if s.DBLink != nil && !s.DBLinkDifferent {
		add(seqdoc.UserDescr(s.DBLink.Clone()))
	}
	if s.GPID && s.gpidObj != nil {
		add(seqdoc.UserDescr(s.gpidObj.Clone()))
	}
	for _, p := range s.Pubs() {
		p.Authors = slices.Clone(p.Authors)
		if p.Kind == seqdoc.PubSub && cfg.SubmissionDate != nil {
			d := *cfg.SubmissionDate
			p.Date = &d
		} else if p.Date != nil {
			d := *p.Date
			p.Date = &d
		}
		add(seqdoc.PubDescr(p))
	}
	if d, ok := s.CreateDate(); ok {
		add(seqdoc.CreateDateDescr(d))
	}
	if d, ok := s.UpdateDate(); ok {
		add(seqdoc.UpdateDateDescr(d))
	}

	keywords := []string{cfg.Keyword()}
	for _, kw := range s.Keywords() {
		if !slices.Contains(keywords, kw) {
			keywords = append(keywords, kw)
		}
	}
	add(seqdoc.GenBankDescr(seqdoc.GenBankBlock{Keywords: keywords}))

	if span.First != "" {
		prefix := cfg.Kind.String() + "_accession_"
		add(seqdoc.UserDescr(seqdoc.UserObject{
			Type: ProjectsObjectType(cfg.Kind),
			Fields: []seqdoc.UserField{
				{Label: prefix + "first", Value: span.First},
				{Label: prefix + "last", Value: span.Last},
			},
		}))
	}
	return seqdoc.NewSeq(seq)
}

// Finish reports aggregate problems once every record has been folded and
// returns the master-level verdict.
func Finish(s *Summary, cfg *project.Config, rep diag.Reporter) validate.Verdict {
	tally := &diag.Tally{Next: rep}
	var at diag.Location

	if s.Records == 0 {
		tally.Report(diag.MasterNoRecords, diag.SevFatal, at, "no records were processed", nil)
		worst, any := tally.Worst()
		return validate.VerdictFor(worst, any)
	}

	switch {
	case s.Org == nil:
		tally.Report(diag.MasterNoCommonOrganism, diag.SevError, at, "no record carries a BioSource", nil)
	case !s.SameOrg:
		diag.ReportError(tally, diag.MasterNoCommonOrganism, at, "records do not share one organism").
			WithNote(s.orgDivergedAt, "first differing organism").
			Emit()
	}

	dblinkSev := diag.SevError
	if cfg.DBLinkOverride {
		dblinkSev = diag.SevWarning
	}
	if s.DBLinkDifferent {
		diag.NewReportBuilder(tally, dblinkSev, diag.MasterDifferentDBLinks, at, "DBLink differs between records").
			WithNote(s.DBLinkDifferentAt, "first difference").
			Emit()
	}
	if s.DBLinkEmpty {
		sev := diag.SevWarning
		msg := "no record carries a DBLink"
		if s.DBLink != nil || s.DBLinkDifferent {
			sev = dblinkSev
			msg = "DBLink is missing from some records"
		}
		diag.NewReportBuilder(tally, sev, diag.MasterMissingDBLink, at, msg).
			WithNote(s.DBLinkEmptyAt, "first record without DBLink").
			Emit()
	}
	if s.GPID {
		tally.Report(diag.MasterGPIDPresent, diag.SevWarning, at, "genome project id object present; use DBLink BioProject instead", nil)
	}
	if s.Create.missing && s.Create.value != nil {
		tally.Report(diag.MasterMissingCreateDate, diag.SevInfo, at, "create date missing from some records", nil)
	}
	if s.Update.missing && s.Update.value != nil {
		tally.Report(diag.MasterMissingUpdateDate, diag.SevInfo, at, "update date missing from some records", nil)
	}
	if s.keywords.exhausted() && s.sawKeywords {
		tally.Report(diag.MasterDifferentKeywords, diag.SevInfo, at, "records share no keywords", nil)
	}

	worst, any := tally.Worst()
	return validate.VerdictFor(worst, any)
}
