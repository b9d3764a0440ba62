package validate

import (
	"fmt"
	"slices"
	"strings"

	"wgsmaster/internal/accession"
	"wgsmaster/internal/diag"
	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
)

type validator struct {
	cfg *project.Config
	rep *diag.Tally
	r   *RecordReport
}

// Validate checks one top-level record against the project rules. The
// document is not modified: descriptors to remove are listed in
// RecordReport.Drops and corrections are left to the fixup passes.
func Validate(doc *seqdoc.Document, cfg *project.Config, where diag.Location, rep diag.Reporter) *RecordReport {
	r := &RecordReport{File: where.File, RecordID: where.Record}
	if r.RecordID == "" {
		r.RecordID = seqdoc.RecordID(doc)
	}
	v := &validator{cfg: cfg, rep: &diag.Tally{Next: rep}, r: r}

	v.descriptors(doc)
	v.structure(doc)
	v.molecules(doc, nil)
	v.chromosome(doc)
	v.secondary(doc)
	v.identifiers(doc)
	v.accessions(doc)
	v.keywords(doc)

	r.Absorb(v.rep)
	return r
}

func (v *validator) report(code diag.Code, sev diag.Severity, format string, args ...any) {
	v.rep.Report(code, sev, v.r.Where(), fmt.Sprintf(format, args...), nil)
}

func (v *validator) drop(node *seqdoc.Document, i int, kind seqdoc.DescrKind) {
	v.r.Drops = append(v.r.Drops, Drop{Node: node, Index: i, Kind: kind})
}

func (v *validator) descriptors(doc *seqdoc.Document) {
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		descrs := node.Descrs()
		onSet := node.IsSet()
		warnedUnusual := false
		for i := range descrs {
			d := &descrs[i]
			disp := SeqDisposition(d.Kind)
			if onSet {
				disp = SetDisposition(d.Kind)
			}
			switch disp {
			case Keep:
			case KeepWarnOnceUnusual:
				if !warnedUnusual {
					warnedUnusual = true
					v.report(diag.SubmissionUnusualDescriptor, diag.SevWarning,
						"unusual %s descriptor on %s set", d.Kind, node.Set.Class)
				}
			case DropErrorUnexpected:
				v.drop(node, i, d.Kind)
				v.report(diag.SubmissionUnexpectedDescriptor, diag.SevError,
					"unexpected %s descriptor removed", d.Kind)
			case DropWarnUnexpected:
				v.drop(node, i, d.Kind)
				v.report(diag.SubmissionUnexpectedDate, diag.SevWarning,
					"%s on %s set removed", d.Kind, node.Set.Class)
			case SpecialTitle:
				v.drop(node, i, d.Kind)
				sev := diag.SevWarning
				if v.cfg.Source == project.SourceEMBL || v.cfg.Source == project.SourceDDBJ {
					sev = diag.SevInfo
				}
				v.report(diag.SubmissionTitleOnSet, sev, "title on %s set removed", node.Set.Class)
			case UserObjectRule:
				v.userObject(node, i, d)
			}
		}
		return true
	})
}

func (v *validator) userObject(node *seqdoc.Document, i int, d *seqdoc.Descriptor) {
	typ := ""
	if d.User != nil {
		typ = d.User.Type
	}
	if d.User != nil && UserTypeKept(typ) {
		return
	}
	v.drop(node, i, d.Kind)
	sev := diag.SevError
	if UserTypeTolerated(typ) {
		sev = diag.SevWarning
	}
	v.report(diag.SubmissionUnexpectedUserObject, sev, "user object %q removed", typ)
}

func (v *validator) structure(doc *seqdoc.Document) {
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		switch {
		case node.IsSet():
			if node.Set.Class == seqdoc.ClassSegSet || node.Set.Class == seqdoc.ClassParts {
				v.r.HasSegSet = true
			}
		case node.IsSeq():
			if node.Seq.Inst.Repr == seqdoc.ReprSeg {
				v.r.HasSegSet = true
			}
			if node.Seq.IsNucleotide() {
				v.r.NucCount++
			} else {
				v.r.ProtCount++
			}
		}
		return true
	})
	if v.r.HasSegSet {
		v.report(diag.SeqSegmentedSet, diag.SevCritical, "segmented sequences are not allowed")
	}
	switch {
	case v.r.NucCount > 1:
		v.report(diag.SeqMultipleNucleotides, diag.SevCritical,
			"record has %d nucleotide sequences, expected one", v.r.NucCount)
	case v.r.NucCount == 0:
		v.report(diag.SeqNoNucleotide, diag.SevCritical, "record has no nucleotide sequence")
	}
}

// molecules checks every nucleotide leaf against the project's expected
// biomol/tech/mol triple, using the nearest MolInfo on the path from the root.
func (v *validator) molecules(node *seqdoc.Document, inherited *seqdoc.MolInfo) {
	if node == nil {
		return
	}
	mi := inherited
	if d := findOwn(node, seqdoc.DescrMolInfo); d != nil && d.MolInfo != nil {
		mi = d.MolInfo
	}
	if node.IsSet() {
		for _, c := range node.Set.Children {
			v.molecules(c, mi)
		}
		return
	}
	if !node.Seq.IsNucleotide() {
		return
	}
	exp := v.cfg.Expected()
	fix := v.cfg.Fix
	if mi == nil {
		v.r.MolInfoMissing = true
		sev := diag.SevError
		if fix.Has(project.FixBiomol) && fix.Has(project.FixTech) {
			sev = diag.SevWarning
		}
		v.report(diag.SeqNoMolInfo, sev, "nucleotide sequence has no MolInfo")
	} else {
		if mi.Biomol != exp.Biomol {
			v.r.BiomolMismatch = true
			v.report(diag.SeqIncorrectBiomol, mismatchSeverity(fix, project.FixBiomol),
				"incorrect Molinfo.biomol: %s, expected %s", mi.Biomol, exp.Biomol)
		}
		if mi.Tech != exp.Tech {
			v.r.TechMismatch = true
			v.report(diag.SeqIncorrectTech, mismatchSeverity(fix, project.FixTech),
				"incorrect Molinfo.tech: %s, expected %s", mi.Tech, exp.Tech)
		}
	}
	if node.Seq.Inst.Mol != exp.Mol {
		v.r.MolTypeMismatch = true
		v.report(diag.SeqIncorrectMolType, mismatchSeverity(fix, project.FixMol),
			"incorrect molecule type: %s, expected %s", node.Seq.Inst.Mol, exp.Mol)
	}
}

func mismatchSeverity(fix, bit project.FixFlags) diag.Severity {
	if fix.Has(bit) {
		return diag.SevWarning
	}
	return diag.SevCritical
}

func findOwn(node *seqdoc.Document, kind seqdoc.DescrKind) *seqdoc.Descriptor {
	descrs := node.Descrs()
	for i := range descrs {
		if descrs[i].Kind == kind {
			return &descrs[i]
		}
	}
	return nil
}

func (v *validator) chromosome(doc *seqdoc.Document) {
	if !v.cfg.ChromosomeCheck() {
		return
	}
	v.r.ChromosomeChecked = true
	var lineage string
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		for _, d := range node.Descrs() {
			if d.Kind != seqdoc.DescrSource || d.Source == nil {
				continue
			}
			if lineage == "" {
				lineage = d.Source.Org.Lineage
			}
			if val, ok := d.Source.Subtype("chromosome"); ok && strings.TrimSpace(val) != "" {
				v.r.ChromosomePresent = true
			}
		}
		return !v.r.ChromosomePresent
	})
	if v.r.ChromosomePresent {
		return
	}
	sev := diag.SevError
	if isProkaryote(lineage) {
		sev = diag.SevCritical
	}
	v.report(diag.OrganismNoChromosome, sev, "BioSource has no chromosome subtype")
}

func isProkaryote(lineage string) bool {
	l := fold.String(lineage)
	return strings.HasPrefix(l, "bacteria") || strings.HasPrefix(l, "archaea") ||
		strings.Contains(l, "; bacteria") || strings.Contains(l, "; archaea")
}

// secondary collects extra accessions, expands ranges, drops the project's
// own accessions and compares the result with the replaced-by history.
func (v *validator) secondary(doc *seqdoc.Document) {
	set := make(map[string]struct{})
	add := func(entry string) {
		accs, err := accession.ExpandRange(entry)
		if err != nil {
			v.report(diag.AccInvalid, diag.SevError, "secondary accession: %v", err)
			return
		}
		for _, a := range accs {
			if accession.IsProjectShaped(a, v.cfg) {
				continue
			}
			set[a] = struct{}{}
		}
	}
	haveHist := false
	hist := make(map[string]struct{})
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		for _, d := range node.Descrs() {
			switch {
			case d.Kind == seqdoc.DescrGenBank && d.GenBank != nil:
				for _, e := range d.GenBank.ExtraAccessions {
					add(e)
				}
			case d.Kind == seqdoc.DescrEMBL && d.EMBL != nil:
				for _, e := range d.EMBL.ExtraAcc {
					add(e)
				}
			}
		}
		if node.IsSeq() && node.Seq.IsNucleotide() && node.Seq.Hist != nil {
			haveHist = true
			for _, id := range node.Seq.Hist.Replaces {
				hist[id.Tag()] = struct{}{}
			}
		}
		return true
	})

	v.r.SecondaryAccs = sortedKeys(set)
	if len(set) > 0 && !v.cfg.SecondaryAccsAllowed {
		v.report(diag.SubmissionSecondaryAccsPresent, diag.SevError,
			"record carries %d secondary accession(s)", len(set))
	}
	if haveHist && !sameKeys(set, hist) {
		v.r.HistSecondaryDiffers = true
		v.report(diag.SubmissionHistSecondaryDiffers, diag.SevCritical,
			"secondary accessions %v differ from replaced-by history %v", v.r.SecondaryAccs, sortedKeys(hist))
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func sameKeys(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func (v *validator) identifiers(doc *seqdoc.Document) {
	for _, seq := range seqdoc.Sequences(doc) {
		nuc := seq.IsNucleotide()
		var submitter []seqdoc.Identifier
		for _, id := range seq.IDs {
			switch id.Kind {
			case seqdoc.IDLocal, seqdoc.IDGeneral:
				submitter = append(submitter, id)
			case seqdoc.IDAccession:
			}
		}
		if len(submitter) > 1 {
			v.report(diag.SeqTooManyIDs, diag.SevCritical,
				"%s has %d submitter identifiers, expected one", seqdoc.FirstLabel(seq.IDs), len(submitter))
		}
		if nuc {
			v.nucSubmitter(submitter)
		}
		// ignore-general-ids only switches off the database comparison
		if v.cfg.IgnoreGeneralIDs || len(submitter) == 0 || submitter[0].Kind != seqdoc.IDGeneral {
			continue
		}
		want, class := v.cfg.ProtDBName(), FixProtDBName
		if nuc {
			want, class = v.cfg.NucDBName(), FixNucDBName
		}
		if db := submitter[0].DB; db != want {
			if v.cfg.ReplaceDBName {
				v.r.DBNameFix |= class
				continue
			}
			v.r.DBNameWrong = true
			v.report(diag.SeqDbNameMismatch, diag.SevCritical,
				"general id database %q does not match %q", db, want)
		}
	}
}

func (v *validator) nucSubmitter(submitter []seqdoc.Identifier) {
	if len(submitter) == 0 {
		if !v.cfg.AccessionsPreAssigned {
			v.report(diag.SeqNoSubmitterID, diag.SevError, "nucleotide sequence has no local or general identifier")
		}
		if v.cfg.RequireGeneralID {
			v.report(diag.SeqMissingGeneralID, diag.SevError, "nucleotide sequence has no general identifier")
		}
		return
	}
	id := submitter[0]
	v.r.SubmitterID = id.Tag()
	switch id.Kind {
	case seqdoc.IDLocal:
		v.r.IDType = IDLocal
		if v.cfg.RequireGeneralID {
			v.report(diag.SeqMissingGeneralID, diag.SevError, "nucleotide sequence has no general identifier")
		}
	case seqdoc.IDGeneral:
		v.r.IDType = IDGeneral
		v.r.GeneralDB = id.DB
	case seqdoc.IDAccession:
	}
}

func (v *validator) accessions(doc *seqdoc.Document) {
	kind := v.cfg.AccKind()
	for _, seq := range seqdoc.NucSequences(doc) {
		for _, id := range seq.IDs {
			if id.Kind != seqdoc.IDAccession {
				continue
			}
			v.r.AccessionsFound++
			if !v.cfg.AccessionsPreAssigned || id.Acc != kind {
				continue
			}
			if !accession.Valid(id.Tag(), v.cfg) {
				v.r.InvalidAccessions = append(v.r.InvalidAccessions, id.Tag())
				v.report(diag.AccInvalid, diag.SevCritical, "invalid accession %s", id.Tag())
			}
		}
	}
	if v.cfg.AccessionsPreAssigned && v.r.NucCount > 0 && v.r.AccessionsFound == 0 {
		v.report(diag.AccMissing, diag.SevCritical, "accessions are pre-assigned but the record has none")
	}
}

func (v *validator) keywords(doc *seqdoc.Document) {
	seen := make(map[string]struct{})
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		for _, d := range node.Descrs() {
			if d.Kind != seqdoc.DescrGenBank || d.GenBank == nil {
				continue
			}
			for _, kw := range d.GenBank.Keywords {
				kw = strings.TrimSpace(kw)
				if kw == "" {
					continue
				}
				if _, dup := seen[kw]; dup {
					continue
				}
				seen[kw] = struct{}{}
				v.r.Keywords = append(v.r.Keywords, kw)
			}
		}
		return true
	})
}
