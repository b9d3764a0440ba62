// Package fixup applies the corrections the project policies permit:
// removing descriptors the validator rejected, rewriting MolInfo and
// general-id databases, forcing the Cit-sub date, and normalising organisms
// and publications against the lookup services.
package fixup

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/master"
	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
	"wgsmaster/internal/validate"
)

// DropDescriptors removes the descriptors listed in report.Drops and
// returns how many were removed. It must run before anything else edits
// descriptor lists of the record.
func DropDescriptors(report *validate.RecordReport) int {
	byNode := make(map[*seqdoc.Document][]int)
	var nodes []*seqdoc.Document
	for _, d := range report.Drops {
		if _, ok := byNode[d.Node]; !ok {
			nodes = append(nodes, d.Node)
		}
		byNode[d.Node] = append(byNode[d.Node], d.Index)
	}
	removed := 0
	for _, node := range nodes {
		idx := byNode[node]
		slices.SortFunc(idx, func(a, b int) int { return cmp.Compare(b, a) })
		idx = slices.Compact(idx)
		descrs := node.Descrs()
		for _, i := range idx {
			if i < 0 || i >= len(descrs) {
				continue
			}
			descrs = slices.Delete(descrs, i, i+1)
			removed++
		}
		node.SetDescrs(descrs)
	}
	report.Drops = nil
	return removed
}

// ApplyMolFixes rewrites biomol, tech and molecule type of nucleotide
// sequences where the validator found a mismatch and the matching fix bit
// is set. A missing MolInfo is added when both biomol and tech may be fixed.
func ApplyMolFixes(doc *seqdoc.Document, cfg *project.Config, report *validate.RecordReport, rep diag.Reporter) bool {
	if !report.NeedsMolFix() && !report.MolInfoMissing {
		return false
	}
	f := &molFixer{cfg: cfg, exp: cfg.Expected()}
	f.walk(doc, nil)
	if len(f.fixed) > 0 && rep != nil {
		rep.Report(diag.SeqMolFixed, diag.SevInfo, report.Where(),
			"corrected "+strings.Join(f.fixed, ", "), nil)
	}
	return len(f.fixed) > 0
}

type molFixer struct {
	cfg   *project.Config
	exp   project.Expectation
	fixed []string
}

func (f *molFixer) note(what string) {
	if !slices.Contains(f.fixed, what) {
		f.fixed = append(f.fixed, what)
	}
}

func (f *molFixer) walk(node *seqdoc.Document, inherited *seqdoc.MolInfo) {
	if node == nil {
		return
	}
	mi := inherited
	descrs := node.Descrs()
	for i := range descrs {
		if descrs[i].Kind == seqdoc.DescrMolInfo && descrs[i].MolInfo != nil {
			mi = descrs[i].MolInfo
			break
		}
	}
	if node.IsSet() {
		for _, c := range node.Set.Children {
			f.walk(c, mi)
		}
		return
	}
	seq := node.Seq
	if !seq.IsNucleotide() {
		return
	}
	fix := f.cfg.Fix
	if mi == nil {
		if fix.Has(project.FixBiomol) && fix.Has(project.FixTech) {
			node.AddDescr(seqdoc.MolInfoDescr(seqdoc.MolInfo{Biomol: f.exp.Biomol, Tech: f.exp.Tech}))
			f.note("MolInfo")
		}
	} else {
		if mi.Biomol != f.exp.Biomol && fix.Has(project.FixBiomol) {
			mi.Biomol = f.exp.Biomol
			f.note("biomol")
		}
		if mi.Tech != f.exp.Tech && fix.Has(project.FixTech) {
			mi.Tech = f.exp.Tech
			f.note("tech")
		}
	}
	if seq.Inst.Mol != f.exp.Mol && fix.Has(project.FixMol) {
		seq.Inst.Mol = f.exp.Mol
		f.note("molecule type")
	}
}

// ReplaceDbNames rewrites general-id databases to the project name for the
// sequence classes the validator marked. The warning is issued once per
// class per run.
func ReplaceDbNames(doc *seqdoc.Document, cfg *project.Config, sum *master.Summary, report *validate.RecordReport, rep diag.Reporter) int {
	if report.DBNameFix == 0 {
		return 0
	}
	replaced := 0
	for _, seq := range seqdoc.Sequences(doc) {
		nuc := seq.IsNucleotide()
		want, bit, warned := cfg.ProtDBName(), validate.FixProtDBName, &sum.ProtDBNameWarned
		if nuc {
			want, bit, warned = cfg.NucDBName(), validate.FixNucDBName, &sum.NucDBNameWarned
		}
		if report.DBNameFix&bit == 0 {
			continue
		}
		for i := range seq.IDs {
			id := &seq.IDs[i]
			if id.Kind != seqdoc.IDGeneral || id.DB == want {
				continue
			}
			if !*warned {
				*warned = true
				if rep != nil {
					class := "protein"
					if nuc {
						class = "nucleotide"
					}
					rep.Report(diag.SeqDbNameReplaced, diag.SevWarning, report.Where(),
						fmt.Sprintf("%s general id database %q replaced with %q", class, id.DB, want), nil)
				}
			}
			id.DB = want
			replaced++
		}
	}
	return replaced
}

// OverrideSubmissionDate forces the date of every Cit-sub in the record.
func OverrideSubmissionDate(doc *seqdoc.Document, date *seqdoc.Date) int {
	if date == nil {
		return 0
	}
	n := 0
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		descrs := node.Descrs()
		for i := range descrs {
			p := descrs[i].Pub
			if descrs[i].Kind != seqdoc.DescrPub || p == nil || p.Kind != seqdoc.PubSub {
				continue
			}
			d := *date
			p.Date = &d
			n++
		}
		return true
	})
	return n
}
