package validate

import (
	"wgsmaster/internal/diag"
	"wgsmaster/internal/seqdoc"
)

// IDType is the kind of submitter identifier a record's nucleotide uses.
type IDType uint8

const (
	IDNone IDType = iota
	IDLocal
	IDGeneral
)

func (t IDType) String() string {
	switch t {
	case IDLocal:
		return "local"
	case IDGeneral:
		return "general"
	}
	return "none"
}

// DBNameFix marks which sequence classes need their general-id database
// rewritten to the project name.
type DBNameFix uint8

const (
	FixNucDBName DBNameFix = 1 << iota
	FixProtDBName
)

// Drop points at a descriptor the validator wants removed.
type Drop struct {
	Node  *seqdoc.Document
	Index int
	Kind  seqdoc.DescrKind
}

// RecordReport is the validation result of one record. It is built fresh
// per record and consumed by the aggregator and the fixup passes.
type RecordReport struct {
	File     string
	RecordID string

	HasSegSet bool
	NucCount  int
	ProtCount int

	MolInfoMissing  bool
	BiomolMismatch  bool
	TechMismatch    bool
	MolTypeMismatch bool

	ChromosomeChecked bool
	ChromosomePresent bool

	SecondaryAccs        []string
	HistSecondaryDiffers bool

	Keywords []string

	DBNameFix   DBNameFix
	DBNameWrong bool
	IDType      IDType
	GeneralDB   string
	SubmitterID string

	AccessionsFound   int
	InvalidAccessions []string

	Drops []Drop

	worst  diag.Severity
	issues int
}

// Where locates diagnostics about this record.
func (r *RecordReport) Where() diag.Location {
	return diag.Location{File: r.File, Record: r.RecordID}
}

// Raise folds a severity emitted by any pass into the record verdict.
func (r *RecordReport) Raise(sev diag.Severity) {
	if r.issues == 0 || sev > r.worst {
		r.worst = sev
	}
	r.issues++
}

// Absorb folds everything a Tally saw into the record verdict.
func (r *RecordReport) Absorb(t *diag.Tally) {
	if t == nil {
		return
	}
	if worst, ok := t.Worst(); ok {
		r.Raise(worst)
	}
}

// Worst returns the highest severity recorded and whether any was.
func (r *RecordReport) Worst() (diag.Severity, bool) {
	return r.worst, r.issues > 0
}

// Verdict: Pass, PartialFail when an Error was seen, Fail on Critical/Fatal.
func (r *RecordReport) Verdict() Verdict {
	return VerdictFor(r.worst, r.issues > 0)
}

// NeedsMolFix reports whether a correctable MolInfo/instance mismatch was found.
func (r *RecordReport) NeedsMolFix() bool {
	return r.BiomolMismatch || r.TechMismatch || r.MolTypeMismatch
}
