package diag

// Reporter: минимальный контракт получения диагностик от фаз.
// Реализации: BagReporter (кладёт в Bag), NopReporter, MultiReporter (fan-out).
type Reporter interface {
	Report(code Code, sev Severity, where Location, msg string, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, where Location, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag: Diagnostic{
			Severity: sev,
			Code:     code,
			Message:  msg,
			Where:    where,
		},
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, where Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, where, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, where Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, where, msg)
}

// ReportInfo is a shortcut for SevInfo diagnostics.
func ReportInfo(r Reporter, code Code, where Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, where, msg)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(where Location, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Notes = append(b.diag.Notes, Note{Where: where, Msg: msg})
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Where, b.diag.Message, b.diag.Notes)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, where Location, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(&Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Where: where, Notes: notes,
	})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, Location, string, []Note) {}

// MultiReporter fans a diagnostic out to every wrapped reporter.
type MultiReporter []Reporter

func (m MultiReporter) Report(code Code, sev Severity, where Location, msg string, notes []Note) {
	for _, r := range m {
		if r != nil {
			r.Report(code, sev, where, msg, notes)
		}
	}
}

// LocatedReporter fills in missing location parts before forwarding, so
// record-level passes can report without knowing which file they run on.
type LocatedReporter struct {
	Next  Reporter
	Where Location
}

func (r LocatedReporter) Report(code Code, sev Severity, where Location, msg string, notes []Note) {
	if r.Next == nil {
		return
	}
	if where.File == "" {
		where.File = r.Where.File
	}
	if where.Record == "" {
		where.Record = r.Where.Record
	}
	r.Next.Report(code, sev, where, msg, notes)
}

// Tally forwards diagnostics and remembers the worst severity seen.
type Tally struct {
	Next  Reporter
	worst Severity
	count int
}

func (t *Tally) Report(code Code, sev Severity, where Location, msg string, notes []Note) {
	if t.count == 0 || sev > t.worst {
		t.worst = sev
	}
	t.count++
	if t.Next != nil {
		t.Next.Report(code, sev, where, msg, notes)
	}
}

// Worst returns the highest severity forwarded so far and whether anything was.
func (t *Tally) Worst() (Severity, bool) {
	return t.worst, t.count > 0
}

// Count returns the number of forwarded diagnostics.
func (t *Tally) Count() int { return t.count }
