package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"wgsmaster/internal/accession"
	"wgsmaster/internal/diag"
	"wgsmaster/internal/fixup"
	"wgsmaster/internal/lookup"
	"wgsmaster/internal/master"
	"wgsmaster/internal/normalize"
	"wgsmaster/internal/observ"
	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
	"wgsmaster/internal/seqio"
	"wgsmaster/internal/trace"
	"wgsmaster/internal/validate"
)

// DefaultSuffix is appended to output names when neither an output
// directory nor a suffix is configured, so inputs are never overwritten.
const DefaultSuffix = ".out"

// Options configure one run.
type Options struct {
	Config    *project.Config
	Inputs    []string // processed in this order
	InputRoot string   // base for path-preserving output names
	Output    project.OutputOptions
	Check     bool // validate only: no file is written
	Jobs      int
	Cache     *ScanCache
	Taxonomy  lookup.Taxonomy
	Biblio    lookup.Bibliographic
	Cleaner   master.Cleaner
	Reporter  diag.Reporter
	Progress  ProgressSink
	Timer     *observ.Timer
	RunID     string // correlation id attached to the run span
}

// FileResult is the outcome of one input file.
type FileResult struct {
	Input     string
	Output    string
	Records   int
	Verdicts  [3]int
	Truncated bool
}

// Result is the outcome of a run.
type Result struct {
	Files         []FileResult
	Records       int
	Verdicts      [3]int
	MasterVerdict validate.Verdict
	Verdict       validate.Verdict
	Width         int
	First, Last   string
	Master        *seqdoc.Document
	MasterPath    string
	IDMap         []seqio.IDMapping
}

// OK reports whether every record and the aggregate passed.
func (r *Result) OK() bool { return r != nil && r.Verdict.OK() }

type runner struct {
	opts     Options
	cfg      *project.Config
	rep      diag.Reporter
	tracer   trace.Tracer
	sum      *master.Summary
	assigner *accession.Assigner
	width    int
	res      *Result
	extra    validate.Verdict
	passID   uint64
	fileID   uint64
	forced   bool
}

// Run validates and stamps every record of the inputs, then builds the
// master record. Records are handled strictly in file order and stream
// order; only the scan pass runs in parallel. Data problems are reported
// through opts.Reporter and decide Result.Verdict; a returned error means
// the run was aborted (unreadable input, undecodable first record, failed
// write or cancellation).
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("%w: no project configuration", project.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Output.Dir == "" && opts.Output.Suffix == "" {
		opts.Output.Suffix = DefaultSuffix
	}
	if opts.Cleaner == nil {
		opts.Cleaner = master.BasicCleanup{}
	}
	rep := opts.Reporter
	if rep == nil {
		rep = diag.NopReporter{}
	}
	r := &runner{
		opts:   opts,
		cfg:    cfg,
		rep:    rep,
		tracer: trace.FromContext(ctx),
		res:    &Result{Verdict: validate.Pass},
	}

	runSpan := trace.Begin(r.tracer, trace.ScopeRun, "run", trace.ParentID(ctx))
	defer runSpan.End("")
	if opts.RunID != "" {
		runSpan.WithExtra("run_id", opts.RunID)
	}
	ctx = trace.WithParent(ctx, runSpan)

	if len(opts.Inputs) == 0 {
		diag.NewReportBuilder(rep, diag.SevFatal, diag.InputNoFiles, diag.Location{}, "no input files").Emit()
		r.res.Verdict = validate.Fail
		return r.res, ErrNoInputs
	}

	scan, err := Scan(ctx, opts.Inputs, cfg, ScanOptions{
		Jobs:     opts.Jobs,
		Cache:    opts.Cache,
		Progress: opts.Progress,
		Timer:    opts.Timer,
	})
	if err != nil {
		return r.res, r.abort(err)
	}

	planSpan := trace.Begin(r.tracer, trace.ScopePass, "plan", runSpan.ID())
	order, dups, err := accession.Plan(Entries(scan), cfg.Sort)
	if err != nil {
		planSpan.End(err.Error())
		diag.NewReportBuilder(rep, diag.SevFatal, diag.AccTooMany, diag.Location{}, err.Error()).Emit()
		r.res.Verdict = validate.Fail
		return r.res, nil
	}
	planSpan.WithExtra("duplicates", fmt.Sprint(len(dups))).End(fmt.Sprintf("%d entries", order.Len()))

	r.width = accession.Width(order.Len())
	r.res.Width = r.width
	r.sum = master.NewSummary(order)
	r.assigner = accession.NewAssigner(cfg, order, r.width)

	if err := r.processAll(ctx, scan, runSpan.ID()); err != nil {
		return r.res, err
	}
	if err := r.finishMaster(runSpan.ID()); err != nil {
		return r.res, err
	}
	r.writeSideFiles()

	v := r.extra.And(r.res.MasterVerdict)
	for verdict, n := range r.res.Verdicts {
		if n > 0 {
			v = v.And(validate.Verdict(verdict))
		}
	}
	r.res.Verdict = v
	runSpan.WithExtra("verdict", v.String())
	return r.res, nil
}

// abort reports an unrecoverable input condition and fails the run.
func (r *runner) abort(err error) error {
	r.res.Verdict = validate.Fail
	var inErr *InputError
	if !errors.As(err, &inErr) {
		return err
	}
	where := diag.Location{File: inErr.File}
	code := diag.InputFileUnreadable
	switch {
	case errors.Is(err, seqio.ErrNotDocument):
		code = diag.ParseNotDocument
	case errors.Is(err, seqio.ErrBadRecord):
		code = diag.ParseBadRecord
	}
	diag.NewReportBuilder(r.rep, diag.SevFatal, code, where, inErr.Err.Error()).Emit()
	return err
}

func (r *runner) processAll(ctx context.Context, scan []ScanResult, parent uint64) error {
	span := trace.Begin(r.tracer, trace.ScopePass, "process", parent)
	defer span.End("")
	r.passID = span.ID()
	phase := r.opts.Timer.Begin("process")
	defer r.opts.Timer.End(phase, "")

	emitQueued(r.opts.Progress, StageProcess, r.opts.Inputs)
	for _, sr := range scan {
		if err := ctx.Err(); err != nil {
			return err
		}
		fr, err := r.processFile(ctx, sr)
		if err != nil {
			emit(r.opts.Progress, Event{File: sr.File, Stage: StageProcess, Status: StatusError, Err: err})
			return err
		}
		r.opts.Timer.Add(phase, fr.Records)
		r.res.Files = append(r.res.Files, fr)
	}
	return nil
}

func (r *runner) processFile(ctx context.Context, sr ScanResult) (FileResult, error) {
	file := sr.File
	start := time.Now()
	fr := FileResult{Input: file}
	where := diag.Location{File: file}

	fspan := trace.BeginFile(r.tracer, "process", file, r.passID)
	r.fileID = fspan.ID()
	defer func() { fspan.End(fmt.Sprintf("%d records", fr.Records)) }()
	emit(r.opts.Progress, Event{File: file, Stage: StageProcess, Status: StatusWorking})

	in, err := os.Open(file)
	if err != nil {
		return fr, r.abort(&InputError{File: file, Err: err})
	}
	defer in.Close()

	var out *seqio.AtomicFile
	if !r.opts.Check {
		fr.Output = seqio.OutputName(file, r.opts.InputRoot, r.opts.Output.Dir, r.opts.Output.Suffix, r.opts.Output.PreservePaths)
		if out, err = seqio.Create(fr.Output); err != nil {
			return fr, r.writeFailed(fr.Output, err)
		}
	}
	discard := func() {
		if out != nil {
			out.Abort()
		}
	}

	reader := seqio.NewReader(in)
read:
	for {
		if err := ctx.Err(); err != nil {
			discard()
			return fr, err
		}
		root, err := reader.Next()
		switch {
		case errors.Is(err, io.EOF):
			break read
		case errors.Is(err, seqio.ErrEmptyFile):
			diag.ReportError(r.rep, diag.ParseEmptyFile, where, "file contains no records").Emit()
			r.extra = r.extra.And(validate.PartialFail)
			break read
		case errors.Is(err, seqio.ErrBadRecord):
			diag.ReportError(r.rep, diag.ParseBadRecord, where, err.Error()).Emit()
			r.extra = r.extra.And(validate.PartialFail)
			fr.Truncated = true
			break read
		case err != nil:
			discard()
			return fr, r.abort(&InputError{File: file, Err: err})
		}

		split := &diag.Tally{Next: r.rep}
		docs, _ := normalize.SplitRecords(root, where, split)
		if len(docs) == 0 {
			diag.ReportError(r.rep, diag.InputEmptyRecord, where, "record contains no sequences").Emit()
			r.extra = r.extra.And(validate.PartialFail)
			continue
		}
		for _, doc := range docs {
			v := r.processRecord(ctx, doc, file, split)
			fr.Records++
			fr.Verdicts[v]++
			r.res.Records++
			r.res.Verdicts[v]++
			if out != nil {
				if err := out.Write(doc); err != nil {
					discard()
					return fr, r.writeFailed(fr.Output, err)
				}
			}
		}
	}
	if out != nil {
		if err := out.Commit(); err != nil {
			return fr, r.writeFailed(fr.Output, err)
		}
	}

	status := StatusDone
	if fr.Verdicts[validate.PartialFail]+fr.Verdicts[validate.Fail] > 0 || fr.Truncated {
		status = StatusRejected
	}
	emit(r.opts.Progress, Event{File: file, Stage: StageProcess, Status: status, Records: fr.Records, Elapsed: time.Since(start)})
	return fr, nil
}

// processRecord runs one top-level record through normalization, lookups,
// validation, folding, corrections and accession assignment.
func (r *runner) processRecord(ctx context.Context, doc *seqdoc.Document, file string, split *diag.Tally) validate.Verdict {
	where := diag.Location{File: file}
	pre := &diag.Tally{Next: r.rep}
	normalize.NormalizeDocument(doc, where, pre)
	where.Record = seqdoc.RecordID(doc)

	rspan := trace.BeginRecord(r.tracer, where, r.fileID)

	fixup.Organisms(ctx, doc, r.opts.Taxonomy, where, pre)
	fixup.Publications(ctx, doc, r.opts.Biblio, where, pre)

	report := validate.Validate(doc, r.cfg, where, r.rep)
	report.Absorb(split)
	report.Absorb(pre)
	master.Fold(r.sum, doc, report, file, r.rep)

	post := &diag.Tally{Next: r.rep}
	fixup.DropDescriptors(report)
	fixup.ApplyMolFixes(doc, r.cfg, report, post)
	if n := fixup.OverrideSubmissionDate(doc, r.cfg.SubmissionDate); n > 0 {
		rspan.Note("submission-date", fmt.Sprintf("%d cit-sub forced to %s", n, r.cfg.SubmissionDate))
		if !r.forced {
			r.forced = true
			diag.ReportInfo(post, diag.RefSubmissionDateForced, where,
				"submission date forced to "+r.cfg.SubmissionDate.String()).Emit()
		}
	}

	// the entry key is taken before general-id databases are rewritten so
	// it matches the key the scan pass planned
	var key string
	if nuc := seqdoc.FirstNuc(doc); nuc != nil {
		key = seqdoc.FirstLabel(nuc.IDs)
	}
	if acc, ok := r.assigner.Assign(doc, where, post); ok {
		r.res.IDMap = append(r.res.IDMap, seqio.IDMapping{Key: key, Accession: acc})
	}
	if n := fixup.ReplaceDbNames(doc, r.cfg, r.sum, report, post); n > 0 {
		rspan.Note("db-name", fmt.Sprintf("%d general ids moved to the project database", n))
	}

	report.Absorb(post)
	v := report.Verdict()
	rspan.End(v.String())
	return v
}

func (r *runner) finishMaster(parent uint64) error {
	span := trace.Begin(r.tracer, trace.ScopePass, "master", parent)
	defer span.End("")
	phase := r.opts.Timer.Begin("master")
	defer r.opts.Timer.End(phase, "")
	emit(r.opts.Progress, Event{Stage: StageMaster, Status: StatusWorking})

	r.res.MasterVerdict = master.Finish(r.sum, r.cfg, r.rep)
	r.res.First, r.res.Last = r.assigner.Range()
	doc := master.Build(r.sum, r.cfg, r.width, master.Range{First: r.res.First, Last: r.res.Last})
	r.opts.Cleaner.Clean(doc)
	r.res.Master = doc

	if r.opts.Check {
		emit(r.opts.Progress, Event{Stage: StageMaster, Status: StatusDone})
		return nil
	}
	dir := r.opts.Output.Dir
	if dir == "" {
		dir = filepath.Dir(r.opts.Inputs[0])
	}
	path := seqio.MasterName(dir, r.cfg, r.width)
	if err := seqio.WriteFile(path, doc); err != nil {
		return r.writeFailed(path, err)
	}
	r.res.MasterPath = path
	diag.ReportInfo(r.rep, diag.MasterWritten, diag.Location{File: path},
		fmt.Sprintf("master record %s written", accession.MasterAccession(r.cfg, r.width))).Emit()
	emit(r.opts.Progress, Event{Stage: StageMaster, Status: StatusDone})
	return nil
}

func (r *runner) writeFailed(path string, err error) error {
	r.res.Verdict = validate.Fail
	diag.NewReportBuilder(r.rep, diag.SevFatal, diag.OutputWriteFailed, diag.Location{File: path}, err.Error()).Emit()
	return fmt.Errorf("write %s: %w", path, err)
}

// writeSideFiles writes the optional id map and output list. A failure
// there rejects the run but does not undo the outputs already written.
func (r *runner) writeSideFiles() {
	if r.opts.Check {
		return
	}
	out := r.opts.Output
	if out.IDMap != "" {
		if err := seqio.WriteIDMap(out.IDMap, r.res.IDMap); err != nil {
			diag.ReportError(r.rep, diag.OutputSideFile, diag.Location{File: out.IDMap}, err.Error()).Emit()
			r.extra = r.extra.And(validate.PartialFail)
		}
	}
	if out.FileList != "" {
		files := make([]string, 0, len(r.res.Files)+1)
		for _, f := range r.res.Files {
			files = append(files, f.Output)
		}
		if r.res.MasterPath != "" {
			files = append(files, r.res.MasterPath)
		}
		if err := seqio.WriteFileList(out.FileList, files); err != nil {
			diag.ReportError(r.rep, diag.OutputSideFile, diag.Location{File: out.FileList}, err.Error()).Emit()
			r.extra = r.extra.And(validate.PartialFail)
		}
	}
}
