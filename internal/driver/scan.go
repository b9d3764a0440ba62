package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"wgsmaster/internal/accession"
	"wgsmaster/internal/diag"
	"wgsmaster/internal/normalize"
	"wgsmaster/internal/observ"
	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
	"wgsmaster/internal/seqio"
	"wgsmaster/internal/trace"
)

// InputError is an I/O or parse failure that aborts the run.
type InputError struct {
	File string
	Err  error
}

func (e *InputError) Error() string { return e.File + ": " + e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

// ScanResult describes one input file after the scan pass.
type ScanResult struct {
	File      string
	Records   int
	Entries   []accession.Entry
	Truncated bool // a record after the first failed to decode
	Cached    bool
}

// ScanOptions tune the scan pass.
type ScanOptions struct {
	Jobs     int
	Cache    *ScanCache
	Progress ProgressSink
	Timer    *observ.Timer
}

// Scan reads every file in parallel and collects the entry key and length of
// each top-level record, in file order then record order. Keys are computed
// after the same flattening and identifier normalization the process pass
// applies, so they match what the assigner sees.
func Scan(ctx context.Context, files []string, cfg *project.Config, opts ScanOptions) ([]ScanResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "scan", trace.ParentID(ctx))
	defer span.End("")
	phase := opts.Timer.Begin("scan")
	defer opts.Timer.End(phase, "")

	results := make([]ScanResult, len(files))
	if len(files) == 0 {
		return results, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	emitQueued(opts.Progress, StageScan, files)

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			emit(opts.Progress, Event{File: path, Stage: StageScan, Status: StatusWorking})
			fspan := trace.BeginFile(tracer, "scan", path, span.ID())
			res, err := scanFile(path, cfg, opts.Cache)
			if err != nil {
				fspan.End(err.Error())
				emit(opts.Progress, Event{File: path, Stage: StageScan, Status: StatusError, Err: err})
				return err
			}
			if res.Cached {
				fspan.WithExtra("cached", "true")
			}
			fspan.End(fmt.Sprintf("%d records", res.Records))
			opts.Timer.Add(phase, res.Records)
			results[i] = res
			emit(opts.Progress, Event{File: path, Stage: StageScan, Status: StatusDone, Records: res.Records, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanFile(path string, cfg *project.Config, cache *ScanCache) (ScanResult, error) {
	res := ScanResult{File: path}
	var key project.Digest
	if cache != nil {
		digest, err := project.FileDigest(path)
		if err != nil {
			return res, &InputError{File: path, Err: err}
		}
		key = ScanKey(digest, cfg)
		var payload ScanPayload
		if ok, err := cache.Get(key, &payload); err == nil && ok {
			res.Records = payload.Records
			res.Entries = payload.Entries
			res.Truncated = payload.Truncated
			res.Cached = true
			return res, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return res, &InputError{File: path, Err: err}
	}
	defer f.Close()

	r := seqio.NewReader(f)
	nop := diag.NopReporter{}
	where := diag.Location{File: path}
	for {
		root, err := r.Next()
		if errors.Is(err, io.EOF) || errors.Is(err, seqio.ErrEmptyFile) {
			break
		}
		if errors.Is(err, seqio.ErrBadRecord) {
			res.Truncated = true
			break
		}
		if err != nil {
			return res, &InputError{File: path, Err: err}
		}
		docs, _ := normalize.SplitRecords(root, where, nop)
		for _, doc := range docs {
			res.Records++
			normalize.NormalizeDocument(doc, where, nop)
			if e, ok := entryOf(doc); ok {
				e.File, e.Record = path, res.Records
				res.Entries = append(res.Entries, e)
			}
		}
	}

	if cache != nil {
		// кэш вспомогательный: ошибки записи не прерывают прогон
		_ = cache.Put(key, &ScanPayload{Records: res.Records, Entries: res.Entries, Truncated: res.Truncated})
	}
	return res, nil
}

func entryOf(doc *seqdoc.Document) (accession.Entry, bool) {
	nuc := seqdoc.FirstNuc(doc)
	if nuc == nil {
		return accession.Entry{}, false
	}
	key := seqdoc.FirstLabel(nuc.IDs)
	if key == "" {
		return accession.Entry{}, false
	}
	return accession.Entry{Key: key, Length: nuc.Inst.Length}, true
}

// Entries concatenates scan results in file order.
func Entries(results []ScanResult) []accession.Entry {
	n := 0
	for _, r := range results {
		n += len(r.Entries)
	}
	out := make([]accession.Entry, 0, n)
	for _, r := range results {
		out = append(out, r.Entries...)
	}
	return out
}
