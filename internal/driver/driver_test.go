package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
	"wgsmaster/internal/seqio"
	"wgsmaster/internal/trace"
	"wgsmaster/internal/validate"
)

func wgsConfig() *project.Config {
	return &project.Config{Prefix: "AAAA", Version: 1, Kind: project.KindWGS}
}

func contig(tag string, length int) *seqdoc.Document {
	return seqdoc.NewSeq(&seqdoc.Sequence{
		IDs:  []seqdoc.Identifier{seqdoc.General("WGS:AAAA", tag)},
		Inst: seqdoc.Inst{Mol: seqdoc.MolDNA, Repr: seqdoc.ReprRaw, Length: length},
		Descrs: []seqdoc.Descriptor{
			seqdoc.MolInfoDescr(seqdoc.MolInfo{Biomol: seqdoc.BiomolGenomic, Tech: seqdoc.TechWGS}),
			seqdoc.SourceDescr(seqdoc.BioSource{Org: seqdoc.OrgRef{TaxName: "Homo sapiens", TaxID: 9606}}),
			seqdoc.Comment("assembled with spades"),
		},
	})
}

func writeInput(t *testing.T, dir, name string, docs ...*seqdoc.Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := seqio.WriteFile(path, docs...); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runOpts(cfg *project.Config, bag *diag.Bag, out project.OutputOptions, inputs ...string) Options {
	return Options{
		Config:   cfg,
		Inputs:   inputs,
		Output:   out,
		Jobs:     2,
		Reporter: diag.BagReporter{Bag: bag},
	}
}

func errorCodes(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			out = append(out, d.Code.ID()+": "+d.Message)
		}
	}
	return out
}

func TestRunStampsAccessionsAndWritesMaster(t *testing.T) {
	in := t.TempDir()
	outDir := t.TempDir()
	f1 := writeInput(t, in, "a.msgpack", contig("c1", 100), contig("c2", 200))
	f2 := writeInput(t, in, "b.msgpack", contig("c3", 300))

	bag := diag.NewBag(0)
	out := project.OutputOptions{
		Dir:      outDir,
		IDMap:    filepath.Join(outDir, "ids.tsv"),
		FileList: filepath.Join(outDir, "files.txt"),
	}
	res, err := Run(context.Background(), runOpts(wgsConfig(), bag, out, f1, f2))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected pass, got %v: %v", res.Verdict, errorCodes(bag))
	}
	if res.Records != 3 || res.Width != 6 {
		t.Fatalf("records=%d width=%d", res.Records, res.Width)
	}

	want := []seqio.IDMapping{
		{Key: "gnl|WGS:AAAA|c1", Accession: "AAAA01000001"},
		{Key: "gnl|WGS:AAAA|c2", Accession: "AAAA01000002"},
		{Key: "gnl|WGS:AAAA|c3", Accession: "AAAA01000003"},
	}
	if diff := cmp.Diff(want, res.IDMap); diff != "" {
		t.Fatalf("id map mismatch (-want +got):\n%s", diff)
	}
	if res.First != "AAAA01000001" || res.Last != "AAAA01000003" {
		t.Fatalf("range %s..%s", res.First, res.Last)
	}

	docs, err := seqio.ReadFile(filepath.Join(outDir, "a.msgpack"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 output records, got %d", len(docs))
	}
	first := docs[0].Seq.IDs[0]
	if first.Kind != seqdoc.IDAccession || first.Value != "AAAA01000001" {
		t.Fatalf("accession not stamped first: %+v", docs[0].Seq.IDs)
	}

	if res.MasterPath != filepath.Join(outDir, "AAAA01000000.msgpack") {
		t.Fatalf("master path %q", res.MasterPath)
	}
	master, err := seqio.ReadFile(res.MasterPath)
	if err != nil || len(master) != 1 {
		t.Fatalf("read master: %v", err)
	}
	var comments []string
	for _, d := range master[0].Seq.Descrs {
		if d.Kind == seqdoc.DescrComment {
			comments = append(comments, d.Text)
		}
	}
	if diff := cmp.Diff([]string{"assembled with spades"}, comments); diff != "" {
		t.Fatalf("master comments (-want +got):\n%s", diff)
	}

	list, err := os.ReadFile(out.FileList)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(list), "\n"); got != 3 {
		t.Fatalf("file list should name 2 outputs and the master, got:\n%s", list)
	}
	if _, err := os.Stat(out.IDMap); err != nil {
		t.Fatalf("id map missing: %v", err)
	}
}

func TestRunSortByLength(t *testing.T) {
	in := t.TempDir()
	f := writeInput(t, in, "a.msgpack", contig("short", 10), contig("long", 1000), contig("mid", 100))
	cfg := wgsConfig()
	cfg.Sort = project.SortLengthDesc

	opts := runOpts(cfg, diag.NewBag(0), project.OutputOptions{}, f)
	opts.Check = true
	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, m := range res.IDMap {
		got[m.Key] = m.Accession
	}
	want := map[string]string{
		"gnl|WGS:AAAA|long":  "AAAA01000001",
		"gnl|WGS:AAAA|mid":   "AAAA01000002",
		"gnl|WGS:AAAA|short": "AAAA01000003",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("length-ordered accessions (-want +got):\n%s", diff)
	}
}

func TestRunCheckWritesNothing(t *testing.T) {
	in := t.TempDir()
	f := writeInput(t, in, "a.msgpack", contig("c1", 10))
	opts := runOpts(wgsConfig(), diag.NewBag(0), project.OutputOptions{}, f)
	opts.Check = true
	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.MasterPath != "" || res.Master == nil {
		t.Fatalf("check mode must build but not write the master")
	}
	entries, err := os.ReadDir(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("check mode wrote files: %d entries", len(entries))
	}
}

func TestRunKeepsGoingAfterRejectedRecord(t *testing.T) {
	in := t.TempDir()
	bad := contig("bad", 10)
	bad.Seq.Descrs[0] = seqdoc.MolInfoDescr(seqdoc.MolInfo{Biomol: seqdoc.BiomolMRNA, Tech: seqdoc.TechWGS})
	f := writeInput(t, in, "a.msgpack", contig("c1", 10), bad, contig("c3", 10))

	bag := diag.NewBag(0)
	opts := runOpts(wgsConfig(), bag, project.OutputOptions{}, f)
	opts.Check = true
	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Records != 3 {
		t.Fatalf("every record must be processed, got %d", res.Records)
	}
	if res.OK() {
		t.Fatalf("a rejected record must fail the run")
	}
	if res.Verdicts[validate.Pass] != 2 {
		t.Fatalf("verdict counts %v", res.Verdicts)
	}
}

func TestRunTracesRecordCorrections(t *testing.T) {
	in := t.TempDir()
	dated := contig("c1", 10)
	dated.Seq.Descrs = append(dated.Seq.Descrs,
		seqdoc.PubDescr(seqdoc.Pub{Kind: seqdoc.PubSub, Title: "Genome", Date: &seqdoc.Date{Year: 2020}}))
	foreign := contig("c2", 10)
	foreign.Seq.IDs[0] = seqdoc.General("WGS:BBBB", "c2")
	f := writeInput(t, in, "a.msgpack", dated, foreign, contig("c3", 10))

	cfg := wgsConfig()
	cfg.ReplaceDBName = true
	cfg.SubmissionDate = &seqdoc.Date{Year: 2024, Month: 5, Day: 6}
	opts := runOpts(cfg, diag.NewBag(0), project.OutputOptions{}, f)
	opts.Check = true
	ring := trace.NewRingTracer(256, trace.LevelDebug)
	if _, err := Run(trace.WithTracer(context.Background(), ring), opts); err != nil {
		t.Fatal(err)
	}

	type note struct {
		Name string
		At   diag.Location
	}
	var notes []note
	records := 0
	for _, ev := range ring.Snapshot() {
		switch {
		case ev.Kind == trace.KindPoint:
			notes = append(notes, note{ev.Name, ev.At})
		case ev.Kind == trace.KindSpanBegin && ev.Scope == trace.ScopeRecord:
			records++
			if ev.At.File != f || ev.At.Record == "" {
				t.Fatalf("record span without its location: %+v", ev.At)
			}
		}
	}
	if records != 3 {
		t.Fatalf("expected 3 record spans, got %d", records)
	}
	want := []note{
		{"submission-date", diag.Location{File: f, Record: "gnl|WGS:AAAA|c1"}},
		{"db-name", diag.Location{File: f, Record: "gnl|WGS:BBBB|c2"}},
	}
	if diff := cmp.Diff(want, notes); diff != "" {
		t.Fatalf("record notes mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDuplicateEntry(t *testing.T) {
	in := t.TempDir()
	f1 := writeInput(t, in, "a.msgpack", contig("c1", 10))
	f2 := writeInput(t, in, "b.msgpack", contig("c1", 10))
	bag := diag.NewBag(0)
	opts := runOpts(wgsConfig(), bag, project.OutputOptions{}, f1, f2)
	opts.Check = true
	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.AccDuplicateEntry {
			found = true
			if d.Where.File != f2 {
				t.Fatalf("duplicate reported at %v", d.Where)
			}
		}
	}
	if !found || res.OK() {
		t.Fatalf("expected duplicate entry error, got %v", errorCodes(bag))
	}
	if len(res.IDMap) != 1 {
		t.Fatalf("duplicate must not receive an accession: %+v", res.IDMap)
	}
}

func TestRunAbortsOnUndecodableFile(t *testing.T) {
	in := t.TempDir()
	good := writeInput(t, in, "a.msgpack", contig("c1", 10))
	garbage := filepath.Join(in, "b.msgpack")
	if err := os.WriteFile(garbage, []byte("not a record stream"), 0o644); err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(0)
	res, err := Run(context.Background(), runOpts(wgsConfig(), bag, project.OutputOptions{Dir: t.TempDir()}, good, garbage))
	if !errors.Is(err, seqio.ErrNotDocument) {
		t.Fatalf("expected ErrNotDocument, got %v", err)
	}
	if res.Verdict != validate.Fail {
		t.Fatalf("aborted run must fail, got %v", res.Verdict)
	}
	if bag.Worst() != diag.SevFatal {
		t.Fatalf("expected a fatal diagnostic, got %v", bag.Worst())
	}
}

func TestRunRequiresInputs(t *testing.T) {
	_, err := Run(context.Background(), runOpts(wgsConfig(), diag.NewBag(0), project.OutputOptions{}))
	if !errors.Is(err, ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
	if _, err := Run(context.Background(), Options{}); !errors.Is(err, project.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRunProgressEvents(t *testing.T) {
	in := t.TempDir()
	f := writeInput(t, in, "a.msgpack", contig("c1", 10))
	ch := make(chan Event, 64)
	opts := runOpts(wgsConfig(), diag.NewBag(0), project.OutputOptions{}, f)
	opts.Check = true
	opts.Progress = ChannelSink{Ch: ch}
	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	close(ch)
	var got []string
	for ev := range ch {
		got = append(got, string(ev.Stage)+":"+string(ev.Status))
	}
	want := []string{
		"scan:queued", "scan:working", "scan:done",
		"process:queued", "process:working", "process:done",
		"master:working", "master:done",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestScanUsesCache(t *testing.T) {
	in := t.TempDir()
	f := writeInput(t, in, "a.msgpack", contig("c1", 10), contig("c2", 20))
	cache, err := OpenScanCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := wgsConfig()
	first, err := Scan(context.Background(), []string{f}, cfg, ScanOptions{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Scan(context.Background(), []string{f}, cfg, ScanOptions{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Cached || !second[0].Cached {
		t.Fatalf("cache flags: first=%v second=%v", first[0].Cached, second[0].Cached)
	}
	if diff := cmp.Diff(first[0].Entries, second[0].Entries); diff != "" {
		t.Fatalf("cached entries differ (-fresh +cached):\n%s", diff)
	}

	other := wgsConfig()
	other.Version = 2
	third, err := Scan(context.Background(), []string{f}, other, ScanOptions{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	if third[0].Cached {
		t.Fatalf("a different project must not hit the cache")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	var payload ScanPayload
	if ok, _ := cache.Get(ScanKey(project.Digest{}, cfg), &payload); ok {
		t.Fatalf("expected a miss after DropAll")
	}
}

func TestScanKeysFollowNormalization(t *testing.T) {
	in := t.TempDir()
	doc := contig("c1", 10)
	doc.Seq.IDs = append([]seqdoc.Identifier{seqdoc.Local("c1")}, doc.Seq.IDs...)
	f := writeInput(t, in, "a.msgpack", seqdoc.NewSet(seqdoc.ClassGenBank, doc))
	res, err := Scan(context.Background(), []string{f}, wgsConfig(), ScanOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res[0].Entries) != 1 || res[0].Entries[0].Key != "gnl|WGS:AAAA|c1" {
		t.Fatalf("unexpected entries %+v", res[0].Entries)
	}
}

func TestListInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.msgpack", "a.msgpack", "notes.txt", filepath.Join("sub", "c.msgpack")} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	flat, err := ListInputs([]string{dir}, "", false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.msgpack"), filepath.Join(dir, "b.msgpack")}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Fatalf("flat listing (-want +got):\n%s", diff)
	}
	deep, err := ListInputs([]string{dir}, "*.msgpack", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(deep) != 3 {
		t.Fatalf("recursive listing: %v", deep)
	}
	if _, err := ListInputs([]string{dir}, "*.gbk", false); !errors.Is(err, ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
}
