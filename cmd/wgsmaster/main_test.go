package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/diagfmt"
	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
	"wgsmaster/internal/seqio"
)

func newTestRoot(check bool) (*cobra.Command, *cobra.Command, *bytes.Buffer) {
	root := &cobra.Command{Use: "wgsmaster", SilenceUsage: true, SilenceErrors: true}
	registerPersistentFlags(root)
	name := "process"
	if check {
		name = "check"
	}
	sub := &cobra.Command{
		Use: name,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmission(cmd, args, check)
		},
	}
	addRunFlags(sub)
	if !check {
		addOutputFlags(sub)
	}
	root.AddCommand(sub)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	return root, sub, &out
}

func contig(tag string, length int, biomol seqdoc.Biomol) *seqdoc.Document {
	return seqdoc.NewSeq(&seqdoc.Sequence{
		IDs:  []seqdoc.Identifier{seqdoc.General("WGS:ABCD", tag)},
		Inst: seqdoc.Inst{Mol: seqdoc.MolDNA, Repr: seqdoc.ReprRaw, Length: length},
		Descrs: []seqdoc.Descriptor{
			seqdoc.MolInfoDescr(seqdoc.MolInfo{Biomol: biomol, Tech: seqdoc.TechWGS}),
			seqdoc.SourceDescr(seqdoc.BioSource{Org: seqdoc.OrgRef{TaxName: "Homo sapiens", TaxID: 9606}}),
		},
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Fatalf("explicit ui modes ignored")
	}
}

func TestResolveColor(t *testing.T) {
	if on, err := resolveColor("on"); err != nil || !on {
		t.Fatalf("on: %v %v", on, err)
	}
	if on, err := resolveColor("off"); err != nil || on {
		t.Fatalf("off: %v %v", on, err)
	}
	if _, err := resolveColor("purple"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadSettingsMergesManifestAndFlags(t *testing.T) {
	root := t.TempDir()
	data := filepath.Join(root, "data")
	if err := os.MkdirAll(data, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, project.ManifestName), `
[project]
prefix = "abcd"
version = 2
kind = "tsa"

[output]
dir = "out"
`)
	_, sub, _ := newTestRoot(false)
	if err := sub.ParseFlags([]string{"--sort", "length-desc", "--fix-tech", "--rna-biomol", "ncRNA"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	s, err := loadSettings(sub, []string{data})
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if s.cfg.Prefix != "ABCD" || s.cfg.Version != 2 || s.cfg.Kind != project.KindTSA {
		t.Fatalf("manifest values lost: %+v", s.cfg)
	}
	if s.cfg.Sort != project.SortLengthDesc {
		t.Fatalf("sort = %v", s.cfg.Sort)
	}
	if !s.cfg.Fix.Has(project.FixTech) || !s.cfg.Fix.Has(project.OverrideNcRNA) {
		t.Fatalf("fix flags = %b", s.cfg.Fix)
	}
	if s.output.Dir != filepath.Join(root, "out") {
		t.Fatalf("output dir = %q", s.output.Dir)
	}
	if s.inputRoot != data {
		t.Fatalf("input root = %q", s.inputRoot)
	}
}

func TestLoadSettingsWithoutPrefix(t *testing.T) {
	_, sub, _ := newTestRoot(true)
	if err := sub.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	_, err := loadSettings(sub, []string{t.TempDir()})
	if !errors.Is(err, project.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestCheckCommandJSON(t *testing.T) {
	dir := t.TempDir()
	if err := seqio.WriteFile(filepath.Join(dir, "a.msgpack"),
		contig("c1", 100, seqdoc.BiomolGenomic), contig("c2", 200, seqdoc.BiomolGenomic)); err != nil {
		t.Fatal(err)
	}
	root, _, out := newTestRoot(true)
	root.SetArgs([]string{"check", "--ui=off", "--color=off", "--format=json", "--prefix=ABCD", "--acc-version=1", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("check: %v\n%s", err, out.String())
	}
	var got diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if got.RunID == "" {
		t.Fatalf("run id missing")
	}
	var problems []diagfmt.DiagnosticJSON
	for _, d := range got.Diagnostics {
		if d.Severity != "WARNING" {
			problems = append(problems, d)
		}
	}
	if diff := cmp.Diff([]diagfmt.DiagnosticJSON(nil), problems); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("check mode wrote files: %v", entries)
	}
}

func TestProcessCommandWritesMaster(t *testing.T) {
	in := t.TempDir()
	outDir := t.TempDir()
	if err := seqio.WriteFile(filepath.Join(in, "a.msgpack"), contig("c1", 100, seqdoc.BiomolGenomic)); err != nil {
		t.Fatal(err)
	}
	root, _, out := newTestRoot(false)
	root.SetArgs([]string{"process", "--ui=off", "--color=off", "--prefix=ABCD", "--acc-version=1", "--out-dir", outDir, in})
	if err := root.Execute(); err != nil {
		t.Fatalf("process: %v\n%s", err, out.String())
	}
	if _, err := os.Stat(filepath.Join(outDir, "ABCD01000000.msgpack")); err != nil {
		t.Fatalf("master missing: %v", err)
	}
	if !strings.Contains(out.String(), "accessions ABCD01000001..ABCD01000001") {
		t.Fatalf("summary missing:\n%s", out.String())
	}
}

func TestCheckCommandFailsOnRejectedRecord(t *testing.T) {
	dir := t.TempDir()
	if err := seqio.WriteFile(filepath.Join(dir, "a.msgpack"), contig("c1", 100, seqdoc.BiomolMRNA)); err != nil {
		t.Fatal(err)
	}
	root, _, out := newTestRoot(true)
	root.SetArgs([]string{"check", "--ui=off", "--color=off", "--format=short", "--prefix=ABCD", "--acc-version=1", dir})
	err := root.Execute()
	if !errors.Is(err, errVerdict) {
		t.Fatalf("expected verdict failure, got %v", err)
	}
	if !strings.Contains(out.String(), diag.SeqIncorrectBiomol.ID()) {
		t.Fatalf("missing biomol diagnostic:\n%s", out.String())
	}
}

func TestLimitBag(t *testing.T) {
	bag := diag.NewBag(0)
	for i := 0; i < 5; i++ {
		bag.Add(diag.NewError(diag.SeqIncorrectBiomol, diag.Location{}, "x"))
	}
	shown := limitBag(bag, 2)
	if shown.Len() != 2 || shown.Dropped() != 3 {
		t.Fatalf("len=%d dropped=%d", shown.Len(), shown.Dropped())
	}
	if limitBag(bag, 0).Len() != 5 {
		t.Fatalf("max 0 must keep everything")
	}
}
