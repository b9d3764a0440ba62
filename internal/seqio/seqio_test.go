package seqio

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"

	"wgsmaster/internal/project"
	"wgsmaster/internal/seqdoc"
)

func record(id string) *seqdoc.Document {
	return seqdoc.NewSeq(&seqdoc.Sequence{
		IDs:    []seqdoc.Identifier{seqdoc.Local(id)},
		Inst:   seqdoc.Inst{Mol: seqdoc.MolDNA, Length: 42},
		Descrs: []seqdoc.Descriptor{seqdoc.Comment("hello")},
	})
}

func TestStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	in := []*seqdoc.Document{record("a"), record("b"), record("c")}
	for _, d := range in {
		if err := w.Write(d); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	r := NewReader(&buf)
	var out []*seqdoc.Document
	for {
		d, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		out = append(out, d)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if r.Count() != 3 || w.Count() != 3 {
		t.Fatalf("counts: read %d, written %d", r.Count(), w.Count())
	}
}

func TestReaderEmpty(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil)).Next()
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestReaderRejectsGarbage(t *testing.T) {
	_, err := NewReader(strings.NewReader("this is not msgpack")).Next()
	if !errors.Is(err, ErrNotDocument) {
		t.Fatalf("expected ErrNotDocument, got %v", err)
	}
}

func TestReaderRejectsInvalidShape(t *testing.T) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&seqdoc.Document{}); err != nil {
		t.Fatal(err)
	}
	_, err := NewReader(&buf).Next()
	if !errors.Is(err, ErrNotDocument) {
		t.Fatalf("expected ErrNotDocument for an empty document, got %v", err)
	}
}

func TestReaderBadLaterRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(record("a")); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := msgpack.NewEncoder(&buf).Encode(&seqdoc.Document{}); err != nil {
		t.Fatal(err)
	}
	r := NewReader(&buf)
	if _, err := r.Next(); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, ErrBadRecord) {
		t.Fatalf("expected ErrBadRecord, got %v", err)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.msgpack")
	if err := WriteFile(path, record("x"), record("y")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	docs, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(docs) != 2 || seqdoc.RecordID(docs[1]) != "lcl|y" {
		t.Fatalf("unexpected records: %d", len(docs))
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %d entries", len(entries))
	}
}

func TestAbortLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.msgpack")
	f, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Write(record("a")); err != nil {
		t.Fatal(err)
	}
	f.Abort()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no output after abort, got %v", err)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		name, input, root, out, suffix string
		preserve                       bool
		want                           string
	}{
		{"beside input", "/in/a/x.msgpack", "/in", "", ".out", false, "/in/a/x.msgpack.out"},
		{"flat", "/in/a/x.msgpack", "/in", "/o", "", false, "/o/x.msgpack"},
		{"preserve", "/in/a/b/x.msgpack", "/in", "/o", ".p", true, "/o/a/b/x.msgpack.p"},
		{"preserve outside root", "/elsewhere/x.msgpack", "/in", "/o", "", true, "/o/x.msgpack"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputName(tt.input, tt.root, tt.out, tt.suffix, tt.preserve)
			if got != filepath.FromSlash(tt.want) {
				t.Fatalf("OutputName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMasterName(t *testing.T) {
	cfg := &project.Config{Prefix: "ABCD", Version: 1, Kind: project.KindWGS}
	got := MasterName("/o", cfg, 6)
	if got != filepath.Join("/o", "ABCD01000000.msgpack") {
		t.Fatalf("MasterName = %q", got)
	}
}

func TestSideFiles(t *testing.T) {
	dir := t.TempDir()
	idmap := filepath.Join(dir, "ids.tsv")
	if err := WriteIDMap(idmap, []IDMapping{{"lcl|a", "ABCD01000001"}, {"lcl|b", "ABCD01000002"}}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(idmap)
	if err != nil {
		t.Fatal(err)
	}
	if want := "lcl|a\tABCD01000001\nlcl|b\tABCD01000002\n"; string(data) != want {
		t.Fatalf("id map = %q, want %q", data, want)
	}

	list := filepath.Join(dir, "files.txt")
	if err := WriteFileList(list, []string{"/o/x", "/o/y"}); err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(list)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "/o/x\n/o/y\n" {
		t.Fatalf("file list = %q", data)
	}
}
