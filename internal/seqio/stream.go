// Package seqio reads and writes record streams and names the artifacts a
// run produces. A submission file is a sequence of msgpack-encoded
// seqdoc.Document values written back to back.
package seqio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"wgsmaster/internal/seqdoc"
)

// DefaultExt is the extension of submission and output files.
const DefaultExt = ".msgpack"

var (
	ErrNotDocument = errors.New("not a sequence document")
	ErrBadRecord   = errors.New("record cannot be decoded")
	ErrEmptyFile   = errors.New("file contains no records")
)

// Reader decodes records lazily, one per Next call.
type Reader struct {
	dec *msgpack.Decoder
	n   int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{dec: msgpack.NewDecoder(bufio.NewReader(r))}
}

// Next returns the next record, io.EOF after the last one, ErrEmptyFile when
// the stream holds none. A first record that does not decode to a
// well-formed document wraps ErrNotDocument; a later one wraps ErrBadRecord.
func (r *Reader) Next() (*seqdoc.Document, error) {
	var doc seqdoc.Document
	if err := r.dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			if r.n == 0 {
				return nil, ErrEmptyFile
			}
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: record %d: %w", r.failure(), r.n+1, err)
	}
	if !doc.Valid() {
		return nil, fmt.Errorf("%w: record %d has neither or both of set and sequence", r.failure(), r.n+1)
	}
	r.n++
	return &doc, nil
}

func (r *Reader) failure() error {
	if r.n == 0 {
		return ErrNotDocument
	}
	return ErrBadRecord
}

// Count returns the number of records read so far.
func (r *Reader) Count() int { return r.n }

// Writer encodes records to a stream.
type Writer struct {
	buf *bufio.Writer
	enc *msgpack.Encoder
	n   int
}

func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(buf)
	enc.SetOmitEmpty(true)
	return &Writer{buf: buf, enc: enc}
}

func (w *Writer) Write(doc *seqdoc.Document) error {
	if err := w.enc.Encode(doc); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int { return w.n }

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error { return w.buf.Flush() }

// ReadFile decodes every record of a file.
func ReadFile(path string) ([]*seqdoc.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := NewReader(f)
	var out []*seqdoc.Document
	for {
		doc, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, doc)
	}
}

// AtomicFile writes records to a temporary file that replaces the target
// on Commit. Abort (or a failed Commit) leaves the target untouched.
type AtomicFile struct {
	path string
	f    *os.File
	*Writer
}

// Create opens an AtomicFile for path, creating parent directories.
func Create(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return nil, err
	}
	return &AtomicFile{path: path, f: f, Writer: NewWriter(f)}, nil
}

// Commit flushes, closes and renames the temporary file into place.
func (a *AtomicFile) Commit() error {
	if err := a.Flush(); err != nil {
		a.Abort()
		return err
	}
	if err := a.f.Close(); err != nil {
		_ = os.Remove(a.f.Name())
		return err
	}
	// Атомарная замена
	return os.Rename(a.f.Name(), a.path)
}

// Abort discards the temporary file.
func (a *AtomicFile) Abort() {
	_ = a.f.Close()
	_ = os.Remove(a.f.Name())
}

// WriteFile writes the records to path atomically.
func WriteFile(path string, docs ...*seqdoc.Document) error {
	out, err := Create(path)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := out.Write(d); err != nil {
			out.Abort()
			return err
		}
	}
	return out.Commit()
}
