package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Tracer receives trace events. Emit is called from the scan workers
// concurrently and must be safe for that.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards everything.
var Nop Tracer = nopTracer{}

// StorageMode is where events go: written out as they happen, kept in a
// ring for a dump at exit, or both.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1
	ModeRing
	ModeBoth
)

var modeNames = [...]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m StorageMode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode parses a --trace-mode value.
func ParseMode(s string) (StorageMode, error) {
	for i, name := range modeNames {
		if name != "" && strings.EqualFold(s, name) {
			return StorageMode(i), nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config is the tracer setup taken from the command line.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto picks from OutputPath
	Output     io.Writer // overrides OutputPath
	OutputPath string    // "" or "-" is stderr
	RingSize   int       // 0 means 4096
}

// NewRunID returns a fresh identifier that ties the trace of one run to
// its diagnostics output.
func NewRunID() string { return uuid.NewString() }

// New builds the tracer for cfg. A LevelOff config yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode == ModeRing {
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	}
	if cfg.Mode != ModeStream && cfg.Mode != ModeBoth {
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	w, err := cfg.writer()
	if err != nil {
		return nil, err
	}
	format := cfg.Format
	if format == FormatAuto {
		format = FormatForPath(cfg.OutputPath)
	}
	stream := NewStreamTracer(w, cfg.Level, format)
	if cfg.Mode == ModeStream {
		return stream, nil
	}
	return NewMultiTracer(cfg.Level, stream, NewRingTracer(cfg.RingSize, cfg.Level)), nil
}

// FormatForPath picks the format a trace file name asks for: *.ndjson is
// ndjson, *.json is chrome, anything else (stderr included) is text.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson":
		return FormatNDJSON
	case ".json":
		return FormatChrome
	}
	return FormatText
}

func (cfg Config) writer() (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}
