package trace

import (
	"io"
	"os"
	"sync"
)

// StreamTracer writes each event as it arrives. Write errors never stop
// the run; the first one is returned from Close.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	n      int // events written
	err    error
}

// NewStreamTracer starts a stream on w. For the chrome format the opening
// of the event array is written here and closed by Close.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{w: w, level: level, format: format}
	if format == FormatChrome {
		t.write([]byte("{\"traceEvents\":[\n"))
	}
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.format == FormatChrome && t.n > 0 {
		t.write([]byte(",\n"))
	}
	t.write(data)
	t.n++
}

// write must be called with mu held, or before the tracer is shared.
func (t *StreamTracer) write(p []byte) {
	if _, err := t.w.Write(p); err != nil && t.err == nil {
		t.err = err
	}
}

// Flush flushes the writer when it buffers.
func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close ends the chrome array, flushes and closes the writer if it is a
// file. Stderr is left open.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.format == FormatChrome {
		t.write([]byte("\n]}\n"))
	}
	err := t.err
	t.mu.Unlock()

	if ferr := t.Flush(); err == nil {
		err = ferr
	}
	if c, ok := t.w.(io.Closer); ok && t.w != io.Writer(os.Stderr) {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
