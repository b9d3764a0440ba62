package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory so the run can dump
// what it was doing when it failed, without streaming every record.
type RingTracer struct {
	mu    sync.Mutex
	level Level
	buf   []Event
	total uint64 // events ever stored
}

// NewRingTracer keeps the last size events; size <= 0 means 4096.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = 4096
	}
	return &RingTracer{level: level, buf: make([]Event, size)}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	slot := t.total % uint64(len(t.buf))
	t.buf[slot] = *ev
	t.buf[slot].Seq = NextSeq()
	t.total++
	t.mu.Unlock()
}

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.buf))
	n := min(t.total, size)
	out := make([]Event, 0, n)
	for i := t.total - n; i < t.total; i++ {
		out = append(out, t.buf[i%size])
	}
	return out
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total - min(t.total, uint64(len(t.buf)))
}

// Dump writes the retained events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
