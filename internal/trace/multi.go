package trace

import "errors"

// MultiTracer sends each event to several tracers. --trace-mode=both
// uses it to pair a live stream with a ring.
type MultiTracer struct {
	level   Level
	tracers []Tracer
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{level: level, tracers: tracers}
}

// Emit hands every tracer its own copy; tracers stamp Seq on the event.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error {
	return t.each(Tracer.Flush)
}

func (t *MultiTracer) Close() error {
	return t.each(Tracer.Close)
}

func (t *MultiTracer) each(fn func(Tracer) error) error {
	var errs []error
	for _, tr := range t.tracers {
		if err := fn(tr); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
