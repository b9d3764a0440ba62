package trace

import (
	"sync/atomic"
	"time"

	"wgsmaster/internal/diag"
)

var (
	eventSeq atomic.Uint64
	spanSeq  atomic.Uint64
)

// NextSeq returns the next event sequence number for the process.
func NextSeq() uint64 { return eventSeq.Add(1) }

// Span is an open stretch of work: the run, a pass, a file or a record.
// A span whose scope is filtered out is inert; every method on it is a
// no-op.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	at      diag.Location
	started time.Time
	extra   map[string]string
}

// Begin opens a run or pass span.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return open(t, scope, name, diag.Location{}, parent)
}

// BeginFile opens the span of one input file within a pass.
func BeginFile(t Tracer, name, file string, parent uint64) *Span {
	return open(t, ScopeFile, name, diag.Location{File: file}, parent)
}

// BeginRecord opens the span of one top-level record.
func BeginRecord(t Tracer, at diag.Location, parent uint64) *Span {
	return open(t, ScopeRecord, "record", at, parent)
}

func open(t Tracer, scope Scope, name string, at diag.Location, parent uint64) *Span {
	if !wants(t, scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spanSeq.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		at:      at,
		started: time.Now(),
	}
	s.emit(KindSpanBegin, s.started, s.id, "", nil)
	return s
}

func wants(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

func (s *Span) live() bool { return s != nil && s.tracer != nil }

func (s *Span) emit(kind Kind, at time.Time, id uint64, detail string, extra map[string]string) {
	parent := s.parent
	if kind == KindPoint {
		parent = s.id
	}
	s.tracer.Emit(&Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   id,
		ParentID: parent,
		Name:     s.name,
		At:       s.at,
		Detail:   detail,
		Extra:    extra,
	})
}

// End closes the span and returns how long it was open. Extras set with
// WithExtra travel on the end event.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	now := time.Now()
	s.emit(KindSpanEnd, now, s.id, detail, s.extra)
	return now.Sub(s.started)
}

// WithExtra attaches a key to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// Note emits a point event under the span, at the span's location.
func (s *Span) Note(what, detail string) {
	if !s.live() {
		return
	}
	p := *s
	p.name = what
	p.emit(KindPoint, time.Now(), 0, detail, nil)
}

// ID returns the span id, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
