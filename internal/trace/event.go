package trace

import (
	"time"

	"wgsmaster/internal/diag"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint     // something notable happened inside a span
	KindHeartbeat // periodic liveness signal
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point", KindHeartbeat: "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Coarser scopes have lower values.
type Scope uint8

const (
	ScopeRun    Scope = iota + 1 // whole invocation
	ScopePass                    // scan, plan, process, master
	ScopeFile                    // one input file
	ScopeRecord                  // one submission record
)

var scopeNames = [...]string{ScopeRun: "run", ScopePass: "pass", ScopeFile: "file", ScopeRecord: "record"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace entry. File and record spans carry the input they
// are about in At, the same location diagnostics use, so a trace line can
// be matched against the report.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for the run span
	Name     string // what is being done: "scan", "process", "record"
	At       diag.Location
	Detail   string
	Extra    map[string]string
}
