package trace

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"maps"
	"slices"
	"strings"
	"time"
)

// Format is the encoding of trace output.
type Format uint8

const (
	FormatAuto   Format = iota // decided by the output file name
	FormatText                 // one indented line per event
	FormatNDJSON               // one JSON object per line
	FormatChrome               // chrome://tracing event array
)

var formatNames = [...]string{"auto", "text", "ndjson", "chrome"}

// ParseFormat parses a --trace-format value; "" means auto.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatAuto, nil
	}
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: %s)", s, strings.Join(formatNames[:], "|"))
}

// epoch is the zero of the relative timestamps in text and chrome output.
var epoch = time.Now()

// FormatEvent encodes one event. Text and ndjson output end in a newline;
// a chrome element does not, the stream tracer separates them.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return appendNDJSON(nil, ev)
	case FormatChrome:
		return appendChrome(nil, ev)
	}
	return appendText(nil, ev)
}

type ndjsonEvent struct {
	Time     time.Time         `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Name     string            `json:"name"`
	File     string            `json:"file,omitempty"`
	Record   string            `json:"record,omitempty"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func appendNDJSON(buf []byte, ev *Event) []byte {
	data, err := json.Marshal(ndjsonEvent{
		Time:     ev.Time.UTC(),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		File:     ev.At.File,
		Record:   ev.At.Record,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		return buf
	}
	return append(append(buf, data...), '\n')
}

type chromeEvent struct {
	Name string            `json:"name"`
	Cat  string            `json:"cat"`
	Ph   string            `json:"ph"`
	TS   int64             `json:"ts"`
	PID  int               `json:"pid"`
	TID  uint32            `json:"tid"`
	Args map[string]string `json:"args,omitempty"`
}

var chromePhase = [...]string{KindSpanBegin: "B", KindSpanEnd: "E", KindPoint: "i", KindHeartbeat: "i"}

// lane maps a file to a chrome thread row so the spans of files scanned
// in parallel nest correctly. Run and pass spans share row 0.
func lane(file string) uint32 {
	if file == "" {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(file))
	return h.Sum32()&0xffff + 1
}

func appendChrome(buf []byte, ev *Event) []byte {
	args := ev.Extra
	if ev.Detail != "" || !ev.At.IsZero() {
		args = maps.Clone(ev.Extra)
		if args == nil {
			args = make(map[string]string, 3)
		}
		for k, v := range map[string]string{"detail": ev.Detail, "file": ev.At.File, "record": ev.At.Record} {
			if v != "" {
				args[k] = v
			}
		}
	}
	ph := "i"
	if int(ev.Kind) < len(chromePhase) && chromePhase[ev.Kind] != "" {
		ph = chromePhase[ev.Kind]
	}
	data, err := json.Marshal(chromeEvent{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		Ph:   ph,
		TS:   ev.Time.Sub(epoch).Microseconds(),
		PID:  1,
		TID:  lane(ev.At.File),
		Args: args,
	})
	if err != nil {
		return buf
	}
	return append(buf, data...)
}

var textMarks = [...]string{KindSpanBegin: "→", KindSpanEnd: "←", KindPoint: "•", KindHeartbeat: "♡"}

// appendText renders
//
//	[   12.345ms]     → record @a.msgpack#gnl|WGS:AAAA|c1 (pass) {k=v}
//
// indented two spaces per scope below the run.
func appendText(buf []byte, ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%10.3fms] ", float64(ev.Time.Sub(epoch))/float64(time.Millisecond))
	if ev.Scope > ScopeRun {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeRun)))
	}
	if int(ev.Kind) < len(textMarks) && textMarks[ev.Kind] != "" {
		sb.WriteString(textMarks[ev.Kind])
		sb.WriteByte(' ')
	}
	sb.WriteString(ev.Name)
	if !ev.At.IsZero() {
		sb.WriteString(" @")
		sb.WriteString(ev.At.String())
	}
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		pairs := make([]string, 0, len(ev.Extra))
		for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			pairs = append(pairs, k+"="+ev.Extra[k])
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(pairs, ", "))
	}
	sb.WriteByte('\n')
	return append(buf, sb.String()...)
}
