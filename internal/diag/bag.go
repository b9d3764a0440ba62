package diag

import (
	"fmt"
	"sort"
)

// Bag is the run-scoped ordered diagnostic log.
type Bag struct {
	items []*Diagnostic
	max   int
	// dropped counts diagnostics rejected because the bag was full
	dropped int
}

// NewBag creates a bag holding at most max diagnostics; max <= 0 means unbounded.
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 256 {
		capHint = 256
	}
	return &Bag{
		items: make([]*Diagnostic, 0, capHint),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil {
		return false
	}
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Dropped returns how many diagnostics did not fit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	return b.Worst() >= SevError && b.Len() > 0
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	return b.Worst() >= SevWarning && b.Len() > 0
}

// Worst returns the highest severity in the bag (SevInfo when empty).
func (b *Bag) Worst() Severity {
	worst := SevInfo
	for _, d := range b.items {
		if d.Severity > worst {
			worst = d.Severity
		}
	}
	return worst
}

// Count returns the number of diagnostics with exactly the given severity.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for _, d := range b.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Merge appends diagnostics from another bag, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if b.max > 0 && newTotal > b.max {
		b.max = newTotal
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Filter keeps only the diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(*Diagnostic) bool) {
	out := b.items[:0]
	for _, d := range b.items {
		if keep(d) {
			out = append(out, d)
		}
	}
	b.items = out
}

// Sort orders diagnostics by file, record, severity (desc) and code so output
// is deterministic. Emission order is kept between equal entries.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Where.File != dj.Where.File {
			return di.Where.File < dj.Where.File
		}
		if di.Where.Record != dj.Where.Record {
			return di.Where.Record < dj.Where.Record
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// простая дедупликация (по Code+Where+Message)
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]*Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%d:%s:%s", d.Code, d.Where.String(), d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}
