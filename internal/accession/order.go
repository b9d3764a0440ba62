package accession

import (
	"cmp"
	"slices"

	"fortio.org/safecast"

	"wgsmaster/internal/project"
)

// Entry is one nucleotide record seen by the scan pass.
type Entry struct {
	Key    string `msgpack:"key"`
	Length int    `msgpack:"len"`
	File   string `msgpack:"file,omitempty"`
	Record int    `msgpack:"rec,omitempty"`
}

// Order maps entry keys to ordinals in insertion order. Ordinals start at 1;
// 0 is reserved for the master record.
type Order struct {
	ordinals map[string]uint32
	keys     []string
}

func NewOrder() *Order {
	return &Order{ordinals: make(map[string]uint32)}
}

// Lookup returns the ordinal of key.
func (o *Order) Lookup(key string) (int, bool) {
	ord, ok := o.ordinals[key]
	return int(ord), ok
}

// Insert returns the ordinal of key, allocating the next one when the key is
// new. An error means the ordinal space is exhausted.
func (o *Order) Insert(key string) (ordinal int, inserted bool, err error) {
	if ord, ok := o.ordinals[key]; ok {
		return int(ord), false, nil
	}
	next, err := safecast.Conv[uint32](len(o.keys) + 1)
	if err != nil || next > MaxOrdinal {
		return 0, false, errTooMany
	}
	o.ordinals[key] = next
	o.keys = append(o.keys, key)
	return int(next), true, nil
}

// Len returns the number of keys.
func (o *Order) Len() int { return len(o.keys) }

// Keys returns keys in ordinal order.
func (o *Order) Keys() []string { return slices.Clone(o.keys) }

// Plan pre-assigns ordinals to scanned entries according to the sort order.
// Entries arrive in encounter order (file order, then record order); sorting
// is stable so ties keep encounter order. Repeated keys keep the first
// ordinal and are returned as duplicates.
func Plan(entries []Entry, order project.SortOrder) (*Order, []Entry, error) {
	sorted := slices.Clone(entries)
	switch order {
	case project.SortLengthDesc:
		slices.SortStableFunc(sorted, func(a, b Entry) int { return cmp.Compare(b.Length, a.Length) })
	case project.SortLengthAsc:
		slices.SortStableFunc(sorted, func(a, b Entry) int { return cmp.Compare(a.Length, b.Length) })
	case project.SortByID:
		slices.SortStableFunc(sorted, func(a, b Entry) int { return cmp.Compare(a.Key, b.Key) })
	case project.SortUnsorted:
	}

	o := NewOrder()
	var dups []Entry
	for _, e := range sorted {
		if _, inserted, err := o.Insert(e.Key); err != nil {
			return nil, nil, err
		} else if !inserted {
			dups = append(dups, e)
		}
	}
	return o, dups, nil
}
