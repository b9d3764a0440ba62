package seqdoc

import (
	"strconv"
	"strings"
)

// IDKind is the variant of an Identifier.
type IDKind uint8

const (
	IDLocal IDKind = iota
	IDGeneral
	IDAccession
)

func (k IDKind) String() string {
	switch k {
	case IDLocal:
		return "local"
	case IDGeneral:
		return "general"
	case IDAccession:
		return "accession"
	}
	return "unknown"
}

// AccKind distinguishes archive-assigned identifier families.
type AccKind uint8

const (
	AccGenBank AccKind = iota
	AccEMBL
	AccDDBJ
	AccTPG
	AccTPE
	AccTPD
	AccOther
)

var accKindTags = [...]string{
	AccGenBank: "gb",
	AccEMBL:    "emb",
	AccDDBJ:    "dbj",
	AccTPG:     "tpg",
	AccTPE:     "tpe",
	AccTPD:     "tpd",
	AccOther:   "oth",
}

// Tag is the short label prefix of the family ("gb", "emb", ...).
func (k AccKind) Tag() string {
	if int(k) < len(accKindTags) {
		return accKindTags[k]
	}
	return "oth"
}

func (k AccKind) String() string { return k.Tag() }

// Identifier is a sequence id: Local, General{DB, Tag} or Accession{Acc, Value, Version}.
type Identifier struct {
	Kind    IDKind  `msgpack:"kind"`
	Value   string  `msgpack:"value"`
	DB      string  `msgpack:"db,omitempty"`
	Acc     AccKind `msgpack:"acc,omitempty"`
	Version int     `msgpack:"ver,omitempty"`
}

// Local returns a local identifier.
func Local(v string) Identifier { return Identifier{Kind: IDLocal, Value: v} }

// General returns a general (database-qualified) identifier.
func General(db, tag string) Identifier { return Identifier{Kind: IDGeneral, DB: db, Value: tag} }

// Accession returns an archive accession identifier.
func Accession(kind AccKind, acc string, version int) Identifier {
	return Identifier{Kind: IDAccession, Acc: kind, Value: acc, Version: version}
}

// Tag returns the bare value: the local string, the general tag or the accession.
func (id Identifier) Tag() string { return id.Value }

// IsSpecial reports whether the id is archive-canonical.
func (id Identifier) IsSpecial() bool { return id.Kind == IDAccession }

// Label returns the canonical string form: lcl|x, gnl|DB|x, gb|ACC.1.
func (id Identifier) Label() string {
	var b strings.Builder
	switch id.Kind {
	case IDLocal:
		b.WriteString("lcl|")
		b.WriteString(id.Value)
	case IDGeneral:
		b.WriteString("gnl|")
		b.WriteString(id.DB)
		b.WriteByte('|')
		b.WriteString(id.Value)
	case IDAccession:
		b.WriteString(id.Acc.Tag())
		b.WriteByte('|')
		b.WriteString(id.Value)
		if id.Version > 0 {
			b.WriteByte('.')
			b.WriteString(strconv.Itoa(id.Version))
		}
	default:
		b.WriteString(id.Value)
	}
	return b.String()
}

func (id Identifier) String() string { return id.Label() }

// Equal compares all identifying parts.
func (id Identifier) Equal(other Identifier) bool {
	return id == other
}

// FirstLabel returns the label of the first identifier, or "" for none.
func FirstLabel(ids []Identifier) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0].Label()
}
