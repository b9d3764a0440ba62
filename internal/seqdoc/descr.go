package seqdoc

import (
	"fmt"
	"strings"
)

// DescrKind is the variant tag of a Descriptor.
type DescrKind uint8

const (
	DescrTitle DescrKind = iota + 1
	DescrComment
	DescrPub
	DescrSource
	DescrMolInfo
	DescrGenBank
	DescrEMBL
	DescrUser
	DescrCreateDate
	DescrUpdateDate

	// legacy kinds, carried as opaque payloads
	DescrMolType
	DescrModif
	DescrMethod
	DescrName
	DescrOrg
	DescrNum
	DescrMaploc
	DescrPIR
	DescrRegion
	DescrSP
	DescrDbxref
	DescrPRF
	DescrPDB
	DescrHet
	DescrModelEv
)

var descrKindNames = map[DescrKind]string{
	DescrTitle:      "title",
	DescrComment:    "comment",
	DescrPub:        "pub",
	DescrSource:     "source",
	DescrMolInfo:    "molinfo",
	DescrGenBank:    "genbank",
	DescrEMBL:       "embl",
	DescrUser:       "user",
	DescrCreateDate: "create-date",
	DescrUpdateDate: "update-date",
	DescrMolType:    "mol-type",
	DescrModif:      "modif",
	DescrMethod:     "method",
	DescrName:       "name",
	DescrOrg:        "org",
	DescrNum:        "num",
	DescrMaploc:     "maploc",
	DescrPIR:        "pir",
	DescrRegion:     "region",
	DescrSP:         "sp",
	DescrDbxref:     "dbxref",
	DescrPRF:        "prf",
	DescrPDB:        "pdb",
	DescrHet:        "het",
	DescrModelEv:    "modelev",
}

func (k DescrKind) String() string {
	if name, ok := descrKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("descr(%d)", uint8(k))
}

// Descriptor is a tagged union: Kind selects which payload field is meaningful.
// Text carries Title/Comment and the textual form of legacy kinds.
type Descriptor struct {
	Kind    DescrKind     `msgpack:"kind"`
	Text    string        `msgpack:"text,omitempty"`
	Pub     *Pub          `msgpack:"pub,omitempty"`
	Source  *BioSource    `msgpack:"source,omitempty"`
	MolInfo *MolInfo      `msgpack:"molinfo,omitempty"`
	GenBank *GenBankBlock `msgpack:"genbank,omitempty"`
	EMBL    *EMBLBlock    `msgpack:"embl,omitempty"`
	User    *UserObject   `msgpack:"user,omitempty"`
	Date    *Date         `msgpack:"date,omitempty"`
	Raw     []byte        `msgpack:"raw,omitempty"`
}

func Title(s string) Descriptor { return Descriptor{Kind: DescrTitle, Text: s} }
func Comment(s string) Descriptor { return Descriptor{Kind: DescrComment, Text: s} }

func PubDescr(p Pub) Descriptor { return Descriptor{Kind: DescrPub, Pub: &p} }
func SourceDescr(b BioSource) Descriptor { return Descriptor{Kind: DescrSource, Source: &b} }
func MolInfoDescr(m MolInfo) Descriptor { return Descriptor{Kind: DescrMolInfo, MolInfo: &m} }
func GenBankDescr(g GenBankBlock) Descriptor { return Descriptor{Kind: DescrGenBank, GenBank: &g} }
func EMBLDescr(e EMBLBlock) Descriptor { return Descriptor{Kind: DescrEMBL, EMBL: &e} }
func UserDescr(u UserObject) Descriptor { return Descriptor{Kind: DescrUser, User: &u} }
func CreateDateDescr(d Date) Descriptor { return Descriptor{Kind: DescrCreateDate, Date: &d} }
func UpdateDateDescr(d Date) Descriptor { return Descriptor{Kind: DescrUpdateDate, Date: &d} }
func Opaque(kind DescrKind, text string) Descriptor { return Descriptor{Kind: kind, Text: text} }

// Date is a calendar date; zero parts mean "not given".
type Date struct {
	Year  int `msgpack:"y"`
	Month int `msgpack:"m,omitempty"`
	Day   int `msgpack:"d,omitempty"`
}

func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

func (d Date) Equal(o Date) bool { return d == o }

func (d Date) String() string {
	switch {
	case d.Month == 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// PubKind is the citation variant of a publication.
type PubKind uint8

const (
	PubGen PubKind = iota
	PubSub
	PubArticle
	PubUnpub
	PubBook
	PubPatent
)

func (k PubKind) String() string {
	switch k {
	case PubSub:
		return "sub"
	case PubArticle:
		return "article"
	case PubUnpub:
		return "unpub"
	case PubBook:
		return "book"
	case PubPatent:
		return "patent"
	}
	return "gen"
}

// Pub is a publication. Date is the submission date of a Cit-sub.
type Pub struct {
	Kind    PubKind  `msgpack:"kind"`
	PMID    int      `msgpack:"pmid,omitempty"`
	Authors []string `msgpack:"authors,omitempty"`
	Title   string   `msgpack:"title,omitempty"`
	Journal string   `msgpack:"journal,omitempty"`
	Year    int      `msgpack:"year,omitempty"`
	Date    *Date    `msgpack:"date,omitempty"`
}

// OrgRef identifies an organism.
type OrgRef struct {
	TaxName  string `msgpack:"taxname"`
	Common   string `msgpack:"common,omitempty"`
	TaxID    int    `msgpack:"taxid,omitempty"`
	Lineage  string `msgpack:"lineage,omitempty"`
	Division string `msgpack:"div,omitempty"`
}

// Subtype is a named source qualifier ("chromosome", "strain", ...).
type Subtype struct {
	Name  string `msgpack:"name"`
	Value string `msgpack:"value,omitempty"`
}

// BioSource describes the biological source of the sequence.
type BioSource struct {
	Org      OrgRef    `msgpack:"org"`
	Subtypes []Subtype `msgpack:"subtypes,omitempty"`
}

// Subtype returns the value of the first subtype with the given name.
func (b *BioSource) Subtype(name string) (string, bool) {
	if b == nil {
		return "", false
	}
	for _, st := range b.Subtypes {
		if strings.EqualFold(st.Name, name) {
			return st.Value, true
		}
	}
	return "", false
}

// GenBankBlock carries GenBank-specific record data.
type GenBankBlock struct {
	Keywords        []string `msgpack:"keywords,omitempty"`
	ExtraAccessions []string `msgpack:"extra_accs,omitempty"`
	Source          string   `msgpack:"source,omitempty"`
}

// EMBLBlock carries EMBL-specific record data.
type EMBLBlock struct {
	ExtraAcc []string `msgpack:"extra_acc,omitempty"`
}

// UserField is one labelled entry of a user object. Values holds
// multi-valued fields (DBLink lists); Value holds scalar ones.
type UserField struct {
	Label  string   `msgpack:"label"`
	Value  string   `msgpack:"value,omitempty"`
	Values []string `msgpack:"values,omitempty"`
}

// Well-known user object types.
const (
	UserStructuredComment  = "StructuredComment"
	UserDBLink             = "DBLink"
	UserGenomeProjects     = "GenomeProjectsDB"
	UserFeatureFetchPolicy = "FeatureFetchPolicy"
	UserTpaAssembly        = "TpaAssembly"
	UserNcbiCleanup        = "NcbiCleanup"
	UserAutodefOptions     = "AutodefOptions"
	UserOriginalID         = "OriginalID"
)

// StructuredCommentPrefix is the field holding a structured comment's label.
const StructuredCommentPrefix = "StructuredCommentPrefix"

// UserObject is a typed bag of labelled fields.
type UserObject struct {
	Type   string      `msgpack:"type"`
	Fields []UserField `msgpack:"fields,omitempty"`
}

// Field returns the first field with the given label.
func (u *UserObject) Field(label string) (UserField, bool) {
	if u == nil {
		return UserField{}, false
	}
	for _, f := range u.Fields {
		if f.Label == label {
			return f, true
		}
	}
	return UserField{}, false
}

// Equal compares type and fields in order.
func (u *UserObject) Equal(o *UserObject) bool {
	if u == nil || o == nil {
		return u == o
	}
	if u.Type != o.Type || len(u.Fields) != len(o.Fields) {
		return false
	}
	for i := range u.Fields {
		a, b := u.Fields[i], o.Fields[i]
		if a.Label != b.Label || a.Value != b.Value || len(a.Values) != len(b.Values) {
			return false
		}
		for j := range a.Values {
			if a.Values[j] != b.Values[j] {
				return false
			}
		}
	}
	return true
}

// Key renders the object as a stable string usable as a map key.
func (u *UserObject) Key() string {
	if u == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(u.Type)
	for _, f := range u.Fields {
		b.WriteString("\x1f")
		b.WriteString(f.Label)
		b.WriteByte('=')
		b.WriteString(f.Value)
		for _, v := range f.Values {
			b.WriteString("\x1e")
			b.WriteString(v)
		}
	}
	return b.String()
}

// IsUser reports whether d is a user object of the given type.
func (d *Descriptor) IsUser(typ string) bool {
	return d != nil && d.Kind == DescrUser && d.User != nil && strings.EqualFold(d.User.Type, typ)
}
