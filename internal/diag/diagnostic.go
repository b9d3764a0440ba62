package diag

// Location points at the file and record a diagnostic belongs to.
// Both parts are optional: run-level findings carry neither.
type Location struct {
	File   string
	Record string
}

func (l Location) String() string {
	switch {
	case l.File == "" && l.Record == "":
		return "-"
	case l.Record == "":
		return l.File
	case l.File == "":
		return "#" + l.Record
	}
	return l.File + "#" + l.Record
}

// IsZero reports whether neither file nor record is set.
func (l Location) IsZero() bool { return l.File == "" && l.Record == "" }

type Note struct {
	Where Location
	Msg   string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Where    Location
	Notes    []Note
}
