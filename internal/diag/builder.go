package diag

func New(sev Severity, code Code, where Location, msg string) *Diagnostic {
	return &Diagnostic{
		Severity: sev,
		Code:     code,
		Where:    where,
		Message:  msg,
	}
}

func NewError(code Code, where Location, msg string) *Diagnostic {
	return New(SevError, code, where, msg)
}

func (d Diagnostic) WithNote(where Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Where: where, Msg: msg})
	return d
}
