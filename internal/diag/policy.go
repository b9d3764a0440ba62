package diag

// Action is what the caller does with the record a diagnostic belongs to.
type Action uint8

const (
	// ActionContinue: nothing to do.
	ActionContinue Action = iota
	// ActionWarn: recorded, value kept as-is or auto-corrected.
	ActionWarn
	// ActionReject: the record is not-ok; the run keeps going.
	ActionReject
	// ActionAbort: the run verdict fails regardless of other records.
	ActionAbort
)

func (a Action) String() string {
	switch a {
	case ActionContinue:
		return "continue"
	case ActionWarn:
		return "warn"
	case ActionReject:
		return "reject"
	case ActionAbort:
		return "abort"
	}
	return "unknown"
}

// PolicyFor maps a severity to the caller's disposition.
func PolicyFor(sev Severity) Action {
	switch sev {
	case SevInfo:
		return ActionContinue
	case SevWarning:
		return ActionWarn
	case SevError, SevCritical:
		return ActionReject
	default:
		return ActionAbort
	}
}
