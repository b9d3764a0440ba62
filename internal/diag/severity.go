package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is recorded; processing continues with the value kept or auto-corrected.
	SevWarning
	// SevError marks the current record not-ok; the run keeps collecting findings.
	SevError
	// SevCritical rejects the current record immediately.
	SevCritical
	// SevFatal rejects the current record, or the whole run for master-level problems.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevCritical:
		return "CRITICAL"
	case SevFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// Label is the lower-case form used by short and golden output.
func (s Severity) Label() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	case SevCritical:
		return "critical"
	case SevFatal:
		return "fatal"
	default:
		return "info"
	}
}
