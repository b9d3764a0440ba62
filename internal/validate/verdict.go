package validate

import "wgsmaster/internal/diag"

// Verdict is the outcome of a record or of the aggregate.
type Verdict uint8

const (
	Pass Verdict = iota
	PartialFail
	Fail
)

func (v Verdict) String() string {
	switch v {
	case PartialFail:
		return "partial-fail"
	case Fail:
		return "fail"
	}
	return "pass"
}

// OK reports whether the verdict lets output proceed unchanged.
func (v Verdict) OK() bool { return v == Pass }

// And combines two verdicts: the worse one wins.
func (v Verdict) And(o Verdict) Verdict {
	if o > v {
		return o
	}
	return v
}

// VerdictFor maps the worst severity seen to a verdict.
func VerdictFor(worst diag.Severity, any bool) Verdict {
	if !any {
		return Pass
	}
	switch diag.PolicyFor(worst) {
	case diag.ActionContinue, diag.ActionWarn:
		return Pass
	case diag.ActionReject:
		if worst == diag.SevError {
			return PartialFail
		}
		return Fail
	case diag.ActionAbort:
		return Fail
	}
	return Fail
}
