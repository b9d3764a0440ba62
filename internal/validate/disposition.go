package validate

import (
	"golang.org/x/text/cases"

	"wgsmaster/internal/seqdoc"
)

// Disposition is what happens to a descriptor found on a set.
type Disposition uint8

const (
	Keep Disposition = iota
	KeepWarnOnceUnusual
	DropErrorUnexpected
	DropWarnUnexpected
	SpecialTitle
	UserObjectRule
)

func (d Disposition) String() string {
	switch d {
	case Keep:
		return "keep"
	case KeepWarnOnceUnusual:
		return "keep-warn-once"
	case DropErrorUnexpected:
		return "drop-error"
	case DropWarnUnexpected:
		return "drop-warn"
	case SpecialTitle:
		return "title"
	case UserObjectRule:
		return "user-object"
	}
	return "unknown"
}

// SetDisposition maps a descriptor kind found on a set to its policy.
func SetDisposition(kind seqdoc.DescrKind) Disposition {
	switch kind {
	case seqdoc.DescrComment, seqdoc.DescrPub, seqdoc.DescrMolInfo:
		return Keep
	case seqdoc.DescrGenBank, seqdoc.DescrEMBL, seqdoc.DescrOrg, seqdoc.DescrDbxref, seqdoc.DescrSource:
		return KeepWarnOnceUnusual
	case seqdoc.DescrMolType, seqdoc.DescrModif, seqdoc.DescrMethod, seqdoc.DescrName,
		seqdoc.DescrNum, seqdoc.DescrMaploc, seqdoc.DescrPIR, seqdoc.DescrRegion,
		seqdoc.DescrSP, seqdoc.DescrPRF, seqdoc.DescrPDB, seqdoc.DescrHet, seqdoc.DescrModelEv:
		return DropErrorUnexpected
	case seqdoc.DescrCreateDate, seqdoc.DescrUpdateDate:
		return DropWarnUnexpected
	case seqdoc.DescrTitle:
		return SpecialTitle
	case seqdoc.DescrUser:
		return UserObjectRule
	}
	return DropErrorUnexpected
}

// SeqDisposition maps a descriptor kind found on a sequence to its policy.
// Sequences may carry titles, dates and source blocks; legacy kinds and
// user objects follow the same rules as on sets.
func SeqDisposition(kind seqdoc.DescrKind) Disposition {
	switch d := SetDisposition(kind); d {
	case DropErrorUnexpected, UserObjectRule:
		return d
	case Keep, KeepWarnOnceUnusual, DropWarnUnexpected, SpecialTitle:
		return Keep
	}
	return Keep
}

var (
	keptUserTypes = []string{
		seqdoc.UserStructuredComment,
		seqdoc.UserDBLink,
		seqdoc.UserGenomeProjects,
		seqdoc.UserFeatureFetchPolicy,
		seqdoc.UserTpaAssembly,
	}
	// dropped with a warning rather than an error
	tolerableUserTypes = []string{
		seqdoc.UserNcbiCleanup,
		seqdoc.UserAutodefOptions,
		seqdoc.UserOriginalID,
	}
	fold = cases.Fold()
)

// UserTypeKept reports whether a user object of the given type survives.
func UserTypeKept(typ string) bool { return containsFold(keptUserTypes, typ) }

// UserTypeTolerated reports whether dropping the type is only a warning.
func UserTypeTolerated(typ string) bool { return containsFold(tolerableUserTypes, typ) }

func containsFold(list []string, s string) bool {
	f := fold.String(s)
	for _, v := range list {
		if fold.String(v) == f {
			return true
		}
	}
	return false
}
