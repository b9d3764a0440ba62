// Package lookup provides the taxonomy and bibliographic services records
// are normalised against. Services are explicit dependencies; a failed
// lookup means "no data" to the caller, never a crash.
package lookup

import (
	"context"
	"errors"

	"wgsmaster/internal/seqdoc"
)

var (
	ErrNotFound    = errors.New("lookup: not found")
	ErrUnavailable = errors.New("lookup: service unavailable")
)

// Taxonomy resolves an organism reference to its canonical form.
type Taxonomy interface {
	LookupOrg(ctx context.Context, org seqdoc.OrgRef) (seqdoc.OrgRef, error)
}

// Bibliographic resolves a publication, usually by PubMed id.
type Bibliographic interface {
	LookupPub(ctx context.Context, pub seqdoc.Pub) (seqdoc.Pub, error)
}

// Nop returns every query unchanged.
type Nop struct{}

func (Nop) LookupOrg(_ context.Context, org seqdoc.OrgRef) (seqdoc.OrgRef, error) { return org, nil }

func (Nop) LookupPub(_ context.Context, pub seqdoc.Pub) (seqdoc.Pub, error) { return pub, nil }

// Offline reports every service as unreachable.
type Offline struct{}

func (Offline) LookupOrg(context.Context, seqdoc.OrgRef) (seqdoc.OrgRef, error) {
	return seqdoc.OrgRef{}, ErrUnavailable
}

func (Offline) LookupPub(context.Context, seqdoc.Pub) (seqdoc.Pub, error) {
	return seqdoc.Pub{}, ErrUnavailable
}
