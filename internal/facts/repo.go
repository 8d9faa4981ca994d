package facts

import (
	"context"
	"errors"
)

// ErrNotFound indicates no extraction output exists for a case. The
// pipeline treats this as a precondition failure: the caller must run
// the upstream extraction first.
var ErrNotFound = errors.New("case facts not found")

// Repo reads and writes fact-extraction output.
type Repo interface {
	GetByCaseID(ctx context.Context, caseID string) (CaseFacts, error)
	Put(ctx context.Context, cf CaseFacts) error
}
