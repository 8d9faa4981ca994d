package facts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. The extraction payload is kept
// as one jsonb document: the pipeline only ever reads it whole.
type PGRepo struct {
	DB *sql.DB
}

// GetByCaseID returns the extraction output for a case.
func (r *PGRepo) GetByCaseID(ctx context.Context, caseID string) (CaseFacts, error) {
	const query = `
SELECT payload FROM case_facts WHERE case_id = $1 LIMIT 1`
	var payload []byte
	err := r.DB.QueryRowContext(ctx, query, caseID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return CaseFacts{}, ErrNotFound
	}
	if err != nil {
		return CaseFacts{}, err
	}
	var cf CaseFacts
	if err := json.Unmarshal(payload, &cf); err != nil {
		return CaseFacts{}, err
	}
	return cf, nil
}

// Put upserts extraction output for a case.
func (r *PGRepo) Put(ctx context.Context, cf CaseFacts) error {
	payload, err := json.Marshal(cf)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO case_facts (case_id, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (case_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	_, err = r.DB.ExecContext(ctx, query, cf.CaseID, payload, time.Now().UTC())
	return err
}

var _ Repo = (*PGRepo)(nil)
