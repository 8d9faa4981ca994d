package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. Phase outputs live in jsonb
// columns so each phase write is a single UPDATE.
type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `
id, case_id, status, phase, progress, jurisdiction, model,
issues, burden, damages, conclusions, award,
overall_confidence, factors, tokens_used, error_message,
started_at, completed_at, failed_at, created_at, updated_at`

// Create inserts a new job.
func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO analysis_jobs (
	id, case_id, status, phase, progress, jurisdiction, model, tokens_used, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.CaseID,
		job.Status,
		job.Phase,
		job.Progress,
		job.Jurisdiction,
		job.Model,
		job.TokensUsed,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// GetByID returns a job by ID.
func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	query := `SELECT ` + jobColumns + ` FROM analysis_jobs WHERE id = $1 LIMIT 1`
	return scanJob(r.DB.QueryRowContext(ctx, query, jobID))
}

// GetLatestForCase returns the most recent job for a case.
func (r *PGRepo) GetLatestForCase(ctx context.Context, caseID string) (Job, error) {
	query := `SELECT ` + jobColumns + ` FROM analysis_jobs WHERE case_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanJob(r.DB.QueryRowContext(ctx, query, caseID))
}

// ListByCase returns jobs for a case, newest first, with limit/offset.
func (r *PGRepo) ListByCase(ctx context.Context, caseID string, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + jobColumns + ` FROM analysis_jobs WHERE case_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, caseID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdatePhase moves a job to a new status/phase/progress.
func (r *PGRepo) UpdatePhase(ctx context.Context, jobID, status, phase string, progress int, startedAt *time.Time) error {
	const query = `
UPDATE analysis_jobs
SET status = $1,
    phase = $2,
    progress = $3,
    started_at = CASE
        WHEN $4::timestamptz IS NOT NULL THEN $4::timestamptz
        WHEN $1 = 'processing' AND started_at IS NULL THEN now()
        ELSE started_at
    END,
    updated_at = now()
WHERE id = $5::uuid`
	res, err := r.DB.ExecContext(ctx, query, status, phase, progress, startedAt, jobID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SaveIssues persists the classification output.
func (r *PGRepo) SaveIssues(ctx context.Context, jobID string, issues []LegalIssue, progress, tokensUsed int) error {
	return r.savePhase(ctx, jobID, "issues", issues, progress, tokensUsed)
}

// SaveBurden persists the burden-of-proof output.
func (r *PGRepo) SaveBurden(ctx context.Context, jobID string, burden BurdenResult, progress, tokensUsed int) error {
	return r.savePhase(ctx, jobID, "burden", burden, progress, tokensUsed)
}

// SaveDamages persists the damages output.
func (r *PGRepo) SaveDamages(ctx context.Context, jobID string, damages DamagesCalculation, progress, tokensUsed int) error {
	return r.savePhase(ctx, jobID, "damages", damages, progress, tokensUsed)
}

// SaveConclusions persists the conclusions and award recommendation.
func (r *PGRepo) SaveConclusions(ctx context.Context, jobID string, conclusions []ConclusionOfLaw, award AwardRecommendation, progress, tokensUsed int) error {
	const query = `
UPDATE analysis_jobs
SET conclusions = $1::jsonb,
    award = $2::jsonb,
    progress = $3,
    tokens_used = $4,
    updated_at = now()
WHERE id = $5::uuid`
	conclusionsPayload, err := json.Marshal(conclusions)
	if err != nil {
		return err
	}
	awardPayload, err := json.Marshal(award)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, conclusionsPayload, awardPayload, progress, tokensUsed, jobID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Complete marks the job completed with its confidence score.
func (r *PGRepo) Complete(ctx context.Context, jobID string, confidence float64, factors ConfidenceFactors, tokensUsed int, completedAt time.Time) error {
	const query = `
UPDATE analysis_jobs
SET status = 'completed',
    phase = 'completed',
    progress = 100,
    overall_confidence = $1,
    factors = $2::jsonb,
    tokens_used = $3,
    completed_at = $4::timestamptz,
    updated_at = now()
WHERE id = $5::uuid`
	payload, err := json.Marshal(factors)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, confidence, payload, tokensUsed, completedAt, jobID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Fail marks the job failed. Phase output columns are untouched, so
// everything persisted before the failure stays readable.
func (r *PGRepo) Fail(ctx context.Context, jobID, errorMessage string, tokensUsed int, failedAt time.Time) error {
	const query = `
UPDATE analysis_jobs
SET status = 'failed',
    phase = 'failed',
    error_message = $1,
    tokens_used = $2,
    failed_at = $3::timestamptz,
    updated_at = now()
WHERE id = $4::uuid`
	res, err := r.DB.ExecContext(ctx, query, errorMessage, tokensUsed, failedAt, jobID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// savePhase writes one phase's jsonb column plus progress and the
// running token count. The column name is always one of our constants,
// never caller input.
func (r *PGRepo) savePhase(ctx context.Context, jobID, column string, payload any, progress, tokensUsed int) error {
	query := `
UPDATE analysis_jobs
SET ` + column + ` = $1::jsonb,
    progress = $2,
    tokens_used = $3,
    updated_at = now()
WHERE id = $4::uuid`
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, data, progress, tokensUsed, jobID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var model sql.NullString
	var issues, burden, damages, conclusions, award, factors sql.NullString
	var errorMessage sql.NullString
	var startedAt, completedAt, failedAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.CaseID,
		&job.Status,
		&job.Phase,
		&job.Progress,
		&job.Jurisdiction,
		&model,
		&issues,
		&burden,
		&damages,
		&conclusions,
		&award,
		&job.OverallConfidence,
		&factors,
		&job.TokensUsed,
		&errorMessage,
		&startedAt,
		&completedAt,
		&failedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}

	if model.Valid {
		job.Model = model.String
	}
	if errorMessage.Valid {
		job.ErrorMessage = errorMessage.String
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	if failedAt.Valid {
		job.FailedAt = &failedAt.Time
	}

	unmarshalColumn(issues, &job.Issues)
	if burden.Valid {
		job.Burden = &BurdenResult{}
		if !unmarshalColumn(burden, job.Burden) {
			job.Burden = nil
		}
	}
	if damages.Valid {
		job.Damages = &DamagesCalculation{}
		if !unmarshalColumn(damages, job.Damages) {
			job.Damages = nil
		}
	}
	unmarshalColumn(conclusions, &job.Conclusions)
	if award.Valid {
		job.Award = &AwardRecommendation{}
		if !unmarshalColumn(award, job.Award) {
			job.Award = nil
		}
	}
	if factors.Valid {
		job.Factors = &ConfidenceFactors{}
		if !unmarshalColumn(factors, job.Factors) {
			job.Factors = nil
		}
	}
	return job, nil
}

func unmarshalColumn(raw sql.NullString, out any) bool {
	if !raw.Valid || raw.String == "" {
		return false
	}
	return json.Unmarshal([]byte(raw.String), out) == nil
}

func requireRow(res sql.Result) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
