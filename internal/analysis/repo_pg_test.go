package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var jobColumnNames = []string{
	"id", "case_id", "status", "phase", "progress", "jurisdiction", "model",
	"issues", "burden", "damages", "conclusions", "award",
	"overall_confidence", "factors", "tokens_used", "error_message",
	"started_at", "completed_at", "failed_at", "created_at", "updated_at",
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	job := Job{
		ID:           "job-1",
		CaseID:       "case-1",
		Status:       StatusPending,
		Phase:        PhaseQueued,
		Progress:     0,
		Jurisdiction: "US-CA",
		Model:        "gpt-4o",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec("INSERT INTO analysis_jobs").
		WithArgs(
			job.ID,
			job.CaseID,
			job.Status,
			job.Phase,
			job.Progress,
			job.Jurisdiction,
			job.Model,
			job.TokensUsed,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDUnmarshalsPhaseColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	rows := sqlmock.NewRows(jobColumnNames).AddRow(
		"job-1", "case-1", StatusFailed, PhaseFailed, 40, "US-CA", "gpt-4o",
		`[{"id":"issue-1","category":"breach_of_contract","description":"d","elements":[],"materialityScore":0.8}]`,
		`{"overallMet":true,"analyses":[{"party":"claimant","standard":"preponderance","issueId":"issue-1","isMet":true,"probability":0.7}]}`,
		nil, // damages never persisted
		nil, nil,
		0.0, nil, 450, "persist damages: storage unavailable",
		now, nil, now, now, now,
	)
	mock.ExpectQuery("FROM analysis_jobs WHERE id =").
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != StatusFailed || job.TokensUsed != 450 {
		t.Fatalf("job %+v", job)
	}
	if len(job.Issues) != 1 || job.Issues[0].Category != CategoryBreachOfContract {
		t.Fatalf("issues %+v", job.Issues)
	}
	if job.Burden == nil || !job.Burden.OverallMet || len(job.Burden.Analyses) != 1 {
		t.Fatalf("burden %+v", job.Burden)
	}
	if job.Damages != nil {
		t.Fatal("damages column was null; Damages must be nil")
	}
	if job.ErrorMessage == "" || job.FailedAt == nil {
		t.Fatalf("failure fields lost: %+v", job)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("FROM analysis_jobs WHERE id =").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(jobColumnNames))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSaveIssues(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE analysis_jobs SET issues =").
		WithArgs(sqlmock.AnyArg(), ProgressClassifyDone, 120, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	issues := []LegalIssue{{ID: "issue-1", Category: CategoryBreachOfContract}}
	if err := repo.SaveIssues(context.Background(), "job-1", issues, ProgressClassifyDone, 120); err != nil {
		t.Fatalf("SaveIssues: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdatePhaseMissingJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE analysis_jobs").
		WithArgs(StatusProcessing, PhaseClassifyingIssues, ProgressClassifyStart, nil, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	err = repo.UpdatePhase(context.Background(), "missing", StatusProcessing, PhaseClassifyingIssues, ProgressClassifyStart, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoFailWritesOnlyFailureFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	failedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE analysis_jobs SET status = 'failed'").
		WithArgs("storage unavailable", 450, failedAt, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Fail(context.Background(), "job-1", "storage unavailable", 450, failedAt); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCompleteMissingJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE analysis_jobs SET status = 'completed'").
		WithArgs(0.74, sqlmock.AnyArg(), 900, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	err = repo.Complete(context.Background(), "missing", 0.74, ConfidenceFactors{}, 900, time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
