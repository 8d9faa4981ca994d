package analysis

import (
	"context"
	"time"
)

// Repo defines persistence for analysis jobs. Phase outputs are written
// through dedicated methods so each phase commits before progress
// advances; writes for one job id are serialized by the store.
type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	GetLatestForCase(ctx context.Context, caseID string) (Job, error)
	ListByCase(ctx context.Context, caseID string, limit, offset int) ([]Job, error)

	UpdatePhase(ctx context.Context, jobID, status, phase string, progress int, startedAt *time.Time) error
	SaveIssues(ctx context.Context, jobID string, issues []LegalIssue, progress, tokensUsed int) error
	SaveBurden(ctx context.Context, jobID string, burden BurdenResult, progress, tokensUsed int) error
	SaveDamages(ctx context.Context, jobID string, damages DamagesCalculation, progress, tokensUsed int) error
	SaveConclusions(ctx context.Context, jobID string, conclusions []ConclusionOfLaw, award AwardRecommendation, progress, tokensUsed int) error
	Complete(ctx context.Context, jobID string, confidence float64, factors ConfidenceFactors, tokensUsed int, completedAt time.Time) error
	Fail(ctx context.Context, jobID, errorMessage string, tokensUsed int, failedAt time.Time) error
}
