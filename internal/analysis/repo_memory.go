package analysis

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores jobs in memory and is safe for concurrent use. Used
// in local mode and tests.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Job
	byCase map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Job),
		byCase: make(map[string][]string),
	}
}

// Create stores the job.
func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[job.ID] = job
	r.byCase[job.CaseID] = append(r.byCase[job.CaseID], job.ID)
	return nil
}

// GetByID returns a job by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.byID[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// GetLatestForCase returns the most recently created job for a case.
func (r *MemoryRepo) GetLatestForCase(ctx context.Context, caseID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byCase[caseID]
	if len(ids) == 0 {
		return Job{}, ErrNotFound
	}
	return r.byID[ids[len(ids)-1]], nil
}

// ListByCase returns jobs for a case, newest first, with limit/offset.
func (r *MemoryRepo) ListByCase(ctx context.Context, caseID string, limit, offset int) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	ids := r.byCase[caseID]
	jobs := make([]Job, 0, len(ids))
	for _, id := range ids {
		jobs = append(jobs, r.byID[id])
	}
	r.mu.RUnlock()

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if offset >= len(jobs) {
		return []Job{}, nil
	}
	end := offset + limit
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[offset:end], nil
}

// UpdatePhase moves the job to a new status/phase/progress.
func (r *MemoryRepo) UpdatePhase(ctx context.Context, jobID, status, phase string, progress int, startedAt *time.Time) error {
	return r.update(ctx, jobID, func(job *Job) {
		job.Status = status
		job.Phase = phase
		job.Progress = progress
		if startedAt != nil {
			job.StartedAt = startedAt
		} else if status == StatusProcessing && job.StartedAt == nil {
			now := time.Now().UTC()
			job.StartedAt = &now
		}
	})
}

// SaveIssues persists the classification output.
func (r *MemoryRepo) SaveIssues(ctx context.Context, jobID string, issues []LegalIssue, progress, tokensUsed int) error {
	return r.update(ctx, jobID, func(job *Job) {
		job.Issues = issues
		job.Progress = progress
		job.TokensUsed = tokensUsed
	})
}

// SaveBurden persists the burden-of-proof output.
func (r *MemoryRepo) SaveBurden(ctx context.Context, jobID string, burden BurdenResult, progress, tokensUsed int) error {
	return r.update(ctx, jobID, func(job *Job) {
		job.Burden = &burden
		job.Progress = progress
		job.TokensUsed = tokensUsed
	})
}

// SaveDamages persists the damages output.
func (r *MemoryRepo) SaveDamages(ctx context.Context, jobID string, damages DamagesCalculation, progress, tokensUsed int) error {
	return r.update(ctx, jobID, func(job *Job) {
		job.Damages = &damages
		job.Progress = progress
		job.TokensUsed = tokensUsed
	})
}

// SaveConclusions persists the conclusions and award recommendation.
func (r *MemoryRepo) SaveConclusions(ctx context.Context, jobID string, conclusions []ConclusionOfLaw, award AwardRecommendation, progress, tokensUsed int) error {
	return r.update(ctx, jobID, func(job *Job) {
		job.Conclusions = conclusions
		job.Award = &award
		job.Progress = progress
		job.TokensUsed = tokensUsed
	})
}

// Complete marks the job completed with its confidence score.
func (r *MemoryRepo) Complete(ctx context.Context, jobID string, confidence float64, factors ConfidenceFactors, tokensUsed int, completedAt time.Time) error {
	return r.update(ctx, jobID, func(job *Job) {
		job.Status = StatusCompleted
		job.Phase = PhaseCompleted
		job.Progress = ProgressCompleted
		job.OverallConfidence = confidence
		job.Factors = &factors
		job.TokensUsed = tokensUsed
		job.CompletedAt = &completedAt
	})
}

// Fail marks the job failed; previously saved phase outputs are kept.
func (r *MemoryRepo) Fail(ctx context.Context, jobID, errorMessage string, tokensUsed int, failedAt time.Time) error {
	return r.update(ctx, jobID, func(job *Job) {
		job.Status = StatusFailed
		job.Phase = PhaseFailed
		job.ErrorMessage = errorMessage
		job.TokensUsed = tokensUsed
		job.FailedAt = &failedAt
	})
}

func (r *MemoryRepo) update(ctx context.Context, jobID string, mutate func(*Job)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[jobID]
	if !ok {
		return ErrNotFound
	}
	mutate(&job)
	job.UpdatedAt = time.Now().UTC()
	r.byID[jobID] = job
	return nil
}
