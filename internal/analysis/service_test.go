package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispute-backend/internal/facts"
)

func seedFacts(t *testing.T, repo *facts.MemoryRepo, cf facts.CaseFacts) {
	t.Helper()
	if cf.ExtractedAt.IsZero() {
		cf.ExtractedAt = time.Now().UTC()
	}
	if err := repo.Put(context.Background(), cf); err != nil {
		t.Fatalf("seed facts: %v", err)
	}
}

func TestStartRequiresFacts(t *testing.T) {
	svc := NewService(NewMemoryRepo(), facts.NewMemoryRepo(), nil)
	if _, err := svc.Start(context.Background(), "case-unknown"); !errors.Is(err, ErrInputUnavailable) {
		t.Fatalf("expected ErrInputUnavailable, got %v", err)
	}
}

func TestStartRejectsConcurrentRun(t *testing.T) {
	factsRepo := facts.NewMemoryRepo()
	seedFacts(t, factsRepo, facts.CaseFacts{CaseID: "case-1", Jurisdiction: "US-CA", DisputeType: "CONTRACT", ClaimedAmount: 7500})
	svc := NewService(NewMemoryRepo(), factsRepo, nil)

	if _, err := svc.Start(context.Background(), "case-1"); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := svc.Start(context.Background(), "case-1"); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
}

func TestStartAllowsNewRunAfterCompletion(t *testing.T) {
	factsRepo := facts.NewMemoryRepo()
	seedFacts(t, factsRepo, facts.CaseFacts{CaseID: "case-1", Jurisdiction: "US-CA", DisputeType: "CONTRACT", ClaimedAmount: 7500})
	svc := NewService(NewMemoryRepo(), factsRepo, nil)

	job, err := svc.Start(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := svc.Start(context.Background(), "case-1"); err != nil {
		t.Fatalf("start after completion: %v", err)
	}
}

// A $7,500 California contract claim with no provider wired runs every
// phase on its heuristic and still completes.
func TestProcessHeuristicPipelineCompletes(t *testing.T) {
	factsRepo := facts.NewMemoryRepo()
	seedFacts(t, factsRepo, facts.CaseFacts{
		CaseID:        "case-1",
		Jurisdiction:  "US-CA",
		DisputeType:   "CONTRACT",
		ClaimedAmount: 7500,
		Description:   "Unpaid invoice for delivered goods",
	})
	jobRepo := NewMemoryRepo()
	publisher := &MemoryPublisher{}
	svc := NewService(jobRepo, factsRepo, nil, WithPublisher(publisher))

	job, err := svc.Start(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if job.Status != StatusPending || job.Phase != PhaseQueued || job.Progress != 0 {
		t.Fatalf("new job %+v", job)
	}

	if err := svc.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	stored, err := svc.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusCompleted || stored.Phase != PhaseCompleted || stored.Progress != 100 {
		t.Fatalf("job not completed: status=%s phase=%s progress=%d", stored.Status, stored.Phase, stored.Progress)
	}
	if stored.TokensUsed != 0 {
		t.Fatalf("heuristic run consumed tokens: %d", stored.TokensUsed)
	}
	if len(stored.Issues) != 1 || stored.Issues[0].Category != CategoryBreachOfContract {
		t.Fatalf("issues %+v", stored.Issues)
	}
	if stored.Burden == nil || len(stored.Burden.Analyses) != 1 {
		t.Fatalf("burden %+v", stored.Burden)
	}
	if stored.Damages == nil {
		t.Fatal("damages missing")
	}
	if stored.Damages.SupportedTotal != 3750 {
		t.Fatalf("supported total = %v, want 3750", stored.Damages.SupportedTotal)
	}
	if len(stored.Conclusions) == 0 || stored.Award == nil {
		t.Fatalf("conclusions=%d award=%v", len(stored.Conclusions), stored.Award)
	}
	if stored.Factors == nil || stored.OverallConfidence <= 0 || stored.OverallConfidence > 1 {
		t.Fatalf("confidence %v factors %v", stored.OverallConfidence, stored.Factors)
	}
	if stored.StartedAt == nil || stored.CompletedAt == nil {
		t.Fatal("timestamps missing")
	}

	// Progress is monotone across the published events and ends at 100.
	events := publisher.Events()
	if len(events) == 0 {
		t.Fatal("no progress events published")
	}
	last := -1
	for _, ev := range events {
		if ev.Progress < last {
			t.Fatalf("progress went backwards: %d after %d (phase %s)", ev.Progress, last, ev.Phase)
		}
		last = ev.Progress
	}
	if events[len(events)-1].Progress != 100 || events[len(events)-1].Phase != PhaseCompleted {
		t.Fatalf("final event %+v", events[len(events)-1])
	}

	// Deterministic: a second heuristic run reaches the same totals and
	// confidence.
	job2, err := svc.Start(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if err := svc.Process(context.Background(), job2.ID); err != nil {
		t.Fatalf("second process: %v", err)
	}
	stored2, _ := svc.Get(context.Background(), job2.ID)
	if stored2.Damages.SupportedTotal != stored.Damages.SupportedTotal ||
		stored2.OverallConfidence != stored.OverallConfidence {
		t.Fatalf("heuristic run not deterministic: %v/%v vs %v/%v",
			stored2.Damages.SupportedTotal, stored2.OverallConfidence,
			stored.Damages.SupportedTotal, stored.OverallConfidence)
	}
}

// failOnDamagesRepo makes the damages write fail, simulating a storage
// outage mid-pipeline.
type failOnDamagesRepo struct {
	*MemoryRepo
}

func (r *failOnDamagesRepo) SaveDamages(ctx context.Context, jobID string, damages DamagesCalculation, progress, tokensUsed int) error {
	_ = ctx
	_ = jobID
	_ = damages
	_ = progress
	_ = tokensUsed
	return errors.New("storage unavailable")
}

func TestProcessPersistenceFailureKeepsPriorPhases(t *testing.T) {
	factsRepo := facts.NewMemoryRepo()
	seedFacts(t, factsRepo, facts.CaseFacts{
		CaseID:        "case-1",
		Jurisdiction:  "US-CA",
		DisputeType:   "CONTRACT",
		ClaimedAmount: 7500,
	})
	jobRepo := &failOnDamagesRepo{MemoryRepo: NewMemoryRepo()}
	svc := NewService(jobRepo, factsRepo, nil)

	job, err := svc.Start(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Process(context.Background(), job.ID); err == nil {
		t.Fatal("expected process to fail")
	}

	stored, err := svc.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusFailed || stored.Phase != PhaseFailed {
		t.Fatalf("status=%s phase=%s", stored.Status, stored.Phase)
	}
	if stored.ErrorMessage == "" {
		t.Fatal("error message missing")
	}
	// Phases persisted before the failure survive.
	if len(stored.Issues) == 0 {
		t.Fatal("classified issues lost")
	}
	if stored.Burden == nil {
		t.Fatal("burden result lost")
	}
	if stored.Damages != nil {
		t.Fatal("damages should not have been persisted")
	}

	// And the partial result is retrievable through the result contract.
	result, err := svc.Result(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.Status != StatusFailed || len(result.Issues) == 0 || result.Burden == nil {
		t.Fatalf("partial result %+v", result)
	}
	if result.ErrorMessage == "" {
		t.Fatal("result must carry the failure message")
	}
}

func TestProcessMissingFactsFailsJob(t *testing.T) {
	factsRepo := facts.NewMemoryRepo()
	seedFacts(t, factsRepo, facts.CaseFacts{CaseID: "case-1", Jurisdiction: "US-CA", DisputeType: "CONTRACT", ClaimedAmount: 100})
	jobRepo := NewMemoryRepo()
	svc := NewService(jobRepo, factsRepo, nil)

	job, err := svc.Start(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Simulate the facts disappearing between Start and Process.
	svc2 := NewService(jobRepo, facts.NewMemoryRepo(), nil)
	if err := svc2.Process(context.Background(), job.ID); !errors.Is(err, ErrInputUnavailable) {
		t.Fatalf("expected ErrInputUnavailable, got %v", err)
	}
	stored, _ := svc2.Get(context.Background(), job.ID)
	if stored.Status != StatusFailed {
		t.Fatalf("status = %s", stored.Status)
	}
}

// cancelOnIssuesRepo cancels the run's context right after the
// classification output is persisted, so the next phase boundary sees
// the cancellation.
type cancelOnIssuesRepo struct {
	*MemoryRepo
	cancel context.CancelFunc
}

func (r *cancelOnIssuesRepo) SaveIssues(ctx context.Context, jobID string, issues []LegalIssue, progress, tokensUsed int) error {
	err := r.MemoryRepo.SaveIssues(ctx, jobID, issues, progress, tokensUsed)
	r.cancel()
	return err
}

func TestProcessCancellationAtPhaseBoundaryFailsJob(t *testing.T) {
	factsRepo := facts.NewMemoryRepo()
	seedFacts(t, factsRepo, facts.CaseFacts{CaseID: "case-1", Jurisdiction: "US-CA", DisputeType: "CONTRACT", ClaimedAmount: 100})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jobRepo := &cancelOnIssuesRepo{MemoryRepo: NewMemoryRepo(), cancel: cancel}
	svc := NewService(jobRepo, factsRepo, nil)

	job, err := svc.Start(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Process(ctx, job.ID); err == nil {
		t.Fatal("expected cancellation error")
	}

	// The failure write goes through despite the canceled context, and
	// the already-persisted classification output survives.
	stored, err := svc.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", stored.Status)
	}
	if len(stored.Issues) == 0 {
		t.Fatal("classified issues lost on cancellation")
	}
}

func TestProcessProviderTokensAccumulate(t *testing.T) {
	// The classify call answers; every later call errors, so the
	// remaining phases fall back while the classify tokens stay counted.
	provider := &fakeProvider{responses: []fakeResponse{
		{text: `{"issues":[{"category":"breach_of_contract","description":"Nonpayment"}]}`, tokens: 120},
		{err: errors.New("provider down")},
	}}
	factsRepo := facts.NewMemoryRepo()
	seedFacts(t, factsRepo, facts.CaseFacts{CaseID: "case-1", Jurisdiction: "US-CA", DisputeType: "CONTRACT", ClaimedAmount: 1000})
	jobRepo := NewMemoryRepo()
	svc := NewService(jobRepo, factsRepo, provider)

	job, err := svc.Start(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	stored, _ := svc.Get(context.Background(), job.ID)
	if stored.Status != StatusCompleted {
		t.Fatalf("status = %s", stored.Status)
	}
	if stored.TokensUsed != 120 {
		t.Fatalf("tokens = %d, want 120", stored.TokensUsed)
	}
}

func TestResultEstimatesCost(t *testing.T) {
	factsRepo := facts.NewMemoryRepo()
	seedFacts(t, factsRepo, facts.CaseFacts{CaseID: "case-1", Jurisdiction: "US-CA", DisputeType: "CONTRACT", ClaimedAmount: 100})
	jobRepo := NewMemoryRepo()
	svc := NewService(jobRepo, factsRepo, nil, WithModels("gpt-4o", ""))

	job, err := svc.Start(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// Force a token count onto the stored job.
	if err := jobRepo.SaveIssues(context.Background(), job.ID, nil, ProgressClassifyDone, 2000); err != nil {
		t.Fatalf("save issues: %v", err)
	}

	result, err := svc.Result(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	// 2000 tokens at $0.0075 per 1K.
	if result.EstimatedCostUSD != 0.015 {
		t.Fatalf("cost = %v, want 0.015", result.EstimatedCostUSD)
	}
}

func TestIsContractClaim(t *testing.T) {
	tests := []struct {
		disputeType string
		issues      []LegalIssue
		want        bool
	}{
		{"CONTRACT", nil, true},
		{"goods", nil, true},
		{"PROPERTY", nil, false},
		{"PROPERTY", []LegalIssue{{Category: CategoryPaymentDispute}}, true},
		{"PROPERTY", []LegalIssue{{Category: CategoryNegligence}}, false},
	}
	for _, tt := range tests {
		got := isContractClaim(facts.CaseFacts{DisputeType: tt.disputeType}, tt.issues)
		if got != tt.want {
			t.Errorf("isContractClaim(%q, %v) = %v, want %v", tt.disputeType, tt.issues, got, tt.want)
		}
	}
}

func TestEstimateCostUSD(t *testing.T) {
	if got := estimateCostUSD("gpt-4o-mini", 1000); got != 0.000375 {
		t.Fatalf("mini cost = %v", got)
	}
	if got := estimateCostUSD("unknown-model", 1000); got != 0.005 {
		t.Fatalf("default cost = %v", got)
	}
	if got := estimateCostUSD("gpt-4o", 0); got != 0 {
		t.Fatalf("zero tokens cost = %v", got)
	}
}
