package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"dispute-backend/internal/facts"
	"dispute-backend/internal/jurisdiction"
	"dispute-backend/internal/llm"
	"dispute-backend/internal/shared/metrics"
	"dispute-backend/internal/shared/telemetry"
)

// Service owns the analysis pipeline: it creates jobs, runs the five
// phases in order, and persists each phase's output before the next
// phase starts. A job is processed by exactly one worker at a time.
type Service struct {
	repo      Repo
	facts     facts.Repo
	provider  llm.Provider
	publisher ProgressPublisher

	model        string
	scoringModel string

	fallbackSupportRate     float64
	fallbackConfidence      float64
	contradictionPenaltyPer float64
	maxContradictionPenalty float64

	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithModels sets the generation and scoring models.
func WithModels(model, scoringModel string) Option {
	return func(s *Service) {
		s.model = model
		s.scoringModel = scoringModel
	}
}

// WithFallbackPolicy sets the heuristic-path knobs.
func WithFallbackPolicy(supportRate, confidence, penaltyPer, maxPenalty float64) Option {
	return func(s *Service) {
		s.fallbackSupportRate = supportRate
		s.fallbackConfidence = confidence
		s.contradictionPenaltyPer = penaltyPer
		s.maxContradictionPenalty = maxPenalty
	}
}

// WithPublisher sets the progress event publisher.
func WithPublisher(publisher ProgressPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithClock overrides the time source; tests use this.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service. The provider may be nil: every
// provider-assisted phase then runs its heuristic fallback.
func NewService(repo Repo, factsRepo facts.Repo, provider llm.Provider, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		facts:     factsRepo,
		provider:  provider,
		publisher: LogPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates preconditions and creates a pending job for the case.
// It does not run the pipeline; the caller hands the job id to a worker
// or processes it inline.
func (s *Service) Start(ctx context.Context, caseID string) (Job, error) {
	cf, err := s.facts.GetByCaseID(ctx, caseID)
	if err != nil {
		if errors.Is(err, facts.ErrNotFound) {
			return Job{}, ErrInputUnavailable
		}
		return Job{}, fmt.Errorf("load case facts: %w", err)
	}

	if latest, err := s.repo.GetLatestForCase(ctx, caseID); err == nil {
		if latest.Status == StatusPending || latest.Status == StatusProcessing {
			return Job{}, ErrRunInProgress
		}
	} else if !errors.Is(err, ErrNotFound) {
		return Job{}, fmt.Errorf("check latest job: %w", err)
	}

	now := s.now().UTC()
	job := Job{
		ID:           uuid.NewString(),
		CaseID:       caseID,
		Status:       StatusPending,
		Phase:        PhaseQueued,
		Progress:     ProgressQueued,
		Jurisdiction: cf.Jurisdiction,
		Model:        s.model,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return Job{}, fmt.Errorf("create job: %w", err)
	}

	telemetry.Info("analysis.job_created", map[string]any{
		"case_id":      caseID,
		"job_id":       job.ID,
		"jurisdiction": cf.Jurisdiction,
	})
	return job, nil
}

// Process runs the full pipeline for a previously created job. Any
// failure marks the job failed while preserving every phase output that
// was already persisted, plus the tokens consumed so far.
func (s *Service) Process(ctx context.Context, jobID string) error {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	cf, err := s.facts.GetByCaseID(ctx, job.CaseID)
	if err != nil {
		if errors.Is(err, facts.ErrNotFound) {
			s.fail(ctx, job, ErrInputUnavailable.Error(), 0)
			return ErrInputUnavailable
		}
		s.fail(ctx, job, fmt.Sprintf("load case facts: %v", err), 0)
		return err
	}

	metrics.IncPipelineStarted()
	startedAt := s.now().UTC()
	tokensUsed := 0
	provider := newRetryingProvider(s.provider, job.ID)
	legalContext := legalContextFor(cf)

	// Phase 1: issue classification.
	if err := s.advance(ctx, job, StatusProcessing, PhaseClassifyingIssues, ProgressClassifyStart, &startedAt); err != nil {
		s.fail(ctx, job, err.Error(), tokensUsed)
		return err
	}
	s.publish(ctx, job, PhaseClassifyingIssues, ProgressClassifyProvider, "classifying legal issues")

	classifier := &Classifier{Provider: provider, Model: s.model}
	issues, tokens, fellBack := classifier.Classify(ctx, cf, legalContext)
	tokensUsed += tokens
	s.noteFallback(job, PhaseClassifyingIssues, fellBack)
	if err := s.repo.SaveIssues(ctx, job.ID, issues, ProgressClassifyDone, tokensUsed); err != nil {
		s.fail(ctx, job, fmt.Sprintf("persist issues: %v", err), tokensUsed)
		return err
	}
	s.publish(ctx, job, PhaseClassifyingIssues, ProgressClassifyDone, fmt.Sprintf("%d issue(s) identified", len(issues)))

	// Phase 2: burden of proof.
	if err := s.advance(ctx, job, StatusProcessing, PhaseAnalyzingBurden, ProgressBurdenStart, nil); err != nil {
		s.fail(ctx, job, err.Error(), tokensUsed)
		return err
	}

	analyzer := &BurdenAnalyzer{
		Provider:                provider,
		Model:                   s.model,
		ContradictionPenaltyPer: s.contradictionPenaltyPer,
		MaxContradictionPenalty: s.maxContradictionPenalty,
	}
	burden, findings, tokens, fellBack := analyzer.Analyze(ctx, cf, issues, legalContext)
	tokensUsed += tokens
	s.noteFallback(job, PhaseAnalyzingBurden, fellBack)

	issues = MergeElementFindings(issues, findings)
	if err := s.repo.SaveIssues(ctx, job.ID, issues, ProgressBurdenDone, tokensUsed); err != nil {
		s.fail(ctx, job, fmt.Sprintf("persist merged issues: %v", err), tokensUsed)
		return err
	}
	if err := s.repo.SaveBurden(ctx, job.ID, burden, ProgressBurdenDone, tokensUsed); err != nil {
		s.fail(ctx, job, fmt.Sprintf("persist burden result: %v", err), tokensUsed)
		return err
	}
	s.publish(ctx, job, PhaseAnalyzingBurden, ProgressBurdenDone, burdenMessage(burden))

	// Phase 3: damages.
	if err := s.advance(ctx, job, StatusProcessing, PhaseCalculatingDamages, ProgressDamagesStart, nil); err != nil {
		s.fail(ctx, job, err.Error(), tokensUsed)
		return err
	}

	calculator := &DamagesCalculator{
		Provider:            provider,
		Model:               s.model,
		FallbackSupportRate: s.fallbackSupportRate,
		FallbackConfidence:  s.fallbackConfidence,
	}
	damages, tokens, fellBack := calculator.Calculate(ctx, cf, isContractClaim(cf, issues), inferBreachDate(cf))
	tokensUsed += tokens
	s.noteFallback(job, PhaseCalculatingDamages, fellBack)

	applyJurisdictionLimits(&damages, cf.Jurisdiction, cf.DisputeType, issues)
	if err := s.repo.SaveDamages(ctx, job.ID, damages, ProgressDamagesDone, tokensUsed); err != nil {
		s.fail(ctx, job, fmt.Sprintf("persist damages: %v", err), tokensUsed)
		return err
	}
	s.publish(ctx, job, PhaseCalculatingDamages, ProgressDamagesDone,
		fmt.Sprintf("recommended total $%.2f of $%.2f claimed", damages.RecommendedTotal, damages.ClaimedTotal))

	// Phase 4: conclusions of law.
	if err := s.advance(ctx, job, StatusProcessing, PhaseGeneratingConclusions, ProgressConclusionsStart, nil); err != nil {
		s.fail(ctx, job, err.Error(), tokensUsed)
		return err
	}

	conclusions := synthesizeConclusions(issues, &burden, &damages)
	award := recommendAward(issues, &burden, &damages)
	if err := s.repo.SaveConclusions(ctx, job.ID, conclusions, award, ProgressConclusionsDone, tokensUsed); err != nil {
		s.fail(ctx, job, fmt.Sprintf("persist conclusions: %v", err), tokensUsed)
		return err
	}
	s.publish(ctx, job, PhaseGeneratingConclusions, ProgressConclusionsDone,
		fmt.Sprintf("prevailing party: %s", award.PrevailingParty))

	// Phase 5: confidence scoring.
	if err := s.advance(ctx, job, StatusProcessing, PhaseScoringConfidence, ProgressConfidenceStart, nil); err != nil {
		s.fail(ctx, job, err.Error(), tokensUsed)
		return err
	}

	scorer := &ConfidenceScorer{Provider: provider, Model: s.scoringModelOrDefault()}
	factors, tokens, fellBack := scorer.Score(ctx, ScoreInput{
		Jurisdiction:     cf.Jurisdiction,
		Issues:           issues,
		Burden:           &burden,
		Damages:          &damages,
		Contradictions:   len(cf.Contradictions),
		Citations:        AggregateCitations(issues, &damages),
		EvidenceCount:    len(cf.Evidence),
		CredibilityDelta: cf.CredibilityDelta(),
	})
	tokensUsed += tokens
	s.noteFallback(job, PhaseScoringConfidence, fellBack)

	overall := CombineFactors(factors)
	completedAt := s.now().UTC()
	if err := s.repo.Complete(ctx, job.ID, overall, factors, tokensUsed, completedAt); err != nil {
		s.fail(ctx, job, fmt.Sprintf("persist completion: %v", err), tokensUsed)
		return err
	}

	elapsed := completedAt.Sub(startedAt)
	metrics.IncPipelineCompleted()
	metrics.ObservePipelineDurationMs(float64(elapsed.Milliseconds()))
	s.publish(ctx, job, PhaseCompleted, ProgressCompleted, "analysis complete")
	telemetry.Info("analysis.completed", map[string]any{
		"case_id":     job.CaseID,
		"job_id":      job.ID,
		"confidence":  overall,
		"tokens_used": tokensUsed,
		"duration_ms": elapsed.Milliseconds(),
	})
	return nil
}

// Get returns a job by id.
func (s *Service) Get(ctx context.Context, jobID string) (Job, error) {
	return s.repo.GetByID(ctx, jobID)
}

// Latest returns the most recent job for a case.
func (s *Service) Latest(ctx context.Context, caseID string) (Job, error) {
	return s.repo.GetLatestForCase(ctx, caseID)
}

// List returns jobs for a case, newest first.
func (s *Service) List(ctx context.Context, caseID string, limit, offset int) ([]Job, error) {
	return s.repo.ListByCase(ctx, caseID, limit, offset)
}

// Result assembles the outbound result contract from a stored job.
// Valid for any status: a failed job carries whatever phases completed.
func (s *Service) Result(ctx context.Context, jobID string) (LegalAnalysisResult, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return LegalAnalysisResult{}, err
	}

	result := LegalAnalysisResult{
		CaseID:            job.CaseID,
		JobID:             job.ID,
		Status:            job.Status,
		Issues:            job.Issues,
		Burden:            job.Burden,
		Damages:           job.Damages,
		Conclusions:       job.Conclusions,
		OverallConfidence: job.OverallConfidence,
		Citations:         AggregateCitations(job.Issues, job.Damages),
		Jurisdiction:      job.Jurisdiction,
		Model:             job.Model,
		TokensUsed:        job.TokensUsed,
		EstimatedCostUSD:  estimateCostUSD(job.Model, job.TokensUsed),
		ErrorMessage:      job.ErrorMessage,
	}
	if job.Factors != nil {
		result.Factors = *job.Factors
		result.ConfidenceLevel = ConfidenceLevel(job.OverallConfidence)
	}
	if job.Award != nil {
		result.Award = *job.Award
	}
	if job.StartedAt != nil {
		end := job.CompletedAt
		if end == nil {
			end = job.FailedAt
		}
		if end != nil {
			result.ProcessingTimeMs = end.Sub(*job.StartedAt).Milliseconds()
		}
	}
	return result, nil
}

// advance moves the job to a new phase, checking cancellation at the
// boundary so a shutdown never interrupts a phase mid-write.
func (s *Service) advance(ctx context.Context, job Job, status, phase string, progress int, startedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("canceled before %s: %w", phase, err)
	}
	if err := s.repo.UpdatePhase(ctx, job.ID, status, phase, progress, startedAt); err != nil {
		return fmt.Errorf("enter phase %s: %w", phase, err)
	}
	s.publish(ctx, job, phase, progress, "")
	telemetry.Info("analysis.status_transition", map[string]any{
		"case_id":  job.CaseID,
		"job_id":   job.ID,
		"status":   status,
		"phase":    phase,
		"progress": progress,
	})
	return nil
}

// fail marks the job failed, preserving already-persisted phase outputs
// and the token count. Best effort: a failing Fail write is only logged.
func (s *Service) fail(ctx context.Context, job Job, message string, tokensUsed int) {
	metrics.IncPipelineFailed()
	failedAt := s.now().UTC()
	if err := s.repo.Fail(context.WithoutCancel(ctx), job.ID, message, tokensUsed, failedAt); err != nil {
		telemetry.Error("analysis.fail_write_failed", map[string]any{
			"job_id": job.ID,
			"error":  err.Error(),
		})
	}
	s.publish(ctx, job, PhaseFailed, job.Progress, message)
	telemetry.Error("analysis.failed", map[string]any{
		"case_id":     job.CaseID,
		"job_id":      job.ID,
		"error":       message,
		"tokens_used": tokensUsed,
	})
}

func (s *Service) publish(ctx context.Context, job Job, phase string, progress int, message string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, ProgressEvent{
		CaseID:   job.CaseID,
		JobID:    job.ID,
		Phase:    phase,
		Progress: progress,
		Message:  message,
	})
}

func (s *Service) noteFallback(job Job, phase string, fellBack bool) {
	if !fellBack {
		return
	}
	metrics.IncProviderFallback()
	telemetry.Warn("analysis.provider_fallback", map[string]any{
		"case_id": job.CaseID,
		"job_id":  job.ID,
		"phase":   phase,
	})
}

func (s *Service) scoringModelOrDefault() string {
	if s.scoringModel != "" {
		return s.scoringModel
	}
	return s.model
}

// isContractClaim reports whether the dispute sounds in contract, which
// gates prejudgment interest accrual.
func isContractClaim(cf facts.CaseFacts, issues []LegalIssue) bool {
	switch strings.ToUpper(strings.TrimSpace(cf.DisputeType)) {
	case "CONTRACT", "SERVICE", "SERVICES", "GOODS":
		return true
	}
	for _, issue := range issues {
		if issue.Category == CategoryBreachOfContract || issue.Category == CategoryPaymentDispute {
			return true
		}
	}
	return false
}

// legalContextFor summarizes the jurisdiction's rules for the prompts.
// Unsupported jurisdictions get a generic note rather than an error.
func legalContextFor(cf facts.CaseFacts) string {
	rules, err := jurisdiction.GetRules(cf.Jurisdiction)
	if err != nil {
		return fmt.Sprintf("Jurisdiction %s has no codified rule set; apply generally accepted principles of contract and consumer law.", cf.Jurisdiction)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Jurisdiction: %s (%s).\n", rules.Name, rules.Code)
	fmt.Fprintf(&b, "Default burden of proof: %s.\n", jurisdiction.GetBurdenStandard(cf.Jurisdiction, ""))
	if statutes := jurisdiction.GetApplicableStatutes(cf.Jurisdiction, cf.DisputeType, nil); len(statutes) > 0 {
		fmt.Fprintf(&b, "Potentially applicable statutes: %s.\n", strings.Join(statutes, "; "))
	}
	if rules.PunitiveMultiplier > 0 {
		fmt.Fprintf(&b, "Punitive damages are capped at %.0fx compensatory damages.\n", rules.PunitiveMultiplier)
	}
	if rules.InterestStatute != "" {
		fmt.Fprintf(&b, "Prejudgment interest accrues under %s at %.1f%% (contract claims).\n", rules.InterestStatute, rules.ContractInterestRate*100)
	}
	return b.String()
}

func burdenMessage(burden BurdenResult) string {
	if burden.OverallMet {
		return "burden of proof met on the primary issues"
	}
	return "burden of proof not met on the primary issues"
}

// Per-1K-token blended prices. Estimates only, for the cost field in
// results; billing truth lives with the provider.
var modelPricesPer1K = map[string]float64{
	"gpt-4o":      0.0075,
	"gpt-4o-mini": 0.000375,
	"gpt-4.1":     0.005,
}

const defaultPricePer1K = 0.005

func estimateCostUSD(model string, tokens int) float64 {
	if tokens <= 0 {
		return 0
	}
	price, ok := modelPricesPer1K[strings.ToLower(strings.TrimSpace(model))]
	if !ok {
		price = defaultPricePer1K
	}
	cost := float64(tokens) / 1000 * price
	return math.Round(cost*1e6) / 1e6
}
