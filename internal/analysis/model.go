package analysis

import "time"

// Job statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Pipeline phases, in execution order. Each phase's output is persisted
// before the next phase starts, so a restart can resume from the last
// completed phase.
const (
	PhaseQueued                = "queued"
	PhaseClassifyingIssues     = "classifying_issues"
	PhaseAnalyzingBurden       = "analyzing_burden"
	PhaseCalculatingDamages    = "calculating_damages"
	PhaseGeneratingConclusions = "generating_conclusions"
	PhaseScoringConfidence     = "scoring_confidence"
	PhaseCompleted             = "completed"
	PhaseFailed                = "failed"
)

// Fixed progress checkpoints per phase. Progress is monotone within a run.
const (
	ProgressQueued              = 0
	ProgressClassifyStart       = 10
	ProgressClassifyProvider    = 15
	ProgressClassifyDone        = 20
	ProgressBurdenStart         = 30
	ProgressBurdenDone          = 40
	ProgressDamagesStart        = 50
	ProgressDamagesDone         = 60
	ProgressConclusionsStart    = 70
	ProgressConclusionsDone     = 80
	ProgressConfidenceStart     = 90
	ProgressCompleted           = 100
)

// Job is one pipeline run for a case, exclusively owned by the
// orchestrator. Phase outputs are written incrementally so a crash
// mid-pipeline leaves the last completed phase durably available.
type Job struct {
	ID           string `json:"id"`
	CaseID       string `json:"caseId"`
	Status       string `json:"status"`
	Phase        string `json:"phase"`
	Progress     int    `json:"progress"`
	Jurisdiction string `json:"jurisdiction"`
	Model        string `json:"model,omitempty"`

	Issues      []LegalIssue        `json:"issues,omitempty"`
	Burden      *BurdenResult       `json:"burden,omitempty"`
	Damages     *DamagesCalculation `json:"damages,omitempty"`
	Conclusions []ConclusionOfLaw   `json:"conclusions,omitempty"`
	Award       *AwardRecommendation `json:"award,omitempty"`

	OverallConfidence float64            `json:"overallConfidence"`
	Factors           *ConfidenceFactors `json:"confidenceFactors,omitempty"`
	TokensUsed        int                `json:"tokensUsed"`
	ErrorMessage      string             `json:"errorMessage,omitempty"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	FailedAt    *time.Time `json:"failedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
