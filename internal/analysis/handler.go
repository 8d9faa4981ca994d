package analysis

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dispute-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc *Service

	// Enqueue hands a created job to the worker tier. When nil the
	// handler processes the job inline in a goroutine (local mode).
	Enqueue func(c *gin.Context, job Job) error

	progressLimiter *pollLimiter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, enqueue func(c *gin.Context, job Job) error) *Handler {
	return &Handler{
		Svc:             svc,
		Enqueue:         enqueue,
		progressLimiter: newPollLimiter(0, nil),
	}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cases/:id/analyze", h.startAnalysis)
	rg.GET("/cases/:id/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/analyses/:id/progress", h.getProgress)
}

func (h *Handler) startAnalysis(c *gin.Context) {
	caseID := c.Param("id")
	if caseID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "case id is required", nil)
		return
	}

	job, err := h.Svc.Start(c.Request.Context(), caseID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInputUnavailable):
			respond.Error(c, http.StatusConflict, "facts_unavailable", "fact extraction has not completed for this case", nil)
		case errors.Is(err, ErrRunInProgress):
			respond.Error(c, http.StatusConflict, "analysis_in_progress", "an analysis is already running for this case", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}

	if h.Enqueue != nil {
		if err := h.Enqueue(c, job); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to queue analysis", nil)
			return
		}
	} else {
		// Detached from the request lifecycle on purpose.
		go func() {
			_ = h.Svc.Process(context.Background(), job.ID)
		}()
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"jobId":  job.ID,
		"caseId": job.CaseID,
		"status": job.Status,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}

	result, err := h.Svc.Result(c.Request.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, result)
}

func (h *Handler) getProgress(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}

	if !h.progressLimiter.Allow(jobID) {
		c.Header("Retry-After", strconv.Itoa(h.progressLimiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "poll_too_fast", "progress polled too frequently; slow down", nil)
		return
	}

	job, err := h.Svc.Get(c.Request.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch progress", nil)
		}
		return
	}

	resp := gin.H{
		"jobId":    job.ID,
		"caseId":   job.CaseID,
		"status":   job.Status,
		"phase":    job.Phase,
		"progress": job.Progress,
	}
	if job.ErrorMessage != "" {
		resp["errorMessage"] = job.ErrorMessage
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	caseID := c.Param("id")
	if caseID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "case id is required", nil)
		return
	}

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	jobs, err := h.Svc.List(c.Request.Context(), caseID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	items := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		item := gin.H{
			"jobId":     job.ID,
			"status":    job.Status,
			"phase":     job.Phase,
			"progress":  job.Progress,
			"createdAt": job.CreatedAt,
		}
		if job.Status == StatusCompleted {
			item["overallConfidence"] = job.OverallConfidence
		}
		items = append(items, item)
	}
	respond.JSON(c, http.StatusOK, gin.H{"analyses": items})
}
