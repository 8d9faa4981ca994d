package facts

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dispute-backend/internal/jurisdiction"
	"dispute-backend/internal/shared/server/respond"
)

// Handler exposes the fact-extraction contract over HTTP. The upstream
// extraction phase posts its output here; the analysis pipeline reads it
// through the repo.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches fact routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/cases/:id/facts", h.putFacts)
	rg.GET("/cases/:id/facts", h.getFacts)
}

func (h *Handler) putFacts(c *gin.Context) {
	caseID := c.Param("id")
	if caseID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "case id is required", nil)
		return
	}

	var cf CaseFacts
	if err := c.ShouldBindJSON(&cf); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid case facts payload", nil)
		return
	}
	cf.CaseID = caseID
	if cf.Jurisdiction == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jurisdiction is required", nil)
		return
	}
	if !jurisdiction.Supported(cf.Jurisdiction) {
		// Accepted: unsupported jurisdictions fall back to default rules
		// downstream, but flag it for the caller.
		c.Header("X-Jurisdiction-Defaulted", "true")
	}
	if cf.ExtractedAt.IsZero() {
		cf.ExtractedAt = time.Now().UTC()
	}

	if err := h.Repo.Put(c.Request.Context(), cf); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store case facts", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"caseId": caseID, "ok": true})
}

func (h *Handler) getFacts(c *gin.Context) {
	caseID := c.Param("id")
	if caseID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "case id is required", nil)
		return
	}

	cf, err := h.Repo.GetByCaseID(c.Request.Context(), caseID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "case facts not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch case facts", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, cf)
}
