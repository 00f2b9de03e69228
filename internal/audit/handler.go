package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contractreview-backend/internal/shared/server/respond"
)

// Handler serves the audit trail read endpoint.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches audit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/agreements/:id/audit", h.listAudit)
}

func (h *Handler) listAudit(c *gin.Context) {
	entries, err := h.Repo.ListByAgreement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load audit trail", nil)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	respond.OK(c, gin.H{"auditTrail": entries})
}
