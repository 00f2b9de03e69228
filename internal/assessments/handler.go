package assessments

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contractreview-backend/internal/shared/server/respond"
)

// Handler serves the assessment read endpoint.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches assessment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/agreements/:id/assessments", h.listAssessments)
}

func (h *Handler) listAssessments(c *gin.Context) {
	list, err := h.Repo.ListByAgreement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list assessments", nil)
		return
	}
	if list == nil {
		list = []Assessment{}
	}
	respond.OK(c, gin.H{"assessments": list})
}
