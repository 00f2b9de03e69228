package rules

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contractreview-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the rules service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches rule routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rules", h.listRules)
	rg.POST("/rules", h.createRule)
	rg.PUT("/rules/:id", h.updateRule)
}

func (h *Handler) listRules(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list rules", nil)
		return
	}
	respond.OK(c, gin.H{"rules": list})
}

func (h *Handler) createRule(c *gin.Context) {
	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid rule payload", nil)
		return
	}
	rule, err := h.Svc.Create(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicate):
			respond.Error(c, http.StatusConflict, "duplicate", "rule id already exists", nil)
		default:
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, rule)
}

func (h *Handler) updateRule(c *gin.Context) {
	id := c.Param("id")
	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid rule payload", nil)
		return
	}
	rule, err := h.Svc.Update(c.Request.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "rule not found", nil)
		default:
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		}
		return
	}
	respond.OK(c, rule)
}
