package agreements

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"contractreview-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the agreements service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches agreement CRUD routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/agreements", h.listAgreements)
	rg.POST("/agreements", h.createAgreement)
	rg.POST("/agreements/upload", h.uploadAgreement)
	rg.GET("/agreements/:id", h.getAgreement)
	rg.PUT("/agreements/:id", h.updateAgreement)
	rg.DELETE("/agreements/:id", h.deleteAgreement)
}

type agreementInput struct {
	Title    string `json:"title"`
	FullText string `json:"fullText"`
}

func (h *Handler) createAgreement(c *gin.Context) {
	var input agreementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid agreement payload", nil)
		return
	}
	agreement, err := h.Svc.Create(c.Request.Context(), input.Title, input.FullText)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusCreated, agreement)
}

func (h *Handler) uploadAgreement(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	src, err := file.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read file", nil)
		return
	}
	defer src.Close()

	agreement, err := h.Svc.CreateFromUpload(c.Request.Context(), c.PostForm("title"), file.Filename, src)
	if err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "ingest_error", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusCreated, agreement)
}

func (h *Handler) getAgreement(c *gin.Context) {
	agreement, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "agreement not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch agreement", nil)
		}
		return
	}
	respond.OK(c, agreement)
}

func (h *Handler) listAgreements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list agreements", nil)
		return
	}
	respond.OK(c, gin.H{"agreements": list})
}

func (h *Handler) updateAgreement(c *gin.Context) {
	var input agreementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid agreement payload", nil)
		return
	}
	agreement, err := h.Svc.Update(c.Request.Context(), c.Param("id"), input.Title, input.FullText)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "agreement not found", nil)
		default:
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		}
		return
	}
	respond.OK(c, agreement)
}

func (h *Handler) deleteAgreement(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "agreement not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete agreement", nil)
		}
		return
	}
	respond.JSON(c, http.StatusNoContent, nil)
}
