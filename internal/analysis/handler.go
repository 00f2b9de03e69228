package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"contractreview-backend/internal/agreements"
	"contractreview-backend/internal/assessments"
	"contractreview-backend/internal/shared/server/respond"
)

// Handler exposes the analysis trigger endpoint. Per-clause runs stream
// NDJSON progress events; holistic runs answer with a single JSON body once
// the run finishes.
type Handler struct {
	Orch        *Orchestrator
	Assessments assessments.Repo

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewHandler constructs a Handler.
func NewHandler(orch *Orchestrator, assessmentsRepo assessments.Repo) *Handler {
	return &Handler{
		Orch:        orch,
		Assessments: assessmentsRepo,
		inFlight:    make(map[string]struct{}),
	}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/agreements/:id/analyze", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	agreementID := c.Param("id")
	mode := c.DefaultQuery("mode", ModeHolistic)

	if !h.acquire(agreementID) {
		respond.Error(c, http.StatusConflict, "run_in_flight", ErrRunInFlight.Error(), nil)
		return
	}
	defer h.release(agreementID)

	events, err := h.Orch.Run(c.Request.Context(), agreementID, mode)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownMode):
			respond.Error(c, http.StatusBadRequest, "validation_error", "mode must be holistic or per_clause", nil)
		case errors.Is(err, agreements.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "agreement not found", nil)
		case errors.Is(err, ErrNoActiveRules):
			respond.Error(c, http.StatusBadRequest, "no_active_rules", "no active policy rules to evaluate", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}

	if mode == ModePerClause {
		h.stream(c, events)
		return
	}
	h.respondOnce(c, agreementID, events)
}

// stream writes each event as one NDJSON line, flushing after every write
// so clients see progress as it happens. The HTTP status is committed
// before the run's outcome is known; failures arrive as an error event on
// the stream.
func (h *Handler) stream(c *gin.Context, events <-chan Event) {
	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			return
		}
		c.Writer.Flush()
	}
}

// respondOnce drains the event stream and answers with the terminal result.
func (h *Handler) respondOnce(c *gin.Context, agreementID string, events <-chan Event) {
	var terminal Event
	for ev := range events {
		terminal = ev
	}
	if terminal.Type != EventComplete {
		respond.Error(c, http.StatusBadGateway, "analysis_failed", terminal.Message, nil)
		return
	}

	list, err := h.Assessments.ListByAgreement(c.Request.Context(), agreementID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis finished but results could not be loaded", nil)
		return
	}
	if list == nil {
		list = []assessments.Assessment{}
	}
	respond.OK(c, gin.H{
		"summary":     terminal.Summary,
		"assessments": list,
	})
}

func (h *Handler) acquire(agreementID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, busy := h.inFlight[agreementID]; busy {
		return false
	}
	h.inFlight[agreementID] = struct{}{}
	return true
}

func (h *Handler) release(agreementID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inFlight, agreementID)
}
