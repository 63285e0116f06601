package orders

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharma-academy/backend/internal/models"
	"github.com/pharma-academy/backend/pkg/response"
)

// statusTransitions maps a target status to the statuses it may be reached
// from. Checkout owns draft -> pending/pending_invoice; this surface serves
// payment confirmation callbacks and housekeeping.
var statusTransitions = map[string][]string{
	models.OrderStatusPaid:      {models.OrderStatusPending, models.OrderStatusPendingInvoice},
	models.OrderStatusFailed:    {models.OrderStatusPending},
	models.OrderStatusCancelled: {models.OrderStatusDraft, models.OrderStatusPending, models.OrderStatusPendingInvoice},
	models.OrderStatusAbandoned: {models.OrderStatusDraft},
}

// Handler serves the draft order endpoints.
type Handler struct {
	repo   *Repository
	draft  *DraftService
	logger *zap.Logger
}

// NewHandler creates an orders handler.
func NewHandler(repo *Repository, draft *DraftService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, draft: draft, logger: logger}
}

// ApplyFieldRequest is the body for POST /api/orders.
type ApplyFieldRequest struct {
	SessionID string          `json:"sessionId" binding:"required"`
	Field     string          `json:"field" binding:"required"`
	Value     json.RawMessage `json:"value"`
}

// ApplyField handles POST /api/orders: one field update on the session's
// draft. "event_slug" initializes the draft, everything else requires one.
func (h *Handler) ApplyField(c *gin.Context) {
	var req ApplyFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	orderID, err := h.draft.ApplyField(c.Request.Context(), req.SessionID, req.Field, req.Value)
	switch {
	case err == nil:
		response.OK(c, gin.H{"order_id": orderID})
	case errors.Is(err, ErrMissingSession), errors.Is(err, ErrUnknownField), errors.Is(err, ErrBadValue):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrDraftNotFound):
		response.NotFound(c, err.Error())
	default:
		h.logger.Error("apply draft field failed", zap.Error(err),
			zap.String("session_id", req.SessionID), zap.String("field", req.Field))
		response.Internal(c, "failed to update order")
	}
}

// GetDraft handles GET /api/orders?sessionId=. Returns the current draft or
// null when the session has none.
func (h *Handler) GetDraft(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		response.BadRequest(c, "sessionId is required")
		return
	}
	o, err := h.repo.GetDraftBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("get draft failed", zap.Error(err), zap.String("session_id", sessionID))
		response.Internal(c, "failed to load order")
		return
	}
	if o == nil {
		response.OK(c, nil)
		return
	}
	response.OK(c, o)
}

// UpdateStatusRequest is the body for POST /api/orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles POST /api/orders/:id/status: guarded lifecycle
// transitions driven by payment confirmation.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	from, ok := statusTransitions[req.Status]
	if !ok {
		response.BadRequest(c, "unknown target status")
		return
	}

	err = h.repo.Transition(c.Request.Context(), id, from, req.Status)
	switch {
	case err == nil:
		response.OK(c, gin.H{"order_id": id, "status": req.Status})
	case errors.Is(err, ErrBadTransition):
		response.Conflict(c, "order is not in a state that allows this transition")
	default:
		h.logger.Error("order transition failed", zap.Error(err), zap.String("order_id", id.String()))
		response.Internal(c, "failed to update order status")
	}
}
