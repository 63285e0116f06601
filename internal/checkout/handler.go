package checkout

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pharma-academy/backend/pkg/response"
)

// Handler serves the checkout endpoint.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a checkout handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Checkout handles POST /api/checkout. Payment and invoicing failures come
// back as a generic 500 with the detail logged server-side; the frontend
// keeps the visitor on the form with their data intact.
func (h *Handler) Checkout(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), &req)
	switch {
	case err == nil:
		response.OK(c, result)
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrBadMethod):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrDraftNotFound):
		response.NotFound(c, err.Error())
	default:
		h.logger.Error("checkout failed", zap.Error(err), zap.String("session_id", req.SessionID))
		response.Internal(c, "checkout failed")
	}
}
