package notify

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pharma-academy/backend/pkg/response"
)

// Handler serves the agenda-request form endpoint.
type Handler struct {
	notifier *Notifier
	logger   *zap.Logger
}

// NewHandler creates a notify handler.
func NewHandler(notifier *Notifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{notifier: notifier, logger: logger}
}

// AgendaRequestBody is the body for POST /api/agenda-request.
type AgendaRequestBody struct {
	EventSlug string `json:"eventSlug" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

// AgendaRequest handles POST /api/agenda-request. Delivery is best effort:
// valid input always gets a success response, whatever the queue does.
func (h *Handler) AgendaRequest(c *gin.Context) {
	var req AgendaRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.notifier.AgendaRequested(c.Request.Context(), &AgendaRequest{
		EventSlug: req.EventSlug,
		Name:      req.Name,
		Email:     req.Email,
		Company:   req.Company,
		Phone:     req.Phone,
	})
	response.OK(c, gin.H{"received": true})
}
