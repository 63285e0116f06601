package pricing

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pharma-academy/backend/pkg/response"
)

// Handler serves the pricing query endpoint.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a pricing handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// GetQuote handles GET /api/events/:slug/pricing. Validation failures are
// 400, never a zero-priced success.
func (h *Handler) GetQuote(c *gin.Context) {
	slug := c.Param("slug")
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	currency := c.DefaultQuery("currency", "EUR")

	quantity := 1
	if q := c.Query("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			response.BadRequest(c, "invalid quantity")
			return
		}
		quantity = n
	}

	quote, err := h.service.Quote(c.Request.Context(), slug, startDate, endDate, quantity, currency)
	if err != nil {
		if errors.Is(err, ErrMissingDates) || errors.Is(err, ErrInvalidQuantity) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("quote failed", zap.Error(err), zap.String("slug", slug))
		response.Internal(c, "failed to compute price")
		return
	}
	response.OK(c, quote)
}
