package events

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pharma-academy/backend/internal/models"
	"github.com/pharma-academy/backend/pkg/response"
)

// Handler serves the event catalog endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/events.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.ListPublished(c.Request.Context())
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetBySlug handles GET /api/events/:slug.
func (h *Handler) GetBySlug(c *gin.Context) {
	e, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.logger.Error("get event failed", zap.Error(err), zap.String("slug", c.Param("slug")))
		response.Internal(c, "failed to load event")
		return
	}
	if e == nil || !e.Published {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// UpsertRequest is the body for PUT /api/events/:slug (CMS sync).
type UpsertRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	DateRanges  []models.DateRange `json:"date_ranges"`
	Published   *bool              `json:"published"`
}

// Upsert handles PUT /api/events/:slug. The CMS pushes the current document
// here whenever an event is published or edited.
func (h *Handler) Upsert(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	published := true
	if req.Published != nil {
		published = *req.Published
	}
	e := &models.Event{
		Slug:        c.Param("slug"),
		Title:       req.Title,
		Description: req.Description,
		DateRanges:  req.DateRanges,
		Published:   published,
	}
	if err := h.repo.Upsert(c.Request.Context(), e); err != nil {
		h.logger.Error("upsert event failed", zap.Error(err), zap.String("slug", e.Slug))
		response.Internal(c, "failed to save event")
		return
	}
	response.OK(c, e)
}
