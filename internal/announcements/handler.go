// Package announcements serves college notices to the mobile client.
package announcements

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/models"
	"github.com/gtn-college/attendance-backend/pkg/response"
)

const (
	latestLimit   = 5
	defaultExpiry = 30 * 24 * time.Hour
)

// Store reads and writes announcements.
type Store interface {
	ListActive(ctx context.Context, now time.Time, limit int) ([]*models.Announcement, error)
	Create(ctx context.Context, a *models.Announcement) error
}

// CreateRequest is the body for POST /announcements. Type, priority and expiry are optional.
type CreateRequest struct {
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	Priority  string     `json:"priority"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// Handler handles announcement endpoints.
type Handler struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// NewHandler creates an announcements handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, now: time.Now, logger: logger}
}

// List handles GET /announcements.
func (h *Handler) List(c *gin.Context) {
	h.list(c, 0)
}

// Latest handles GET /announcements/latest.
func (h *Handler) Latest(c *gin.Context) {
	h.list(c, latestLimit)
}

func (h *Handler) list(c *gin.Context, limit int) {
	list, err := h.store.ListActive(c.Request.Context(), h.now(), limit)
	if err != nil {
		h.logger.Error("list announcements failed", zap.Int("limit", limit), zap.Error(err))
		response.Internal(c, "Failed to fetch announcements")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "announcements": list})
}

// Create handles POST /announcements.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" || req.Message == "" {
		response.BadRequest(c, "Title and message are required")
		return
	}
	if req.Type == "" {
		req.Type = models.AnnouncementGeneral
	}
	if !models.ValidAnnouncementType(req.Type) {
		response.BadRequest(c, "type must be one of general, academic, holiday, exam, urgent")
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(req.Priority) {
		response.BadRequest(c, "priority must be one of low, medium, high")
		return
	}

	now := h.now()
	expires := now.Add(defaultExpiry)
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(now) {
			response.BadRequest(c, "expiresAt must be in the future")
			return
		}
		expires = *req.ExpiresAt
	}

	a := &models.Announcement{
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		Priority:  req.Priority,
		Date:      now,
		ExpiresAt: expires,
		IsActive:  true,
	}
	if err := h.store.Create(c.Request.Context(), a); err != nil {
		h.logger.Error("create announcement failed", zap.String("title", a.Title), zap.Error(err))
		response.Internal(c, "Failed to create announcement")
		return
	}
	h.logger.Info("announcement created", zap.String("id", a.ID.String()), zap.String("type", a.Type), zap.String("priority", a.Priority))
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Announcement created successfully",
		"announcement": a,
	})
}
