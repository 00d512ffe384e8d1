package emaillogs

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/models"
	"github.com/gtn-college/attendance-backend/pkg/response"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Lister reads recent email logs.
type Lister interface {
	ListRecent(ctx context.Context, emailType string, limit int) ([]*models.EmailLog, error)
}

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo   Lister
	logger *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo Lister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListClassOTP handles GET /class-otp/emails?limit=N.
func (h *Handler) ListClassOTP(c *gin.Context) {
	limit := defaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}
	logs, err := h.repo.ListRecent(c.Request.Context(), models.EmailTypeClassOTP, limit)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err))
		response.Internal(c, "failed to load email logs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "emails": logs})
}
