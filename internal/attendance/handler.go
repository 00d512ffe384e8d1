package attendance

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/middleware"
	"github.com/gtn-college/attendance-backend/internal/models"
	"github.com/gtn-college/attendance-backend/pkg/response"
)

// historyLimit matches the last month of school days shown by the client.
const historyLimit = 30

// History lists a student's records.
type History interface {
	ListByStudent(ctx context.Context, registerNo string, limit int) ([]models.AttendanceRecord, error)
}

// Handler serves the student's own attendance history.
type Handler struct {
	history History
	logger  *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(history History, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{history: history, logger: logger}
}

// Mine handles GET /attendance/me (JWT required).
func (h *Handler) Mine(c *gin.Context) {
	registerNo := middleware.RegisterNo(c)
	if registerNo == "" {
		response.Unauthorized(c, "missing student context")
		return
	}
	records, err := h.history.ListByStudent(c.Request.Context(), registerNo, historyLimit)
	if err != nil {
		h.logger.Error("list attendance failed", zap.Error(err), zap.String("register_no", registerNo))
		response.Internal(c, "Failed to fetch attendance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "records": records})
}
