package students

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/models"
	"github.com/gtn-college/attendance-backend/pkg/response"
)

// Finder looks a student up by register number.
type Finder interface {
	FindByRegisterNo(ctx context.Context, registerNo string) (*models.Student, error)
}

// ProfileRequest is the body for POST /getprofile.
type ProfileRequest struct {
	RegisterNo string `json:"registerNo"`
}

// Profile is the student summary shown on the home screen.
type Profile struct {
	Name       string    `json:"name"`
	Grade      float64   `json:"grade"`
	Attendance int       `json:"attendance"`
	Courses    int       `json:"courses"`
	RegisterNo string    `json:"registerNo"`
	DOB        time.Time `json:"dob"`
	Fees       int       `json:"fees"`
}

// Handler handles student directory endpoints.
type Handler struct {
	finder Finder
	logger *zap.Logger
}

// NewHandler creates a students handler.
func NewHandler(finder Finder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{finder: finder, logger: logger}
}

// GetProfile handles POST /getprofile.
func (h *Handler) GetProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RegisterNo == "" {
		response.BadRequest(c, "registerNo is required")
		return
	}
	s, err := h.finder.FindByRegisterNo(c.Request.Context(), req.RegisterNo)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "Student not found")
		return
	}
	if err != nil {
		h.logger.Error("get profile failed", zap.Error(err), zap.String("register_no", req.RegisterNo))
		response.Internal(c, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"student": Profile{
			Name:       s.Name,
			Grade:      s.Grade,
			Attendance: s.Attendance,
			Courses:    s.Courses,
			RegisterNo: s.RegisterNo,
			DOB:        s.DOB,
			Fees:       s.Fees,
		},
	})
}
