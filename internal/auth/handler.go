package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/models"
	"github.com/gtn-college/attendance-backend/internal/students"
	"github.com/gtn-college/attendance-backend/pkg/response"
	"github.com/gtn-college/attendance-backend/pkg/utils"
)

// Directory looks students up for login.
type Directory interface {
	FindByRegisterNo(ctx context.Context, registerNo string) (*models.Student, error)
}

// LoginRequest is the body for POST /login.
type LoginRequest struct {
	RegisterNo string `json:"registerNo"`
	Password   string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	User    models.StudentPublic `json:"user"`
	Token   string               `json:"token"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	students Directory
	jwt      *JWTService
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(students Directory, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{students: students, jwt: jwt, logger: logger}
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RegisterNo == "" || req.Password == "" {
		response.BadRequest(c, "registerNo and password required")
		return
	}
	h.logger.Info("login attempt", zap.String("register_no", req.RegisterNo))

	student, err := h.students.FindByRegisterNo(c.Request.Context(), req.RegisterNo)
	if err != nil {
		if !errors.Is(err, students.ErrNotFound) {
			h.logger.Error("login lookup failed", zap.Error(err))
			response.Internal(c, "Server error")
			return
		}
		response.Unauthorized(c, "Invalid register number or password")
		return
	}
	if !utils.CheckPassword(req.Password, student.PasswordHash) {
		response.Unauthorized(c, "Invalid register number or password")
		return
	}

	token, err := h.jwt.Generate(student.RegisterNo, student.Name)
	if err != nil {
		h.logger.Error("generate token failed", zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}
	c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Message: "Login successful",
		User:    student.ToPublic(),
		Token:   token,
	})
}
