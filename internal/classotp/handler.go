package classotp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/pkg/response"
)

// SendRequest is the body for POST /send-attendance-otp.
type SendRequest struct {
	RegisterNo string `json:"registerNo"`
}

// SendResponse is returned by POST /send-attendance-otp. OTP is only set when echoing is enabled.
type SendResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	OTP        string `json:"otp,omitempty"`
	IsClassOTP bool   `json:"isClassOtp"`
}

// MarkRequest is the body for POST /mark-attendance.
type MarkRequest struct {
	RegisterNo string `json:"registerNo"`
	OTP        string `json:"otp"`
}

// MarkResponse is returned by POST /mark-attendance.
type MarkResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	StudentName      string `json:"studentName,omitempty"`
	TotalClassMarked int    `json:"totalClassMarked,omitempty"`
}

// Handler exposes the class code endpoints.
type Handler struct {
	svc      *Service
	echoCode bool
	logger   *zap.Logger
}

// NewHandler creates a class code handler. With echoCode the issued code is returned to the caller.
func NewHandler(svc *Service, echoCode bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, echoCode: echoCode, logger: logger}
}

// Send handles POST /send-attendance-otp.
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RegisterNo == "" {
		response.BadRequest(c, "Register number is required")
		return
	}
	res, err := h.svc.IssueOrReuseCode(c.Request.Context(), req.RegisterNo)
	if errors.Is(err, ErrStudentNotFound) {
		response.NotFound(c, "Student not found")
		return
	}
	if err != nil {
		h.logger.Error("send class code failed", zap.Error(err), zap.String("register_no", req.RegisterNo))
		response.Internal(c, "Failed to generate class verification code. Please try again.")
		return
	}
	out := SendResponse{Success: true, IsClassOTP: true, Message: "Class verification code generated successfully!"}
	if res.Reused {
		out.Message = "Class verification code is available"
	}
	if h.echoCode {
		out.OTP = res.Code
	}
	c.JSON(http.StatusOK, out)
}

// Mark handles POST /mark-attendance.
func (h *Handler) Mark(c *gin.Context) {
	var req MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RegisterNo == "" || req.OTP == "" {
		response.BadRequest(c, "Register number and OTP are required")
		return
	}
	res, err := h.svc.RedeemCode(c.Request.Context(), req.RegisterNo, req.OTP)
	if err != nil {
		status, msg := h.redeemFailure(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("mark attendance failed", zap.Error(err), zap.String("register_no", req.RegisterNo))
		} else {
			h.logger.Info("mark attendance rejected", zap.Error(err), zap.String("register_no", req.RegisterNo))
		}
		response.Fail(c, status, msg)
		return
	}
	c.JSON(http.StatusOK, MarkResponse{
		Success:          true,
		Message:          "Attendance marked successfully!",
		StudentName:      res.StudentName,
		TotalClassMarked: res.TotalUses,
	})
}

func (h *Handler) redeemFailure(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingFields):
		return http.StatusBadRequest, "Register number and OTP are required"
	case errors.Is(err, ErrStudentNotFound):
		return http.StatusNotFound, "Student not found"
	case errors.Is(err, ErrNoActiveCode):
		return http.StatusBadRequest, "No class verification code available. Please ask your teacher to generate one."
	case errors.Is(err, ErrCodeExpired):
		return http.StatusBadRequest, "Class verification code has expired. Please ask your teacher for a new one."
	case errors.Is(err, ErrInvalidCode):
		return http.StatusBadRequest, "Invalid verification code. Please check the code announced in class."
	case errors.Is(err, ErrAlreadyRedeemed):
		return http.StatusBadRequest, "You have already marked attendance with this code."
	case errors.Is(err, ErrAlreadyMarked):
		return http.StatusBadRequest, "Attendance already marked for today."
	case errors.Is(err, ErrOutOfWindow):
		start, end := h.svc.Window()
		return http.StatusBadRequest, fmt.Sprintf("Attendance can only be marked between %s and %s", clockHour(start), clockHour(end))
	default:
		return http.StatusInternalServerError, "Failed to mark attendance. Please try again."
	}
}

// clockHour formats 0-24 as a 12 hour label, e.g. 9 -> "9 AM", 17 -> "5 PM".
func clockHour(h int) string {
	suffix := "AM"
	if h%24 >= 12 {
		suffix = "PM"
	}
	n := h % 12
	if n == 0 {
		n = 12
	}
	return fmt.Sprintf("%d %s", n, suffix)
}

// Status handles GET /class-otp/status.
func (h *Handler) Status(c *gin.Context) {
	st, err := h.svc.Status(c.Request.Context())
	if err != nil {
		h.logger.Error("class code status failed", zap.Error(err))
		response.Internal(c, "Failed to load class code status")
		return
	}
	body := gin.H{"success": true, "active": st.Active, "totalClassMarked": st.TotalUses}
	if st.Active {
		body["expiresAt"] = st.ExpiresAt
	}
	c.JSON(http.StatusOK, body)
}
