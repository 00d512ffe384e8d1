package classotp

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(f *fixture, echo bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f.svc, echo, nil)
	r := gin.New()
	r.POST("/send-attendance-otp", h.Send)
	r.POST("/mark-attendance", h.Mark)
	r.GET("/class-otp/status", h.Status)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSendHandler(t *testing.T) {
	f := newFixture(t, "482913")
	r := newRouter(f, false)

	rec := do(r, http.MethodPost, "/send-attendance-otp", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/send-attendance-otp", `{"registerNo":"nobody"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodPost, "/send-attendance-otp", `{"registerNo":"24UCSE001"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got SendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.True(t, got.IsClassOTP)
	assert.Equal(t, "Class verification code generated successfully!", got.Message)
	assert.Empty(t, got.OTP)

	rec = do(r, http.MethodPost, "/send-attendance-otp", `{"registerNo":"24UCSE002"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Class verification code is available", got.Message)
}

func TestSendHandlerEchoesCode(t *testing.T) {
	f := newFixture(t, "482913")
	r := newRouter(f, true)

	rec := do(r, http.MethodPost, "/send-attendance-otp", `{"registerNo":"24UCSE001"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got SendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "482913", got.OTP)
}

func TestSendHandlerDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("boom")
	r := newRouter(f, true)

	rec := do(r, http.MethodPost, "/send-attendance-otp", `{"registerNo":"24UCSE001"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to generate class verification code")
	assert.NotContains(t, rec.Body.String(), "otp")
}

func TestMarkHandler(t *testing.T) {
	f := newFixture(t, "482913")
	r := newRouter(f, false)

	rec := do(r, http.MethodPost, "/mark-attendance", `{"registerNo":"24UCSE001","otp":"482913"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No class verification code available")

	rec = do(r, http.MethodPost, "/send-attendance-otp", `{"registerNo":"24UCSE001"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{name: "missing otp", body: `{"registerNo":"24UCSE001"}`, wantCode: http.StatusBadRequest, wantMsg: "Register number and OTP are required"},
		{name: "unknown student", body: `{"registerNo":"nobody","otp":"482913"}`, wantCode: http.StatusNotFound, wantMsg: "Student not found"},
		{name: "wrong code", body: `{"registerNo":"24UCSE001","otp":"111111"}`, wantCode: http.StatusBadRequest, wantMsg: "Invalid verification code"},
		{name: "success", body: `{"registerNo":"24UCSE001","otp":"482913"}`, wantCode: http.StatusOK, wantMsg: "Attendance marked successfully!"},
		{name: "again", body: `{"registerNo":"24UCSE001","otp":"482913"}`, wantCode: http.StatusBadRequest, wantMsg: "You have already marked attendance with this code."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/mark-attendance", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			var got MarkResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Contains(t, got.Message, tt.wantMsg)
			if tt.wantCode == http.StatusOK {
				assert.True(t, got.Success)
				assert.Equal(t, "Student 1", got.StudentName)
				assert.Equal(t, 1, got.TotalClassMarked)
			}
		})
	}
}

func TestMarkHandlerOutOfWindowMessage(t *testing.T) {
	f := newFixture(t, "482913")
	f.clock.set(at(18, 0))
	r := newRouter(f, false)

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/send-attendance-otp", `{"registerNo":"24UCSE001"}`).Code)
	rec := do(r, http.MethodPost, "/mark-attendance", `{"registerNo":"24UCSE001","otp":"482913"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Attendance can only be marked between 9 AM and 5 PM")
}

func TestStatusHandler(t *testing.T) {
	f := newFixture(t, "482913")
	r := newRouter(f, false)

	rec := do(r, http.MethodGet, "/class-otp/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"active":false,"totalClassMarked":0}`, rec.Body.String())

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/send-attendance-otp", `{"registerNo":"24UCSE001"}`).Code)
	rec = do(r, http.MethodGet, "/class-otp/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active":true`)
	assert.Contains(t, rec.Body.String(), `"expiresAt"`)
	assert.NotContains(t, rec.Body.String(), "482913")
}

func TestClockHour(t *testing.T) {
	assert.Equal(t, "9 AM", clockHour(9))
	assert.Equal(t, "5 PM", clockHour(17))
	assert.Equal(t, "12 PM", clockHour(12))
	assert.Equal(t, "12 AM", clockHour(0))
}
