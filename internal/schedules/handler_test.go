package schedules

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtn-college/attendance-backend/internal/models"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type mapFinder struct {
	days map[string]*models.DaySchedule
	err  error
}

func (m mapFinder) FindByDay(_ context.Context, day string) (*models.DaySchedule, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.days[day]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

var monday = &models.DaySchedule{Day: "Monday", Periods: []models.Period{
	{PeriodNumber: 1, StartTime: "08:30", EndTime: "09:20", Subject: "Mathematics", Faculty: "Ms. Theepa", Room: "Room 101"},
	{PeriodNumber: 2, StartTime: "09:20", EndTime: "10:10", Subject: "Python", Faculty: "Ms. Thanarani", Room: "Lab 201"},
}}

func newRouter(f Finder, now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f, ist, nil)
	h.now = func() time.Time { return now }
	r := gin.New()
	r.GET("/schedule-today", h.Today)
	r.GET("/schedule/:day", h.Day)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestToday(t *testing.T) {
	stored := mapFinder{days: map[string]*models.DaySchedule{"Monday": monday}}
	tests := []struct {
		name        string
		finder      Finder
		now         time.Time
		wantCode    int
		wantToday   string
		wantPeriods int // -1 for a null schedule
	}{
		{name: "class day", finder: stored, now: time.Date(2025, time.March, 10, 9, 0, 0, 0, ist), wantCode: http.StatusOK, wantToday: "Monday", wantPeriods: 2},
		{name: "weekday taken in college zone", finder: stored, now: time.Date(2025, time.March, 9, 20, 0, 0, 0, time.UTC), wantCode: http.StatusOK, wantToday: "Monday", wantPeriods: 2},
		{name: "sunday", finder: stored, now: time.Date(2025, time.March, 16, 9, 0, 0, 0, ist), wantCode: http.StatusOK, wantToday: "Sunday", wantPeriods: -1},
		{name: "class day without periods", finder: stored, now: time.Date(2025, time.March, 11, 9, 0, 0, 0, ist), wantCode: http.StatusOK, wantToday: "Tuesday", wantPeriods: -1},
		{name: "store failure", finder: mapFinder{err: errors.New("db down")}, now: time.Date(2025, time.March, 10, 9, 0, 0, 0, ist), wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newRouter(tt.finder, tt.now), "/schedule-today")
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				assert.Contains(t, rec.Body.String(), "Failed to fetch today schedule")
				return
			}
			var got TodayResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.True(t, got.Success)
			assert.Equal(t, tt.wantToday, got.Today)
			if tt.wantPeriods < 0 {
				assert.Nil(t, got.Schedule)
				assert.Contains(t, rec.Body.String(), `"schedule":null`)
				return
			}
			require.NotNil(t, got.Schedule)
			assert.Len(t, got.Schedule.Periods, tt.wantPeriods)
		})
	}
}

func TestDay(t *testing.T) {
	r := newRouter(mapFinder{days: map[string]*models.DaySchedule{"Monday": monday}}, time.Now())
	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{name: "exact name", path: "/schedule/Monday", wantCode: http.StatusOK},
		{name: "lower case", path: "/schedule/monday", wantCode: http.StatusOK},
		{name: "sunday", path: "/schedule/sunday", wantCode: http.StatusBadRequest},
		{name: "not a day", path: "/schedule/someday", wantCode: http.StatusBadRequest},
		{name: "nothing stored", path: "/schedule/friday", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(r, tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"subject":"Python"`)
			}
		})
	}
}
