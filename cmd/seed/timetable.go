package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/announcements"
	"github.com/gtn-college/attendance-backend/internal/models"
	"github.com/gtn-college/attendance-backend/internal/schedules"
)

var slots = [6][2]string{
	{"08:30", "09:20"}, {"09:20", "10:10"}, {"10:10", "10:30"},
	{"10:30", "11:20"}, {"11:20", "12:10"}, {"12:10", "13:00"},
}

// Each row is subject/faculty/room per slot; slot 3 is the break.
var sampleTimetable = map[time.Weekday][6][3]string{
	time.Monday: {
		{"Mathematics", "Ms. Theepa", "Room 101"}, {"Python", "Ms. Thanarani", "Lab 201"}, {},
		{"Tamil", "Ms. Santhi Rani", "Computer Lab"}, {"English", "Ms. Babiya", "Room 102"}, {"RDBMS", "Ms. Sweetlin", "Lab 202"},
	},
	time.Tuesday: {
		{"Python", "Ms. Thanarani", "Lab 201"}, {"Mathematics", "Ms. Theepa", "Room 101"}, {},
		{"Chemistry", "Dr. Sanjay Patel", "Lab 202"}, {"Physics", "Dr. Priya Sharma", "Lab 201"}, {"Physical Education", "Mr. Ravi Thakur", "Sports Ground"},
	},
	time.Wednesday: {
		{"Python", "Ms. Thanarani", "Lab 201"}, {"Mathematics", "Dr. Rajesh Kumar", "Room 101"}, {},
		{"Mathematics", "Ms. Theepa", "Room 101"}, {"Chemistry Lab", "Dr. Sanjay Patel", "Lab 202"}, {"Library", "Mrs. Geeta Rao", "Library"},
	},
	time.Thursday: {
		{"Chemistry", "Dr. Sanjay Patel", "Lab 202"}, {"Computer Science", "Prof. Arjun Mehta", "Computer Lab"}, {},
		{"Mathematics", "Dr. Rajesh Kumar", "Room 101"}, {"Mathematics", "Ms. Theepa", "Room 101"}, {"Python", "Ms. Thanarani", "Lab 201"},
	},
	time.Friday: {
		{"Physics", "Dr. Priya Sharma", "Lab 201"}, {"English", "Ms. Anjali Verma", "Room 102"}, {},
		{"Mathematics", "Dr. Rajesh Kumar", "Room 101"}, {"Python", "Ms. Thanarani", "Lab 201"}, {"Mathematics", "Ms. Theepa", "Room 101"},
	},
	time.Saturday: {
		{"Mathematics", "Ms. Theepa", "Room 101"}, {"Mathematics", "Dr. Rajesh Kumar", "Room 101"}, {},
		{"Chemistry", "Dr. Sanjay Patel", "Lab 202"}, {"Physics", "Dr. Priya Sharma", "Lab 201"}, {"Python", "Ms. Thanarani", "Lab 201"},
	},
}

func daySchedule(day time.Weekday) models.DaySchedule {
	sched := models.DaySchedule{Day: day.String(), Periods: make([]models.Period, 0, len(slots))}
	for i, row := range sampleTimetable[day] {
		if row[0] == "" {
			row = [3]string{"Break", "College Faculty", "Auditorium"}
		}
		sched.Periods = append(sched.Periods, models.Period{
			PeriodNumber: i + 1,
			StartTime:    slots[i][0],
			EndTime:      slots[i][1],
			Subject:      row[0],
			Faculty:      row[1],
			Room:         row[2],
		})
	}
	return sched
}

func seedSchedule(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) {
	repo := schedules.NewRepository(pool)
	for _, day := range models.ClassDays {
		if err := repo.ReplaceDay(ctx, daySchedule(day)); err != nil {
			logger.Fatal("seed schedule", zap.String("day", day.String()), zap.Error(err))
		}
	}
	logger.Info("schedule seeded", zap.Int("days", len(models.ClassDays)))
}

type sampleNotice struct {
	title     string
	message   string
	kind      string
	priority  string
	ageDays   int // posted this many days ago
	validDays int // expires this many days from now
}

var sampleNotices = []sampleNotice{
	{"Holiday Announcement", "College will remain closed on Monday for maintenance work. All classes will resume on Tuesday as per schedule.", models.AnnouncementHoliday, models.PriorityHigh, 0, 1},
	{"Final Exam Schedule Published", "The final examination schedule for the current semester has been published. Please check your student portal for detailed timetable.", models.AnnouncementExam, models.PriorityHigh, 0, 2},
	{"Library Hours Extended", "Library hours have been extended until 8 PM from Monday to Friday for exam preparation.", models.AnnouncementAcademic, models.PriorityMedium, 1, 8},
	{"Sports Day Registration", "Registration for annual sports day events is now open.", models.AnnouncementGeneral, models.PriorityMedium, 2, 3},
	{"Fee Payment Reminder", "Last date for fee payment for the current semester is approaching. Late payments will attract penalty.", models.AnnouncementUrgent, models.PriorityHigh, 13, 8},
	{"Cultural Fest Rehearsals", "Rehearsals for annual cultural fest will begin from next week. Interested students contact cultural committee.", models.AnnouncementGeneral, models.PriorityLow, 14, 17},
}

func seedAnnouncements(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) {
	repo := announcements.NewRepository(pool)
	now := time.Now()
	inserted := 0
	for _, n := range sampleNotices {
		exists, err := repo.Exists(ctx, n.title)
		if err != nil {
			logger.Fatal("check announcement", zap.Error(err))
		}
		if exists {
			continue
		}
		err = repo.Create(ctx, &models.Announcement{
			Title:     n.title,
			Message:   n.message,
			Type:      n.kind,
			Priority:  n.priority,
			Date:      now.AddDate(0, 0, -n.ageDays),
			ExpiresAt: now.AddDate(0, 0, n.validDays),
			IsActive:  true,
		})
		if err != nil {
			logger.Fatal("insert announcement", zap.String("title", n.title), zap.Error(err))
		}
		inserted++
	}
	logger.Info("announcements seeded", zap.Int("inserted", inserted), zap.Int("total", len(sampleNotices)))
}
