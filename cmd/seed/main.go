// Package main inserts the sample class, its weekly timetable and a few
// announcements. Each student's initial password is their register number.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gtn-college/attendance-backend/config"
	"github.com/gtn-college/attendance-backend/internal/models"
	"github.com/gtn-college/attendance-backend/internal/students"
	"github.com/gtn-college/attendance-backend/pkg/database"
	"github.com/gtn-college/attendance-backend/pkg/utils"
)

type sample struct {
	registerNo string
	name       string
	dob        string
	grade      float64
	attendance int
	courses    int
	fees       int
}

var sampleStudents = []sample{
	{"24UCSE001", "Valan Joshwa", "2003-05-15", 7.1, 85, 4, 16000},
	{"24UCSE002", "Giri Prasath", "2003-07-22", 6.2, 75, 8, 16000},
	{"24UCSE003", "Raghul", "2003-03-10", 6.8, 73, 3, 16000},
	{"24UCSE004", "Askar Haneef", "2003-11-30", 8.5, 89, 6, 14000},
	{"24UCSE005", "Dhivakar", "2003-01-25", 9.2, 95, 5, 13000},
	{"24UCSE006", "Priya", "2003-08-14", 8.6, 88, 6, 16000},
	{"24UCSE007", "Alagesan", "2006-02-26", 8.5, 73, 10, 16000},
	{"24UCSE008", "Sneha Patel", "2003-04-18", 7.8, 82, 7, 7000},
	{"24UCSE009", "Rahul Kumar", "2003-09-09", 6.5, 78, 5, 16000},
	{"24UCSE010", "Anjali Singh", "2003-06-28", 9.0, 92, 8, 13500},
	{"24UCSE011", "Karthik M", "2003-02-14", 7.2, 79, 6, 14000},
	{"24UCSE012", "Meera Nair", "2003-10-11", 8.8, 90, 7, 16000},
	{"24UCSE013", "Vikram Raj", "2003-07-07", 6.9, 76, 4, 16000},
	{"24UCSE014", "Divya R", "2003-05-30", 8.3, 87, 9, 12000},
	{"24UCSE015", "Arun Kumar", "2003-03-22", 7.5, 81, 5, 12000},
	{"24UCSE016", "Swetha G", "2003-11-08", 9.1, 94, 8, 16000},
	{"24UCSE017", "Manoj P", "2003-01-19", 6.7, 74, 6, 15000},
	{"24UCSE018", "Deepa S", "2003-08-25", 8.6, 89, 7, 16000},
	{"24UCSE019", "Suresh K", "2003-04-12", 7.9, 83, 5, 13000},
	{"24UCSE020", "Lakshmi Priya", "2003-12-15", 8.9, 91, 9, 14500},
}

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	repo := students.NewRepository(pool)
	inserted := 0
	for _, s := range sampleStudents {
		dob, err := time.Parse(models.DateLayout, s.dob)
		if err != nil {
			logger.Fatal("bad sample dob", zap.String("register_no", s.registerNo), zap.Error(err))
		}
		hash, err := utils.HashPassword(s.registerNo)
		if err != nil {
			logger.Fatal("hash password", zap.Error(err))
		}
		created, err := repo.CreateIfAbsent(ctx, students.CreateParams{
			RegisterNo:   s.registerNo,
			PasswordHash: hash,
			Name:         s.name,
			DOB:          dob,
			Grade:        s.grade,
			Attendance:   s.attendance,
			Courses:      s.courses,
			Fees:         s.fees,
		})
		if err != nil {
			logger.Fatal("insert student", zap.Error(err))
		}
		if created {
			inserted++
		} else {
			logger.Info("student exists, skipped", zap.String("register_no", s.registerNo))
		}
	}
	logger.Info("students seeded", zap.Int("inserted", inserted), zap.Int("total", len(sampleStudents)))

	seedSchedule(ctx, pool, logger)
	seedAnnouncements(ctx, pool, logger)
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
