// Package main runs the attendance HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"net/mail"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gtn-college/attendance-backend/config"
	"github.com/gtn-college/attendance-backend/internal/announcements"
	"github.com/gtn-college/attendance-backend/internal/attendance"
	"github.com/gtn-college/attendance-backend/internal/auth"
	"github.com/gtn-college/attendance-backend/internal/classotp"
	"github.com/gtn-college/attendance-backend/internal/emaillogs"
	"github.com/gtn-college/attendance-backend/internal/middleware"
	"github.com/gtn-college/attendance-backend/internal/notify"
	"github.com/gtn-college/attendance-backend/internal/schedules"
	"github.com/gtn-college/attendance-backend/internal/students"
	"github.com/gtn-college/attendance-backend/internal/worker"
	"github.com/gtn-college/attendance-backend/pkg/database"
	"github.com/gtn-college/attendance-backend/pkg/queue"
	"github.com/gtn-college/attendance-backend/pkg/redis"
)

const collegeName = "GTN ARTS COLLEGE"

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	loc, err := cfg.ClassOTP.Location()
	if err != nil {
		logger.Fatal("attendance timezone", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.ClassOTP.Store == config.StoreRedis || cfg.Percentage.Async {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Student directory and attendance ledger
	studentRepo := students.NewRepository(pool)
	studentHandler := students.NewHandler(studentRepo, logger)
	authHandler := auth.NewHandler(studentRepo, jwtService, logger)
	ledger := attendance.NewRepository(pool)
	attendanceHandler := attendance.NewHandler(ledger, logger)

	// Percentage recompute: inline, or queued for cmd/worker
	var percentages classotp.PercentageUpdater = attendance.NewCalculator(ledger, studentRepo, logger)
	if cfg.Percentage.Async {
		percentages = worker.NewAsyncPercentages(queue.NewQueue(rdb.Client, logger))
		logger.Info("percentage recompute queued", zap.String("queue", queue.QueuePercentages))
	}

	// Class code delivery, every attempt logged to email_logs
	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo, logger)
	recipient := cfg.Email.Recipient
	if recipient == "" {
		recipient = cfg.Email.FromAddress
	}
	to := mail.Address{Name: "Class Teacher", Address: recipient}
	var channel notify.Notifier
	switch cfg.Email.Provider {
	case "sendgrid":
		channel = notify.NewSendGrid(notify.SendGridConfig{
			APIKey:   cfg.Email.SendGridAPIKey,
			From:     mail.Address{Name: cfg.Email.FromName, Address: cfg.Email.FromAddress},
			To:       to,
			College:  collegeName,
			Location: loc,
		}, logger)
	default:
		channel = notify.NewConsole(to, collegeName, loc, logger)
	}
	notifier := notify.NewLogged(channel, emailLogsRepo, recipient, logger)

	// Class code slot
	var store classotp.Store = classotp.NewMemoryStore()
	if cfg.ClassOTP.Store == config.StoreRedis {
		store = classotp.NewRedisStore(rdb.Client, cfg.ClassOTP.Retention())
	}
	classOTP := classotp.NewService(classotp.Deps{
		Students:    studentRepo,
		Ledger:      ledger,
		Store:       store,
		Notifier:    notifier,
		Percentages: percentages,
	}, classotp.Options{
		TTL:           cfg.ClassOTP.TTL(),
		NotifyTimeout: cfg.ClassOTP.NotifyTimeout(),
		StartHour:     cfg.ClassOTP.WindowStartHour,
		EndHour:       cfg.ClassOTP.WindowEndHour,
		Location:      loc,
	}, logger)
	classOTPHandler := classotp.NewHandler(classOTP, cfg.ClassOTP.EchoCode, logger)
	logger.Info("class code service ready",
		zap.String("store", cfg.ClassOTP.Store),
		zap.String("email_provider", cfg.Email.Provider),
		zap.Duration("ttl", cfg.ClassOTP.TTL()),
		zap.String("timezone", loc.String()))

	// Timetable and notices
	scheduleHandler := schedules.NewHandler(schedules.NewRepository(pool), loc, logger)
	announcementHandler := announcements.NewHandler(announcements.NewRepository(pool), logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "ok", "time": time.Now()})
	})

	// Public, matching the mobile client
	router.POST("/login", authHandler.Login)
	router.POST("/getprofile", studentHandler.GetProfile)
	router.POST("/send-attendance-otp", classOTPHandler.Send)
	router.POST("/mark-attendance", classOTPHandler.Mark)
	router.GET("/schedule-today", scheduleHandler.Today)
	router.GET("/schedule/:day", scheduleHandler.Day)
	router.GET("/announcements", announcementHandler.List)
	router.GET("/announcements/latest", announcementHandler.Latest)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/attendance/me", attendanceHandler.Mine)
		api.GET("/class-otp/status", classOTPHandler.Status)
		api.GET("/class-otp/emails", emailLogsHandler.ListClassOTP)
		api.POST("/announcements", announcementHandler.Create)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
