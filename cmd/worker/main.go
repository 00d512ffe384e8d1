// Package main runs the background job worker (attendance percentage recompute).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gtn-college/attendance-backend/config"
	"github.com/gtn-college/attendance-backend/internal/attendance"
	"github.com/gtn-college/attendance-backend/internal/students"
	"github.com/gtn-college/attendance-backend/internal/worker"
	"github.com/gtn-college/attendance-backend/pkg/database"
	"github.com/gtn-college/attendance-backend/pkg/queue"
	"github.com/gtn-college/attendance-backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	calc := attendance.NewCalculator(attendance.NewRepository(pool), students.NewRepository(pool), logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewPercentageProcessor(calc, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started", zap.String("queue", queue.QueuePercentages))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
