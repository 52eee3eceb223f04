package app

import (
	"os"

	"go-hrms/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	// Redis is optional: without it the API loses idempotency replay
	// and the options cache, nothing else.
	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		rdb = nil
	} else {
		logger.Info("redis connection established")
	}

	return registerModules(router, gormDB, rdb)
}
