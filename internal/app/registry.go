package app

import (
	"go-hrms/internal/authz"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	"go-hrms/internal/leavebalance"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(20, 50))

	// --- Repositories ---
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	balanceRepo := leavebalance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)

	// --- Authorization gate ---
	gate, err := authz.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	employeeService := employee.NewService(gormDB, employeeRepo, counterRepo, outboxRepo, rdb)
	balanceService := leavebalance.NewService(gormDB, balanceRepo, gate)
	leaveService := leave.NewService(gormDB, leaveRepo, balanceService, gate, outboxRepo)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)
	balanceHandler := leavebalance.NewHandler(balanceService)
	var leaveHandler *leave.Handler
	if rdb != nil {
		leaveHandler = leave.NewHandlerWithRedis(leaveService, rdb)
	} else {
		leaveHandler = leave.NewHandler(leaveService)
	}

	// --- Routes ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, gate, logger)
		leavebalance.RegisterRoutes(api, balanceHandler)
		leave.RegisterRoutes(api, leaveHandler, gate, rdb)
	}

	return nil
}
