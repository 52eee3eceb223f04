package employee

import (
	"go-hrms/internal/authz"
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	gate authz.Service,
	logger *zap.Logger,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	employees.Use(middleware.ContextLogger(logger))
	{
		employees.GET("/me", handler.GetMe)

		employees.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.Authorize(gate, "employee", "read"),
			handler.GetAll,
		)

		employees.GET("/options",
			middleware.RateLimitByUser(5, 20),
			middleware.Authorize(gate, "employee", "read"),
			handler.GetOptions,
		)

		employees.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.Authorize(gate, "employee", "read"),
			handler.GetByID,
		)

		employees.POST("",
			middleware.RateLimitByUser(0.1, 1),
			middleware.Authorize(gate, "employee", "create"),
			handler.Onboard,
		)

		employees.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.Authorize(gate, "employee", "update"),
			handler.Update,
		)

		employees.DELETE("/:id",
			middleware.RateLimitByUser(0.05, 1),
			middleware.Authorize(gate, "employee", "delete"),
			handler.Delete,
		)
	}
}
