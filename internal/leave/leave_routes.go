package leave

import (
	"go-hrms/internal/authz"
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	gate authz.Service,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		if rdb != nil {
			leaves.POST("", middleware.Idempotency(rdb), handler.Submit)
		} else {
			leaves.POST("", handler.Submit)
		}
		leaves.GET("/mine", handler.ListMine)
		leaves.GET("", middleware.Authorize(gate, "leave", "read_all"), handler.ListAll)
		leaves.GET("/pending", middleware.Authorize(gate, "leave", "read_all"), handler.ListPending)
		leaves.GET("/:id", handler.GetByID)
		leaves.PUT("/:id/approve", middleware.Authorize(gate, "leave", "approve"), handler.Approve)
		leaves.PUT("/:id/reject", middleware.Authorize(gate, "leave", "approve"), handler.Reject)
		leaves.PUT("/:id/cancel", handler.Cancel)
	}
}
