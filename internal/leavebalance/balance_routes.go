package leavebalance

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, h *Handler) {
	balances := rg.Group("/leave-balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("", h.GetBalances)
	}
}
