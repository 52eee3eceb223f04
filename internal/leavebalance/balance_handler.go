package leavebalance

import (
	"net/http"

	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetBalances returns the current year's ledger rows. Without
// ?employee_id the caller reads their own; with it, an elevated role
// reads anyone's.
func (h *Handler) GetBalances(c *gin.Context) {
	actor := middleware.IdentityFromContext(c)
	employeeID := c.Query("employee_id")

	balances, err := h.service.GetBalances(c.Request.Context(), actor, employeeID)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, balances, nil)
}
