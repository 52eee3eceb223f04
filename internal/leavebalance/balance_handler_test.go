package leavebalance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-hrms/internal/authz"
	"go-hrms/internal/leavebalance"
	balanceerrors "go-hrms/internal/leavebalance/errors"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeBalanceService struct {
	getBalancesFn func(ctx context.Context, actor authz.Identity, employeeID string) ([]leavebalance.BalanceResponse, error)
}

func (f *fakeBalanceService) WithTx(tx *gorm.DB) leavebalance.Service { return f }

func (f *fakeBalanceService) GetBalances(ctx context.Context, actor authz.Identity, employeeID string) ([]leavebalance.BalanceResponse, error) {
	return f.getBalancesFn(ctx, actor, employeeID)
}

func (f *fakeBalanceService) HasSufficient(ctx context.Context, employeeID, leaveType string, year int, amount decimal.Decimal) (bool, error) {
	return false, nil
}

func (f *fakeBalanceService) Debit(ctx context.Context, employeeID, leaveType string, year int, amount decimal.Decimal) error {
	return nil
}

func (f *fakeBalanceService) Seed(ctx context.Context, employeeID string, year int, allotments map[string]decimal.Decimal) error {
	return nil
}

func newBalanceRouter(svc leavebalance.Service, role authz.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("employee_id", "emp-1")
		c.Set("role", string(role))
		c.Next()
	})

	h := leavebalance.NewHandler(svc)
	r.GET("/api/v1/leave-balances", h.GetBalances)
	return r
}

func TestBalanceHandler_GetBalances(t *testing.T) {
	t.Run("returns own balances", func(t *testing.T) {
		svc := &fakeBalanceService{
			getBalancesFn: func(ctx context.Context, actor authz.Identity, employeeID string) ([]leavebalance.BalanceResponse, error) {
				assert.Equal(t, "user-1", actor.UserID)
				assert.Equal(t, authz.RoleEmployee, actor.Role)
				assert.Empty(t, employeeID)
				return []leavebalance.BalanceResponse{
					{LeaveType: leavebalance.TypePaid, Year: 2025, TotalDays: decimal.NewFromInt(24), UsedDays: decimal.NewFromInt(5), RemainingDays: decimal.NewFromInt(19)},
				}, nil
			},
		}
		router := newBalanceRouter(svc, authz.RoleEmployee)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leave-balances", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var env response.ApiEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)

		rows, ok := env.Data.([]interface{})
		assert.True(t, ok)
		assert.Len(t, rows, 1)
		row := rows[0].(map[string]interface{})
		assert.Equal(t, "paid", row["leave_type"])
		assert.Equal(t, "19", row["remaining_days"])
	})

	t.Run("forwards employee_id filter", func(t *testing.T) {
		svc := &fakeBalanceService{
			getBalancesFn: func(ctx context.Context, actor authz.Identity, employeeID string) ([]leavebalance.BalanceResponse, error) {
				assert.Equal(t, "target-emp", employeeID)
				return []leavebalance.BalanceResponse{}, nil
			},
		}
		router := newBalanceRouter(svc, authz.RoleHROfficer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leave-balances?employee_id=target-emp", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("forbidden maps through the envelope", func(t *testing.T) {
		svc := &fakeBalanceService{
			getBalancesFn: func(ctx context.Context, actor authz.Identity, employeeID string) ([]leavebalance.BalanceResponse, error) {
				return nil, apperror.ErrForbidden
			},
		}
		router := newBalanceRouter(svc, authz.RoleEmployee)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leave-balances?employee_id=someone-else", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var env response.ApiEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.False(t, env.Ok)
		errObj := env.Error.(map[string]interface{})
		assert.Equal(t, "FORBIDDEN", errObj["code"])
	})

	t.Run("unknown employee maps to 404", func(t *testing.T) {
		svc := &fakeBalanceService{
			getBalancesFn: func(ctx context.Context, actor authz.Identity, employeeID string) ([]leavebalance.BalanceResponse, error) {
				return nil, balanceerrors.ErrEmployeeProfileNotFound
			},
		}
		router := newBalanceRouter(svc, authz.RoleAdmin)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leave-balances?employee_id=ghost", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
