package leave_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-hrms/internal/authz"
	"go-hrms/internal/leave"
	leaveerrors "go-hrms/internal/leave/errors"
	balanceerrors "go-hrms/internal/leavebalance/errors"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeLeaveService struct {
	submitFn  func(ctx context.Context, actor authz.Identity, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error)
	approveFn func(ctx context.Context, actor authz.Identity, id string) (leave.LeaveResponse, error)
	rejectFn  func(ctx context.Context, actor authz.Identity, id string, comments string) (leave.LeaveResponse, error)
	cancelFn  func(ctx context.Context, actor authz.Identity, id string) (leave.LeaveResponse, error)
}

func (f *fakeLeaveService) Submit(ctx context.Context, actor authz.Identity, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error) {
	return f.submitFn(ctx, actor, req)
}

func (f *fakeLeaveService) ListMine(ctx context.Context, actor authz.Identity) ([]leave.LeaveResponse, error) {
	return nil, nil
}

func (f *fakeLeaveService) ListAll(ctx context.Context, actor authz.Identity, status string) ([]leave.LeaveResponse, error) {
	return nil, nil
}

func (f *fakeLeaveService) GetByID(ctx context.Context, actor authz.Identity, id string) (leave.LeaveResponse, error) {
	return leave.LeaveResponse{}, nil
}

func (f *fakeLeaveService) Approve(ctx context.Context, actor authz.Identity, id string) (leave.LeaveResponse, error) {
	return f.approveFn(ctx, actor, id)
}

func (f *fakeLeaveService) Reject(ctx context.Context, actor authz.Identity, id string, comments string) (leave.LeaveResponse, error) {
	return f.rejectFn(ctx, actor, id, comments)
}

func (f *fakeLeaveService) Cancel(ctx context.Context, actor authz.Identity, id string) (leave.LeaveResponse, error) {
	return f.cancelFn(ctx, actor, id)
}

func newLeaveRouter(svc leave.Service, role authz.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("employee_id", "emp-1")
		c.Set("role", string(role))
		c.Next()
	})

	h := leave.NewHandler(svc)
	r.POST("/api/v1/leaves", h.Submit)
	r.PUT("/api/v1/leaves/:id/approve", h.Approve)
	r.PUT("/api/v1/leaves/:id/reject", h.Reject)
	r.PUT("/api/v1/leaves/:id/cancel", h.Cancel)
	return r
}

func TestLeaveHandler_Submit(t *testing.T) {
	t.Run("creates a pending request", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(ctx context.Context, actor authz.Identity, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, "user-1", actor.UserID)
				assert.Equal(t, "paid", req.LeaveType)
				return leave.LeaveResponse{
					ID:        "lr-1",
					LeaveType: req.LeaveType,
					Status:    leave.StatusPending,
					TotalDays: decimal.NewFromInt(5),
				}, nil
			},
		}
		router := newLeaveRouter(svc, authz.RoleEmployee)

		body, _ := json.Marshal(map[string]any{
			"leave_type": "paid",
			"start_date": "2025-03-10",
			"end_date":   "2025-03-14",
			"reason":     "family trip",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var env response.ApiEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
		data := env.Data.(map[string]interface{})
		assert.Equal(t, "pending", data["status"])
		assert.Equal(t, "5", data["total_days"])
	})

	t.Run("accepts a request without a reason", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(ctx context.Context, actor authz.Identity, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error) {
				assert.Empty(t, req.Reason)
				return leave.LeaveResponse{ID: "lr-2", Status: leave.StatusPending}, nil
			},
		}
		router := newLeaveRouter(svc, authz.RoleEmployee)

		body, _ := json.Marshal(map[string]any{
			"leave_type": "sick",
			"start_date": "2025-03-10",
			"end_date":   "2025-03-10",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown leave type fails binding", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(ctx context.Context, actor authz.Identity, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error) {
				t.Fatal("service must not be reached on binding failure")
				return leave.LeaveResponse{}, nil
			},
		}
		router := newLeaveRouter(svc, authz.RoleEmployee)

		body, _ := json.Marshal(map[string]any{
			"leave_type": "sabbatical",
			"start_date": "2025-03-10",
			"end_date":   "2025-03-14",
			"reason":     "nope",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("insufficient balance surfaces its own code", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(ctx context.Context, actor authz.Identity, req leave.SubmitLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, balanceerrors.ErrInsufficientBalance
			},
		}
		router := newLeaveRouter(svc, authz.RoleEmployee)

		body, _ := json.Marshal(map[string]any{
			"leave_type": "paid",
			"start_date": "2025-03-10",
			"end_date":   "2025-03-14",
			"reason":     "too long",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var env response.ApiEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		errObj := env.Error.(map[string]interface{})
		assert.Equal(t, "INSUFFICIENT_BALANCE", errObj["code"])
	})
}

func TestLeaveHandler_Decisions(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		svc := &fakeLeaveService{
			approveFn: func(ctx context.Context, actor authz.Identity, id string) (leave.LeaveResponse, error) {
				assert.Equal(t, "lr-1", id)
				return leave.LeaveResponse{ID: id, Status: leave.StatusApproved}, nil
			},
		}
		router := newLeaveRouter(svc, authz.RoleHROfficer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/leaves/lr-1/approve", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("reject passes comments through", func(t *testing.T) {
		var gotComments string
		svc := &fakeLeaveService{
			rejectFn: func(ctx context.Context, actor authz.Identity, id string, comments string) (leave.LeaveResponse, error) {
				gotComments = comments
				return leave.LeaveResponse{ID: id, Status: leave.StatusRejected}, nil
			},
		}
		router := newLeaveRouter(svc, authz.RoleAdmin)

		body, _ := json.Marshal(map[string]string{"comments": "team at capacity"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/leaves/lr-1/reject", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "team at capacity", gotComments)
	})

	t.Run("reject with no body carries no comments", func(t *testing.T) {
		svc := &fakeLeaveService{
			rejectFn: func(ctx context.Context, actor authz.Identity, id string, comments string) (leave.LeaveResponse, error) {
				assert.Empty(t, comments)
				return leave.LeaveResponse{ID: id, Status: leave.StatusRejected}, nil
			},
		}
		router := newLeaveRouter(svc, authz.RoleAdmin)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/leaves/lr-1/reject", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("approve on decided request maps to invalid state", func(t *testing.T) {
		svc := &fakeLeaveService{
			approveFn: func(ctx context.Context, actor authz.Identity, id string) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrLeaveNotPending
			},
		}
		router := newLeaveRouter(svc, authz.RoleHROfficer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/leaves/lr-1/approve", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var env response.ApiEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		errObj := env.Error.(map[string]interface{})
		assert.Equal(t, "INVALID_STATE", errObj["code"])
	})

	t.Run("cancel", func(t *testing.T) {
		svc := &fakeLeaveService{
			cancelFn: func(ctx context.Context, actor authz.Identity, id string) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{ID: id, Status: leave.StatusCancelled}, nil
			},
		}
		router := newLeaveRouter(svc, authz.RoleEmployee)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/leaves/lr-1/cancel", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
