package leave

import (
	"encoding/json"
	"net/http"
	"time"

	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

// NewHandlerWithRedis additionally caches successful submit responses
// under the caller's Idempotency-Key.
func NewHandlerWithRedis(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	h := NewHandler(service, logger...)
	h.rdb = rdb
	return h
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Submit(c *gin.Context) {
	actor := middleware.IdentityFromContext(c)

	var req SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http submit leave validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), actor, req)
	if err != nil {
		h.releaseIdempotencyLock(c)
		h.writeServiceError(c, err)
		return
	}

	h.cacheIdempotentResponse(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListMine(c *gin.Context) {
	actor := middleware.IdentityFromContext(c)

	resp, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListAll(c *gin.Context) {
	actor := middleware.IdentityFromContext(c)

	resp, err := h.service.ListAll(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListPending(c *gin.Context) {
	actor := middleware.IdentityFromContext(c)

	resp, err := h.service.ListAll(c.Request.Context(), actor, StatusPending)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	actor := middleware.IdentityFromContext(c)

	resp, err := h.service.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	actor := middleware.IdentityFromContext(c)

	resp, err := h.service.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	actor := middleware.IdentityFromContext(c)

	// Comments are optional; a rejection may carry no body at all.
	var req RejectLeaveRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("http reject leave validation failed", zap.Error(err))
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid input", err.Error())
			return
		}
	}

	resp, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"), req.Comments)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	actor := middleware.IdentityFromContext(c)

	resp, err := h.service.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) cacheIdempotentResponse(c *gin.Context, resp LeaveResponse) {
	if h.rdb == nil {
		return
	}
	cacheKey := c.GetString("idempotency_cache_key")
	lockKey := c.GetString("idempotency_lock_key")
	if cacheKey == "" {
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := h.rdb.Set(c.Request.Context(), cacheKey, body, time.Hour).Err(); err != nil {
		h.logger.Warn("idempotency cache write failed", zap.Error(err))
	}
	h.rdb.Del(c.Request.Context(), lockKey)
}

// releaseIdempotencyLock lets a failed submit be retried with the same
// key instead of waiting out the lock expiry.
func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	if lockKey := c.GetString("idempotency_lock_key"); lockKey != "" {
		h.rdb.Del(c.Request.Context(), lockKey)
	}
}
