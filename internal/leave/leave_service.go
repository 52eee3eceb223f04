package leave

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-hrms/internal/authz"
	"go-hrms/internal/events"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/leavebalance"
	balanceerrors "go-hrms/internal/leavebalance/errors"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Submit(ctx context.Context, actor authz.Identity, req SubmitLeaveRequest) (LeaveResponse, error)
	ListMine(ctx context.Context, actor authz.Identity) ([]LeaveResponse, error)
	ListAll(ctx context.Context, actor authz.Identity, status string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actor authz.Identity, id string) (LeaveResponse, error)
	Approve(ctx context.Context, actor authz.Identity, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor authz.Identity, id string, comments string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor authz.Identity, id string) (LeaveResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	ledger leavebalance.Service
	gate   authz.Service
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	ledger leavebalance.Service,
	gate authz.Service,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, ledger: ledger, gate: gate, outbox: outbox, logger: l}
}

// Submit records a pending request. The sufficiency check here is
// advisory and debits nothing; the binding check happens again at
// approval, against the locked balance row.
func (s *service) Submit(ctx context.Context, actor authz.Identity, req SubmitLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("submit leave requested",
		zap.String("user_id", actor.UserID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	emp, err := s.repo.FindEmployeeByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrEmployeeProfileNotFound
		}
		s.logger.Error("submit leave resolve profile failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	startDate, endDate, totalDays, err := validateSubmitRequest(req)
	if err != nil {
		s.logger.Warn("submit leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	enough, err := s.ledger.HasSufficient(ctx, emp.ID.String(), req.LeaveType, startDate.Year(), totalDays)
	if err != nil {
		s.logger.Error("submit leave sufficiency check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !enough {
		s.logger.Warn("submit leave insufficient balance",
			zap.String("employee_id", emp.ID.String()),
			zap.String("leave_type", req.LeaveType),
			zap.String("total_days", totalDays.String()),
		)
		return LeaveResponse{}, balanceerrors.ErrInsufficientBalance
	}

	l := &LeaveRequest{
		ID:         uuid.New(),
		EmployeeID: emp.ID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  totalDays,
		Reason:     req.Reason,
		Status:     StatusPending,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("submit leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", emp.ID.String()),
		zap.String("leave_type", l.LeaveType),
		zap.String("total_days", l.TotalDays.String()),
	)
	return mapToResponse(*l), nil
}

func (s *service) ListMine(ctx context.Context, actor authz.Identity) ([]LeaveResponse, error) {
	emp, err := s.repo.FindEmployeeByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrEmployeeProfileNotFound
		}
		return nil, err
	}

	leaves, err := s.repo.FindAllByEmployee(ctx, emp.ID.String())
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) ListAll(ctx context.Context, actor authz.Identity, status string) ([]LeaveResponse, error) {
	if _, err := s.gate.Authorize(actor, "leave", "read_all"); err != nil {
		return nil, err
	}

	leaves, err := s.repo.FindAllWithEmployee(ctx, status)
	if err != nil {
		return nil, err
	}

	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l.LeaveRequest)
		resp[i].EmployeeCode = l.EmployeeCode
		resp[i].EmployeeName = l.FullName
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, actor authz.Identity, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	allowed, err := s.gate.Enforce(authz.EnforceRequest{Role: actor.Role, Resource: "leave", Action: "read_all"})
	if err != nil {
		return LeaveResponse{}, err
	}
	if !allowed {
		emp, err := s.repo.FindEmployeeByUser(ctx, actor.UserID)
		if err != nil || emp.ID != l.EmployeeID {
			return LeaveResponse{}, apperror.ErrForbidden
		}
	}

	return mapToResponse(*l), nil
}

// Approve is the only write path into the ledger from this module. The
// request row and the balance row are both locked inside one
// transaction, so the re-check and the debit cannot interleave with a
// concurrent approval.
func (s *service) Approve(ctx context.Context, actor authz.Identity, id string) (LeaveResponse, error) {
	s.logger.Debug("approve leave requested",
		zap.String("leave_id", id),
		zap.String("user_id", actor.UserID),
	)

	if _, err := s.gate.Authorize(actor, "leave", "approve"); err != nil {
		s.logger.Warn("approve leave forbidden",
			zap.String("leave_id", id),
			zap.String("user_id", actor.UserID),
		)
		return LeaveResponse{}, err
	}
	approverID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return LeaveResponse{}, apperror.ErrUnauthorized
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("approve leave begin tx failed", zap.Error(tx.Error))
		return LeaveResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("approve leave lock failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("approve leave not pending",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}

	// Unpaid leave never touches the ledger.
	if l.LeaveType != leavebalance.TypeUnpaid {
		if err := s.ledger.WithTx(tx).Debit(ctx, l.EmployeeID.String(), l.LeaveType, l.StartDate.Year(), l.TotalDays); err != nil {
			return LeaveResponse{}, err
		}
	}

	now := time.Now().UTC()
	l.Status = StatusApproved
	l.ApproverID = &approverID
	l.ApprovedAt = &now

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("approve leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.writeDecisionEvent(ctx, tx, l, actor.UserID); err != nil {
		s.logger.Error("approve leave outbox write failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("approve leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("approve leave success",
		zap.String("leave_id", id),
		zap.String("employee_id", l.EmployeeID.String()),
		zap.String("leave_type", l.LeaveType),
		zap.String("total_days", l.TotalDays.String()),
	)
	return mapToResponse(*l), nil
}

// Reject closes the request without touching the ledger.
func (s *service) Reject(ctx context.Context, actor authz.Identity, id string, comments string) (LeaveResponse, error) {
	s.logger.Debug("reject leave requested",
		zap.String("leave_id", id),
		zap.String("user_id", actor.UserID),
	)

	if _, err := s.gate.Authorize(actor, "leave", "approve"); err != nil {
		s.logger.Warn("reject leave forbidden",
			zap.String("leave_id", id),
			zap.String("user_id", actor.UserID),
		)
		return LeaveResponse{}, err
	}
	approverID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return LeaveResponse{}, apperror.ErrUnauthorized
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("reject leave begin tx failed", zap.Error(tx.Error))
		return LeaveResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("reject leave not pending",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}

	now := time.Now().UTC()
	l.Status = StatusRejected
	l.ApproverID = &approverID
	l.ApprovedAt = &now
	if comments != "" {
		l.Comments = &comments
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("reject leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.writeDecisionEvent(ctx, tx, l, actor.UserID); err != nil {
		s.logger.Error("reject leave outbox write failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("reject leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("reject leave success", zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

// Cancel is owner-only and only while the request is still pending.
// An approved request keeps its debit; there is no cancel-after-approve
// refund path.
func (s *service) Cancel(ctx context.Context, actor authz.Identity, id string) (LeaveResponse, error) {
	s.logger.Debug("cancel leave requested",
		zap.String("leave_id", id),
		zap.String("user_id", actor.UserID),
	)

	emp, err := s.repo.FindEmployeeByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrEmployeeProfileNotFound
		}
		return LeaveResponse{}, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("cancel leave begin tx failed", zap.Error(tx.Error))
		return LeaveResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.EmployeeID != emp.ID {
		s.logger.Warn("cancel leave not owner",
			zap.String("leave_id", id),
			zap.String("user_id", actor.UserID),
		)
		return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}

	l.Status = StatusCancelled
	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("cancel leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("cancel leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("cancel leave success", zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

func (s *service) writeDecisionEvent(ctx context.Context, tx *gorm.DB, l *LeaveRequest, decidedBy string) error {
	payload, err := json.Marshal(events.LeaveDecidedEvent{
		EventType:  "leave_decided",
		RequestID:  contextutil.GetRequestID(ctx),
		LeaveID:    l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		TotalDays:  l.TotalDays.String(),
		Status:     l.Status,
		DecidedBy:  decidedBy,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     "leave_decided",
		Topic:         events.LeaveDecidedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func validateSubmitRequest(req SubmitLeaveRequest) (time.Time, time.Time, decimal.Decimal, error) {
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, decimal.Decimal{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, decimal.Decimal{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, decimal.Decimal{}, leaveerrors.ErrInvalidDateRange
	}

	// The caller may override the inclusive day count, for half days
	// and non-working days in the range.
	var totalDays decimal.Decimal
	if req.TotalDays != nil {
		totalDays = *req.TotalDays
	} else {
		totalDays = decimal.NewFromInt(int64(endDate.Sub(startDate).Hours()/24) + 1)
	}
	if !totalDays.IsPositive() {
		return time.Time{}, time.Time{}, decimal.Decimal{}, leaveerrors.ErrInvalidTotalDays
	}

	return startDate, endDate, totalDays, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
		Reason:     l.Reason,
		Status:     l.Status,
		Comments:   l.Comments,
		CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.ApproverID != nil {
		v := l.ApproverID.String()
		resp.ApproverID = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.UTC().Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
