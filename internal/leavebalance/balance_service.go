package leavebalance

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go-hrms/internal/authz"
	balanceerrors "go-hrms/internal/leavebalance/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the ledger. Debit is the only write path for used and
// remaining days outside of seeding; request-handling code never
// touches balance rows directly.
//
type Service interface {
	WithTx(tx *gorm.DB) Service
	GetBalances(ctx context.Context, actor authz.Identity, employeeID string) ([]BalanceResponse, error)
	HasSufficient(ctx context.Context, employeeID, leaveType string, year int, amount decimal.Decimal) (bool, error)
	Debit(ctx context.Context, employeeID, leaveType string, year int, amount decimal.Decimal) error
	Seed(ctx context.Context, employeeID string, year int, allotments map[string]decimal.Decimal) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	gate   authz.Service
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, gate authz.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavebalance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.service")
	}
	return &service{db: db, repo: repo, gate: gate, logger: l}
}

// WithTx binds the ledger to a caller-owned transaction so a debit can
// commit or roll back together with the caller's own writes.
func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{db: tx, repo: s.repo.WithTx(tx), gate: s.gate, logger: s.logger}
}

func (s *service) GetBalances(ctx context.Context, actor authz.Identity, employeeID string) ([]BalanceResponse, error) {
	targetID := employeeID
	if targetID == "" {
		// Caller is reading their own balances.
		own, err := s.repo.FindEmployeeIDByUser(ctx, actor.UserID)
		if err != nil {
			s.logger.Error("get balances resolve own profile failed", zap.Error(err))
			return nil, err
		}
		if own == "" {
			return nil, balanceerrors.ErrEmployeeProfileNotFound
		}
		targetID = own
	} else {
		if _, err := s.gate.Authorize(actor, "leave_balance", "read_any"); err != nil {
			s.logger.Warn("get balances forbidden",
				zap.String("user_id", actor.UserID),
				zap.String("employee_id", employeeID),
			)
			return nil, err
		}
		exists, err := s.repo.EmployeeExists(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, balanceerrors.ErrEmployeeProfileNotFound
		}
	}

	balances, err := s.repo.FindAllByEmployeeAndYear(ctx, targetID, time.Now().UTC().Year())
	if err != nil {
		s.logger.Error("get balances query failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(balances), nil
}

// HasSufficient reports whether a ledger row exists with at least
// amount remaining. Unpaid leave bypasses the ledger by policy.
func (s *service) HasSufficient(ctx context.Context, employeeID, leaveType string, year int, amount decimal.Decimal) (bool, error) {
	if leaveType == TypeUnpaid {
		return true, nil
	}

	b, err := s.repo.FindByTriple(ctx, employeeID, leaveType, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return b.RemainingDays.GreaterThanOrEqual(amount), nil
}

// Debit moves amount from remaining to used under a row lock. It must
// run inside the caller's transaction (see WithTx); the re-check
// against the locked row is what keeps two racing approvals from both
// succeeding on the same balance.
func (s *service) Debit(ctx context.Context, employeeID, leaveType string, year int, amount decimal.Decimal) error {
	if !IsValidType(leaveType) {
		return balanceerrors.ErrInvalidLeaveType
	}
	if !amount.IsPositive() {
		return balanceerrors.ErrInvalidDebitAmount
	}

	b, err := s.repo.FindByTripleForUpdate(ctx, employeeID, leaveType, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return balanceerrors.ErrBalanceNotFound
		}
		s.logger.Error("debit lock balance failed", zap.Error(err))
		return err
	}

	if b.RemainingDays.LessThan(amount) {
		s.logger.Warn("debit refused, insufficient balance",
			zap.String("employee_id", employeeID),
			zap.String("leave_type", leaveType),
			zap.Int("year", year),
			zap.String("amount", amount.String()),
			zap.String("remaining_days", b.RemainingDays.String()),
		)
		return balanceerrors.ErrInsufficientBalance
	}

	b.UsedDays = b.UsedDays.Add(amount)
	b.RemainingDays = b.TotalDays.Sub(b.UsedDays)

	if err := s.repo.Update(ctx, b); err != nil {
		s.logger.Error("debit persist failed", zap.Error(err))
		return err
	}

	s.logger.Info("balance debited",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", leaveType),
		zap.Int("year", year),
		zap.String("amount", amount.String()),
		zap.String("remaining_days", b.RemainingDays.String()),
	)
	return nil
}

// Seed creates one row per leave type with nothing used yet. Seeding
// the same employee and year twice reports ErrBalanceAlreadySeeded so
// event redelivery stays harmless.
func (s *service) Seed(ctx context.Context, employeeID string, year int, allotments map[string]decimal.Decimal) error {
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return balanceerrors.ErrEmployeeProfileNotFound
	}

	types := make([]string, 0, len(allotments))
	for leaveType := range allotments {
		if !IsValidType(leaveType) {
			return balanceerrors.ErrInvalidLeaveType
		}
		types = append(types, leaveType)
	}
	sort.Strings(types)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		for _, leaveType := range types {
			total := allotments[leaveType]
			b := &LeaveBalance{
				ID:            uuid.New(),
				EmployeeID:    employeeUUID,
				LeaveType:     leaveType,
				Year:          year,
				TotalDays:     total,
				UsedDays:      decimal.Zero,
				RemainingDays: total,
			}
			if err := qtx.Create(ctx, b); err != nil {
				return mapRepositoryError(err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, balanceerrors.ErrBalanceAlreadySeeded) {
			s.logger.Error("seed balances failed",
				zap.String("employee_id", employeeID),
				zap.Int("year", year),
				zap.Error(err),
			)
		}
		return err
	}

	s.logger.Info("balances seeded",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("rows", len(types)),
	)
	return nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_leave_balances_triple" {
			return balanceerrors.ErrBalanceAlreadySeeded
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_leave_balances_triple") {
		return balanceerrors.ErrBalanceAlreadySeeded
	}

	return err
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:            b.ID.String(),
		EmployeeID:    b.EmployeeID.String(),
		LeaveType:     b.LeaveType,
		Year:          b.Year,
		TotalDays:     b.TotalDays,
		UsedDays:      b.UsedDays,
		RemainingDays: b.RemainingDays,
	}
}

func mapToListResponse(balances []LeaveBalance) []BalanceResponse {
	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToResponse(b)
	}
	return resp
}
