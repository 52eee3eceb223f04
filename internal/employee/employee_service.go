package employee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/events"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const (
	EmployeeOptionsKey = "employees:options"

	// Counter namespace for the per-year code serial.
	employeeCodeCounter = "employee_code"

	// A code collision means another onboarding won the same serial in
	// a racing transaction; the whole transaction restarts so the
	// counter hands out a fresh value.
	maxOnboardAttempts = 3
)

type Service interface {
	Onboard(ctx context.Context, req OnboardEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]EmployeeOption, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetMe(ctx context.Context, userID string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db      *gorm.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counterRepo,
		outbox:  outboxRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

func (s *service) Onboard(ctx context.Context, req OnboardEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("onboard employee requested",
		zap.String("request_id", rid),
		zap.String("user_id", req.UserID),
		zap.String("work_email", req.WorkEmail),
	)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return EmployeeResponse{}, apperror.InvalidField("user_id")
	}
	joiningDate, err := time.Parse("2006-01-02", req.JoiningDate)
	if err != nil {
		s.logger.Warn("onboard employee invalid joining_date",
			zap.String("joining_date", req.JoiningDate),
		)
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoiningDate
	}

	var empl *EmployeeProfile
	for attempt := 1; attempt <= maxOnboardAttempts; attempt++ {
		empl, err = s.tryOnboard(ctx, rid, userID, joiningDate, req)
		if err == nil {
			break
		}
		if errors.Is(err, employeeerrors.ErrEmployeeCodeCollision) && attempt < maxOnboardAttempts {
			s.logger.Warn("onboard employee code collision, retrying",
				zap.String("request_id", rid),
				zap.Int("attempt", attempt),
			)
			continue
		}
		s.logger.Error("onboard employee failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)

	s.logger.Info("onboard employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("employee_code", empl.EmployeeCode),
	)
	return mapToResponse(*empl), nil
}

// tryOnboard runs one complete onboarding transaction. A failed insert
// aborts the postgres transaction, so retries must restart from Begin
// rather than re-issue the insert.
func (s *service) tryOnboard(
	ctx context.Context,
	rid string,
	userID uuid.UUID,
	joiningDate time.Time,
	req OnboardEmployeeRequest,
) (*EmployeeProfile, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	year := joiningDate.Year()
	serial, err := s.counter.WithTx(tx).GetNextValue(ctx, employeeCodeCounter, year)
	if err != nil {
		return nil, err
	}

	empl := &EmployeeProfile{
		ID:           uuid.New(),
		UserID:       userID,
		EmployeeCode: buildEmployeeCode(req.FirstName, req.LastName, year, serial),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		WorkEmail:    req.WorkEmail,
		Phone:        req.Phone,
		Department:   req.Department,
		Designation:  req.Designation,
		JoiningDate:  joiningDate,
	}

	if err := qtx.Create(ctx, empl); err != nil {
		return nil, mapRepositoryError(err)
	}

	event := events.EmployeeOnboardedEvent{
		EventType:   "employee_onboarded",
		RequestID:   rid,
		EmployeeID:  empl.ID.String(),
		JoiningYear: year,
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "employee",
		AggregateID:   empl.ID.String(),
		EventType:     event.EventType,
		Topic:         events.EmployeeOnboardedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return empl, nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	emps, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(emps), nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOption, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, EmployeeOptionsKey).Result(); err == nil {
			var resp []EmployeeOption
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Collapse a burst of cache misses into a single query.
	v, err, _ := s.sf.Do(EmployeeOptionsKey, func() (interface{}, error) {
		emps, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOption, len(emps))
		for i, e := range emps {
			resp[i] = EmployeeOption{
				ID:           e.ID.String(),
				EmployeeCode: e.EmployeeCode,
				FullName:     e.FullName(),
			}
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, EmployeeOptionsKey, jsonData, time.Hour)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]EmployeeOption), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (EmployeeResponse, error) {
	empl, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested", zap.String("employee_id", id))

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(tx.Error))
		return EmployeeResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// Code, user link and joining date are immutable after onboarding.
	empl.FirstName = req.FirstName
	empl.LastName = req.LastName
	empl.WorkEmail = req.WorkEmail
	empl.Phone = req.Phone
	empl.Department = req.Department
	empl.Designation = req.Designation

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)

	s.logger.Info("update employee success", zap.String("employee_id", id))
	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	s.logger.Debug("delete employee requested", zap.String("employee_id", id))

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	s.invalidateOptionsCache(ctx)

	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, EmployeeOptionsKey).Err(); err != nil {
		s.logger.Error("employee options cache invalidation failed",
			zap.String("key", EmployeeOptionsKey),
			zap.Error(err),
		)
	}
}

var codeCaser = cases.Upper(language.Und)

// buildEmployeeCode produces codes like OIJADO20250007: a fixed org
// prefix, two letters from each name, the joining year and a per-year
// serial.
func buildEmployeeCode(firstName, lastName string, year int, serial int64) string {
	return fmt.Sprintf("OI%s%s%d%04d", initials(firstName), initials(lastName), year, serial)
}

func initials(name string) string {
	runes := []rune(codeCaser.String(name))
	switch len(runes) {
	case 0:
		return "XX"
	case 1:
		return string(runes[0]) + "X"
	default:
		return string(runes[:2])
	}
}

func mapToResponse(empl EmployeeProfile) EmployeeResponse {
	return EmployeeResponse{
		ID:           empl.ID.String(),
		UserID:       empl.UserID.String(),
		EmployeeCode: empl.EmployeeCode,
		FirstName:    empl.FirstName,
		LastName:     empl.LastName,
		FullName:     empl.FullName(),
		WorkEmail:    empl.WorkEmail,
		Phone:        empl.Phone,
		Department:   empl.Department,
		Designation:  empl.Designation,
		JoiningDate:  empl.JoiningDate.Format("2006-01-02"),
	}
}

func mapToListResponse(emps []EmployeeProfile) []EmployeeResponse {
	res := make([]EmployeeResponse, len(emps))
	for i, e := range emps {
		res[i] = mapToResponse(e)
	}
	return res
}
