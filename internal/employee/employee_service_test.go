package employee_test

import (
	"context"
	"encoding/json"
	"testing"

	"go-hrms/internal/employee"
	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/events"
	"go-hrms/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	sharedcounter "go-hrms/internal/shared/counter"
)

type fakeEmployeeRepo struct {
	createFn      func(ctx context.Context, e *employee.EmployeeProfile) error
	findAllFn     func(ctx context.Context) ([]employee.EmployeeProfile, error)
	findOptionsFn func(ctx context.Context) ([]employee.EmployeeProfile, error)
	findByIDFn    func(ctx context.Context, id string) (*employee.EmployeeProfile, error)
	findByUserFn  func(ctx context.Context, userID string) (*employee.EmployeeProfile, error)
	updateFn      func(ctx context.Context, e *employee.EmployeeProfile) error
	deleteFn      func(ctx context.Context, id string) error
}

func (f *fakeEmployeeRepo) WithTx(tx *gorm.DB) employee.Repository { return f }

func (f *fakeEmployeeRepo) Create(ctx context.Context, e *employee.EmployeeProfile) error {
	return f.createFn(ctx, e)
}

func (f *fakeEmployeeRepo) FindAll(ctx context.Context) ([]employee.EmployeeProfile, error) {
	return f.findAllFn(ctx)
}

func (f *fakeEmployeeRepo) FindOptions(ctx context.Context) ([]employee.EmployeeProfile, error) {
	return f.findOptionsFn(ctx)
}

func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*employee.EmployeeProfile, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeEmployeeRepo) FindByUser(ctx context.Context, userID string) (*employee.EmployeeProfile, error) {
	return f.findByUserFn(ctx, userID)
}

func (f *fakeEmployeeRepo) Update(ctx context.Context, e *employee.EmployeeProfile) error {
	return f.updateFn(ctx, e)
}

func (f *fakeEmployeeRepo) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

type fakeCounter struct {
	next  int64
	calls []int
}

func (f *fakeCounter) WithTx(tx *gorm.DB) sharedcounter.Repository { return f }

func (f *fakeCounter) GetNextValue(ctx context.Context, counterType string, year int) (int64, error) {
	f.next++
	f.calls = append(f.calls, year)
	return f.next, nil
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *gorm.DB) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gdb, mock
}

func onboardRequest() employee.OnboardEmployeeRequest {
	return employee.OnboardEmployeeRequest{
		UserID:      uuid.NewString(),
		FirstName:   "Jane",
		LastName:    "Doe",
		WorkEmail:   "jane.doe@orbit.example",
		Phone:       "+15550100",
		Department:  "Engineering",
		Designation: "Backend Engineer",
		JoiningDate: "2025-02-17",
	}
}

func TestEmployeeService_Onboard(t *testing.T) {
	t.Run("generates code and queues the lifecycle event", func(t *testing.T) {
		gdb, mock := newMockGorm(t)

		var created *employee.EmployeeProfile
		repo := &fakeEmployeeRepo{
			createFn: func(ctx context.Context, e *employee.EmployeeProfile) error {
				created = e
				return nil
			},
		}
		counter := &fakeCounter{next: 6}
		outbox := &fakeOutbox{}
		svc := employee.NewService(gdb, repo, counter, outbox, nil)

		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.Onboard(context.Background(), onboardRequest())
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())

		assert.Equal(t, "OIJADO20250007", resp.EmployeeCode)
		assert.Equal(t, "Jane Doe", resp.FullName)
		assert.Equal(t, []int{2025}, counter.calls)
		assert.Equal(t, created.EmployeeCode, resp.EmployeeCode)

		require.Len(t, outbox.created, 1)
		assert.Equal(t, events.EmployeeOnboardedTopic, outbox.created[0].Topic)
		assert.Equal(t, "employee_onboarded", outbox.created[0].EventType)

		var evt events.EmployeeOnboardedEvent
		assert.NoError(t, json.Unmarshal(outbox.created[0].Payload, &evt))
		assert.Equal(t, created.ID.String(), evt.EmployeeID)
		assert.Equal(t, 2025, evt.JoiningYear)
	})

	t.Run("missing last name pads the code", func(t *testing.T) {
		gdb, mock := newMockGorm(t)

		repo := &fakeEmployeeRepo{
			createFn: func(ctx context.Context, e *employee.EmployeeProfile) error { return nil },
		}
		svc := employee.NewService(gdb, repo, &fakeCounter{}, &fakeOutbox{}, nil)

		mock.ExpectBegin()
		mock.ExpectCommit()

		req := onboardRequest()
		req.FirstName = "Prince"
		req.LastName = ""
		resp, err := svc.Onboard(context.Background(), req)
		assert.NoError(t, err)
		assert.Equal(t, "OIPRXX20250001", resp.EmployeeCode)
	})

	t.Run("single letter name pads the initials", func(t *testing.T) {
		gdb, mock := newMockGorm(t)

		repo := &fakeEmployeeRepo{
			createFn: func(ctx context.Context, e *employee.EmployeeProfile) error { return nil },
		}
		svc := employee.NewService(gdb, repo, &fakeCounter{}, &fakeOutbox{}, nil)

		mock.ExpectBegin()
		mock.ExpectCommit()

		req := onboardRequest()
		req.FirstName = "Q"
		req.LastName = "Li"
		resp, err := svc.Onboard(context.Background(), req)
		assert.NoError(t, err)
		assert.Equal(t, "OIQXLI20250001", resp.EmployeeCode)
	})

	t.Run("code collision restarts the whole transaction", func(t *testing.T) {
		gdb, mock := newMockGorm(t)

		attempts := 0
		repo := &fakeEmployeeRepo{
			createFn: func(ctx context.Context, e *employee.EmployeeProfile) error {
				attempts++
				if attempts == 1 {
					return &pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_profiles_code"}
				}
				return nil
			},
		}
		counter := &fakeCounter{}
		svc := employee.NewService(gdb, repo, counter, &fakeOutbox{}, nil)

		mock.ExpectBegin()
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.Onboard(context.Background(), onboardRequest())
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, 2, attempts)
		// Second attempt drew a fresh serial.
		assert.Equal(t, "OIJADO20250002", resp.EmployeeCode)
	})

	t.Run("duplicate work email does not retry", func(t *testing.T) {
		gdb, mock := newMockGorm(t)

		attempts := 0
		repo := &fakeEmployeeRepo{
			createFn: func(ctx context.Context, e *employee.EmployeeProfile) error {
				attempts++
				return &pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_profiles_email"}
			},
		}
		svc := employee.NewService(gdb, repo, &fakeCounter{}, &fakeOutbox{}, nil)

		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Onboard(context.Background(), onboardRequest())
		assert.ErrorIs(t, err, employeeerrors.ErrWorkEmailAlreadyExists)
		assert.Equal(t, 1, attempts)
	})

	t.Run("invalid joining date", func(t *testing.T) {
		svc := employee.NewService(nil, &fakeEmployeeRepo{}, &fakeCounter{}, &fakeOutbox{}, nil)

		req := onboardRequest()
		req.JoiningDate = "17-02-2025"
		_, err := svc.Onboard(context.Background(), req)
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidJoiningDate)
	})
}

func TestEmployeeService_Reads(t *testing.T) {
	empID := uuid.New()
	userID := uuid.New()

	profile := &employee.EmployeeProfile{
		ID:           empID,
		UserID:       userID,
		EmployeeCode: "OIJADO20250007",
		FirstName:    "Jane",
		LastName:     "Doe",
		WorkEmail:    "jane.doe@orbit.example",
	}

	t.Run("get me resolves by user", func(t *testing.T) {
		repo := &fakeEmployeeRepo{
			findByUserFn: func(ctx context.Context, uid string) (*employee.EmployeeProfile, error) {
				assert.Equal(t, userID.String(), uid)
				return profile, nil
			},
		}
		svc := employee.NewService(nil, repo, &fakeCounter{}, &fakeOutbox{}, nil)

		resp, err := svc.GetMe(context.Background(), userID.String())
		assert.NoError(t, err)
		assert.Equal(t, empID.String(), resp.ID)
	})

	t.Run("get me without profile maps to not found", func(t *testing.T) {
		repo := &fakeEmployeeRepo{
			findByUserFn: func(ctx context.Context, uid string) (*employee.EmployeeProfile, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := employee.NewService(nil, repo, &fakeCounter{}, &fakeOutbox{}, nil)

		_, err := svc.GetMe(context.Background(), userID.String())
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("options trims the profile", func(t *testing.T) {
		repo := &fakeEmployeeRepo{
			findOptionsFn: func(ctx context.Context) ([]employee.EmployeeProfile, error) {
				return []employee.EmployeeProfile{*profile}, nil
			},
		}
		svc := employee.NewService(nil, repo, &fakeCounter{}, &fakeOutbox{}, nil)

		opts, err := svc.GetOptions(context.Background())
		assert.NoError(t, err)
		require.Len(t, opts, 1)
		assert.Equal(t, "Jane Doe", opts[0].FullName)
		assert.Equal(t, "OIJADO20250007", opts[0].EmployeeCode)
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	t.Run("missing row maps to not found", func(t *testing.T) {
		repo := &fakeEmployeeRepo{
			deleteFn: func(ctx context.Context, id string) error {
				return gorm.ErrRecordNotFound
			},
		}
		svc := employee.NewService(nil, repo, &fakeCounter{}, &fakeOutbox{}, nil)

		err := svc.Delete(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}
