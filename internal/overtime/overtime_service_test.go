package overtime_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-timeoff/internal/authz"
	"go-timeoff/internal/directory"
	"go-timeoff/internal/lifecycle"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/overtime"
	overtimeerrors "go-timeoff/internal/overtime/errors"
	"go-timeoff/internal/txlog"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeOvertimeRepository struct {
	createFn            func(ctx context.Context, o *overtime.Overtime) error
	findAllFn           func(ctx context.Context) ([]overtime.Overtime, error)
	findByIDFn          func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error)
	findByIDForUpdateFn func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error)
	updateFn            func(ctx context.Context, o *overtime.Overtime) error
	deleteFn            func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeOvertimeRepository) WithTx(tx *sql.Tx) overtime.Repository { return f }

func (f *fakeOvertimeRepository) Create(ctx context.Context, o *overtime.Overtime) error {
	if f.createFn != nil {
		return f.createFn(ctx, o)
	}
	return nil
}

func (f *fakeOvertimeRepository) FindAll(ctx context.Context) ([]overtime.Overtime, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeOvertimeRepository) FindByID(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOvertimeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
	if f.findByIDForUpdateFn != nil {
		return f.findByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOvertimeRepository) Update(ctx context.Context, o *overtime.Overtime) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, o)
	}
	return nil
}

func (f *fakeOvertimeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeTxLogRepository struct {
	appendFn          func(ctx context.Context, entry *txlog.Entry) error
	listByRequestFn   func(ctx context.Context, requestID uuid.UUID) ([]txlog.Entry, error)
	deleteByRequestFn func(ctx context.Context, requestID uuid.UUID) error
}

func (f *fakeTxLogRepository) WithTx(tx *sql.Tx) txlog.Repository { return f }

func (f *fakeTxLogRepository) Append(ctx context.Context, entry *txlog.Entry) error {
	if f.appendFn != nil {
		return f.appendFn(ctx, entry)
	}
	return nil
}

func (f *fakeTxLogRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]txlog.Entry, error) {
	if f.listByRequestFn != nil {
		return f.listByRequestFn(ctx, requestID)
	}
	return nil, nil
}

func (f *fakeTxLogRepository) DeleteByRequest(ctx context.Context, requestID uuid.UUID) error {
	if f.deleteByRequestFn != nil {
		return f.deleteByRequestFn(ctx, requestID)
	}
	return nil
}

type fakeDirectoryRepository struct{}

func (f *fakeDirectoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDirectoryRepository) FindScope(ctx context.Context, id uuid.UUID) (directory.Scope, error) {
	return directory.Scope{}, nil
}

func (f *fakeDirectoryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return true, nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type overtimeServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service overtime.Service
	repo    *fakeOvertimeRepository
	logs    *fakeTxLogRepository
	outbox  *fakeOutboxRepository
}

func setupOvertimeServiceTest(t *testing.T) *overtimeServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeOvertimeRepository{}
	logs := &fakeTxLogRepository{}
	outbox := &fakeOutboxRepository{}
	evaluator := authz.NewEvaluator(authz.DefaultPolicy())

	svc := overtime.NewService(db, repo, logs, &fakeDirectoryRepository{}, outbox, nil, evaluator)

	return &overtimeServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		logs:    logs,
		outbox:  outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func pendingOvertime(requesterID uuid.UUID) *overtime.Overtime {
	return &overtime.Overtime{
		ID:          uuid.New(),
		RequesterID: requesterID,
		Date:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		StartTime:   "18:00",
		EndTime:     "21:00",
		State:       lifecycle.NewState(),
	}
}

func TestOvertimeService_Create(t *testing.T) {
	ctx := context.Background()
	requesterID := uuid.New()

	t.Run("computes hour total", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, requesterID.String(), overtime.CreateOvertimeRequest{
			Date:      "2024-01-10",
			StartTime: "18:00",
			EndTime:   "18:50",
			Reason:    "release support",
		})

		assert.NoError(t, err)
		assert.Equal(t, "0.83", resp.TotalHours)
		assert.Equal(t, "PENDING", resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("end before start crosses midnight", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, requesterID.String(), overtime.CreateOvertimeRequest{
			Date:      "2024-01-10",
			StartTime: "22:00",
			EndTime:   "02:00",
		})

		assert.NoError(t, err)
		assert.Equal(t, "4", resp.TotalHours)
	})

	t.Run("equal times are rejected", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)

		_, err := deps.service.Create(ctx, requesterID.String(), overtime.CreateOvertimeRequest{
			Date:      "2024-01-10",
			StartTime: "18:00",
			EndTime:   "18:00",
		})

		assert.ErrorIs(t, err, overtimeerrors.ErrZeroDuration)
	})

	t.Run("malformed clock time", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)

		_, err := deps.service.Create(ctx, requesterID.String(), overtime.CreateOvertimeRequest{
			Date:      "2024-01-10",
			StartTime: "6pm",
			EndTime:   "21:00",
		})

		assert.ErrorIs(t, err, overtimeerrors.ErrInvalidTimeFormat)
	})
}

func TestOvertimeService_Approve(t *testing.T) {
	ctx := context.Background()
	requesterID := uuid.New()

	t.Run("supervisor approves and the transition is logged", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		o := pendingOvertime(requesterID)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
			return o, nil
		}

		var logged []txlog.Entry
		deps.logs.appendFn = func(ctx context.Context, entry *txlog.Entry) error {
			logged = append(logged, *entry)
			return nil
		}

		supervisor := authz.Actor{ID: uuid.New(), Role: authz.RoleSupervisor}
		resp, err := deps.service.Approve(ctx, supervisor, o.ID.String(), "fine")

		assert.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		assert.Len(t, logged, 1)
		assert.Equal(t, txlog.KindOvertime, logged[0].RequestKind)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "overtime_request", deps.outbox.created[0].AggregateType)
	})

	t.Run("owner cannot approve own request", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		o := pendingOvertime(requesterID)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
			return o, nil
		}

		owner := authz.Actor{ID: requesterID, Role: authz.RoleEmployee}
		_, err := deps.service.Approve(ctx, owner, o.ID.String(), "")

		assert.ErrorIs(t, err, overtimeerrors.ErrForbidden)
	})
}

func TestOvertimeService_CancelFlow(t *testing.T) {
	ctx := context.Background()
	requesterID := uuid.New()
	owner := authz.Actor{ID: requesterID, Role: authz.RoleEmployee}
	supervisor := authz.Actor{ID: uuid.New(), Role: authz.RoleSupervisor}

	approvedOvertime := func() *overtime.Overtime {
		o := pendingOvertime(requesterID)
		o.Status = lifecycle.StatusApproved
		return o
	}

	t.Run("owner requests cancellation", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		o := approvedOvertime()
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
			return o, nil
		}

		resp, err := deps.service.RequestCancel(ctx, owner, o.ID.String(), "schedule moved")

		assert.NoError(t, err)
		assert.Equal(t, "CANCEL_PENDING", resp.CancelStatus)
	})

	t.Run("second cancellation request conflicts", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		o := approvedOvertime()
		o.CancelStatus = lifecycle.CancelPending
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
			return o, nil
		}

		_, err := deps.service.RequestCancel(ctx, owner, o.ID.String(), "again")

		assert.ErrorIs(t, err, overtimeerrors.ErrCancelAlreadyPending)
	})

	t.Run("approved cancellation hides the overtime", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		o := approvedOvertime()
		o.CancelStatus = lifecycle.CancelPending
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
			return o, nil
		}

		resp, err := deps.service.ApproveCancel(ctx, supervisor, o.ID.String(), "")

		assert.NoError(t, err)
		assert.True(t, resp.IsCancelled)
		assert.Equal(t, "CANCELLED", resp.Status)
	})
}

func TestOvertimeService_Update(t *testing.T) {
	ctx := context.Background()
	requesterID := uuid.New()
	owner := authz.Actor{ID: requesterID, Role: authz.RoleEmployee}

	t.Run("recomputes the hour total", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		o := pendingOvertime(requesterID)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
			return o, nil
		}

		resp, err := deps.service.Update(ctx, owner, o.ID.String(), overtime.UpdateOvertimeRequest{
			Date:      "2024-01-11",
			StartTime: "19:00",
			EndTime:   "22:30",
		})

		assert.NoError(t, err)
		assert.Equal(t, "3.5", resp.TotalHours)
	})

	t.Run("approved overtime is not editable", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		o := pendingOvertime(requesterID)
		o.Status = lifecycle.StatusApproved
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
			return o, nil
		}

		_, err := deps.service.Update(ctx, owner, o.ID.String(), overtime.UpdateOvertimeRequest{
			Date:      "2024-01-11",
			StartTime: "19:00",
			EndTime:   "22:30",
		})

		assert.ErrorIs(t, err, overtimeerrors.ErrOvertimeNotEditable)
	})
}

func TestOvertimeService_Delete(t *testing.T) {
	ctx := context.Background()
	requesterID := uuid.New()
	owner := authz.Actor{ID: requesterID, Role: authz.RoleEmployee}

	t.Run("removes the log with the request", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		o := pendingOvertime(requesterID)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
			return o, nil
		}

		var logsDeleted bool
		deps.logs.deleteByRequestFn = func(ctx context.Context, requestID uuid.UUID) error {
			logsDeleted = true
			return nil
		}

		err := deps.service.Delete(ctx, owner, o.ID.String())

		assert.NoError(t, err)
		assert.True(t, logsDeleted)
	})

	t.Run("owner cannot delete a rejected overtime", func(t *testing.T) {
		deps := setupOvertimeServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		o := pendingOvertime(requesterID)
		o.Status = lifecycle.StatusRejected
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*overtime.Overtime, error) {
			return o, nil
		}

		err := deps.service.Delete(ctx, owner, o.ID.String())

		assert.ErrorIs(t, err, overtimeerrors.ErrOvertimeNotDeletable)
	})
}
