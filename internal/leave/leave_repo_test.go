package leave_test

import (
	"context"
	"testing"
	"time"

	"go-timeoff/internal/leave"
	"go-timeoff/internal/lifecycle"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLeaveRepositoryWithTx(t *testing.T) {
	ctx := context.Background()

	openRepo := func(t *testing.T) (leave.Repository, sqlmock.Sqlmock) {
		t.Helper()
		poolDB, poolMock, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { poolDB.Close() })

		gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: poolDB}), &gorm.Config{
			Logger: logger.Discard,
		})
		assert.NoError(t, err)
		return leave.NewRepository(gormDB), poolMock
	}

	t.Run("update joins the caller's transaction", func(t *testing.T) {
		repo, poolMock := openRepo(t)

		txDB, txMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer txDB.Close()

		txMock.ExpectBegin()
		txMock.ExpectExec(`UPDATE "leaves" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		txMock.ExpectRollback()

		tx, err := txDB.Begin()
		assert.NoError(t, err)

		l := &leave.Leave{
			ID:          uuid.New(),
			RequesterID: uuid.New(),
			LeaveType:   "ANNUAL",
			LeaveFormat: "FULL_DAY",
			StartDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
			State:       lifecycle.NewState(),
		}
		assert.NoError(t, repo.WithTx(tx).Update(ctx, l))
		assert.NoError(t, tx.Rollback())

		// the write went to the transaction connection, the pool saw nothing
		assert.NoError(t, txMock.ExpectationsWereMet())
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("row lock is taken inside the transaction", func(t *testing.T) {
		repo, poolMock := openRepo(t)

		txDB, txMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer txDB.Close()

		id := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "requester_id", "status", "cancel_status"}).
			AddRow(id.String(), uuid.New().String(), "PENDING", "NONE")

		txMock.ExpectBegin()
		txMock.ExpectQuery(`SELECT (.+) FROM "leaves" (.+)FOR UPDATE`).WillReturnRows(rows)
		txMock.ExpectRollback()

		tx, err := txDB.Begin()
		assert.NoError(t, err)

		got, err := repo.WithTx(tx).FindByIDForUpdate(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, lifecycle.StatusPending, got.Status)
		assert.NoError(t, tx.Rollback())

		assert.NoError(t, txMock.ExpectationsWereMet())
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})
}
