package overtime_test

import (
	"context"
	"testing"

	"go-timeoff/internal/lifecycle"
	"go-timeoff/internal/overtime"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestOvertimeRepositoryWithTx(t *testing.T) {
	ctx := context.Background()

	poolDB, poolMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer poolDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: poolDB}), &gorm.Config{
		Logger: logger.Discard,
	})
	assert.NoError(t, err)
	repo := overtime.NewRepository(gormDB)

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txDB.Close()

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "requester_id", "status", "cancel_status"}).
		AddRow(id.String(), uuid.New().String(), "PENDING", "NONE")

	txMock.ExpectBegin()
	txMock.ExpectQuery(`SELECT (.+) FROM "overtimes" (.+)FOR UPDATE`).WillReturnRows(rows)
	txMock.ExpectExec(`UPDATE "overtimes" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	txMock.ExpectRollback()

	tx, err := txDB.Begin()
	assert.NoError(t, err)

	qtx := repo.WithTx(tx)
	o, err := qtx.FindByIDForUpdate(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, id, o.ID)
	assert.Equal(t, lifecycle.StatusPending, o.Status)

	assert.NoError(t, qtx.Update(ctx, o))
	assert.NoError(t, tx.Rollback())

	// lock and write both ran on the transaction connection
	assert.NoError(t, txMock.ExpectationsWereMet())
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
