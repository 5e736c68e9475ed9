package txlog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

//go:generate mockgen -source=txlog_repo.go -destination=mock/txlog_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Append(ctx context.Context, entry *Entry) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Entry, error)
	DeleteByRequest(ctx context.Context, requestID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds the repository to the caller's open transaction so an
// append commits or rolls back together with the request it records.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	txdb, err := gorm.Open(postgres.New(postgres.Config{Conn: tx}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 r.db.Config.Logger,
	})
	if err != nil {
		txdb = r.db.Session(&gorm.Session{NewDB: true})
		_ = txdb.AddError(err)
	}
	return &repository{db: txdb}
}

func (r *repository) Append(ctx context.Context, entry *Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// DeleteByRequest is only called when the request itself is removed; the log
// is otherwise append-only. Entries are soft-deleted the same way the request
// row is, so the trail can be recovered with it.
func (r *repository) DeleteByRequest(ctx context.Context, requestID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Delete(&Entry{}).Error
}
