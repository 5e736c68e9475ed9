package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-timeoff/internal/lifecycle"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context) ([]Leave, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Leave, error)
	Update(ctx context.Context, l *Leave) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasOverlappingPeriod(ctx context.Context, requesterID uuid.UUID, startDate, endDate time.Time, excludeID *uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds the repository to the caller's open transaction so every
// statement, the row lock included, joins the same commit or rollback.
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

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

// FindByIDForUpdate takes a row lock so concurrent transitions against the
// same leave serialize on the database.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) Update(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Leave{}, "id = ?", id).Error
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, requesterID uuid.UUID, startDate, endDate time.Time, excludeID *uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("requester_id = ?", requesterID).
		Where("status <> ?", lifecycle.StatusRejected).
		Where("is_cancelled = ?", false).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate)

	if excludeID != nil {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}
