package overtime

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=overtime_repo.go -destination=mock/overtime_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, o *Overtime) error
	FindAll(ctx context.Context) ([]Overtime, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Overtime, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Overtime, error)
	Update(ctx context.Context, o *Overtime) error
	Delete(ctx context.Context, id uuid.UUID) error
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

func (r *repository) Create(ctx context.Context, o *Overtime) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Overtime, error) {
	var overtimes []Overtime
	err := r.db.WithContext(ctx).
		Order("date DESC, start_time DESC").
		Find(&overtimes).Error
	return overtimes, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Overtime, error) {
	var o Overtime
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	return &o, err
}

// FindByIDForUpdate takes a row lock so concurrent transitions against the
// same overtime serialize on the database.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Overtime, error) {
	var o Overtime
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, "id = ?", id).Error
	return &o, err
}

func (r *repository) Update(ctx context.Context, o *Overtime) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Overtime{}, "id = ?", id).Error
}
