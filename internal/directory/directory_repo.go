package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=directory_repo.go -destination=mock/directory_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	FindScope(ctx context.Context, id uuid.UUID) (Scope, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindScope returns an empty scope for unknown employees instead of failing:
// missing directory data must not block the lifecycle, the authz policy
// decides how to treat it.
func (r *repository) FindScope(ctx context.Context, id uuid.UUID) (Scope, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Select("team_id", "department_name").
		First(&e, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Scope{}, nil
		}
		return Scope{}, err
	}
	return Scope{TeamID: e.TeamID, DepartmentName: e.DepartmentName}, nil
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
