package directory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is the read-side directory record the authorization evaluator
// consults for organizational scope. Full employee administration lives in a
// separate system; this service only reads.
type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName       string    `gorm:"type:varchar(150);not null"`
	Email          string    `gorm:"type:varchar(150);not null;uniqueIndex"`
	TeamID         *string   `gorm:"type:varchar(50);index"`
	DepartmentName *string   `gorm:"type:varchar(100)"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string { return "employees" }

// Scope is the slice of an employee record used for supervisor scope checks.
type Scope struct {
	TeamID         *string
	DepartmentName *string
}
