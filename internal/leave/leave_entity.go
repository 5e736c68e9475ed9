package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-timeoff/internal/duration"
	"go-timeoff/internal/lifecycle"
)

type Leave struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_requester_dates"`

	LeaveType   string               `gorm:"type:varchar(30);not null;default:'ANNUAL'"`
	LeaveFormat duration.LeaveFormat `gorm:"type:varchar(20);not null;default:'FULL_DAY'"`
	StartDate   time.Time            `gorm:"type:date;not null;index:idx_leaves_requester_dates"`
	EndDate     time.Time            `gorm:"type:date;not null;index:idx_leaves_requester_dates"`
	TotalDays   decimal.Decimal      `gorm:"type:numeric(5,1);not null"`
	Reason      string               `gorm:"type:text"`
	Attachments []string             `gorm:"serializer:json;type:jsonb"`

	lifecycle.State `gorm:"embedded"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leaves_deleted_at"`
}

func (Leave) TableName() string { return "leaves" }
