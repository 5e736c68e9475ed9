package overtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-timeoff/internal/lifecycle"
)

type Overtime struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index:idx_overtimes_requester_date"`

	// StartTime and EndTime are clock times in HH:MM. An end time earlier
	// than the start time means the shift crossed midnight.
	Date       time.Time       `gorm:"type:date;not null;index:idx_overtimes_requester_date"`
	StartTime  string          `gorm:"type:varchar(5);not null"`
	EndTime    string          `gorm:"type:varchar(5);not null"`
	TotalHours decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Reason     string          `gorm:"type:text"`

	lifecycle.State `gorm:"embedded"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_overtimes_deleted_at"`
}

func (Overtime) TableName() string { return "overtimes" }
