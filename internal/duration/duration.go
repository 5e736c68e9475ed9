package duration

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type LeaveFormat string

const (
	FormatFullDay          LeaveFormat = "FULL_DAY"
	FormatHalfDayMorning   LeaveFormat = "HALF_DAY_AM"
	FormatHalfDayAfternoon LeaveFormat = "HALF_DAY_PM"
)

func (f LeaveFormat) IsHalfDay() bool {
	return f == FormatHalfDayMorning || f == FormatHalfDayAfternoon
}

const timeLayout = "15:04"

var (
	ErrEndBeforeStart = errors.New("end date must not precede start date")
	ErrZeroDuration   = errors.New("overtime duration must be positive")
	ErrInvalidTime    = errors.New("invalid time, expected HH:MM")

	halfDay = decimal.NewFromFloat(0.5)
	minutes = decimal.NewFromInt(60)
)

// LeaveDays returns the requested day total, inclusive of both endpoints.
// Half-day formats always yield 0.5 regardless of the supplied end date; the
// caller is expected to normalize endDate = startDate for those.
func LeaveDays(format LeaveFormat, startDate, endDate time.Time) (decimal.Decimal, error) {
	if format.IsHalfDay() {
		return halfDay, nil
	}
	start := truncateToDay(startDate)
	end := truncateToDay(endDate)
	if end.Before(start) {
		return decimal.Zero, ErrEndBeforeStart
	}
	days := int64(end.Sub(start).Hours()/24) + 1
	return decimal.NewFromInt(days), nil
}

// OvertimeHours returns the minute-granularity hour total between two
// times of day, rounded to 2 decimal places. An end time earlier than the
// start time is treated as crossing midnight.
func OvertimeHours(startTime, endTime string) (decimal.Decimal, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return decimal.Zero, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return decimal.Zero, err
	}

	mins := end - start
	if mins < 0 {
		mins += 24 * 60
	}
	if mins == 0 {
		return decimal.Zero, ErrZeroDuration
	}
	return decimal.NewFromInt(mins).Div(minutes).Round(2), nil
}

func parseClock(v string) (int64, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return 0, ErrInvalidTime
	}
	return int64(t.Hour()*60 + t.Minute()), nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
