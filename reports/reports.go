// Package reports is the dashboard's data plane: work-hour entries behind
// the report and personal pages, and the settings behind the config page.
package reports

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// WorkHourEntry is one person-day of recorded hours.
type WorkHourEntry struct {
	ID       uint      `gorm:"column:id;primaryKey" json:"id"`
	JobNo    string    `gorm:"column:job_no;index" json:"job_no"`
	UserName string    `gorm:"column:user_name" json:"user_name"`
	Dept     string    `gorm:"column:dept;index" json:"dept"`
	Product  string    `gorm:"column:product" json:"product"`
	WorkDate time.Time `gorm:"column:work_date;index" json:"work_date"`
	Hours    float64   `gorm:"column:hours" json:"hours"`
}

func (WorkHourEntry) TableName() string { return "work_hour_entries" }

// DeptSummary aggregates a department for the report page.
type DeptSummary struct {
	Dept       string  `json:"dept"`
	TotalHours float64 `json:"total_hours"`
	Headcount  int64   `json:"headcount"`
}

// Store serves report data from Postgres.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing gorm handle (used by tests).
func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// PersonalEntries returns the entries for one job number within the month
// given as "2006-01".
func (s *Store) PersonalEntries(ctx context.Context, jobNo, month string) ([]WorkHourEntry, error) {
	start, end, err := monthBounds(month)
	if err != nil {
		return nil, err
	}
	var entries []WorkHourEntry
	err = s.db.WithContext(ctx).
		Where("job_no = ? AND work_date >= ? AND work_date < ?", jobNo, start, end).
		Order("work_date").
		Find(&entries).Error
	return entries, err
}

// MonthlySummary aggregates hours per department for the month.
func (s *Store) MonthlySummary(ctx context.Context, month string) ([]DeptSummary, error) {
	start, end, err := monthBounds(month)
	if err != nil {
		return nil, err
	}
	var rows []DeptSummary
	err = s.db.WithContext(ctx).
		Model(&WorkHourEntry{}).
		Select("dept, SUM(hours) AS total_hours, COUNT(DISTINCT job_no) AS headcount").
		Where("work_date >= ? AND work_date < ?", start, end).
		Group("dept").
		Order("dept").
		Scan(&rows).Error
	return rows, err
}

// monthBounds parses "2006-01" into the month's half-open UTC interval.
func monthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}
