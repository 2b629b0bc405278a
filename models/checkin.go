package models

import "time"

// Checkin stores one completed daily action. CheckinDate is the YYYY-MM-DD
// key of the user's local calendar day; together with UserID it is the
// natural key, enforced by the composite unique index. Rows are written once
// and never updated or deleted; CreatedAt exists for display only and feeds
// no derived statistic.
type Checkin struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex:idx_user_checkin_date;not null" json:"user_id"`
	CheckinDate string    `gorm:"size:10;uniqueIndex:idx_user_checkin_date;not null" json:"checkin_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName keeps the table named after the domain event.
func (Checkin) TableName() string {
	return "daily_checkins"
}
