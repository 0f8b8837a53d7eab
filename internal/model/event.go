package model

import "time"

// CalendarEvent is a personal note attached to one calendar date. Events are
// never edited in place; the boundary does delete+recreate.
type CalendarEvent struct {
	ID        uint `gorm:"primaryKey"`
	Title     string
	StartDate time.Time `gorm:"index"`
	StartTime string    // HH:MM, empty when absent
	EndTime   string
	Location  string
	Notes     string
	CreatedAt time.Time
}
