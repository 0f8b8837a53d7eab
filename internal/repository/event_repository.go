package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"race-planner/internal/model"
)

// EventRepository handles CRUD for calendar events.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *model.CalendarEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	if err := r.db.WithContext(ctx).Order("start_date ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Delete removes an event. Deleting a missing id is not an error.
func (r *EventRepository) Delete(ctx context.Context, eventID uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.CalendarEvent{}, eventID).Error; err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
