package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"race-planner/internal/model"
	"race-planner/internal/repository"
)

// EventInput carries the fields for a new calendar event.
type EventInput struct {
	Title     string
	StartDate time.Time
	StartTime string
	EndTime   string
	Location  string
	Notes     string
}

// EventService manages personal calendar notes. Events are create/delete
// only; edits happen as delete+recreate at the boundary.
type EventService struct {
	repo *repository.EventRepository
}

func NewEventService(repo *repository.EventRepository) *EventService {
	return &EventService{repo: repo}
}

func (s *EventService) CreateEvent(ctx context.Context, input EventInput) (*model.CalendarEvent, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: event title must not be empty", ErrInvalidInput)
	}
	if input.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: event date is required", ErrInvalidInput)
	}

	event := model.CalendarEvent{
		Title:     title,
		StartDate: input.StartDate,
		StartTime: strings.TrimSpace(input.StartTime),
		EndTime:   strings.TrimSpace(input.EndTime),
		Location:  strings.TrimSpace(input.Location),
		Notes:     strings.TrimSpace(input.Notes),
	}
	if err := s.repo.Create(ctx, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]model.CalendarEvent, error) {
	return s.repo.List(ctx)
}

// DeleteEvent removes an event. Idempotent.
func (s *EventService) DeleteEvent(ctx context.Context, eventID uint) error {
	return s.repo.Delete(ctx, eventID)
}
