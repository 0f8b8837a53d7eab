// Package api is the command channel: the request/response surface the
// presentation layer talks to. One call per logical operation, no batching.
package api

import (
	"context"
	"time"

	"race-planner/internal/model"
	"race-planner/internal/schedule"
	"race-planner/internal/service"
)

// API aggregates the core services behind the command-channel surface.
type API struct {
	tasks    *service.TaskService
	events   *service.EventService
	schedule *schedule.Service
}

func New(tasks *service.TaskService, events *service.EventService, sched *schedule.Service) *API {
	return &API{tasks: tasks, events: events, schedule: sched}
}

// ListTasks returns every task, newest id first.
func (a *API) ListTasks(ctx context.Context) ([]model.Task, error) {
	return a.tasks.ListTasks(ctx)
}

func (a *API) CreateTask(ctx context.Context, title string, bucket model.Bucket, lapsTotal int, deadline *time.Time) (uint, error) {
	task, err := a.tasks.CreateTask(ctx, service.CreateInput{
		Title:     title,
		Bucket:    bucket,
		LapsTotal: lapsTotal,
		Deadline:  deadline,
	})
	if err != nil {
		return 0, err
	}
	return task.ID, nil
}

func (a *API) UpdateTask(ctx context.Context, taskID uint, input service.UpdateInput) error {
	_, err := a.tasks.UpdateTask(ctx, taskID, input)
	return err
}

func (a *API) IncrementLap(ctx context.Context, taskID uint) error {
	_, err := a.tasks.IncrementLap(ctx, taskID)
	return err
}

func (a *API) FinishTask(ctx context.Context, taskID uint) error {
	_, err := a.tasks.FinishTask(ctx, taskID)
	return err
}

func (a *API) DNFTask(ctx context.Context, taskID uint) error {
	_, err := a.tasks.DNFTask(ctx, taskID)
	return err
}

func (a *API) DeleteTask(ctx context.Context, taskID uint) error {
	return a.tasks.DeleteTask(ctx, taskID)
}

// RescheduleNotifications re-derives the full alarm set from the store.
func (a *API) RescheduleNotifications(ctx context.Context) error {
	return a.tasks.RearmAll(ctx)
}

func (a *API) ListCalendarEvents(ctx context.Context) ([]model.CalendarEvent, error) {
	return a.events.ListEvents(ctx)
}

func (a *API) CreateCalendarEvent(ctx context.Context, input service.EventInput) (uint, error) {
	event, err := a.events.CreateEvent(ctx, input)
	if err != nil {
		return 0, err
	}
	return event.ID, nil
}

func (a *API) DeleteCalendarEvent(ctx context.Context, eventID uint) error {
	return a.events.DeleteEvent(ctx, eventID)
}

func (a *API) GetNextFixture(ctx context.Context) (*schedule.Entry, error) {
	return a.schedule.GetNext(ctx)
}

func (a *API) GetSchedule(ctx context.Context, season int) ([]schedule.Entry, error) {
	return a.schedule.GetSchedule(ctx, season)
}
