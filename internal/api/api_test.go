package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"race-planner/internal/model"
	"race-planner/internal/repository"
	"race-planner/internal/schedule"
	"race-planner/internal/scoring"
	"race-planner/internal/service"
)

type noopNotifier struct{}

func (noopNotifier) Notify(taskID uint, title string) error { return nil }

func setupAPI(t *testing.T, endpoints []string) (*API, *service.AlarmService) {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	alarms := service.NewAlarmService(noopNotifier{}, 10, 0)
	t.Cleanup(alarms.Shutdown)

	tasks := service.NewTaskService(repository.NewTaskRepository(db), alarms, scoring.DefaultRules())
	events := service.NewEventService(repository.NewEventRepository(db))
	sched := schedule.NewService(endpoints, time.Hour)
	return New(tasks, events, sched), alarms
}

func TestTaskRoundTrip(t *testing.T) {
	a, alarms := setupAPI(t, nil)
	ctx := context.Background()

	deadline := time.Now().AddDate(0, 0, 5)
	id, err := a.CreateTask(ctx, "install new front wing", model.BucketRace, 3, &deadline)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if !alarms.Armed(id) {
		t.Error("expected an armed alarm after create")
	}

	if err := a.IncrementLap(ctx, id); err != nil {
		t.Fatalf("IncrementLap failed: %v", err)
	}
	if err := a.FinishTask(ctx, id); err != nil {
		t.Fatalf("FinishTask failed: %v", err)
	}
	if alarms.Armed(id) {
		t.Error("alarm must be disarmed after finish")
	}

	tasks, err := a.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Status != model.StatusFinish || tasks[0].PointsTotal != 10 {
		t.Errorf("unexpected task after finish: %+v", tasks[0])
	}

	if err := a.FinishTask(ctx, id); !errors.Is(err, service.ErrTaskAlreadyTerminal) {
		t.Errorf("re-finish err = %v, want ErrTaskAlreadyTerminal", err)
	}
	if err := a.DeleteTask(ctx, id); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
}

func TestCreateTaskInvalidInput(t *testing.T) {
	a, _ := setupAPI(t, nil)

	if _, err := a.CreateTask(context.Background(), "", model.BucketRace, 1, nil); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRescheduleNotifications(t *testing.T) {
	a, alarms := setupAPI(t, nil)
	ctx := context.Background()

	deadline := time.Now().AddDate(0, 0, 2)
	id, err := a.CreateTask(ctx, "prep telemetry", model.BucketPractice, 1, &deadline)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	// Simulate a restart: all in-memory timers are gone.
	alarms.Shutdown()
	if alarms.Armed(id) {
		t.Fatal("timer survived shutdown")
	}

	if err := a.RescheduleNotifications(ctx); err != nil {
		t.Fatalf("RescheduleNotifications failed: %v", err)
	}
	if !alarms.Armed(id) {
		t.Error("alarm not rebuilt from the store")
	}
}

func TestGetScheduleUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a, _ := setupAPI(t, []string{srv.URL})

	if _, err := a.GetSchedule(context.Background(), 2024); !errors.Is(err, schedule.ErrUnavailable) {
		t.Errorf("err = %v, want schedule.ErrUnavailable", err)
	}
	if _, err := a.GetNextFixture(context.Background()); !errors.Is(err, schedule.ErrUnavailable) {
		t.Errorf("err = %v, want schedule.ErrUnavailable", err)
	}
}

func TestCalendarEvents(t *testing.T) {
	a, _ := setupAPI(t, nil)
	ctx := context.Background()

	id, err := a.CreateCalendarEvent(ctx, service.EventInput{Title: "Karting", StartDate: time.Now()})
	if err != nil {
		t.Fatalf("CreateCalendarEvent failed: %v", err)
	}

	events, err := a.ListCalendarEvents(ctx)
	if err != nil {
		t.Fatalf("ListCalendarEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != id {
		t.Errorf("events = %+v", events)
	}

	if err := a.DeleteCalendarEvent(ctx, id); err != nil {
		t.Fatalf("DeleteCalendarEvent failed: %v", err)
	}
	events, _ = a.ListCalendarEvents(ctx)
	if len(events) != 0 {
		t.Errorf("got %d events after delete, want 0", len(events))
	}
}
