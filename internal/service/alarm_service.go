package service

import (
	"log"
	"sync"
	"time"

	"race-planner/internal/model"
)

// Notifier delivers a single deadline alert to the user.
type Notifier interface {
	Notify(taskID uint, title string) error
}

// AlarmService keeps at most one pending one-shot timer per task id. Timers
// live in memory only; RearmAll rebuilds them from the store after a restart.
type AlarmService struct {
	mu       sync.Mutex
	timers   map[uint]*time.Timer
	notifier Notifier

	// Alert fire time on the deadline date, local clock.
	hour, minute int

	now func() time.Time
}

func NewAlarmService(notifier Notifier, hour, minute int) *AlarmService {
	return &AlarmService{
		timers:   make(map[uint]*time.Timer),
		notifier: notifier,
		hour:     hour,
		minute:   minute,
		now:      time.Now,
	}
}

// Arm replaces any pending timer for the task. No timer is created when the
// task has no deadline, is terminal, or the target time already passed.
func (s *AlarmService) Arm(task *model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(task.ID)

	if task.Deadline == nil || task.Status.Terminal() {
		return
	}

	now := s.now()
	d := task.Deadline.In(now.Location())
	target := time.Date(d.Year(), d.Month(), d.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !target.After(now) {
		return
	}

	id, title := task.ID, task.Title
	s.timers[id] = time.AfterFunc(target.Sub(now), func() {
		s.fire(id, title)
	})
}

// Disarm cancels the pending timer if present. Safe to call when absent.
func (s *AlarmService) Disarm(taskID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(taskID)
}

// RearmAll drops every pending timer and arms each given task from scratch.
func (s *AlarmService) RearmAll(tasks []model.Task) {
	s.Shutdown()
	for i := range tasks {
		s.Arm(&tasks[i])
	}
}

// Shutdown cancels all pending timers.
func (s *AlarmService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Armed reports whether a timer is pending for the task id.
func (s *AlarmService) Armed(taskID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[taskID]
	return ok
}

func (s *AlarmService) cancelLocked(taskID uint) {
	if timer, ok := s.timers[taskID]; ok {
		timer.Stop()
		delete(s.timers, taskID)
	}
}

// fire clears the timer slot and delivers the alert. Delivery failure is
// logged and dropped; the slot is cleared regardless.
func (s *AlarmService) fire(taskID uint, title string) {
	s.mu.Lock()
	delete(s.timers, taskID)
	s.mu.Unlock()

	if err := s.notifier.Notify(taskID, title); err != nil {
		log.Printf("deliver alarm for task %d: %v", taskID, err)
	}
}
