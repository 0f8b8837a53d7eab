package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"race-planner/internal/model"
	"race-planner/internal/repository"
	"race-planner/internal/scoring"
)

// TaskAlarms is the scheduler side the controller keeps in sync. Every write
// that changes deadline or terminal status must pass through it.
type TaskAlarms interface {
	Arm(task *model.Task)
	Disarm(taskID uint)
	RearmAll(tasks []model.Task)
}

// CreateInput carries the fields for a new task.
type CreateInput struct {
	Title     string
	Bucket    model.Bucket
	LapsTotal int
	Deadline  *time.Time
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title         *string
	Bucket        *model.Bucket
	LapsTotal     *int
	LapsDone      *int
	Deadline      *time.Time
	ClearDeadline bool
}

// TaskService is the lifecycle controller: the only writer of task state.
type TaskService struct {
	repo   *repository.TaskRepository
	alarms TaskAlarms
	rules  scoring.Rules
	now    func() time.Time
}

func NewTaskService(repo *repository.TaskRepository, alarms TaskAlarms, rules scoring.Rules) *TaskService {
	return &TaskService{repo: repo, alarms: alarms, rules: rules, now: time.Now}
}

// CreateTask validates input and stores a new task in the start state with
// all points zero and the scoring category equal to the bucket.
func (s *TaskService) CreateTask(ctx context.Context, input CreateInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	if !model.ValidBucket(input.Bucket) {
		return nil, fmt.Errorf("%w: unknown bucket %q", ErrInvalidInput, input.Bucket)
	}

	task := model.Task{
		Title:           title,
		Category:        input.Bucket,
		ScoringCategory: input.Bucket,
		Status:          model.StatusStart,
		LapsTotal:       clampLapsTotal(input.LapsTotal),
		Deadline:        input.Deadline,
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return nil, err
	}

	s.alarms.Arm(&task)
	return &task, nil
}

// UpdateTask applies only the fields present in the request. Changing the
// bucket on a non-terminal task re-syncs the scoring category; on a terminal
// task everything except the title is ignored.
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint, input UpdateInput) (*model.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		task.Title = title
	}

	if !task.Status.Terminal() {
		if input.Bucket != nil {
			if !model.ValidBucket(*input.Bucket) {
				return nil, fmt.Errorf("%w: unknown bucket %q", ErrInvalidInput, *input.Bucket)
			}
			task.Category = *input.Bucket
			task.ScoringCategory = *input.Bucket
		}
		if input.LapsTotal != nil {
			task.LapsTotal = clampLapsTotal(*input.LapsTotal)
		}
		if input.LapsDone != nil {
			task.LapsDone = clampLapsDone(*input.LapsDone, task.LapsTotal)
		}
		if input.ClearDeadline {
			task.Deadline = nil
		} else if input.Deadline != nil {
			task.Deadline = input.Deadline
		}
		// Laps may shrink under lapsDone after a lapsTotal edit.
		task.LapsDone = clampLapsDone(task.LapsDone, task.LapsTotal)
		if task.Status == model.StatusStart {
			task.Status = model.StatusProgress
		}
	}

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.alarms.Arm(task)
	return task, nil
}

// IncrementLap bumps the progress counter, clamped at lapsTotal, and forces
// the task into progress. A terminal task is left untouched.
func (s *TaskService) IncrementLap(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status.Terminal() {
		return task, nil
	}

	task.LapsDone = clampLapsDone(task.LapsDone+1, task.LapsTotal)
	task.Status = model.StatusProgress

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.alarms.Arm(task)
	return task, nil
}

// FinishTask scores and closes a task. Valid from non-terminal states only.
func (s *TaskService) FinishTask(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status.Terminal() {
		return nil, fmt.Errorf("task %d: %w", taskID, ErrTaskAlreadyTerminal)
	}

	now := s.now()
	result := scoring.Finish(s.rules, task.ScoringCategory, task.Deadline, now)
	applyResult(task, result)
	task.Status = model.StatusFinish
	task.Category = model.ArchiveBucket
	task.FinishedAt = &now

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.alarms.Disarm(task.ID)
	return task, nil
}

// DNFTask closes a task without completion. Valid from non-terminal states only.
func (s *TaskService) DNFTask(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status.Terminal() {
		return nil, fmt.Errorf("task %d: %w", taskID, ErrTaskAlreadyTerminal)
	}

	now := s.now()
	applyResult(task, scoring.DNF(s.rules))
	task.Status = model.StatusDNF
	task.Category = model.ArchiveBucket
	task.FinishedAt = &now

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.alarms.Disarm(task.ID)
	return task, nil
}

// DeleteTask removes a task and its pending alarm. Idempotent.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) error {
	if err := s.repo.Delete(ctx, taskID); err != nil {
		return err
	}
	s.alarms.Disarm(taskID)
	return nil
}

// ListTasks returns all tasks, newest id first.
func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx)
}

// RearmAll re-derives the full alarm set from the store. Used at process
// start and on explicit reschedule requests.
func (s *TaskService) RearmAll(ctx context.Context) error {
	tasks, err := s.repo.ListAlarmCandidates(ctx)
	if err != nil {
		return fmt.Errorf("list alarm candidates: %w", err)
	}
	s.alarms.RearmAll(tasks)
	return nil
}

func (s *TaskService) findTask(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		return nil, err
	}
	return task, nil
}

func applyResult(task *model.Task, r scoring.Result) {
	task.PointsBase = r.Base
	task.PointsBonus = r.Bonus
	task.PointsPenalty = r.Penalty
	task.PointsTotal = r.Total
}

func clampLapsTotal(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func clampLapsDone(n, total int) int {
	if n < 0 {
		return 0
	}
	if n > total {
		return total
	}
	return n
}
