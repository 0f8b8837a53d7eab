package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"race-planner/internal/api"
	"race-planner/internal/config"
	"race-planner/internal/model"
	"race-planner/internal/notify"
	"race-planner/internal/repository"
	"race-planner/internal/schedule"
	"race-planner/internal/service"
)

var (
	// Flags for task creation.
	addBucket   string
	addLaps     int
	addDeadline string

	rootCmd = &cobra.Command{
		Use:   "raceplanner",
		Short: "Track tasks through their lifecycle, score them, and never miss a deadline.",
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the planner daemon: arm deadline alarms and keep them in sync.",
		RunE:  runServe,
	}

	tasksCmd = &cobra.Command{
		Use:   "tasks",
		Short: "List all tasks, newest first.",
		RunE:  runTasks,
	}

	addCmd = &cobra.Command{
		Use:   "add <title>",
		Short: "Create a new task.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdd,
	}

	lapCmd = &cobra.Command{
		Use:   "lap <id>",
		Short: "Increment a task's lap counter.",
		Args:  cobra.ExactArgs(1),
		RunE:  taskOp(func(ctx context.Context, a *api.API, id uint) error { return a.IncrementLap(ctx, id) }),
	}

	finishCmd = &cobra.Command{
		Use:   "finish <id>",
		Short: "Finish a task and award points.",
		Args:  cobra.ExactArgs(1),
		RunE:  taskOp(func(ctx context.Context, a *api.API, id uint) error { return a.FinishTask(ctx, id) }),
	}

	dnfCmd = &cobra.Command{
		Use:   "dnf <id>",
		Short: "Mark a task as did-not-finish.",
		Args:  cobra.ExactArgs(1),
		RunE:  taskOp(func(ctx context.Context, a *api.API, id uint) error { return a.DNFTask(ctx, id) }),
	}

	deleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task.",
		Args:  cobra.ExactArgs(1),
		RunE:  taskOp(func(ctx context.Context, a *api.API, id uint) error { return a.DeleteTask(ctx, id) }),
	}

	eventsCmd = &cobra.Command{
		Use:   "events",
		Short: "List calendar events.",
		RunE:  runEvents,
	}

	scheduleCmd = &cobra.Command{
		Use:   "schedule <season>",
		Short: "Show the race calendar for a season.",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedule,
	}

	nextCmd = &cobra.Command{
		Use:   "next",
		Short: "Show the next upcoming race.",
		RunE:  runNext,
	}
)

func init() {
	addCmd.Flags().StringVar(&addBucket, "bucket", string(model.BucketPractice), "Bucket to file the task under.")
	addCmd.Flags().IntVar(&addLaps, "laps", 1, "Total laps for the task.")
	addCmd.Flags().StringVar(&addDeadline, "deadline", "", "Deadline date (YYYY-MM-DD).")

	rootCmd.AddCommand(serveCmd, tasksCmd, addCmd, lapCmd, finishCmd, dnfCmd, deleteCmd, eventsCmd, scheduleCmd, nextCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles everything a command needs.
type app struct {
	cfg    config.Config
	api    *api.API
	tasks  *service.TaskService
	alarms *service.AlarmService
	close  func()
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	var notifier service.Notifier = notify.LogNotifier{}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			closeDB()
			return nil, fmt.Errorf("notifier: %w", err)
		}
		notifier = tg
	}

	hour, minute, err := cfg.AlarmClock()
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("alarm time: %w", err)
	}

	alarms := service.NewAlarmService(notifier, hour, minute)
	taskSvc := service.NewTaskService(repository.NewTaskRepository(db), alarms, cfg.Rules)
	eventSvc := service.NewEventService(repository.NewEventRepository(db))
	scheduleSvc := schedule.NewService(cfg.ScheduleEndpoints, cfg.ScheduleTTL)

	return &app{
		cfg:    cfg,
		api:    api.New(taskSvc, eventSvc, scheduleSvc),
		tasks:  taskSvc,
		alarms: alarms,
		close:  closeDB,
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()
	defer a.alarms.Shutdown()

	// Timers do not survive restarts; rebuild the full set now.
	if err := a.tasks.RearmAll(ctx); err != nil {
		return fmt.Errorf("rearm alarms: %w", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleDaily(a.cfg.RearmSweepTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.tasks.RearmAll(jobCtx); err != nil {
			log.Printf("rearm sweep: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule rearm sweep: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("[info] race planner started")
	<-ctx.Done()
	log.Println("[info] shutdown complete")
	return nil
}

func runTasks(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	tasks, err := a.api.ListTasks(cmd.Context())
	if err != nil {
		return err
	}
	for _, task := range tasks {
		line := fmt.Sprintf("#%d [%s/%s] %s laps %d/%d", task.ID, task.Category, task.Status, task.Title, task.LapsDone, task.LapsTotal)
		if task.Deadline != nil {
			line += " due " + task.Deadline.Format("2006-01-02")
		}
		if task.Status.Terminal() {
			line += fmt.Sprintf(" points %d", task.PointsTotal)
		}
		fmt.Println(line)
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	var deadline *time.Time
	if addDeadline != "" {
		parsed, err := time.ParseInLocation("2006-01-02", addDeadline, time.Local)
		if err != nil {
			return fmt.Errorf("deadline: %w", err)
		}
		deadline = &parsed
	}

	id, err := a.api.CreateTask(cmd.Context(), args[0], model.Bucket(addBucket), addLaps, deadline)
	if err != nil {
		return err
	}
	fmt.Printf("created task #%d\n", id)
	return nil
}

func taskOp(op func(ctx context.Context, a *api.API, id uint) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("task id must be a number: %w", err)
		}

		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.close()

		return op(cmd.Context(), a.api, uint(id))
	}
}

func runEvents(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	events, err := a.api.ListCalendarEvents(cmd.Context())
	if err != nil {
		return err
	}
	for _, event := range events {
		line := fmt.Sprintf("#%d %s %s", event.ID, event.StartDate.Format("2006-01-02"), event.Title)
		if event.StartTime != "" {
			line += " at " + event.StartTime
		}
		if event.Location != "" {
			line += " @ " + event.Location
		}
		fmt.Println(line)
	}
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	season, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("season must be a year: %w", err)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.api.GetSchedule(cmd.Context(), season)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Printf("R%02d %s — %s, %s, %s (%s)\n", entry.Round, entry.Date.Format("2006-01-02"),
			entry.Name, entry.Locality, entry.Country, entry.Circuit)
	}
	return nil
}

func runNext(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	entry, err := a.api.GetNextFixture(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Next: R%02d %s — %s, %s on %s\n", entry.Round, entry.Name, entry.Locality,
		entry.Country, entry.StartAt.Format("2006-01-02 15:04 MST"))
	return nil
}
