// Package scheduler triggers periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/hillman/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NextRunTime returns the first activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// TaskQueue accepts tasks for background execution.
type TaskQueue interface {
	Enqueue(ctx context.Context, task tasks.CleanupAuditEventsTask) error
}

// QueueFunc adapts a function to TaskQueue.
type QueueFunc func(ctx context.Context, task tasks.CleanupAuditEventsTask) error

func (f QueueFunc) Enqueue(ctx context.Context, task tasks.CleanupAuditEventsTask) error {
	return f(ctx, task)
}

// ClientQueue enqueues on a backlite task client.
func ClientQueue(client *tasks.Client) TaskQueue {
	return QueueFunc(func(_ context.Context, task tasks.CleanupAuditEventsTask) error {
		_, err := client.Add(task).Save()
		return err
	})
}

// AuditCleanupScheduler prunes old audit events on a cron schedule. With a
// queue the work is handed to the task workers, otherwise it runs inline on
// the cron goroutine.
type AuditCleanupScheduler struct {
	cleaner       tasks.AuditEventCleaner
	queue         TaskQueue
	schedule      string
	retentionDays int

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewAuditCleanupScheduler creates a scheduler. queue may be nil.
func NewAuditCleanupScheduler(cleaner tasks.AuditEventCleaner, queue TaskQueue, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		cleaner:       cleaner,
		queue:         queue,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the cleanup job and starts the cron loop. An empty
// schedule disables the scheduler. The scheduler stops when ctx is done.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		log.Printf("[scheduler] audit cleanup disabled")
		return nil
	}
	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.run(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.schedule, time.Now())
	log.Printf("[scheduler] audit cleanup scheduled '%s', keeping %d days. Next run: %v", s.schedule, s.retentionDays, next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	log.Printf("[scheduler] audit cleanup stopped")
}

// RunNow triggers one cleanup immediately and returns its error.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) error {
	return s.run(ctx)
}

// IsRunning reports whether the cron loop is active.
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the next activation, or nil when the scheduler is stopped.
func (s *AuditCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}

func (s *AuditCleanupScheduler) run(ctx context.Context) error {
	task := tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays}

	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, task); err != nil {
			log.Printf("[scheduler] failed to enqueue audit cleanup: %v", err)
			return err
		}
		return nil
	}

	if err := tasks.CleanupAuditEventsProcessor(s.cleaner)(ctx, task); err != nil {
		log.Printf("[scheduler] audit cleanup failed: %v", err)
		return err
	}
	return nil
}
