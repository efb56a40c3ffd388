// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/readstack/readstack/internal/tasks"
)

// TaskEnqueuer is the slice of the task client the scheduler needs.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) error
}

// EnrichmentSweepScheduler periodically queues a bulk-enrichment task for
// books missing metadata.
type EnrichmentSweepScheduler struct {
	queue    TaskEnqueuer
	schedule string
	limit    int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewEnrichmentSweepScheduler creates a scheduler that enqueues a sweep on
// the given 5-field cron schedule, capping each sweep at limit books.
func NewEnrichmentSweepScheduler(queue TaskEnqueuer, schedule string, limit int) *EnrichmentSweepScheduler {
	return &EnrichmentSweepScheduler{
		queue:    queue,
		schedule: schedule,
		limit:    limit,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler. It is a no-op when already running.
func (s *EnrichmentSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Enrichment sweep scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *EnrichmentSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		// Release the watcher goroutine started in Start.
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Enrichment sweep scheduler: stopped")
}

// TriggerNow queues a sweep immediately, outside the schedule.
func (s *EnrichmentSweepScheduler) TriggerNow() error {
	return s.queue.Enqueue(tasks.EnrichAllBooksTask{Limit: s.limit})
}

func (s *EnrichmentSweepScheduler) runSweep() {
	if err := s.TriggerNow(); err != nil {
		log.Printf("Enrichment sweep scheduler: failed to queue sweep: %v", err)
		return
	}
	log.Printf("Enrichment sweep scheduler: queued sweep (limit %d)", s.limit)
}
