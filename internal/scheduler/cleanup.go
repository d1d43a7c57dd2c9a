// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mkorchagin/docforge/internal/config"
	"github.com/mkorchagin/docforge/internal/tasks"
)

// CleanupScheduler periodically enqueues the artifact cleanup task.
type CleanupScheduler struct {
	taskClient *tasks.Client
	config     config.Cleanup

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewCleanupScheduler(taskClient *tasks.Client, cfg config.Cleanup) *CleanupScheduler {
	return &CleanupScheduler{
		taskClient: taskClient,
		config:     cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if cleanup is enabled.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Cleanup scheduler: disabled")
		return nil
	}
	if s.taskClient == nil {
		log.Printf("Cleanup scheduler: task queue not available, skipping")
		return nil
	}

	retentionHours := int(s.config.Retention / time.Hour)
	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		task := tasks.CleanupArtifactsTask{RetentionHours: retentionHours}
		if _, err := s.taskClient.Add(task).Save(); err != nil {
			log.Printf("Cleanup scheduler: failed to enqueue cleanup task: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid cleanup schedule '%s': %w", s.config.Schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	log.Printf("Cleanup scheduler: started with schedule '%s'", s.config.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler and waits for a running job to finish.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Cleanup scheduler: stopped")
}
