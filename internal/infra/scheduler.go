package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pricedesk/pkg/log"
)

// SchemaReloader refreshes the item schema
type SchemaReloader interface {
	Reload(ctx context.Context) (int, error)
}

// Scheduler refreshes the item schema on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	reloader SchemaReloader
	spec     string
	timeout  time.Duration
}

// NewScheduler creates a new scheduler. spec is a standard five-field cron
// expression or a descriptor such as "@daily".
func NewScheduler(reloader SchemaReloader, spec string, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		reloader: reloader,
		spec:     spec,
		timeout:  timeout,
	}
}

// Start registers the refresh job and starts the cron loop
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			log.Error("scheduled schema refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schema refresh schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Info("scheduler started", zap.String("schema_refresh", s.spec))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Info("stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunNow refreshes the schema immediately
func (s *Scheduler) RunNow(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.reloader.Reload(ctx)
}
