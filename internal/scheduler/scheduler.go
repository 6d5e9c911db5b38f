// Package scheduler runs the periodic maintenance jobs of the assistant.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/models"

	"github.com/robfig/cron/v3"
)

const refreshTimeout = 30 * time.Second

// TypeRefresher reloads the professional type cache from the store.
type TypeRefresher interface {
	RefreshProfessionalTypes(ctx context.Context) ([]models.ProfessionalType, error)
}

// Scheduler wraps robfig/cron and owns the type-cache refresh job.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	refresher TypeRefresher
	logger    logger.Logger
}

// New creates a Scheduler firing on spec, a standard five-field cron expression or
// a descriptor such as "@every 10m".
func New(spec string, refresher TypeRefresher, log logger.Logger) *Scheduler {
	log = logger.Component(log, "scheduler")
	cl := cronLogger{log}
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		spec:      spec,
		refresher: refresher,
		logger:    log,
	}
}

// Start registers the job, starts the scheduler and runs one refresh immediately so
// the cache is warm before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("cron started", map[string]interface{}{"spec": s.spec})

	go s.RunOnce(ctx)
	return nil
}

// Stop halts scheduling and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	s.logger.Info("cron stopped", nil)
}

// RunOnce refreshes the professional type cache.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	types, err := s.refresher.RefreshProfessionalTypes(ctx)
	if err != nil {
		s.logger.Warn("professional type refresh failed", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Debug("professional types refreshed", map[string]interface{}{"count": len(types)})
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, kvFields(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = err.Error()
	c.l.Error(msg, fields)
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
