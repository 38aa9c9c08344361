package plugins

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

const DefaultReloadSchedule = "0 */5 * * * *"

// Reloader re-reads a Registry on a cron schedule (six fields, seconds first).
type Reloader struct {
	registry *Registry
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewReloader(registry *Registry, logger *slog.Logger) *Reloader {
	return &Reloader{
		registry: registry,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start schedules the reload job and starts the cron runner.
func (r *Reloader) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultReloadSchedule
	}
	if _, err := r.cron.AddFunc(schedule, r.reload); err != nil {
		return err
	}

	r.logger.Info("plugin reload scheduled", "schedule", schedule, "path", r.registry.path)
	r.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running reload to finish.
func (r *Reloader) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reloader) reload() {
	if err := r.registry.Reload(); err != nil {
		r.logger.Warn("plugin reload failed", "error", err)
		return
	}
	r.logger.Debug("plugins reloaded", "count", len(r.registry.Names()))
}
