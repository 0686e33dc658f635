// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named function run on a cron schedule.
type Job struct {
	Name string
	// Spec is a standard five-field cron expression or a descriptor such as "@daily" or "@every 10m".
	Spec string
	Run  func(ctx context.Context) error
}

// Start registers jobs on a new cron and starts it. Jobs receive ctx; stop the
// returned cron on shutdown. An invalid spec fails the whole call and nothing is started.
func Start(ctx context.Context, jobs []Job) (*cron.Cron, error) {
	c := cron.New()
	var errs []error
	for _, j := range jobs {
		job := j
		if _, err := c.AddFunc(job.Spec, func() { run(ctx, job) }); err != nil {
			errs = append(errs, fmt.Errorf("scheduler: job %s: invalid spec %q: %w", job.Name, job.Spec, err))
			continue
		}
		slog.Info("scheduler: job registered", "job", job.Name, "spec", job.Spec)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func run(ctx context.Context, j Job) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := j.Run(ctx); err != nil {
		slog.Error("scheduler: job failed", "job", j.Name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	slog.Debug("scheduler: job finished", "job", j.Name, "duration_ms", time.Since(start).Milliseconds())
}
