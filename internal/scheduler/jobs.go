package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/crucial707/blog-api/internal/revocation"
	"github.com/crucial707/blog-api/internal/store"
)

// AuditRetention deletes audit entries older than days, once a day.
func AuditRetention(audit store.AuditStore, days int, now func() time.Time) Job {
	return Job{
		Name: "audit-retention",
		Spec: "@daily",
		Run: func(ctx context.Context) error {
			cutoff := now().AddDate(0, 0, -days)
			n, err := audit.Prune(ctx, cutoff)
			if err != nil {
				return err
			}
			if n > 0 {
				slog.Info("audit entries pruned", "count", n, "before", cutoff)
			}
			return nil
		},
	}
}

// DenylistPurge drops lapsed entries from an in-memory denylist. Redis expires keys on its own.
func DenylistPurge(m *revocation.Memory) Job {
	return Job{
		Name: "denylist-purge",
		Spec: "@every 10m",
		Run: func(ctx context.Context) error {
			m.Purge()
			return nil
		},
	}
}

// Pruner is implemented by the per-IP rate limiters.
type Pruner interface {
	Prune() int
}

// LimiterPrune evicts rate limiter entries whose bucket has refilled.
func LimiterPrune(name string, p Pruner) Job {
	return Job{
		Name: name + "-limiter-prune",
		Spec: "@every 5m",
		Run: func(ctx context.Context) error {
			if n := p.Prune(); n > 0 {
				slog.Debug("rate limiter entries pruned", "limiter", name, "count", n)
			}
			return nil
		},
	}
}
