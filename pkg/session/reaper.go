package session

import (
	"context"
	"time"

	"github.com/adhocore/gronx"

	"github.com/gfax/junkyard-gateway/pkg/logger"
)

// Reaper clears sessions that have seen no commands for longer than the
// idle TTL. It wakes once a minute and sweeps only when the configured cron
// expression is due, so operators can confine cleanup to quiet hours.
type Reaper struct {
	registry *Registry
	cronExpr string
	idleTTL  time.Duration
	gron     *gronx.Gronx
}

func NewReaper(registry *Registry, cronExpr string, idleTTL time.Duration) *Reaper {
	return &Reaper{
		registry: registry,
		cronExpr: cronExpr,
		idleTTL:  idleTTL,
		gron:     gronx.New(),
	}
}

// Run blocks until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	if r.cronExpr == "" || r.idleTTL <= 0 {
		logger.InfoC("reaper", "session reaper disabled")
		return
	}
	if !r.gron.IsValid(r.cronExpr) {
		logger.WarnCF("reaper", "invalid cron expression, reaper disabled", map[string]interface{}{
			"cron": r.cronExpr,
		})
		return
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			due, err := r.gron.IsDue(r.cronExpr, now)
			if err != nil || !due {
				continue
			}
			r.sweep(now)
		}
	}
}

func (r *Reaper) sweep(now time.Time) {
	for _, s := range r.registry.All() {
		if now.Sub(s.LastActive()) < r.idleTTL {
			continue
		}
		r.registry.Clear(s.Key)
		logger.InfoCF("reaper", "cleared idle session", map[string]interface{}{
			"key":  s.Key,
			"idle": now.Sub(s.LastActive()).String(),
		})
	}
}
