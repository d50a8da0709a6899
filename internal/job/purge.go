// Package job holds background loops started by the app and stopped with its context.
package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
)

// DefaultPurgeInterval is used when the configured interval is not positive.
const DefaultPurgeInterval = 10 * time.Minute

// Purger deletes rows that can no longer be redeemed and reports how many went.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Target names a Purger for logs and metrics.
type Target struct {
	Name   string
	Purger Purger
}

// Purge periodically reaps expired OTP records and exchange tokens.
type Purge struct {
	interval time.Duration
	targets  []Target
	deleted  metric.Int64Counter
	running  *atomic.Bool
}

func NewPurge(interval time.Duration, ins instrument.Instrumentation, targets ...Target) *Purge {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}

	counter, err := ins.Meter("job.purge").Int64Counter("otpflow.purge.deleted",
		metric.WithDescription("rows removed by the purge job"))
	if err != nil {
		slog.Warn("failed to create purge counter", "error", err)
	}

	return &Purge{
		interval: interval,
		targets:  targets,
		deleted:  counter,
		running:  atomic.NewBool(false),
	}
}

// Run ticks until ctx is done. It always returns nil so the goroutine
// manager does not report a normal shutdown as a failure.
func (p *Purge) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "purge job started", "interval", p.interval.String())

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "purge job stopped")
			return nil
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce purges every target and returns the total removed. A target that
// fails is logged and skipped. Overlapping calls return 0 immediately.
func (p *Purge) RunOnce(ctx context.Context) int64 {
	if !p.running.CompareAndSwap(false, true) {
		return 0
	}
	defer p.running.Store(false)

	var total int64
	for _, t := range p.targets {
		n, err := t.Purger.PurgeExpired(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to purge expired rows", "target", t.Name, "error", err)
			continue
		}

		if n > 0 {
			slog.DebugContext(ctx, "purged expired rows", "target", t.Name, "count", n)
		}
		if p.deleted != nil {
			p.deleted.Add(ctx, n, metric.WithAttributes(attribute.String("target", t.Name)))
		}
		total += n
	}

	return total
}
