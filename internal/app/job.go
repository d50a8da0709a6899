package app

import (
	"log/slog"

	"github.com/shandysiswandi/otpflow/internal/job"
)

func (a *App) initJobs() {
	if !a.config.GetBool("jobs.purge.enabled") {
		return
	}

	a.purge = job.NewPurge(
		a.config.GetSecond("jobs.purge.interval_seconds"),
		a.ins,
		job.Target{Name: "otp_records", Purger: a.otp},
		job.Target{Name: "exchange_tokens", Purger: a.exchange},
	)
	if err := a.goroutine.Go(a.ctx, "purge", a.purge.Run); err != nil {
		slog.ErrorContext(a.ctx, "failed to start purge job", "error", err)
	}
}
