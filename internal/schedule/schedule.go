// Package schedule runs the report job on a standard 5-field cron expression
// (minute hour day-of-month month day-of-week), e.g. "0 9 * * 1-5".
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Job func(ctx context.Context) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func Parse(expr string) (cron.Schedule, error) {
	sched, err := parser.Parse(strings.TrimSpace(expr))
	if err != nil {
		return nil, fmt.Errorf("invalid report_schedule '%s': %w", expr, err)
	}
	return sched, nil
}

// StartReportScheduler launches the job loop in a goroutine and returns
// false when expr is empty or invalid. The loop stops when ctx is done.
func StartReportScheduler(ctx context.Context, expr string, loc *time.Location, job Job, logger *zap.Logger) bool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(expr) == "" {
		logger.Info("report scheduler disabled (report_schedule not set)")
		return false
	}
	sched, err := Parse(expr)
	if err != nil {
		logger.Warn("report scheduler disabled", zap.Error(err))
		return false
	}
	if loc == nil {
		loc = time.Local
	}
	logger.Info("report scheduled", zap.String("cron", expr))
	go run(ctx, sched, loc, job, logger)
	return true
}

func run(ctx context.Context, sched cron.Schedule, loc *time.Location, job Job, logger *zap.Logger) {
	for ctx.Err() == nil {
		now := time.Now().In(loc)
		next := sched.Next(now)
		wait := next.Sub(now)
		logger.Info("next scheduled report",
			zap.String("at", next.Format("Mon Jan 2 15:04")),
			zap.Duration("in", wait.Round(time.Second)),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := job(ctx); err != nil {
			logger.Error("scheduled report failed", zap.Error(err))
			continue
		}
		logger.Info("scheduled report complete")
	}
}
