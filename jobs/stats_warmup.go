package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ajovest/ajovest-console/internal/dashboard"
)

// HandleStatsWarmup returns the handler that refreshes the dashboard cache
// ahead of demand.
func HandleStatsWarmup(stats *dashboard.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) (resultErr error) {
		tracker := defaultJobMetrics.Track(TaskStatsWarmup)
		defer func() {
			resultErr = tracker.End(resultErr)
		}()

		if err := stats.Warm(ctx); err != nil {
			logger.Warn("dashboard warmup", slog.Any("error", err))
			return err
		}
		logger.Info("dashboard stats warmed")
		return nil
	}
}
