package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ajovest/ajovest-console/internal/audit"
)

// HandleAuditPrune returns the handler that trims old audit entries.
func HandleAuditPrune(trail *audit.Logger, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) (resultErr error) {
		tracker := defaultJobMetrics.Track(TaskAuditPrune)
		defer func() {
			resultErr = tracker.End(resultErr)
		}()

		var payload AuditPrunePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.Retention <= 0 {
			payload.Retention = 90 * 24 * time.Hour
		}
		removed, err := trail.Prune(ctx, payload.Retention)
		if err != nil {
			return err
		}
		if removed > 0 {
			logger.Info("pruned audit entries", slog.Int64("count", removed))
		}
		return nil
	}
}
