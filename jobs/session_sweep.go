package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ajovest/ajovest-console/internal/jobs"
	"github.com/ajovest/ajovest-console/internal/session"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// HandleSessionSweep returns the handler that clears expired sessions from
// both Redis scopes and the Postgres registry. Redis expiry already evicts
// the session payloads; the sweep keeps the registry consistent with it.
func HandleSessionSweep(store *session.Store, registry *session.Registry, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) (resultErr error) {
		tracker := defaultJobMetrics.Track(TaskSessionSweep)
		defer func() {
			resultErr = tracker.End(resultErr)
		}()

		var payload SessionSweepPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.Batch <= 0 {
			payload.Batch = 500
		}

		ids, err := registry.ExpiredIDs(ctx, payload.Batch)
		if err != nil {
			return err
		}
		swept := 0
		for _, id := range ids {
			if err := store.Destroy(ctx, id); err != nil {
				logger.Warn("sweep destroy session", slog.String("session", id), slog.Any("error", err))
				continue
			}
			if err := registry.Remove(ctx, id); err != nil {
				logger.Warn("sweep remove registry record", slog.String("session", id), slog.Any("error", err))
				continue
			}
			swept++
		}
		if swept > 0 {
			logger.Info("swept expired sessions", slog.Int("count", swept))
		}
		return nil
	}
}
