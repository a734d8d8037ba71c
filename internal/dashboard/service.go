package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/view/table"
)

const (
	statsPath     = "/admin/stats"
	statsCacheKey = "console:dashboard:stats"
	statsCacheTTL = 5 * time.Minute

	// Mutations arrive in bursts (bulk verifications, payout runs). Coalesce
	// the resulting invalidations so the cache is dropped once per burst.
	invalidateWindow = 500 * time.Millisecond
)

// Service fetches and caches the dashboard statistics. Concurrent cache
// misses are collapsed to a single upstream request.
type Service struct {
	api    *upstream.Client
	cache  *redis.Client
	logger *slog.Logger

	group      singleflight.Group
	latest     table.Latest[Stats]
	invalidate *table.Debouncer

	serviceToken string
}

// WithServiceToken sets the machine token used when no staff session is on
// the context. The worker's warmup job runs outside any login.
func (s *Service) WithServiceToken(token string) *Service {
	s.serviceToken = token
	return s
}

// NewService constructs a Service.
func NewService(api *upstream.Client, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{
		api:        api,
		cache:      cache,
		logger:     logger,
		invalidate: table.NewDebouncer(invalidateWindow),
	}
}

// Stats returns the current platform statistics, serving from Redis when the
// cached copy is still fresh.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	result, err, _ := s.group.Do(statsCacheKey, func() (any, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return Stats{}, err
	}
	return result.(Stats), nil
}

// Warm refreshes the cache ahead of demand. The worker calls this on a
// schedule so the first console visit of the morning does not pay the
// upstream round trip.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.refresh(ctx)
	return err
}

// Invalidate drops the cached statistics after a mutating console action.
// Calls within the coalescing window collapse into a single delete.
func (s *Service) Invalidate() {
	s.invalidate.Call(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Del(ctx, statsCacheKey).Err(); err != nil {
			s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
		}
	})
}

// Close stops the pending invalidation timer, if any.
func (s *Service) Close() {
	s.invalidate.Stop()
}

func (s *Service) refresh(ctx context.Context) (Stats, error) {
	ticket := s.latest.Begin()

	if !session.FromContext(ctx).Authenticated() && s.serviceToken != "" {
		ctx = session.ContextWith(ctx, &session.Session{Token: s.serviceToken})
	}

	var stats Stats
	if err := s.api.GetJSON(ctx, statsPath, nil, &stats); err != nil {
		return Stats{}, err
	}

	// A newer refresh may have finished first; only the freshest response
	// is cached and remembered.
	if !s.latest.Commit(ticket, stats) {
		if newer, ok := s.latest.Value(); ok {
			return newer, nil
		}
		return stats, nil
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return stats, nil
	}
	if err := s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
		s.logger.Warn("cache dashboard stats", slog.Any("error", err))
	}
	return stats, nil
}

func (s *Service) fromCache(ctx context.Context) (Stats, bool) {
	payload, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("read dashboard cache", slog.Any("error", err))
		}
		return Stats{}, false
	}
	var stats Stats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return Stats{}, false
	}
	return stats, true
}
