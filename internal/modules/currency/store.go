package currency

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKey = "currency:usd_rates"

// Store holds the current rate table. A local snapshot serves reads; Redis
// (when configured) shares refreshed rates across instances so a cold start
// can serve conversions before its first feed fetch succeeds.
type Store struct {
	mu    sync.RWMutex
	rates Rates

	src    Source
	rdb    *redis.Client // optional
	logger *slog.Logger
}

func NewStore(src Source, rdb *redis.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{rates: Rates{}, src: src, rdb: rdb, logger: logger}
}

// Snapshot returns the current table. The returned map must not be mutated.
func (s *Store) Snapshot() Rates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rates
}

func (s *Store) Refresh(ctx context.Context) error {
	rates, err := s.src.Fetch(ctx)
	if err != nil {
		// fall back to whatever a sibling instance last published
		if cached := s.loadFromRedis(ctx); len(cached) > 0 {
			s.swap(cached)
			s.logger.WarnContext(ctx, "rate feed unavailable, using cached rates", "err", err, "cached", len(cached))
			return nil
		}
		return err
	}

	s.swap(rates)
	s.publishToRedis(ctx, rates)
	s.logger.InfoContext(ctx, "currency rates refreshed", "count", len(rates))
	return nil
}

// Run refreshes on a fixed interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = 15 * time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.ErrorContext(ctx, "currency refresh failed", "err", err)
			}
		}
	}
}

func (s *Store) swap(r Rates) {
	s.mu.Lock()
	s.rates = r
	s.mu.Unlock()
}

func (s *Store) publishToRedis(ctx context.Context, rates Rates) {
	if s.rdb == nil {
		return
	}
	fields := make(map[string]any, len(rates))
	for code, rate := range rates {
		fields[code] = strconv.FormatFloat(rate, 'f', -1, 64)
	}
	if err := s.rdb.HSet(ctx, redisKey, fields).Err(); err != nil {
		s.logger.WarnContext(ctx, "publish rates to redis failed", "err", err)
	}
}

func (s *Store) loadFromRedis(ctx context.Context) Rates {
	if s.rdb == nil {
		return nil
	}
	vals, err := s.rdb.HGetAll(ctx, redisKey).Result()
	if err != nil || len(vals) == 0 {
		return nil
	}
	out := make(Rates, len(vals))
	for code, raw := range vals {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
			out[code] = f
		}
	}
	return out
}
