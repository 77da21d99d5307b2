package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Source supplies the raw figures each dataset is built from.
type Source interface {
	MonthlySales(ctx context.Context, from, to time.Time) ([]MonthlySales, error)
	CategorySales(ctx context.Context, from, to time.Time) ([]CategorySales, error)
	MethodAmounts(ctx context.Context, from, to time.Time) ([]MethodAmount, error)
	CustomerSegments(ctx context.Context, from, to time.Time) ([]SegmentRaw, error)
	DailySales(ctx context.Context, from, to time.Time) ([]DailySales, error)
}

const dateLayout = "2006-01-02"

// Service assembles report datasets and caches them in redis.
type Service struct {
	source Source
	cache  *redis.Client
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewService constructs a Service. cache may be nil to disable caching.
func NewService(source Source, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		source: source,
		cache:  cache,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// DefaultRange is the trailing six months ending today.
func (s *Service) DefaultRange() (time.Time, time.Time) {
	to := s.now()
	return to.AddDate(0, -6, 0), to
}

// Summary returns the full dataset bundle for the range, serving from
// cache when a fresh copy exists.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	key := cacheKey(from, to)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	summary, err := s.build(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, summary)
	return summary, nil
}

// Warm precomputes and caches the default-range summary. The scheduled
// warmup job calls this so dashboard loads hit the cache.
func (s *Service) Warm(ctx context.Context) error {
	from, to := s.DefaultRange()
	summary, err := s.build(ctx, from, to)
	if err != nil {
		return err
	}
	s.toCache(ctx, cacheKey(from, to), summary)
	return nil
}

func (s *Service) build(ctx context.Context, from, to time.Time) (*Summary, error) {
	monthly, err := s.source.MonthlySales(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: monthly sales: %w", err)
	}
	categories, err := s.source.CategorySales(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: category sales: %w", err)
	}
	methods, err := s.source.MethodAmounts(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: payment methods: %w", err)
	}
	segments, err := s.source.CustomerSegments(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: customer segments: %w", err)
	}
	daily, err := s.source.DailySales(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: daily sales: %w", err)
	}

	return &Summary{
		From:             from.Format(dateLayout),
		To:               to.Format(dateLayout),
		MonthlySales:     monthly,
		CategoryShares:   CategoryShares(categories),
		PaymentMethods:   MethodShares(methods),
		CustomerSegments: SegmentAverages(segments),
		DailySales:       daily,
	}, nil
}

func cacheKey(from, to time.Time) string {
	return fmt.Sprintf("reports:summary:%s:%s", from.Format(dateLayout), to.Format(dateLayout))
}

func (s *Service) fromCache(ctx context.Context, key string) *Summary {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("report cache read failed", slog.Any("error", err))
		}
		return nil
	}
	var summary Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		s.logger.Warn("report cache entry corrupt", slog.String("key", key))
		return nil
	}
	return &summary
}

func (s *Service) toCache(ctx context.Context, key string, summary *Summary) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("report cache write failed", slog.Any("error", err))
	}
}
