package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/seo-tools/keyword-gap/pkg/models/domain"
	"github.com/seo-tools/keyword-gap/pkg/store/cache"
)

// cacheTTL is how long a fetched keyword set stays in the cache. Freshness
// is enforced per request against the envelope timestamp, so the stored
// TTL is always the widest tolerance.
const cacheTTL = 7 * 24 * time.Hour

type envelope struct {
	FetchedAt time.Time              `json:"fetched_at"`
	Records   []domain.KeywordRecord `json:"records"`
}

type cachedFetcher struct {
	next  Fetcher
	cache cache.Cache
}

// NewCached wraps a Fetcher with response caching keyed on host and market.
// FreshnessLive always hits the provider; 24h/7d accept cached sets no
// older than their window.
func NewCached(next Fetcher, c cache.Cache) Fetcher {
	return &cachedFetcher{next: next, cache: c}
}

func (f *cachedFetcher) Fetch(ctx context.Context, query domain.KeywordQuery) ([]domain.KeywordRecord, error) {
	logger := zerolog.Ctx(ctx)
	key := cacheKey(query)

	if tolerance := freshnessTolerance(query.Freshness); tolerance > 0 {
		raw, ok, err := f.cache.Get(ctx, key)
		if err != nil {
			// A broken cache degrades to a provider fetch, never a failure.
			logger.Warn().Err(err).Str("key", key).Msg("keyword cache read failed")
		} else if ok {
			var env envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("dropping undecodable keyword cache entry")
				_ = f.cache.Delete(ctx, key)
			} else if time.Since(env.FetchedAt) <= tolerance {
				return env.Records, nil
			}
		}
	}

	records, err := f.next.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	// Cache population is best-effort; a fetched result is never discarded
	// over a cache problem.
	raw, err := json.Marshal(envelope{FetchedAt: time.Now().UTC(), Records: records})
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to marshal keyword cache entry")
		return records, nil
	}
	if err := f.cache.Set(ctx, key, raw, cacheTTL); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("keyword cache write failed")
	}
	return records, nil
}

func cacheKey(query domain.KeywordQuery) string {
	return fmt.Sprintf("keywords:%s|%s", query.Domain, query.Market)
}

func freshnessTolerance(f domain.Freshness) time.Duration {
	switch f {
	case domain.Freshness24h:
		return 24 * time.Hour
	case domain.Freshness7d:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}
