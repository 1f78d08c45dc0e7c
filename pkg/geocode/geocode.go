// Package geocode resolves Korean lot and road addresses to EPSG:4326
// coordinates. Results are cached so repeated pool backfills do not
// re-spend API quota on addresses already resolved, including addresses
// the upstream service could not match.
package geocode

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/comps-cli/internal/model"
)

// Result is a single geocoding outcome. Matched=false results are cached
// too, so known-bad addresses are not retried on every run.
type Result struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Matched   bool    `json:"matched"`
	Source    string  `json:"source"`
	Refined   string  `json:"refined,omitempty"`
}

// Provider represents a single geocoding backend.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Client wraps a Provider with a Cache.
type Client struct {
	provider Provider
	cache    Cache
}

// NewClient creates a Client. A nil cache disables caching.
func NewClient(provider Provider, cache Cache) *Client {
	return &Client{provider: provider, cache: cache}
}

// Lookup resolves an address, consulting the cache first. Cached
// non-matches are returned without hitting the provider.
func (c *Client) Lookup(ctx context.Context, address string) (*Result, error) {
	if address == "" {
		return &Result{Matched: false, Source: c.provider.Name()}, nil
	}

	key := cacheKey(address)
	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			zap.L().Warn("geocode: cache read failed", zap.Error(err))
		} else if ok {
			zap.L().Debug("geocode cache hit",
				zap.String("key", keyPrefix(key)),
				zap.Bool("matched", cached.Matched),
			)
			return cached, nil
		}
	}

	result, err := c.provider.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, address, result); err != nil {
			zap.L().Warn("geocode: cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// Backfill fills Lat/Lon on pool records that are missing coordinates,
// geocoding up to concurrency addresses in parallel. Individual lookup
// failures are logged and skipped. Returns the number of records filled.
func (c *Client) Backfill(ctx context.Context, pool []model.PropertyRecord, concurrency int) (int, error) {
	if concurrency <= 0 {
		concurrency = 10
	}

	var filled atomic.Int64

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	for i := range pool {
		if pool[i].Lat != nil && pool[i].Lon != nil {
			continue
		}
		if pool[i].Address == "" {
			continue
		}
		i := i
		eg.Go(func() error {
			r, err := c.Lookup(gCtx, pool[i].Address)
			if err != nil {
				zap.L().Warn("geocode: backfill lookup failed",
					zap.String("case_no", pool[i].CaseNo),
					zap.Error(err),
				)
				return nil //nolint:nilerr // individual failures don't fail the backfill
			}
			if r == nil || !r.Matched {
				return nil
			}
			pool[i].Lat = model.Float64(r.Latitude)
			pool[i].Lon = model.Float64(r.Longitude)
			filled.Add(1)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return int(filled.Load()), err
	}
	return int(filled.Load()), nil
}

func keyPrefix(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
