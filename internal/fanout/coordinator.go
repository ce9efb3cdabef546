// Package fanout widens a single coordinate search into a constellation of
// offset queries, runs the full discovery pipeline per offset, and merges
// the batches into one deduplicated catalog.
package fanout

import (
	"context"

	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/menu"
	"github.com/willzeng274/HaystackDiet/internal/pool"
)

// offset is one (dLon, dLat) step away from the requested coordinate.
type offset struct {
	dLon float64
	dLat float64
}

// constellation covers the center plus symmetric neighbors, approximating a
// wider search than one radius-bounded query's result cap allows.
var constellation = []offset{
	{0, 0},
	{0.002, 0.002}, {-0.002, -0.002},
	{0.002, -0.002}, {-0.002, 0.002},
	{0.004, 0}, {-0.004, 0},
	{0, 0.004}, {0, -0.004},
	{0.004, 0.004}, {-0.004, -0.004},
}

const (
	offsetConcurrency     = 10
	restaurantConcurrency = 10
)

// Coordinator drives the locate-then-process pipeline across the offset
// constellation.
type Coordinator struct {
	locator   menu.Locator
	processor menu.Processor
	logger    *zap.Logger
}

// New builds a Coordinator.
func New(locator menu.Locator, processor menu.Processor, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		locator:   locator,
		processor: processor,
		logger:    logger,
	}
}

type batch struct {
	restaurants []menu.Restaurant
}

// FindMenus searches around the coordinate and returns the deduplicated,
// menu-bearing catalog plus pipeline counters.
func (c *Coordinator) FindMenus(ctx context.Context, lat, lon float64, radius int) ([]menu.Restaurant, menu.JobCounters) {
	batches := pool.Map(ctx, offsetConcurrency, constellation, func(ctx context.Context, o offset) (batch, error) {
		return c.searchOffset(ctx, lat+o.dLat, lon+o.dLon, radius), nil
	})

	counters := menu.JobCounters{OffsetsSearched: len(batches)}
	merged := merge(batches, &counters)
	c.logger.Info("geo fanout complete",
		zap.Int("offsets", counters.OffsetsSearched),
		zap.Int("found", counters.RestaurantsFound),
		zap.Int("kept", counters.RestaurantsKept),
	)
	return merged, counters
}

func (c *Coordinator) searchOffset(ctx context.Context, lat, lon float64, radius int) batch {
	located := c.locator.Locate(ctx, lat, lon, radius)
	if len(located) == 0 {
		return batch{}
	}
	c.logger.Debug("offset search located restaurants",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.Int("count", len(located)),
	)

	processed := pool.Map(ctx, restaurantConcurrency, located, func(ctx context.Context, r menu.Restaurant) (menu.Restaurant, error) {
		return c.processor.Process(ctx, r), nil
	})
	return batch{restaurants: processed}
}

// merge deduplicates batches by (name, address), first occurrence wins in
// batch-then-position order, and drops restaurants without menu items.
// Menu-less entries are dropped before their key is recorded, so a later
// duplicate that does carry a menu is kept.
func merge(batches []batch, counters *menu.JobCounters) []menu.Restaurant {
	seen := make(map[menu.IdentityKey]struct{})
	merged := make([]menu.Restaurant, 0)
	for _, b := range batches {
		for _, r := range b.restaurants {
			counters.RestaurantsFound++
			if len(r.MenuItems) == 0 {
				continue
			}
			key := r.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, r)
		}
	}
	counters.RestaurantsKept = len(merged)
	return merged
}
