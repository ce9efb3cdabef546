// Package processor fills each restaurant's menu by walking a reliability
// gradient: structured chain data, then scraped website text, then pure
// generation. Later tiers run only after earlier ones come back empty.
package processor

import (
	"context"

	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/menu"
	"github.com/willzeng274/HaystackDiet/internal/metrics"
)

// tierOutcome classifies one tier attempt.
type tierOutcome int

const (
	tierHit tierOutcome = iota
	tierEmpty
	tierSkipped
)

// tierResult is what each tier hands the decision table.
type tierResult struct {
	outcome tierOutcome
	source  string
	items   []menu.MenuItem
}

// Pipeline implements menu.Processor.
type Pipeline struct {
	fetcher     menu.ContentFetcher
	extractor   menu.Extractor
	synthesizer menu.Synthesizer
	logger      *zap.Logger
}

// New builds a Pipeline.
func New(fetcher menu.ContentFetcher, extractor menu.Extractor, synthesizer menu.Synthesizer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher:     fetcher,
		extractor:   extractor,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Process populates the restaurant's menu items. It always terminates with
// a non-empty menu; the worst case is the synthesizer's deterministic
// fallback.
func (p *Pipeline) Process(ctx context.Context, r menu.Restaurant) menu.Restaurant {
	result := p.chainTier(ctx, r)
	if result.outcome != tierHit {
		result = p.websiteTier(ctx, r)
	}
	if result.outcome != tierHit {
		result = p.synthesisTier(ctx, r)
	}

	r.MenuItems = p.synthesizer.TagItems(ctx, result.items)
	metrics.ObserveRestaurant(result.source)
	p.logger.Info("restaurant processed",
		zap.String("name", r.Name),
		zap.String("source", result.source),
		zap.Int("items", len(r.MenuItems)),
	)
	return r
}

// chainTier fetches the structured menu endpoint for known chains and runs
// the payload through item extraction as if it were page text.
func (p *Pipeline) chainTier(ctx context.Context, r menu.Restaurant) tierResult {
	url, ok := ChainMenuURL(r.Name)
	if !ok {
		return tierResult{outcome: tierSkipped}
	}

	payload := p.fetcher.Content(ctx, url)
	if payload == "" {
		p.logger.Warn("chain menu endpoint unreachable", zap.String("name", r.Name), zap.String("url", url))
		return tierResult{outcome: tierEmpty}
	}

	items := p.synthesizer.ExtractItems(ctx, payload, r.Name)
	if len(items) == 0 {
		return tierResult{outcome: tierEmpty}
	}
	return tierResult{outcome: tierHit, source: "chain", items: items}
}

// websiteTier scrapes the restaurant's own site and extracts items from
// the condensed markup.
func (p *Pipeline) websiteTier(ctx context.Context, r menu.Restaurant) tierResult {
	if r.Website == "" {
		return tierResult{outcome: tierSkipped}
	}

	markup := p.fetcher.Content(ctx, r.Website)
	if markup == "" {
		p.logger.Info("website unreachable, will synthesize", zap.String("name", r.Name))
		return tierResult{outcome: tierEmpty}
	}

	condensed := p.extractor.Extract(markup)
	items := p.synthesizer.ExtractItems(ctx, condensed, r.Name)
	if len(items) == 0 {
		p.logger.Info("no menu found on website, will synthesize", zap.String("name", r.Name))
		return tierResult{outcome: tierEmpty}
	}
	return tierResult{outcome: tierHit, source: "website", items: items}
}

// synthesisTier is the terminal tier; the synthesizer guarantees items.
func (p *Pipeline) synthesisTier(ctx context.Context, r menu.Restaurant) tierResult {
	items := p.synthesizer.SynthesizeMenu(ctx, r.Name, r.PriceLevel)
	return tierResult{outcome: tierHit, source: "synthesized", items: items}
}
