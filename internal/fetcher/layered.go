package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/menu"
	"github.com/willzeng274/HaystackDiet/internal/metrics"
)

// Tier is one named retrieval strategy in escalation order.
type Tier struct {
	Name    string
	Fetcher menu.PageFetcher
}

// Config controls the layered fetcher.
type Config struct {
	AttemptTimeout time.Duration
}

// Layered implements menu.ContentFetcher by escalating through retrieval
// tiers until one returns HTTP 200 with a non-empty body.
type Layered struct {
	cfg    Config
	tiers  []Tier
	blobs  menu.BlobStore
	hasher menu.Hasher
	logger *zap.Logger
}

// Option customizes a Layered fetcher.
type Option func(*Layered)

// WithSnapshots archives successfully fetched markup in the given store,
// keyed by a digest of the page URL.
func WithSnapshots(blobs menu.BlobStore, hasher menu.Hasher) Option {
	return func(l *Layered) {
		l.blobs = blobs
		l.hasher = hasher
	}
}

// NewLayered builds a layered fetcher over the given tiers.
func NewLayered(cfg Config, logger *zap.Logger, tiers []Tier, opts ...Option) *Layered {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Layered{
		cfg:    cfg,
		tiers:  tiers,
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Content retrieves the page at url, returning the empty string when every
// tier fails. The URL's query string is dropped before fetching.
func (l *Layered) Content(ctx context.Context, rawURL string) string {
	target := stripQuery(rawURL)
	if target == "" {
		return ""
	}

	request := menu.FetchRequest{
		URL:     target,
		Headers: BrowserHeaders(RandomUserAgent()),
	}

	for _, tier := range l.tiers {
		body, ok := l.attempt(ctx, tier, request)
		if !ok {
			continue
		}
		l.logger.Debug("page fetched",
			zap.String("url", target),
			zap.String("tier", tier.Name),
			zap.Int("bytes", len(body)),
		)
		l.archive(ctx, target, body)
		return string(body)
	}

	l.logger.Warn("all fetch tiers failed", zap.String("url", target))
	return ""
}

func (l *Layered) attempt(ctx context.Context, tier Tier, request menu.FetchRequest) ([]byte, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, l.cfg.AttemptTimeout)
	defer cancel()

	resp, err := tier.Fetcher.Fetch(attemptCtx, request)
	if err != nil {
		metrics.ObserveFetch(tier.Name, request.URL, false, 0)
		l.logger.Debug("fetch tier failed",
			zap.String("url", request.URL),
			zap.String("tier", tier.Name),
			zap.Error(err),
		)
		return nil, false
	}
	if resp.StatusCode != http.StatusOK || len(resp.Body) == 0 {
		metrics.ObserveFetch(tier.Name, request.URL, false, 0)
		l.logger.Debug("fetch tier rejected response",
			zap.String("url", request.URL),
			zap.String("tier", tier.Name),
			zap.Int("status", resp.StatusCode),
		)
		return nil, false
	}

	metrics.ObserveFetch(tier.Name, request.URL, true, len(resp.Body))
	return resp.Body, true
}

func (l *Layered) archive(ctx context.Context, target string, body []byte) {
	if l.blobs == nil || l.hasher == nil {
		return
	}
	digest, err := l.hasher.Hash([]byte(target))
	if err != nil {
		l.logger.Warn("snapshot digest failed", zap.String("url", target), zap.Error(err))
		return
	}
	path := fmt.Sprintf("snapshots/%s.html", digest)
	uri, err := l.blobs.PutObject(ctx, path, "text/html; charset=utf-8", body)
	if err != nil {
		l.logger.Warn("snapshot archive failed", zap.String("url", target), zap.Error(err))
		return
	}
	l.logger.Debug("markup archived", zap.String("url", target), zap.String("uri", uri))
}

// stripQuery removes the query string and fragment from a URL. Menu pages
// behind tracking parameters resolve to the same document without them.
func stripQuery(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		if idx := strings.IndexByte(trimmed, '?'); idx >= 0 {
			return trimmed[:idx]
		}
		return trimmed
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
