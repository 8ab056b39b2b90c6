// Package quotegateway provides a multi-provider quote-fetching gateway
// backed by a tagged in-memory quote cache.
//
// The Gateway type is the main entry point: create one with New, register
// providers with RegisterProvider, and fetch quotes with Random, Search, or
// Refresh. Fetched quotes land in a blockable cache that serves subsequent
// requests without touching the upstream APIs; FreezeCache and ThawCache
// control the cache's write gate at runtime.
//
// Routing strategies (single, fallback, load-balance, conditional) are
// configured via [Config] which can be loaded from a YAML or JSON file
// using [LoadConfig].
package quotegateway

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/verso-labs/quote-gateway/cache"
	"github.com/verso-labs/quote-gateway/internal/history"
	"github.com/verso-labs/quote-gateway/internal/logging"
	"github.com/verso-labs/quote-gateway/internal/metrics"
	"github.com/verso-labs/quote-gateway/internal/strategies"
	"github.com/verso-labs/quote-gateway/providers"
)

// EventHookFunc is called asynchronously after a gateway event (quote served
// or fetch failed). Hooks replace an event-bus dependency with a simpler
// function-based pattern.
type EventHookFunc func(ctx context.Context, subject string, data map[string]interface{})

// Event subject constants used when invoking gateway hooks.
const (
	SubjectQuoteServed = "gateway.quote.served"
	SubjectFetchFailed = "gateway.fetch.failed"
)

// Gateway is the main entry point for fetching quotes across providers.
type Gateway struct {
	mu             sync.RWMutex
	config         Config
	providers      map[string]providers.Provider
	strategy       strategies.Strategy
	store          *cache.Blockable
	history        history.Writer
	hooks          []EventHookFunc
	discoveredTags map[string][]providers.TagInfo
}

// New creates a new Gateway instance with the given configuration.
func New(cfg Config) (*Gateway, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store := cache.NewBlockable(cache.NewMemory(), cfg.Cache.Strict).
		WithPreserveState(cfg.Cache.PreserveState)

	var writer history.Writer = history.NoopWriter{}
	switch cfg.History.Driver {
	case "sqlite":
		w, err := history.NewSQLiteWriter(cfg.History.DSN)
		if err != nil {
			return nil, fmt.Errorf("history writer: %w", err)
		}
		writer = w
	case "postgres":
		w, err := history.NewPostgresWriter(cfg.History.DSN)
		if err != nil {
			return nil, fmt.Errorf("history writer: %w", err)
		}
		writer = w
	}

	return &Gateway{
		config:         cfg,
		providers:      make(map[string]providers.Provider),
		store:          store,
		history:        writer,
		discoveredTags: make(map[string][]providers.TagInfo),
	}, nil
}

// RegisterProvider registers a provider with the gateway.
func (g *Gateway) RegisterProvider(p providers.Provider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.providers[p.Name()] = p
	g.strategy = nil // force strategy rebuild
}

// AddHook registers an EventHookFunc that is called asynchronously on each
// served or failed fetch. Multiple hooks may be registered; all are invoked
// for every event.
func (g *Gateway) AddHook(fn EventHookFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, fn)
}

// SetHistoryWriter replaces the served-quote log writer. Pass
// history.NoopWriter{} to disable logging.
func (g *Gateway) SetHistoryWriter(w history.Writer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if w == nil {
		w = history.NoopWriter{}
	}
	g.history = w
}

// Cache exposes the gateway's blockable quote cache.
func (g *Gateway) Cache() *cache.Blockable {
	return g.store
}

// Random returns a quote, preferring the cache over upstream providers.
// tag may be empty to draw from the whole cache. On a cache miss the
// configured strategy fetches from upstream and the result is cached.
func (g *Gateway) Random(ctx context.Context, tag string) (providers.Quote, error) {
	log := logging.FromContext(ctx)

	if q, ok := g.randomFromCache(tag); ok {
		metrics.CacheHits.Inc()
		log.Debug("quote served from cache", "quote_id", string(q.ID), "tag", tag)
		g.recordServed(ctx, q, tag, "cache")
		return q, nil
	}
	metrics.CacheMisses.Inc()

	start := time.Now()
	quotes, err := g.fetch(ctx, providers.FetchRequest{Tag: tag, Count: 1})
	latency := time.Since(start)
	if err != nil {
		metrics.QuotesServed.WithLabelValues("", "error").Inc()
		log.Error("fetch failed", "tag", tag, "latency_ms", latency.Milliseconds(), "error", err.Error())
		g.recordFailed(ctx, tag, err)
		return providers.Quote{}, err
	}
	if len(quotes) == 0 {
		err := providers.ErrNoQuote
		metrics.QuotesServed.WithLabelValues("", "error").Inc()
		log.Error("fetch returned no quotes", "tag", tag, "latency_ms", latency.Milliseconds())
		g.recordFailed(ctx, tag, err)
		return providers.Quote{}, err
	}

	q := quotes[0]
	g.cacheQuotes(quotes)

	metrics.FetchDuration.WithLabelValues(q.Source).Observe(latency.Seconds())
	metrics.QuotesServed.WithLabelValues(q.Source, "success").Inc()
	log.Info("quote served",
		"quote_id", string(q.ID),
		"author", q.Author,
		"tag", tag,
		"latency_ms", latency.Milliseconds(),
	)
	g.recordServed(ctx, q, tag, "upstream")
	return q, nil
}

// Search dispatches the query to every registered SearchProvider and returns
// the merged results. Successful results are cached.
func (g *Gateway) Search(ctx context.Context, query providers.SearchQuery) ([]providers.Quote, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)

	g.mu.RLock()
	searchers := make([]providers.SearchProvider, 0, len(g.providers))
	for _, p := range g.providers {
		if sp, ok := p.(providers.SearchProvider); ok {
			searchers = append(searchers, sp)
		}
	}
	g.mu.RUnlock()

	if len(searchers) == 0 {
		return nil, fmt.Errorf("no search-capable provider registered")
	}

	var (
		results []providers.Quote
		lastErr error
	)
	for _, sp := range searchers {
		quotes, err := sp.Search(ctx, query)
		if err != nil {
			metrics.ProviderErrors.WithLabelValues(sp.Name(), "provider_error").Inc()
			log.Warn("search failed", "provider", sp.Name(), "error", err.Error())
			lastErr = err
			continue
		}
		results = append(results, quotes...)
	}
	if len(results) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all search providers failed: %w", lastErr)
	}

	g.cacheQuotes(results)
	return results, nil
}

// Refresh bulk-fetches up to n quotes for the given tag into the cache and
// reports how many were actually stored.
func (g *Gateway) Refresh(ctx context.Context, tag string, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("refresh count must be positive, got %d", n)
	}

	quotes, err := g.fetch(ctx, providers.FetchRequest{Tag: tag, Count: n})
	if err != nil {
		return 0, err
	}
	stored := g.cacheQuotes(quotes)
	logging.FromContext(ctx).Info("cache refreshed", "tag", tag, "fetched", len(quotes), "stored", stored)
	return stored, nil
}

// Tags returns the union of static provider tag vocabularies and tags
// discovered from TagDiscoveryProviders, sorted by name.
func (g *Gateway) Tags(ctx context.Context) ([]providers.TagInfo, error) {
	log := logging.FromContext(ctx)

	g.mu.RLock()
	registered := make([]providers.Provider, 0, len(g.providers))
	for _, p := range g.providers {
		registered = append(registered, p)
	}
	g.mu.RUnlock()

	seen := make(map[string]bool)
	var tags []providers.TagInfo
	add := func(infos []providers.TagInfo) {
		for _, t := range infos {
			if seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			tags = append(tags, t)
		}
	}

	for _, p := range registered {
		if dp, ok := p.(providers.TagDiscoveryProvider); ok {
			discovered, err := dp.DiscoverTags(ctx)
			if err != nil {
				log.Warn("tag discovery failed", "provider", p.Name(), "error", err.Error())
			} else {
				g.mu.Lock()
				g.discoveredTags[p.Name()] = discovered
				g.mu.Unlock()
				add(discovered)
				continue
			}
		}
		add(providers.TagsFromList(p.Name(), p.SupportedTags()))
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// Image fetches the rendered image for a quote from the named provider, which
// must implement ImageProvider.
func (g *Gateway) Image(ctx context.Context, provider string, id providers.ID) ([]byte, error) {
	g.mu.RLock()
	p, ok := g.providers[provider]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", provider)
	}
	ip, ok := p.(providers.ImageProvider)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support quote images", provider)
	}
	return ip.QuoteImage(ctx, id)
}

// FreezeCache blocks the quote cache. When preserve is true the cache
// contents are dropped as part of blocking.
func (g *Gateway) FreezeCache(preserve bool) {
	g.store.SetPreserveState(preserve)
	g.store.Block()
	metrics.CacheBlocked.Set(1)
	metrics.CacheSize.Set(float64(g.store.Len()))
}

// ThawCache unblocks the quote cache. Entries dropped while frozen are not
// restored.
func (g *Gateway) ThawCache() {
	g.store.Unblock()
	metrics.CacheBlocked.Set(0)
}

// ReloadConfig validates and applies a new configuration, forcing strategy
// rebuild on next request. The cache and history writer are not rebuilt.
func (g *Gateway) ReloadConfig(cfg Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config = cfg
	g.strategy = nil // force rebuild on next request
	return nil
}

// GetConfig returns a copy of the current configuration.
func (g *Gateway) GetConfig() Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config
}

// Close releases the history writer's resources.
func (g *Gateway) Close() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if c, ok := g.history.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// ── Registry-consolidation helpers ──────────────────────────────────────────
// These methods make *Gateway satisfy providers.ProviderSource so that HTTP
// handlers that previously held a *providers.Registry can accept the gateway
// directly instead.

// Get returns a registered provider by name.
func (g *Gateway) Get(name string) (providers.Provider, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.providers[name]
	return p, ok
}

// List returns the names of all registered providers.
func (g *Gateway) List() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllTags returns TagInfo for all registered providers. Discovered tags take
// precedence over a provider's static vocabulary.
func (g *Gateway) AllTags() []providers.TagInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	seen := make(map[string]bool)
	var tags []providers.TagInfo
	for name, p := range g.providers {
		infos := providers.TagsFromList(name, p.SupportedTags())
		if discovered, ok := g.discoveredTags[name]; ok && len(discovered) > 0 {
			infos = discovered
		}
		for _, t := range infos {
			if seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			tags = append(tags, t)
		}
	}
	return tags
}

// FindByTag returns the first registered provider that supports the given tag.
func (g *Gateway) FindByTag(tag string) (providers.Provider, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, p := range g.providers {
		if p.SupportsTag(tag) {
			return p, true
		}
	}
	return nil, false
}

// ── Internals ────────────────────────────────────────────────────────────────

func (g *Gateway) randomFromCache(tag string) (providers.Quote, bool) {
	if tag == "" {
		q, err := g.store.Random(false)
		return q, err == nil
	}
	q, ok, err := g.store.RandomByTag(tag, false)
	return q, err == nil && ok
}

// cacheQuotes stores fetched quotes without replacing existing entries and
// reports how many were stored. Write denials from a blocked cache are
// expected and not treated as fetch failures.
func (g *Gateway) cacheQuotes(quotes []providers.Quote) int {
	if len(quotes) == 0 {
		return 0
	}
	stored, _ := g.store.PutAll(quotes, false)
	metrics.CacheSize.Set(float64(g.store.Len()))
	return stored
}

func (g *Gateway) fetch(ctx context.Context, req providers.FetchRequest) ([]providers.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s, err := g.getStrategy()
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, req)
}

func (g *Gateway) recordServed(ctx context.Context, q providers.Quote, tag, via string) {
	g.mu.RLock()
	writer := g.history
	g.mu.RUnlock()
	_ = writer.Write(ctx, history.Entry{
		TraceID:  logging.TraceIDFromContext(ctx),
		Provider: q.Source,
		QuoteID:  string(q.ID),
		Author:   q.Author,
		Tag:      tag,
	})

	g.publishEvent(ctx, SubjectQuoteServed, map[string]interface{}{
		"trace_id":  logging.TraceIDFromContext(ctx),
		"quote_id":  string(q.ID),
		"author":    q.Author,
		"tag":       tag,
		"via":       via,
		"timestamp": time.Now(),
	})
}

func (g *Gateway) recordFailed(ctx context.Context, tag string, err error) {
	g.mu.RLock()
	writer := g.history
	g.mu.RUnlock()
	_ = writer.Write(ctx, history.Entry{
		TraceID:      logging.TraceIDFromContext(ctx),
		Tag:          tag,
		ErrorMessage: err.Error(),
	})

	g.publishEvent(ctx, SubjectFetchFailed, map[string]interface{}{
		"trace_id":  logging.TraceIDFromContext(ctx),
		"tag":       tag,
		"error":     err.Error(),
		"timestamp": time.Now(),
	})
}

// publishEvent calls all registered hooks asynchronously.
func (g *Gateway) publishEvent(ctx context.Context, subject string, data map[string]interface{}) {
	g.mu.RLock()
	hooks := make([]EventHookFunc, len(g.hooks))
	copy(hooks, g.hooks)
	g.mu.RUnlock()

	for _, h := range hooks {
		fn := h
		go fn(ctx, subject, data)
	}
}

// getStrategy lazily builds the strategy from config and registered providers.
func (g *Gateway) getStrategy() (strategies.Strategy, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.strategy != nil {
		return g.strategy, nil
	}

	lookup := func(name string) (providers.Provider, bool) {
		p, ok := g.providers[name]
		return p, ok
	}

	targets := make([]strategies.Target, len(g.config.Targets))
	for i, t := range g.config.Targets {
		targets[i] = strategies.Target{
			Provider: t.Provider,
			Weight:   t.Weight,
		}
	}

	var s strategies.Strategy
	switch g.config.Strategy.Mode {
	case ModeSingle, "":
		if len(targets) == 0 {
			return nil, fmt.Errorf("no targets configured for single strategy")
		}
		s = strategies.NewSingle(targets[0], lookup)
	case ModeFallback:
		fb := strategies.NewFallback(targets, lookup)
		if len(g.config.Targets) > 0 && g.config.Targets[0].Retry != nil {
			fb.WithMaxRetries(g.config.Targets[0].Retry.Attempts)
		}
		s = fb
	case ModeLoadBalance:
		s = strategies.NewLoadBalance(targets, lookup, time.Now().UnixNano())
	case ModeConditional:
		if len(g.config.Strategy.Conditions) == 0 {
			return nil, fmt.Errorf("no conditions configured for conditional strategy")
		}
		if len(targets) == 0 {
			return nil, fmt.Errorf("no targets configured for conditional strategy")
		}
		var rules []strategies.Rule
		for _, cond := range g.config.Strategy.Conditions {
			rules = append(rules, strategies.Rule{
				Key:    cond.Key,
				Value:  cond.Value,
				Target: strategies.Target{Provider: cond.TargetProvider},
			})
		}
		s = strategies.NewConditional(rules, targets[0], lookup)
	default:
		return nil, fmt.Errorf("unknown strategy mode: %s", g.config.Strategy.Mode)
	}

	g.strategy = s
	return s, nil
}
