package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gapscout/internal/analysis"
	"gapscout/internal/config"
	"gapscout/internal/core"
	"gapscout/internal/dataforseo"
	"gapscout/internal/llm"
	"gapscout/internal/logger"
	"gapscout/internal/metrics"
	"gapscout/internal/store"
	"gapscout/internal/strategy"
)

// app holds the clients and service built from configuration for one command run.
type app struct {
	cfg        *config.Config
	dataForSEO *dataforseo.Client
	gemini     *llm.Client
	cache      store.ResultCache
	metrics    *metrics.Metrics
	service    *analysis.Service
}

// newApp wires providers, cache and metrics into an analysis service. Providers without
// credentials are left out and their strategies are skipped by the chain.
func newApp(ctx context.Context, withCache bool) (*app, error) {
	cfg := config.Get()
	a := &app{cfg: cfg, metrics: metrics.New()}

	if config.HasDataForSEO() {
		client, err := newDataForSEOClient(cfg)
		if err != nil {
			return nil, err
		}
		a.dataForSEO = client
	}

	if config.HasGemini() {
		client, err := llm.NewClient(ctx, llm.Config{
			APIKey:      cfg.AI.Gemini.APIKey,
			Model:       cfg.AI.Gemini.Model,
			MaxTokens:   cfg.AI.Gemini.MaxTokens,
			Temperature: cfg.AI.Gemini.Temperature,
			Timeout:     config.Duration(cfg.AI.Gemini.Timeout, 60*time.Second),
		})
		if err != nil {
			return nil, err
		}
		a.gemini = client
	}

	if withCache {
		cache, err := openCache(ctx, cfg)
		if err != nil {
			// A broken cache should not block analysis.
			logger.Warn("Result cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "error", err.Error())
		} else {
			a.cache = cache
		}
	}

	order, err := strategy.ParseOrder(cfg.Analysis.StrategyOrder)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := strategy.Dependencies{
		Concurrency: cfg.DataForSEO.Concurrency,
		SampleSize:  cfg.AI.SampleSize,
		MockSeed:    cfg.Analysis.MockSeed,
	}
	// Assign only non-nil clients so the interfaces stay nil when a provider is absent.
	if a.dataForSEO != nil {
		deps.Fetcher = a.dataForSEO
	}
	if a.gemini != nil {
		deps.Estimator = a.gemini
	}

	svc, err := analysis.NewService(analysis.Options{
		Dependencies:   deps,
		Order:          order,
		Cache:          a.cache,
		CacheTTL:       config.Duration(cfg.Cache.TTL, 24*time.Hour),
		Metrics:        a.metrics,
		TargetGapCount: cfg.Analysis.TargetGapCount,
		LocationCode:   cfg.Analysis.LocationCode,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.service = svc

	logger.Debug("Analysis service ready", "strategies", strategyList(svc.Strategies()), "cache", a.cacheBackend())
	return a, nil
}

func newDataForSEOClient(cfg *config.Config) (*dataforseo.Client, error) {
	return dataforseo.NewClient(dataforseo.Config{
		Login:        cfg.DataForSEO.Login,
		Password:     cfg.DataForSEO.Password,
		BaseURL:      cfg.DataForSEO.BaseURL,
		LanguageCode: cfg.DataForSEO.LanguageCode,
		Timeout:      config.Duration(cfg.DataForSEO.Timeout, 45*time.Second),
	})
}

func openCache(ctx context.Context, cfg *config.Config) (store.ResultCache, error) {
	return store.Open(ctx, cfg.Cache.Backend, cfg.Cache.Directory, store.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
}

func (a *app) cacheBackend() string {
	if a.cache == nil {
		return "none"
	}
	return a.cache.Backend()
}

// Close releases provider clients and the cache.
func (a *app) Close() {
	if a.gemini != nil {
		a.gemini.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error("Failed to close result cache", err)
		}
	}
}

func strategyList(names []core.StrategyName) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return strings.Join(out, ",")
}

func requireDataForSEO() (*dataforseo.Client, error) {
	if !config.HasDataForSEO() {
		return nil, fmt.Errorf("DataForSEO credentials are not configured. Set DATAFORSEO_LOGIN and DATAFORSEO_PASSWORD")
	}
	return newDataForSEOClient(config.Get())
}
