package main

import (
	"context"
	"fmt"
	"log"

	"github.com/tapmatch/tapmatch/internal/beercache"
	"github.com/tapmatch/tapmatch/internal/config"
	"github.com/tapmatch/tapmatch/internal/fetch"
	"github.com/tapmatch/tapmatch/internal/llm"
	"github.com/tapmatch/tapmatch/internal/locations"
	"github.com/tapmatch/tapmatch/internal/matching"
	"github.com/tapmatch/tapmatch/internal/menu"
	"github.com/tapmatch/tapmatch/internal/profile"
)

// app bundles the wired components a command needs.
type app struct {
	cfg      *config.Config
	index    *locations.Index
	profiles *profile.Store
	builder  *profile.Builder
	beers    *beercache.Cache
	menus    *menu.Provider
	engine   *matching.Engine
	watcher  *locations.Watcher

	llmClient llm.Client
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = &config.Config{}
	}

	cfg.FromEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires the full component graph from configuration.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	a.index, err = locations.NewIndex(cfg.VenuesCSV, cfg.VenuesFallbackCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue table: %w", err)
	}
	a.watcher, err = locations.NewWatcher(a.index, cfg.WatchInterval())
	if err != nil {
		return nil, fmt.Errorf("failed to create venue watcher: %w", err)
	}

	a.profiles, err = profile.NewStore(cfg.ProfilesDir)
	if err != nil {
		return nil, err
	}

	a.builder = &profile.Builder{Verbose: cfg.Verbose}
	if cfg.APIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.APIKey, llm.DefaultModel)
		if err != nil {
			log.Printf("[APP] LLM client unavailable, flavor extraction falls back to tokenizer: %v", err)
		} else {
			a.llmClient = client
			a.builder.Extractor = profile.NewLLMExtractor(client)
		}
	}

	store, err := a.openCacheStore(ctx)
	if err != nil {
		return nil, err
	}

	fetchOpts := &fetch.Options{
		Timeout:   cfg.FetchTimeout(),
		UserAgent: fetch.DefaultUserAgent,
	}

	var fetcher beercache.Fetcher
	if cfg.BeerURLTemplate != "" {
		fetcher = beercache.NewHTTPFetcher(cfg.BeerURLTemplate, fetchOpts)
	}
	a.beers = beercache.New(store, fetcher, cfg.CacheTTL())

	live := menu.NewLiveSource(fetchOpts, cfg.UseBrowser, cfg.Verbose)
	local := menu.NewLocalSource(cfg.MenusDir)
	a.menus = menu.NewProvider(live, local, a.beers)
	a.menus.SetVerbose(cfg.Verbose)

	a.engine = matching.NewEngine(weightsFromConfig(cfg))

	return a, nil
}

func (a *app) openCacheStore(ctx context.Context) (beercache.Store, error) {
	switch a.cfg.CacheBackend {
	case "postgres":
		store, err := beercache.NewPostgresStore(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres beer cache: %w", err)
		}
		return store, nil
	case "memory":
		return beercache.NewMemoryStore(), nil
	default:
		store, err := beercache.NewBadgerStore(a.cfg.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger beer cache: %w", err)
		}
		return store, nil
	}
}

// close releases everything except the beer cache, which the server owns
// during serve and commands close through it.
func (a *app) close() {
	if a.llmClient != nil {
		if err := a.llmClient.Close(); err != nil {
			log.Printf("[APP] closing LLM client: %v", err)
		}
	}
}

func weightsFromConfig(cfg *config.Config) matching.Weights {
	w := matching.DefaultWeights()
	if len(cfg.MatchWeights) == 0 {
		return w
	}
	if v, ok := cfg.MatchWeights["style"]; ok {
		w.Style = v
	}
	if v, ok := cfg.MatchWeights["flavor"]; ok {
		w.Flavor = v
	}
	if v, ok := cfg.MatchWeights["abv"]; ok {
		w.ABV = v
	}
	if v, ok := cfg.MatchWeights["ibu"]; ok {
		w.IBU = v
	}
	if v, ok := cfg.MatchWeights["rating"]; ok {
		w.Rating = v
	}
	if v, ok := cfg.MatchWeights["baseline_style"]; ok {
		w.BaselineStyle = v
	}
	return w
}
