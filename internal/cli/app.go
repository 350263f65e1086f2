package cli

import (
	"fmt"
	"time"

	"github.com/natsites/nps-places/internal/cache"
	"github.com/natsites/nps-places/internal/config"
	"github.com/natsites/nps-places/internal/fetch"
	"github.com/natsites/nps-places/internal/logger"
	"github.com/natsites/nps-places/internal/places"
	"github.com/natsites/nps-places/internal/scraper"
)

// app wires the components for one run.
type app struct {
	cfg     *config.Config
	scraper *scraper.Scraper
	places  *places.Client
	close   func() error
}

func newApp(cfg *config.Config) (*app, error) {
	backend, closeFn, err := openBackend(cfg.Cache)
	if err != nil {
		return nil, err
	}

	var c *cache.Cache
	if cfg.Cache.Session {
		c = cache.NewWithSessionMirror(backend)
	} else {
		c = cache.New(backend)
	}

	client := fetch.New(time.Duration(cfg.HTTP.Timeout), cfg.HTTP.UserAgent)

	logger.Debug("app configured", logger.Fields{
		"cache_file":    cfg.Cache.File,
		"cache_backend": cfg.Cache.Backend,
		"sites_url":     cfg.Sites.BaseURL,
		"api_key_set":   cfg.Places.APIKey != "",
	})

	return &app{
		cfg:     cfg,
		scraper: scraper.New(client, c, cfg.Sites.BaseURL),
		places: places.NewClient(cfg.Places.APIKey, client, c, places.Options{
			BaseURL:    cfg.Places.BaseURL,
			Radius:     cfg.Places.Radius,
			MaxMatches: cfg.Places.MaxMatches,
		}),
		close: closeFn,
	}, nil
}

func openBackend(cfg config.CacheConfig) (cache.Backend, func() error, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		b, err := cache.OpenSQLite(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite cache: %w", err)
		}
		return b, b.Close, nil
	default:
		return cache.NewFileBackend(cfg.File), func() error { return nil }, nil
	}
}
