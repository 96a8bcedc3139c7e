// Package app wires configuration into the handlers. Every binary builds its
// handlers through here so that they are configured identically.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tyler180/bonus-ball-backends/internal/api"
	"github.com/tyler180/bonus-ball-backends/internal/auth"
	"github.com/tyler180/bonus-ball-backends/internal/config"
	"github.com/tyler180/bonus-ball-backends/internal/feed"
	"github.com/tyler180/bonus-ball-backends/internal/gamedata"
	"github.com/tyler180/bonus-ball-backends/internal/ingest"
	"github.com/tyler180/bonus-ball-backends/internal/logging"
	"github.com/tyler180/bonus-ball-backends/internal/store"
)

type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Ingest   *ingest.Handler
	GameData *gamedata.Handler
	Router   *api.Router
}

// New builds both handlers from cfg. The store is not contacted until the
// first document request.
func New(cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	ih := ingest.NewHandler(
		feed.NewFetcher(cfg.FeedTimeout, cfg.FeedUserAgent),
		cfg.Normalizer(),
		ingest.Options{
			URL:            cfg.FeedURL,
			Format:         cfg.Format(),
			DefaultLimit:   cfg.FeedDefaultLimit,
			Fallback:       cfg.FallbackEnabled,
			CacheMaxAge:    cfg.CacheMaxAge,
			FallbackMaxAge: cfg.FallbackMaxAge,
		},
		log.Named("lotto-bonus"),
	)
	gh := gamedata.NewHandler(
		store.NewResolver(cfg.Store()),
		auth.NewGate(cfg.AdminKey),
		cfg.StoreKey,
		log.Named("game-data"),
	)
	return &App{
		Config:   cfg,
		Log:      log,
		Ingest:   ih,
		GameData: gh,
		Router:   &api.Router{LottoBonus: ih.Handle, GameData: gh.Handle},
	}
}

// FromEnv loads configuration and logging from the environment and logs the
// effective settings, without secrets, once per cold start.
func FromEnv() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Logging())
	if err != nil {
		return nil, err
	}
	sc := cfg.Store()
	log.Info("configuration loaded",
		zap.String("feed_url", cfg.FeedURL),
		zap.String("feed_format", cfg.FeedFormat),
		zap.Duration("feed_timeout", cfg.FeedTimeout),
		zap.String("target_weekday", cfg.FeedTargetWeekday),
		zap.Bool("fallback", cfg.FallbackEnabled),
		zap.String("store_backend", sc.Backend),
		zap.String("store_name", sc.Name),
		zap.Stringer("store_mode", sc.Mode()),
		zap.Bool("admin_key_set", cfg.AdminKey != ""),
	)
	return New(cfg, log), nil
}
