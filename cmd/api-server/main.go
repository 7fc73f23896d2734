package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sydney-cole/oscars-ballot/internal/catalog"
	"github.com/sydney-cole/oscars-ballot/internal/config"
	"github.com/sydney-cole/oscars-ballot/internal/deps"
	"github.com/sydney-cole/oscars-ballot/internal/jobs"
	"github.com/sydney-cole/oscars-ballot/internal/leaderboard"
	"github.com/sydney-cole/oscars-ballot/internal/live"
	"github.com/sydney-cole/oscars-ballot/internal/migrate"
	"github.com/sydney-cole/oscars-ballot/internal/repos"
	"github.com/sydney-cole/oscars-ballot/internal/repos/memory"
	"github.com/sydney-cole/oscars-ballot/internal/server"
	"github.com/sydney-cole/oscars-ballot/internal/service"
	"github.com/sydney-cole/oscars-ballot/pkg/cache"
	pkgdb "github.com/sydney-cole/oscars-ballot/pkg/db"
	"github.com/sydney-cole/oscars-ballot/pkg/identity"
	"github.com/sydney-cole/oscars-ballot/pkg/signer"
)

func main() {
	_ = godotenv.Load() // best-effort
	cfg := config.FromEnv()
	setupLogging(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("catalog load failed")
		}
		cat = loaded
	}
	log.Info().Str("ceremony", cat.Ceremony.Name).Int("categories", cat.Len()).Msg("catalog loaded")

	repository, closeRepo := openRepository(ctx, cfg)
	defer closeRepo()

	c := openCache(ctx, cfg)
	hub := live.NewHub()
	defer func() { _ = hub.Close() }()

	svc := service.New(repository, cat, cfg.AdminUserIDs)
	boards := leaderboard.New(svc, c, hub, leaderboard.DefaultTTL)

	if err := jobs.WarmLeaderboard(ctx, boards); err != nil {
		log.Error().Err(err).Msg("leaderboard warmup failed")
	}
	jobs.StartLeaderboardRefresh(ctx, boards, cfg.LeaderboardRefresh)

	var verifier *identity.Verifier
	if cfg.JWTSecret != "" {
		verifier = identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	} else {
		log.Warn().Msg("JWT_SECRET not set, every request is anonymous")
	}

	api := server.New(deps.ServerDeps{
		Service:        svc,
		Boards:         boards,
		Live:           hub,
		Signer:         signer.NewHMAC(cfg.CursorSecret),
		Verifier:       verifier,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Name:           "oscars-ballot",
		StartedAt:      time.Now(),
	})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("storage", cfg.StorageMode).Msg("listening")
	if err := server.StartHTTP(ctx, addr, api.Router()); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	_, _ = fmt.Fprintln(os.Stderr, "shutting down...")
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func openRepository(ctx context.Context, cfg config.Config) (*repos.Repository, func()) {
	if cfg.StorageMode == config.StorageMemory {
		log.Warn().Msg("using in-memory storage, ballots are lost on restart")
		return memory.New(), func() {}
	}
	if err := migrate.Up(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	pool, err := pkgdb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	return repos.New(pool), pool.Close
}

func openCache(ctx context.Context, cfg config.Config) cache.Cache {
	if cfg.ValkeyAddr == "" {
		return cache.NewInMemory()
	}
	vc, err := cache.NewValkey(cfg.ValkeyAddr, cfg.ValkeyPassword)
	if err == nil {
		err = vc.Ping(ctx)
	}
	if err != nil {
		log.Error().Err(err).Msg("valkey connect failed, using in-memory cache")
		if vc != nil {
			vc.Close()
		}
		return cache.NewInMemory()
	}
	return vc
}
