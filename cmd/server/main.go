package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Lounge/internal/adapters/bus"
	router "github.com/dkeye/Lounge/internal/adapters/http"
	wssignal "github.com/dkeye/Lounge/internal/adapters/signal"
	"github.com/dkeye/Lounge/internal/app"
	"github.com/dkeye/Lounge/internal/app/orch"
	"github.com/dkeye/Lounge/internal/config"
	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/metrics"
	"github.com/dkeye/Lounge/internal/profile"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	codes, err := core.NewCodeGenerator(cfg.Room.CodeLength)
	if err != nil {
		log.Fatal().Err(err).Msg("code generator")
	}
	profiles := profile.NewDirectory(nil)
	m := metrics.New()

	var policy app.Policy = app.TolerantPolicy{}
	if cfg.Room.KickSlowMembers {
		policy = app.SimplePolicy{}
	}

	g, gctx := errgroup.WithContext(ctx)

	opts := orch.Options{
		GracePeriod:      cfg.Room.GracePeriod,
		MaxMessageLength: cfg.Room.MaxMessageLength,
		Policy:           policy,
	}
	if cfg.Redis.Addr != "" {
		client, err := bus.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis")
		}
		defer client.Close()
		sink := bus.NewRedisSink(client, cfg.Redis.ChannelPrefix, cfg.Redis.Buffer)
		opts.Sink = sink
		g.Go(func() error { return sink.Run(gctx) })
	}

	o := orch.New(codes, profiles, m, opts)

	r := router.SetupRouter(gctx, cfg, router.Deps{
		Orch:     o,
		Profiles: profiles,
		Codes:    codes,
		Metrics:  m,
		Limiter:  wssignal.NewRoomRateLimiter(cfg.WS.RateLimit, cfg.WS.RateInterval),
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Lounge server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		// Hijacked websocket connections are not tracked by srv.Shutdown.
		for _, info := range o.Rooms() {
			o.EvictRoom(info.Code)
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return
	}
	log.Info().Msg("Server exited gracefully")
}
