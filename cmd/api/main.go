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

	"github.com/apadrinhaparana/demandas/internal/alert"
	"github.com/apadrinhaparana/demandas/internal/app"
	"github.com/apadrinhaparana/demandas/internal/auth"
	"github.com/apadrinhaparana/demandas/internal/bootstrap"
	"github.com/apadrinhaparana/demandas/internal/cloud"
	"github.com/apadrinhaparana/demandas/internal/config"
	"github.com/apadrinhaparana/demandas/internal/connectivity"
	internalhttp "github.com/apadrinhaparana/demandas/internal/http"
	"github.com/apadrinhaparana/demandas/internal/schedule"
	"github.com/apadrinhaparana/demandas/internal/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := bootstrap.Open(ctx, cfg, log.Logger)
	if err != nil {
		return err
	}
	defer res.Close()

	var (
		checker connectivity.Checker = connectivity.NewStatic(true)
		monitor *connectivity.Monitor
	)
	if res.Cloud != nil {
		monitor = connectivity.NewMonitor(res.Cloud, cfg.ConnectivityInterval, log.With().Str("component", "connectivity").Logger())
		checker = monitor
	}

	var notifier alert.Notifier = alert.LogNotifier{Logger: log.With().Str("component", "alert").Logger()}
	if slack := alert.NewSlackNotifier(cfg.SlackWebhookURL); slack != nil {
		notifier = slack
	}

	debouncer := schedule.NewDebouncer()
	defer debouncer.Stop()

	ctrl := app.New(app.Options{
		Cloud:         cloud.New(res.Cloud, bootstrap.CloudLocation(cfg), checker, log.With().Str("component", "cloud").Logger()),
		Local:         res.Local,
		Checker:       checker,
		Scheduler:     debouncer,
		Notifier:      notifier,
		Logger:        log.Logger,
		CloudRequired: cfg.CloudRequired,
		Debounce:      cfg.SyncDebounce,
		BannerTTL:     cfg.SuccessBannerTTL,
	})
	if monitor != nil {
		monitor.Subscribe(ctrl.HandleConnectivity)
	}

	var sessions session.Store = session.NewMemoryStore()
	pingers := map[string]internalhttp.Pinger{}
	if res.Redis != nil {
		redisSessions := session.NewRedisStore(res.Redis)
		sessions = redisSessions
		pingers["redis"] = redisSessions
	}
	if res.LocalPinger != nil {
		pingers["local"] = res.LocalPinger
	}

	handler, err := internalhttp.NewRouter(cfg, internalhttp.Deps{
		Controller: ctrl,
		JWT:        auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL),
		Sessions:   sessions,
		Pingers:    pingers,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ctrl.Init(gctx); err != nil {
			log.Error().Err(err).Msg("inicialização falhou; API responde 503 até reiniciar")
			return nil
		}
		if monitor != nil {
			monitor.Start(gctx)
		}
		log.Info().Str("base_path", cfg.BasePath).Msg("dados carregados")
		return nil
	})

	g.Go(func() error {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("encerrando...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	if monitor != nil {
		monitor.Stop()
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if result, enviado := ctrl.Flush(flushCtx); enviado && !result.Sucesso {
		log.Warn().Err(result.Err).Msg("alterações pendentes não chegaram à nuvem")
	}
	ctrl.Close()

	return err
}
