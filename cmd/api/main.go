package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eps-tracker/internal/platform/clock"
	"eps-tracker/internal/platform/config"
	"eps-tracker/internal/platform/logger"
	"eps-tracker/internal/platform/mailer"
	"eps-tracker/internal/router"
)

// @title EPS Tracker API
// @version 1.0
// @description Registro de eventos de cuidado (bebé y mamá): estado, estadísticas diarias, gráficos, log, export/import y sync.
// @BasePath /
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.NewFromEnv().Error("config load failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    "eps-tracker",
	})

	app, err := router.New(router.Options{Cfg: cfg, Log: log})
	if err != nil {
		log.Error("startup failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Service.Load(ctx); err != nil {
		log.Error("initial load failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	go app.Hub.Run(ctx)

	if app.Mailer != nil {
		sched := mailer.NewScheduler(app.Mailer, app.Service, clock.System(), log)
		go sched.Run(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
