package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsbrief/internal/article"
	"newsbrief/internal/bot"
	"newsbrief/internal/config"
	"newsbrief/internal/domain"
	"newsbrief/internal/pipeline"
	"newsbrief/internal/summarizer"
	"newsbrief/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout = 10 * time.Second
	warmupTimeout   = 2 * time.Minute
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	fetcher, err := article.NewFetcher(cfg.FetchTimeout, cfg.MaxPageBytes, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create fetcher",
			"error", err)

		return
	}

	summ, err := summarizer.New(cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create summarizer",
			"error", err,
			"backend", cfg.Backend)

		return
	}
	log.InfoContext(ctx, "Summarizer is initialized",
		"backend", summ.Backend,
		"model", summ.Model,
		"overlongPolicy", cfg.OverlongPolicy,
		"maxInputWords", cfg.MaxInputWords)

	warmupCtx, warmupCancel := context.WithTimeout(ctx, warmupTimeout)
	if err = summ.Warmup(warmupCtx); err != nil {
		log.WarnContext(ctx, "Summarizer warmup failed so first request may be slow",
			"error", err,
			"backend", summ.Backend)
	}
	warmupCancel()

	service := pipeline.NewService(
		fetcher,
		summ,
		domain.Bounds{MinLength: cfg.MinLength, MaxLength: cfg.MaxLength},
		log,
		pipeline.WithTimeout(cfg.RequestTimeout),
	)

	if cfg.TelegramToken != "" {
		botInst, botErr := bot.New(cfg.TelegramToken, service, cfg.AllowedUsers, cfg.RequestTimeout, summ.Model, log)
		if botErr != nil {
			log.ErrorContext(ctx, "Failed to initialize bot",
				"error", botErr,
				"allowedUsersCount", len(cfg.AllowedUsers))

			return
		}
		defer func() {
			botInst.Stop()
			log.InfoContext(ctx, "Bot is stopped",
				"uptimeSeconds", time.Since(start).Seconds())
		}()

		go botInst.Start(ctx)
		log.InfoContext(ctx, "Bot is started",
			"updateTimeoutSeconds", bot.BotUpdateTimeout,
			"allowedUsersCount", len(cfg.AllowedUsers))
	}

	gin.SetMode(gin.ReleaseMode)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.SetupRouter(service, web.Info{Backend: summ.Backend, Model: summ.Model}, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	log.InfoContext(ctx, "Server is started",
		"addr", cfg.Addr)

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Server failed",
				"error", err,
				"addr", cfg.Addr)
		}
		return
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "Shutdown signal is received",
		"uptimeSeconds", time.Since(start).Seconds())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down server",
			"error", err)
	}

	log.InfoContext(shutdownCtx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}
