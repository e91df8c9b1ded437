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

	"publish-automation/domain/repository"
	"publish-automation/infrastructure/cache"
	"publish-automation/infrastructure/clients/gateway"
	"publish-automation/infrastructure/clients/searchpush"
	"publish-automation/infrastructure/configuration"
	"publish-automation/infrastructure/logger"
	"publish-automation/infrastructure/persistence"
	httpHandler "publish-automation/interfaces/http"
	"publish-automation/server"
	"publish-automation/usecase"

	"golang.org/x/sync/errgroup"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence),
	// then re-apply overrides the config package read before these files existed
	configuration.LoadEnvFromFile("config.env", ".env")
	configuration.ApplyEnvOverrides()
	cfg := configuration.C

	queueRepo, statusRepo := initiateStores(cfg)

	targets := publishTargets(cfg.Publish)
	for _, t := range targets {
		logger.GetLogger().
			WithField("platform", t.Name).
			WithField("configured", t.Endpoint != "").
			Info("Platform target resolved")
	}

	bodies := usecase.NewPostBodyBuilder(cfg.Publish.PostsDir)
	webhook := gateway.NewClient(time.Duration(cfg.Publish.DispatchTimeout) * time.Second)
	dispatchUC := usecase.NewDispatchUsecase(queueRepo, statusRepo, targets, webhook, bodies, cfg.Publish.MaxAttempts)
	assistUC := usecase.NewAssistUsecase(queueRepo, statusRepo, cfg.Publish.Platforms, cfg.Publish.ComposerURLs, bodies)

	var pusher usecase.SearchPusher
	var dedupe usecase.URLDeduper
	if cfg.SearchPush.Endpoint != "" {
		pusher = searchpush.NewClient(cfg.SearchPush.Endpoint, 10*time.Second)
		if cfg.RedisClient.Host != "" {
			redisClient, err := cache.NewCache(
				ctx,
				fmt.Sprintf("%s:%s", cfg.RedisClient.Host, cfg.RedisClient.Port),
				cfg.RedisClient.Username,
				cfg.RedisClient.Password,
			)
			if err != nil {
				logger.GetLogger().WithField("error", err).Warn("Redis not available - URL push dedupe disabled")
			} else {
				dedupe = cache.NewPushedURLCache(redisClient)
			}
		}
	}
	enqueueUC := usecase.NewEnqueueUsecase(queueRepo, pusher, dedupe)

	publishHandler := httpHandler.NewPublishHandler(dispatchUC, enqueueUC, assistUC, queueRepo, statusRepo, targets)
	router := server.InitiateRouter(publishHandler)

	// Background dispatcher loop (the HTTP trigger runs the same pass)
	g.Go(func() error {
		interval := time.Duration(cfg.Publish.DispatchInterval) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				passCtx, cancelPass := context.WithTimeout(ctx, interval)
				if _, err := dispatchUC.RunPass(passCtx); err != nil {
					logger.GetLogger().WithField("error", err).Error("scheduled dispatch pass failed")
				}
				cancelPass()
			}
		}
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}
	logger.GetLogger().WithField("port", cfg.App.Port).Info("Starting application")
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// initiateStores picks the store backend: PostgreSQL when configured, flat
// JSON files (the publish_queue.json / publish_status.json pair) otherwise.
func initiateStores(cfg configuration.Config) (repository.IPublishQueue, repository.IPublishStatus) {
	if cfg.Database.Psql.Host != "" {
		db, err := persistence.NewPostgreSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("PostgreSQL not available - falling back to file stores")
		} else {
			if err := persistence.EnsurePublishSchema(db); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed ensuring publish schema")
			}
			logger.GetLogger().Info("Using PostgreSQL publish stores")
			return persistence.NewPublishQueueRepository(db), persistence.NewPublishStatusRepository(db)
		}
	}
	logger.GetLogger().
		WithField("queue", cfg.Publish.QueuePath).
		WithField("status", cfg.Publish.StatusPath).
		Info("Using file publish stores")
	return persistence.NewFileQueueStore(cfg.Publish.QueuePath), persistence.NewFileStatusStore(cfg.Publish.StatusPath)
}

func publishTargets(cfg configuration.Publish) []usecase.PlatformTarget {
	resolved := configuration.ResolvePlatformEndpoints(cfg.Platforms, cfg.GatewayBaseURL)
	targets := make([]usecase.PlatformTarget, 0, len(resolved))
	for _, pe := range resolved {
		targets = append(targets, usecase.PlatformTarget{Name: pe.Platform, Endpoint: pe.Endpoint, Token: pe.Token})
	}
	return targets
}
