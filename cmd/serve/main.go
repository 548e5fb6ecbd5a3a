// Package classification Atlas Cluster Service.
//
// Provisions and tears down MongoDB Atlas clusters for teams taking part in hackathon events
//
// Terms Of Service:
//
// there are no TOS at this moment, use at your own risk we take no responsibility
//
//    Version: 0.1.0
//    License: TODO
//    Contact: <info@dhis2.org> https://github.com/dhis2-sre/im-atlas
//
//    Consumes:
//      - application/json
//
//    Produces:
//      - application/json
//
//    SecurityDefinitions:
//      oauth2:
//        type: oauth2
//        tokenUrl: /not-valid--tokens-are-issued-by-the-platform
//        refreshUrl: /not-valid--tokens-are-issued-by-the-platform
//        flow: password
// swagger:meta
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhis2-sre/im-atlas/internal/handler"
	"github.com/dhis2-sre/im-atlas/internal/log"
	"github.com/dhis2-sre/im-atlas/internal/middleware"
	"github.com/dhis2-sre/im-atlas/internal/server"
	"github.com/dhis2-sre/im-atlas/pkg/atlas"
	"github.com/dhis2-sre/im-atlas/pkg/cleanup"
	"github.com/dhis2-sre/im-atlas/pkg/cluster"
	"github.com/dhis2-sre/im-atlas/pkg/config"
	"github.com/dhis2-sre/im-atlas/pkg/event"
	"github.com/dhis2-sre/im-atlas/pkg/lock"
	"github.com/dhis2-sre/im-atlas/pkg/storage"
	"github.com/dhis2-sre/im-atlas/pkg/tracing"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.New()

	logger := slog.New(log.New(log.NewPrettyJSONHandler(os.Stdout, &log.PrettyJSONHandlerOptions{
		PrettyPrint: cfg.LogPretty,
	})))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg.Tracing.JaegerEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			logger.Error("Failed to shut down tracing", "error", err)
		}
	}()

	db, err := storage.NewDatabase(logger, cfg.Postgresql)
	if err != nil {
		return err
	}

	redisClient, err := storage.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	atlasClient, err := atlas.New(atlas.ClientConfig{
		PublicKey:  cfg.Atlas.PublicKey,
		PrivateKey: cfg.Atlas.PrivateKey,
		OrgID:      cfg.Atlas.OrgID,
		BaseURL:    cfg.Atlas.BaseURL,
	})
	if err != nil {
		return err
	}

	eventRepository := event.NewRepository(db)
	clusterRepository := cluster.NewRepository(db)
	locker := lock.NewRedisLocker(redisClient, cfg.ProvisionLockTTL)
	clusterService := cluster.NewService(logger, clusterRepository, atlasClient, eventRepository, locker)
	cleanupService := cleanup.NewService(logger, clusterService, eventRepository)
	defer cleanupService.Wait()

	connection, err := amqp.Dial(cfg.RabbitMqURL.GetUrl())
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}
	defer connection.Close()

	channel, err := connection.Channel()
	if err != nil {
		return fmt.Errorf("failed to open RabbitMQ channel: %v", err)
	}
	consumer := cleanup.NewConsumer(logger, channel, cleanupService)

	publicKey, err := cfg.Authentication.GetPublicKey()
	if err != nil {
		return err
	}

	err = handler.RegisterValidation()
	if err != nil {
		return err
	}

	authentication := middleware.NewAuthentication(logger, publicKey)
	authorization := middleware.NewAuthorization(logger)

	engine, router := server.GetEngine(logger, cfg.BasePath)
	cluster.Routes(router, authentication, cluster.NewHandler(clusterService))
	cleanup.Routes(router, authentication, authorization, cleanup.NewHandler(cleanupService))

	httpServer := &http.Server{
		Addr:              ":8080",
		Handler:           engine.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "address", httpServer.Addr)
		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return cleanupService.Run(ctx, cfg.CleanupInterval)
	})
	g.Go(func() error {
		return consumer.Consume(ctx)
	})

	return g.Wait()
}
