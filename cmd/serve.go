package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"katalog/internal/app"
	"katalog/internal/database"
	"katalog/internal/handlers"
	"katalog/internal/repositories"
	"katalog/internal/services"
	"katalog/pkg/rabbitmq"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(rt)
		},
	}
}

func serve(rt *runtime) error {
	log := rt.log

	db, err := database.Open(rt.cfg.DatabaseDriver, rt.cfg.DatabaseDSN, rt.gormLogLevel())
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var publisher handlers.EventPublisher
	if rt.cfg.EventsEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: rt.cfg.RabbitMQURL, Queue: rt.cfg.RabbitMQQueue}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeProductEvents(func(msg amqp.Delivery) error {
			event, err := rabbitmq.DecodeProductSavedEvent(msg.Body)
			if err != nil {
				return err
			}
			log.Info().
				Str("event_id", event.EventID).
				Int64("product_id", event.ProductID).
				Str("status", event.Status).
				Msg("product saved event received")
			return nil
		}); err != nil {
			log.Error().Err(err).Msg("failed to start product event consumer")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	fiberApp := app.NewApp(app.Deps{
		ProductService: services.NewProductService(repositories.NewGORMProductRepository(db)),
		Publisher:      publisher,
		Registry:       registry,
		Logger:         &log,
	})

	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", rt.cfg.AppPort).Msg("starting server")
		listenErr <- fiberApp.Listen(rt.cfg.AppPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-listenErr:
		if err != nil && !errors.Is(err, os.ErrClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	if err := fiberApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}
