package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/api"
	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
	"github.com/rpaudel/gardenwatch-go/internal/monitor"
	"github.com/rpaudel/gardenwatch-go/internal/mqtt"
	"github.com/rpaudel/gardenwatch-go/internal/notification"
	"github.com/rpaudel/gardenwatch-go/internal/vision"
	"github.com/rpaudel/gardenwatch-go/internal/weather"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the monitoring daemon and HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := conf.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.NewSlogLogger(os.Stdout, logger.ParseLevel(settings.LogLevel), nil)

	// An unreachable datastore is not fatal; the monitor falls back to
	// diagnostic readings and history recording is skipped.
	var (
		soilRepo      repository.SoilReadingRepository
		outdoorRepo   repository.OutdoorReadingRepository
		historyRepo   repository.AlertHistoryRepository
		detectionRepo repository.DetectionRepository
	)
	ds, err := datastore.Open(&settings.Database, log)
	if err != nil {
		log.Error("datastore unavailable, running without persistence", logger.Error(err))
	} else {
		defer func() { _ = ds.Close() }()
		soilRepo = repository.NewSoilReadingRepository(ds.DB())
		outdoorRepo = repository.NewOutdoorReadingRepository(ds.DB())
		historyRepo = repository.NewAlertHistoryRepository(ds.DB())
		detectionRepo = repository.NewDetectionRepository(ds.DB())
	}

	bus := alerting.NewEventBus()
	defer bus.Stop()

	notification.Initialize(&notification.ServiceConfig{URLs: settings.Notify.URLs}, log)
	dispatcher := alerting.NewDispatcher(notification.GetService(), historyRepo, bus, log)

	source := weather.NewProvider(&settings.Weather, soilRepo, outdoorRepo, log)
	mon := monitor.New(&settings.Monitor, soilRepo, historyRepo, source, dispatcher, log)
	sessions := vision.NewManager(&settings.Vision, dispatcher, detectionRepo, bus, log)
	feed := vision.NewFeed(0)

	controller := api.New(settings, mon, source, sessions, feed, dispatcher, historyRepo, detectionRepo, bus, log)

	mon.Start()
	defer mon.Stop()
	defer sessions.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("http server listening", logger.String("addr", settings.HTTP.Listen))
		if err := controller.Start(settings.HTTP.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if settings.MQTT.Enabled {
		ingest := mqtt.NewIngest(&settings.MQTT, soilRepo, outdoorRepo, log)
		defer ingest.Stop()
		group.Go(func() error {
			// A dead broker degrades ingest, never the whole process.
			if err := ingest.Start(ctx); err != nil {
				log.Error("mqtt ingest failed", logger.Error(err))
			}
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return controller.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
