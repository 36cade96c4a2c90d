package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
	"github.com/rpaudel/gardenwatch-go/internal/monitor"
	"github.com/rpaudel/gardenwatch-go/internal/notification"
	"github.com/rpaudel/gardenwatch-go/internal/weather"
)

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one soil and weather check round and exit",
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	settings, err := conf.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.NewSlogLogger(os.Stderr, logger.ParseLevel(settings.LogLevel), nil)

	var (
		soilRepo    repository.SoilReadingRepository
		outdoorRepo repository.OutdoorReadingRepository
		historyRepo repository.AlertHistoryRepository
	)
	ds, err := datastore.Open(&settings.Database, log)
	if err != nil {
		log.Error("datastore unavailable, checking diagnostic readings", logger.Error(err))
	} else {
		defer func() { _ = ds.Close() }()
		soilRepo = repository.NewSoilReadingRepository(ds.DB())
		outdoorRepo = repository.NewOutdoorReadingRepository(ds.DB())
		historyRepo = repository.NewAlertHistoryRepository(ds.DB())
	}

	notification.Initialize(&notification.ServiceConfig{URLs: settings.Notify.URLs}, log)
	dispatcher := alerting.NewDispatcher(notification.GetService(), historyRepo, nil, log)
	source := weather.NewProvider(&settings.Weather, soilRepo, outdoorRepo, log)
	mon := monitor.New(&settings.Monitor, soilRepo, historyRepo, source, dispatcher, log)

	if err := mon.CheckNow(cmd.Context()); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	out, err := json.MarshalIndent(mon.Status(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
