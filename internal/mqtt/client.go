package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

const (
	connectTimeout = 10 * time.Second
	subscribeQoS   = 1
	saveTimeout    = 3 * time.Second
)

// Ingest subscribes to sensor topics and persists readings. Topics are
// derived from the configured base topic: <topic>/soil and
// <topic>/outdoor, with the bare base topic treated as soil for
// single-sensor setups.
type Ingest struct {
	settings *conf.MQTTSettings
	soil     repository.SoilReadingRepository
	outdoor  repository.OutdoorReadingRepository
	log      logger.Logger
	client   paho.Client
}

// NewIngest creates a disconnected ingest client.
func NewIngest(settings *conf.MQTTSettings, soil repository.SoilReadingRepository, outdoor repository.OutdoorReadingRepository, log logger.Logger) *Ingest {
	return &Ingest{
		settings: settings,
		soil:     soil,
		outdoor:  outdoor,
		log:      log,
	}
}

// Start connects to the broker and subscribes to the sensor topics.
func (i *Ingest) Start(ctx context.Context) error {
	opts := paho.NewClientOptions()
	opts.AddBroker(i.settings.Broker)
	opts.SetClientID(i.settings.ClientID)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetOnConnectHandler(func(client paho.Client) {
		i.subscribe(client)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		i.log.Warn("mqtt connection lost", logger.Error(err))
	})

	client := paho.NewClient(opts)
	token := client.Connect()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker %s: %w", i.settings.Broker, err)
	}

	i.client = client
	i.log.Info("mqtt ingest connected",
		logger.String("broker", i.settings.Broker),
		logger.String("topic", i.settings.Topic))
	return nil
}

// Stop disconnects from the broker.
func (i *Ingest) Stop() {
	if i.client != nil && i.client.IsConnected() {
		i.client.Disconnect(250)
	}
}

func (i *Ingest) subscribe(client paho.Client) {
	base := strings.TrimSuffix(i.settings.Topic, "/")

	subscriptions := map[string]paho.MessageHandler{
		base:              i.handleSoil,
		base + "/soil":    i.handleSoil,
		base + "/outdoor": i.handleOutdoor,
	}
	for topic, handler := range subscriptions {
		if token := client.Subscribe(topic, subscribeQoS, handler); token.Wait() && token.Error() != nil {
			i.log.Error("mqtt subscribe failed",
				logger.String("topic", topic),
				logger.Error(token.Error()))
		}
	}
}

func (i *Ingest) handleSoil(_ paho.Client, msg paho.Message) {
	reading, err := decodeSoilReading(msg.Payload(), time.Now())
	if err != nil {
		i.log.Warn("dropping soil payload",
			logger.String("topic", msg.Topic()),
			logger.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := i.soil.SaveReading(ctx, reading); err != nil {
		i.log.Error("failed to save soil reading", logger.Error(err))
		return
	}
	i.log.Debug("soil reading ingested",
		logger.Float64("moisture", reading.Moisture),
		logger.Float64("temperature", reading.Temperature),
		logger.Float64("ph", reading.PH))
}

func (i *Ingest) handleOutdoor(_ paho.Client, msg paho.Message) {
	reading, err := decodeOutdoorReading(msg.Payload(), time.Now())
	if err != nil {
		i.log.Warn("dropping outdoor payload",
			logger.String("topic", msg.Topic()),
			logger.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := i.outdoor.SaveReading(ctx, reading); err != nil {
		i.log.Error("failed to save outdoor reading", logger.Error(err))
		return
	}
	i.log.Debug("outdoor reading ingested",
		logger.Float64("temperature", reading.Temperature),
		logger.Float64("humidity", reading.Humidity))
}
