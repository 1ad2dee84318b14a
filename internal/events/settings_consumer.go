package events

import (
	"context"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/platform/kafka"
	"github.com/campus-sports/service-booking/internal/settings"
)

const EventTypeSettingUpdated = "settings.updated"

// SettingChanged is the payload announcing a runtime-setting change.
type SettingChanged struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingsPublisher announces setting changes to the other service replicas.
type SettingsPublisher struct {
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
}

// NewSettingsPublisher creates a publisher for setting-change events.
func NewSettingsPublisher(producer *kafka.Producer, topic string, logger *zap.Logger) *SettingsPublisher {
	return &SettingsPublisher{producer: producer, topic: topic, logger: logger}
}

// AnnounceSettingUpdated publishes a setting change. Best-effort: the local
// cache is already invalidated, remote replicas converge within the cache TTL
// even if the announcement is lost.
func (p *SettingsPublisher) AnnounceSettingUpdated(ctx context.Context, key, value string) {
	event, err := kafka.NewCloudEvent(EventSource, EventTypeSettingUpdated, SettingChanged{Key: key, Value: value})
	if err != nil {
		p.logger.Error("failed to build setting-change event", zap.Error(err))
		return
	}
	if err := p.producer.PublishEvent(ctx, p.topic, event); err != nil {
		p.logger.Error("failed to announce setting change",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// NopSettingsAnnouncer discards announcements. Used when Kafka is disabled.
type NopSettingsAnnouncer struct{}

func (NopSettingsAnnouncer) AnnounceSettingUpdated(context.Context, string, string) {}

// SettingsConsumer listens for setting changes made by other replicas and
// drops the corresponding cache entries from the local policy store.
type SettingsConsumer struct {
	consumer *kafka.Consumer
	store    *settings.Store
	logger   *zap.Logger
}

// NewSettingsConsumer creates a consumer for setting-change events.
func NewSettingsConsumer(brokers []string, groupID, topic string, store *settings.Store, logger *zap.Logger) *SettingsConsumer {
	return &SettingsConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, topic, logger),
		store:    store,
		logger:   logger,
	}
}

// Start begins consuming setting events. It blocks until the context is cancelled.
func (c *SettingsConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *SettingsConsumer) handleMessage(_ context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from settings topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return err
	}

	if !strings.EqualFold(cloudEvent.Type, EventTypeSettingUpdated) {
		return nil
	}

	var event SettingChanged
	if err := cloudEvent.ParseData(&event); err != nil {
		c.logger.Error("failed to parse SettingChanged data", zap.Error(err))
		return err
	}

	c.store.Invalidate(event.Key)
	c.logger.Info("setting cache invalidated",
		zap.String("key", event.Key),
	)
	return nil
}

// Close closes the underlying Kafka consumer.
func (c *SettingsConsumer) Close() error {
	return c.consumer.Close()
}
