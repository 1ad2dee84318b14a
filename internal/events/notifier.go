package events

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-sports/service-booking/internal/platform/kafka"
)

const (
	EventSource = "service-booking"

	EventTypeCodeUsed             = "notification.code_used"
	EventTypePointsBonus          = "notification.points_bonus"
	EventTypePenalty              = "notification.penalty"
	EventTypeBookingAutoCancelled = "booking.auto_cancelled"
)

// Notification is the payload delivered to the notification service.
type Notification struct {
	TargetUserID uuid.UUID `json:"targetUserId"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	RelatedID    string    `json:"relatedId,omitempty"`
}

// KafkaNotifier publishes notification events as CloudEvents. Delivery is
// best-effort: failures are logged and never fail the calling operation.
type KafkaNotifier struct {
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
}

func NewKafkaNotifier(producer *kafka.Producer, topic string, logger *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic, logger: logger}
}

func (n *KafkaNotifier) Notify(ctx context.Context, eventType string, notification Notification) {
	event, err := kafka.NewCloudEvent(EventSource, eventType, notification)
	if err != nil {
		n.logger.Error("failed to build notification event",
			zap.String("type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := n.producer.PublishEvent(ctx, n.topic, event); err != nil {
		n.logger.Error("failed to publish notification event",
			zap.String("type", eventType),
			zap.String("target_user_id", notification.TargetUserID.String()),
			zap.Error(err),
		)
		return
	}
	n.logger.Debug("notification published",
		zap.String("type", eventType),
		zap.String("target_user_id", notification.TargetUserID.String()),
	)
}

// NopNotifier discards notifications. Used when Kafka is disabled.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, Notification) {}
