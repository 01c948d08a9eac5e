// Package notify delivers call-up notifications over redis pub/sub.
// Downstream workers (mail, chat bots, push) subscribe to the channel and
// fan the message out to member contacts.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CallUp is the published notification payload. It carries the campaign's
// geofence so downstream channels can render a map without a second lookup.
type CallUp struct {
	TriggerID    string            `json:"trigger_id"`
	CampaignID   string            `json:"campaign_id"`
	CampaignName string            `json:"campaign_name"`
	LocationName string            `json:"location_name"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
	RadiusMeters float64           `json:"radius_meters"`
	ScheduledFor time.Time         `json:"scheduled_for"`
	Deadline     time.Time         `json:"deadline"`
	Recipients   []string          `json:"recipients"`
	Contacts     map[string]string `json:"contacts,omitempty"`
}

// RedisNotifier publishes call-ups to a redis channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisNotifier constructs the notifier.
func NewRedisNotifier(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	if channel == "" {
		channel = "lab:attendance:callups"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

// Publish sends one call-up. Failure is returned to the caller so the
// dispatcher can leave the trigger unsent and retry on the next poll.
func (n *RedisNotifier) Publish(ctx context.Context, callUp CallUp) error {
	payload, err := json.Marshal(callUp)
	if err != nil {
		return fmt.Errorf("marshal call-up: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish call-up: %w", err)
	}
	n.logger.Debug("call-up published",
		zap.String("channel", n.channel),
		zap.String("trigger_id", callUp.TriggerID),
		zap.Int("recipients", len(callUp.Recipients)))
	return nil
}
