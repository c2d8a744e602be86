// Package events publishes domain change notifications (completion
// toggles, landing page saves) for other services to react to.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Event types
const (
	CompletionToggled = "completion.toggled"
	LandingPageSaved  = "landing_page.saved"
)

// Event is the envelope written to the channel.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher sends events. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
	Close() error
}

// CompletionToggledData is the payload of CompletionToggled.
type CompletionToggledData struct {
	UserID    string `json:"user_id"`
	CourseID  string `json:"course_id"`
	ModuleID  string `json:"module_id"`
	ContentID string `json:"content_id"`
	Completed bool   `json:"completed"`
}

// LandingPageSavedData is the payload of LandingPageSaved.
type LandingPageSavedData struct {
	DocumentID string `json:"document_id"`
	Layout     string `json:"layout"`
	SavedBy    string `json:"saved_by"`
	Fields     int    `json:"fields"`
	Images     int    `json:"images"`
}

// RedisPublisher publishes JSON events on a Redis pub/sub channel.
type RedisPublisher struct {
	rdb     *goredis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisPublisher connects to addr and pings it before returning.
func NewRedisPublisher(addr, channel string, logger *slog.Logger) (*RedisPublisher, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	if channel == "" {
		channel = "mentorx-events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisPublisher{
		rdb:     rdb,
		channel: channel,
		logger:  logger.With("component", "events"),
	}, nil
}

// Publish marshals the event and publishes it on the channel.
func (p *RedisPublisher) Publish(ctx context.Context, eventType string, data any) error {
	raw, err := Encode(eventType, data, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	p.logger.Debug("event published", "type", eventType, "channel", p.channel)
	return nil
}

// Close closes the Redis client.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// Encode builds the JSON envelope for an event.
func Encode(eventType string, data any, at time.Time) ([]byte, error) {
	raw, err := json.Marshal(Event{Type: eventType, OccurredAt: at, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return raw, nil
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// PublishQuietly publishes and logs failures instead of returning them.
func PublishQuietly(ctx context.Context, p Publisher, logger *slog.Logger, eventType string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, eventType, data); err != nil {
		logger.Warn("event publish failed", "type", eventType, "error", err)
	}
}
