package broker

import (
	"context"

	"cafe-media/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

type Publisher interface {
	Publish(ctx context.Context, event domain.PhotoEvent) error
	Close() error
}

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	logger *zlog.Zerolog
}

func NewLogPublisher(logger *zlog.Zerolog) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.PhotoEvent) error {
	p.logger.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Str("cafe_id", event.CafeID).
		Str("photo_id", event.PhotoID).
		Msg("Photo event")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
