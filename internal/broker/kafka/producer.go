package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"cafe-media/internal/config"
	"cafe-media/internal/domain"

	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

type ProducerClient struct {
	producer *wbkafka.Producer
	retries  retry.Strategy
}

func NewProducerClient(cfg *config.Config) *ProducerClient {
	return &ProducerClient{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic),
		retries:  cfg.DefaultRetryStrategy(),
	}
}

func (p *ProducerClient) Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error {
	return p.producer.SendWithRetry(ctx, strategy, key, value)
}

// Publish keys events by cafe so one cafe's events stay ordered within a partition.
func (p *ProducerClient) Publish(ctx context.Context, event domain.PhotoEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := event.CafeID
	if key == "" {
		key = event.ID
	}

	if err := p.Send(ctx, p.retries, []byte(key), value); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *ProducerClient) Close() error {
	return p.producer.Close()
}
