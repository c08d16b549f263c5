package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"cafe-media/internal/config"
	"cafe-media/internal/domain"

	kafka "github.com/segmentio/kafka-go"
	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

type ConsumerClient struct {
	consumer *wbkafka.Consumer
}

func NewConsumerClient(cfg *config.Config) *ConsumerClient {
	return &ConsumerClient{
		consumer: wbkafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, cfg.Kafka.GroupID),
	}
}

func (c *ConsumerClient) Fetch(ctx context.Context, strategy retry.Strategy) (kafka.Message, error) {
	return c.consumer.FetchWithRetry(ctx, strategy)
}

func (c *ConsumerClient) Commit(ctx context.Context, msg kafka.Message) error {
	return c.consumer.Commit(ctx, msg)
}

func (c *ConsumerClient) Close() error {
	return c.consumer.Close()
}

func (c *ConsumerClient) StartConsuming(ctx context.Context, out chan<- kafka.Message, strategy retry.Strategy) {
	c.consumer.StartConsuming(ctx, out, strategy)
}

func DecodeEvent(msg kafka.Message) (domain.PhotoEvent, error) {
	var event domain.PhotoEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return domain.PhotoEvent{}, fmt.Errorf("failed to decode event at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}
