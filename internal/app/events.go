package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	kafka_impl "cafe-media/internal/broker/kafka"
	"cafe-media/internal/config"
	"cafe-media/internal/worker"

	"github.com/wb-go/wbf/zlog"
)

var ErrKafkaNotConfigured = errors.New("kafka brokers are not configured")

// RunEvents tails the photo event topic until SIGINT or SIGTERM.
func RunEvents(cfg *config.Config, logger *zlog.Zerolog, concurrency int, handle worker.HandlerFunc) error {
	if !cfg.UseKafka() {
		return ErrKafkaNotConfigured
	}

	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.EventsTopic).
		Str("group", cfg.Kafka.GroupID).
		Msg("Events configuration")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka_impl.NewConsumerClient(cfg)
	w := worker.NewWorker(consumer, kafka_impl.DecodeEvent, handle, cfg.DefaultRetryStrategy(), concurrency, logger)
	return w.Run(ctx)
}
