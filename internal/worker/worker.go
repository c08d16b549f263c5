// Package worker consumes photo events from Kafka with a fixed pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cafe-media/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type consumer interface {
	StartConsuming(ctx context.Context, out chan<- kafka.Message, strategy retry.Strategy)
	Commit(ctx context.Context, msg kafka.Message) error
	Close() error
}

// HandlerFunc receives every decoded event. An error leaves the message uncommitted.
type HandlerFunc func(ctx context.Context, event domain.PhotoEvent) error

type DecodeFunc func(msg kafka.Message) (domain.PhotoEvent, error)

type Worker struct {
	consumer    consumer
	decode      DecodeFunc
	handle      HandlerFunc
	retries     retry.Strategy
	concurrency int
	logger      *zlog.Zerolog
	wg          sync.WaitGroup
}

func NewWorker(c consumer, decode DecodeFunc, handle HandlerFunc, retries retry.Strategy, concurrency int, logger *zlog.Zerolog) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		consumer:    c,
		decode:      decode,
		handle:      handle,
		retries:     retries,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run blocks until ctx is done, then waits for in-flight events and closes the consumer.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Int("concurrency", w.concurrency).Msg("Starting event worker")

	messages := make(chan kafka.Message, w.concurrency*2)
	go w.consumer.StartConsuming(ctx, messages, w.retries)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.processWorker(ctx, id, messages)
		}(i)
	}

	<-ctx.Done()
	w.logger.Info().Msg("Shutting down event worker")
	w.wg.Wait()

	if err := w.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close consumer: %w", err)
	}

	w.logger.Info().Msg("Event worker stopped")
	return nil
}

func (w *Worker) processWorker(ctx context.Context, id int, messages <-chan kafka.Message) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Int("worker_id", id).Msg("Worker stopping")
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			start := time.Now()
			if err := w.safeProcessMessage(ctx, msg); err != nil {
				w.logger.Error().
					Err(err).
					Int("worker_id", id).
					Int64("offset", msg.Offset).
					Msg("Failed to process event")
				continue
			}

			if err := w.consumer.Commit(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to commit event")
				continue
			}

			w.logger.Debug().
				Int("worker_id", id).
				Int64("offset", msg.Offset).
				Dur("duration", time.Since(start)).
				Msg("Event processed")
		}
	}
}

func (w *Worker) safeProcessMessage(ctx context.Context, msg kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	event, err := w.decode(msg)
	if err != nil {
		return err
	}
	return w.handle(ctx, event)
}
