// Package queue consumes business events pushed by external systems
// onto a redis list.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/sources"
)

// Config connects the source to one redis list.
type Config struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

type Source struct {
	config   Config
	client   redis.UniversalClient
	callback sources.EventCallback
	logger   *slog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewSource(logger *slog.Logger, config Config) (*Source, error) {
	if config.Queue == "" {
		return nil, errors.New("queue name is required")
	}

	if config.Addr == "" {
		config.Addr = "localhost:6379"
	}

	return &Source{
		config: config,
		stopCh: make(chan struct{}),
		logger: logger.With("module", "queue_source", "queue", config.Queue),
	}, nil
}

func (s *Source) Start(ctx context.Context, callback sources.EventCallback) error {
	s.callback = callback

	s.client = redis.NewClient(&redis.Options{
		Addr:     s.config.Addr,
		Password: s.config.Password,
		DB:       s.config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	s.logger.InfoContext(ctx, "Connected to redis", "addr", s.config.Addr, "db", s.config.DB)

	s.wg.Add(1)

	go s.consume(ctx)

	return nil
}

func (s *Source) consume(ctx context.Context) {
	defer s.wg.Done()

	s.logger.InfoContext(ctx, "Starting queue consumer")

	for {
		select {
		case <-s.stopCh:
			s.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			if err := s.processMessage(ctx); err != nil {
				s.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// processMessage pops one message and hands it to the callback. Messages
// must be JSON with a `type` naming a trigger type; malformed messages
// are logged and dropped, never retried.
func (s *Source) processMessage(ctx context.Context) error {
	result, err := s.client.BLPop(ctx, 1*time.Second, s.config.Queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	event, err := decodeMessage(result[1])
	if err != nil {
		s.logger.WarnContext(ctx, "Dropping malformed queue message", "error", err)

		return nil
	}

	if err := s.callback(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to dispatch queue event",
			"event_id", event.ID, "error", err)
	}

	return nil
}

func decodeMessage(message string) (*models.BusinessEvent, error) {
	var event models.BusinessEvent
	if err := json.Unmarshal([]byte(message), &event); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}

	if event.Type == "" {
		return nil, errors.New("message has no event type")
	}

	if event.ID == "" {
		event.ID = "evt-" + uuid.New().String()[:8]
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	return &event, nil
}

func (s *Source) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping queue source")

	close(s.stopCh)
	s.wg.Wait()

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.ErrorContext(ctx, "Error closing redis client", "error", err)
		}
	}

	return nil
}
