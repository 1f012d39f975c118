package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/pkg/config"
	"github.com/giftlypk/giftly-backend/pkg/db/models"
	"github.com/giftlypk/giftly-backend/pkg/enums"
	"github.com/giftlypk/giftly-backend/pkg/logger"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	publishTimeout     = 15 * time.Second
)

type outboxRows interface {
	FetchUnpublished(limit int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
}

// publishFunc hands a serialized event to the broker and blocks until the
// server acknowledges it.
type publishFunc func(ctx context.Context, data []byte, attrs map[string]string) error

type ServiceParams struct {
	Config  config.OutboxConfig
	Logger  *logger.Logger
	Rows    outboxRows
	Publish publishFunc
}

// Service drains the outbox table into pub/sub. Events keep their insertion
// order within a batch; a publish failure bumps the attempt counter and the
// row is retried on a later poll.
type Service struct {
	cfg     config.OutboxConfig
	logg    *logger.Logger
	rows    outboxRows
	publish publishFunc
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Rows == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if params.Publish == nil {
		return nil, fmt.Errorf("publish function required")
	}

	cfg := params.Config
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = defaultPollMs
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}

	return &Service{
		cfg:     cfg,
		logg:    params.Logger,
		rows:    params.Rows,
		publish: params.Publish,
	}, nil
}

// Run polls until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(s.cfg.PollIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.DrainOnce(ctx); err != nil {
				s.logg.Error(ctx, "outbox drain failed", err)
			}
		}
	}
}

// DrainOnce publishes one batch and reports how many events went out.
func (s *Service) DrainOnce(ctx context.Context) (int, error) {
	events, err := s.rows.FetchUnpublished(s.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch unpublished: %w", err)
	}

	published := 0
	for _, event := range events {
		if event.AttemptCount >= s.cfg.MaxAttempts {
			evCtx := s.logg.WithFields(ctx, map[string]any{
				"event_id":      event.ID.String(),
				"attempt_count": event.AttemptCount,
			})
			s.logg.Warn(evCtx, "outbox event exhausted retries, skipping")
			continue
		}

		if err := s.publishOne(ctx, event); err != nil {
			evCtx := s.logg.WithField(ctx, "event_id", event.ID.String())
			s.logg.Error(evCtx, "publish outbox event", err)
			if markErr := s.rows.MarkFailed(event.ID, err); markErr != nil {
				s.logg.Error(evCtx, "mark outbox event failed", markErr)
			}
			continue
		}

		if err := s.rows.MarkPublished(event.ID); err != nil {
			return published, fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		published++
	}
	return published, nil
}

func (s *Service) publishOne(ctx context.Context, event models.OutboxEvent) error {
	data, err := json.Marshal(envelope{
		ID:            event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		OccurredAt:    event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := map[string]string{
		"event_id":       event.ID.String(),
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return s.publish(pubCtx, data, attrs)
}

type envelope struct {
	ID            uuid.UUID                 `json:"id"`
	EventType     enums.OutboxEventType     `json:"event_type"`
	AggregateType enums.OutboxAggregateType `json:"aggregate_type"`
	AggregateID   uuid.UUID                 `json:"aggregate_id"`
	Payload       json.RawMessage           `json:"payload"`
	OccurredAt    time.Time                 `json:"occurred_at"`
}
