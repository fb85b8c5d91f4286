package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/outbox"
	"github.com/emanuuele/girls-chat-api/internal/events"
	"github.com/emanuuele/girls-chat-api/internal/repository"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
	"github.com/emanuuele/girls-chat-api/pkg/logger"
)

// PresenceChecker reports whether a user currently holds at least one live
// WebSocket connection.
type PresenceChecker interface {
	IsOnline(ctx context.Context, userID int64) (bool, error)
}

// OfflineNotifier delivers a push notification for a message whose receiver
// had no live connection at dispatch time.
type OfflineNotifier interface {
	NotifyUser(ctx context.Context, userID int64, title, body string, data map[string]interface{}) error
}

// OutboxWorker drains pending outbox events in creation order and publishes
// them to Redis. A single worker goroutine preserves per-chat ordering.
// Failed events are retried on later ticks until the repository's retry cap
// parks them as FAILED.
type OutboxWorker struct {
	repo      repository.OutboxRepository
	publisher events.Publisher
	presence  PresenceChecker
	notifier  OfflineNotifier
	userRepo  repository.UserRepository
	log       *logger.Logger

	interval  time.Duration
	batchSize int

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewOutboxWorker(
	repo repository.OutboxRepository,
	publisher events.Publisher,
	presence PresenceChecker,
	notifier OfflineNotifier,
	userRepo repository.UserRepository,
	log *logger.Logger,
	interval time.Duration,
	batchSize int,
) *OutboxWorker {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxWorker{
		repo:      repo,
		publisher: publisher,
		presence:  presence,
		notifier:  notifier,
		userRepo:  userRepo,
		log:       log,
		interval:  interval,
		batchSize: batchSize,
		stopCh:    make(chan struct{}),
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case <-ticker.C:
				w.ProcessBatch(ctx)
			}
		}
	}()
}

func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// ProcessBatch drains one batch of pending events. Exported so tests and
// one-shot callers can drive the worker without the ticker.
func (w *OutboxWorker) ProcessBatch(ctx context.Context) {
	pending, err := w.repo.GetPending(ctx, w.batchSize)
	if err != nil {
		w.log.Errorf("outbox: fetching pending events failed: %v", err)
		return
	}

	for _, event := range pending {
		if err := w.dispatch(ctx, event); err != nil {
			w.log.Errorf("outbox: dispatch of event %d failed: %v", event.ID, err)
			if event.RetryCount+1 >= maxDispatchRetries {
				if markErr := w.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
					w.log.Errorf("outbox: marking event %d failed: %v", event.ID, markErr)
				}
			} else if retryErr := w.repo.IncrementRetry(ctx, event.ID); retryErr != nil {
				w.log.Errorf("outbox: incrementing retry on event %d failed: %v", event.ID, retryErr)
			}
			// Stop at the first failure so later events in the same batch
			// cannot overtake this one.
			return
		}
		if err := w.repo.MarkCompleted(ctx, event.ID); err != nil {
			w.log.Errorf("outbox: marking event %d completed failed: %v", event.ID, err)
			return
		}
	}
}

const maxDispatchRetries = 10

func (w *OutboxWorker) dispatch(ctx context.Context, event outbox.Event) error {
	switch event.EventType {
	case events.EventTypeMessageCreated:
		return w.dispatchMessageCreated(ctx, event)
	default:
		// chat.created, user.updated and friends go out on the aggregate's
		// own channel.
		return w.publishEnvelope(ctx, event, "channel:"+event.AggregateType+":"+event.AggregateID)
	}
}

func (w *OutboxWorker) dispatchMessageCreated(ctx context.Context, event outbox.Event) error {
	var payload events.MessageCreatedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	channels := events.ChannelsForMessage(payload.ChatID, payload.SentBy, payload.SentTo)
	if err := w.publishEnvelope(ctx, event, channels...); err != nil {
		return err
	}

	w.maybePush(ctx, payload)
	return nil
}

func (w *OutboxWorker) publishEnvelope(ctx context.Context, event outbox.Event, channels ...string) error {
	envelope := events.Envelope{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		OccurredAt:    event.CreatedAt.UTC(),
		Payload:       event.Payload,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	for _, channel := range channels {
		if err := w.publisher.Publish(ctx, channel, raw); err != nil {
			return err
		}
	}
	return nil
}

// maybePush sends a push notification when the receiver has no live
// connection. Push failures are logged, never retried through the outbox:
// the message itself was already fanned out.
func (w *OutboxWorker) maybePush(ctx context.Context, payload events.MessageCreatedPayload) {
	if w.presence == nil || w.notifier == nil {
		return
	}

	online, err := w.presence.IsOnline(ctx, payload.SentTo)
	if err != nil {
		w.log.Warnf("outbox: presence check for user %d failed: %v", payload.SentTo, err)
		return
	}
	if online {
		return
	}

	senderName := "someone"
	if w.userRepo != nil {
		if sender, err := w.userRepo.GetByID(ctx, payload.SentBy); err == nil && sender.Name != "" {
			senderName = sender.Name
		}
	}
	body := fmt.Sprintf("You have a new message from %s", senderName)

	err = w.notifier.NotifyUser(ctx, payload.SentTo, senderName, body, map[string]interface{}{
		"chat_id":    payload.ChatID,
		"message_id": payload.ID,
		"sent_by":    payload.SentBy,
	})
	if err != nil && !errors.Is(err, chat_errors.ErrInvalidInput) {
		w.log.Warnf("outbox: push to user %d failed: %v", payload.SentTo, err)
	}
}
