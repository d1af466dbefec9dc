package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrly/internal/data/entity"
	"agrly/internal/data/repository"
	"agrly/pkg/events"
	"agrly/pkg/utils"
)

// OutboxWorker drains the outbox table: for each booking.created event it
// projects the rent history row and publishes to Kafka. Projection failures
// reschedule the event with backoff; publish failures are logged only, since
// the history projection is the effect we guarantee.
type OutboxWorker struct {
	repo        *repository.Repository
	publisher   events.Publisher
	topic       string
	interval    time.Duration
	maxAttempts int
	log         *zap.Logger
}

func NewOutboxWorker(repo *repository.Repository, publisher events.Publisher, config *utils.Config, log *zap.Logger) *OutboxWorker {
	return &OutboxWorker{
		repo:        repo,
		publisher:   publisher,
		topic:       config.Kafka.Topic,
		interval:    config.Outbox.PollInterval,
		maxAttempts: config.Outbox.MaxAttempts,
		log:         log.With(zap.String("worker", "outbox")),
	}
}

// Run polls until ctx is cancelled. After each empty poll it sleeps for the
// configured interval; while events are due it keeps draining without pause.
func (w *OutboxWorker) Run(ctx context.Context) {
	w.log.Info("Outbox worker started", zap.Duration("poll_interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		processed, err := w.ProcessOne(ctx)
		if err != nil {
			w.log.Error("Outbox processing round failed", zap.Error(err))
			return
		}
		if !processed {
			return
		}
	}
}

// ProcessOne claims and handles a single due event. Returns false when the
// queue is empty.
func (w *OutboxWorker) ProcessOne(ctx context.Context) (bool, error) {
	event, err := w.repo.Outbox.ClaimNext(ctx)
	if err != nil {
		return false, err
	}
	if event == nil {
		return false, nil
	}

	if err := w.handle(ctx, event); err != nil {
		w.retryOrBury(ctx, event, err)
		return true, nil
	}

	if err := w.repo.Outbox.MarkSent(ctx, event.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (w *OutboxWorker) handle(ctx context.Context, event *entity.OutboxEvent) error {
	switch event.Name {
	case entity.EventBookingCreated:
		return w.handleBookingCreated(ctx, event)
	default:
		// unknown events are buried immediately rather than retried forever
		w.log.Warn("Unknown outbox event",
			zap.String("event_id", event.ID.String()),
			zap.String("name", event.Name),
		)
		return nil
	}
}

func (w *OutboxWorker) handleBookingCreated(ctx context.Context, event *entity.OutboxEvent) error {
	var payload entity.BookingCreatedEvent
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal booking created payload: %w", err)
	}

	bookingID, err := uuid.Parse(payload.BookingID)
	if err != nil {
		return fmt.Errorf("parse booking ID %q: %w", payload.BookingID, err)
	}
	guestID, err := uuid.Parse(payload.GuestID)
	if err != nil {
		return fmt.Errorf("parse guest ID %q: %w", payload.GuestID, err)
	}
	apartmentID, err := uuid.Parse(payload.ApartmentID)
	if err != nil {
		return fmt.Errorf("parse apartment ID %q: %w", payload.ApartmentID, err)
	}

	now := time.Now().UTC()
	history := &entity.RentHistory{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:      guestID,
		ApartmentID: apartmentID,
		StartDate:   payload.CheckIn,
		EndDate:     payload.CheckOut,
		Status:      payload.Status,
		BookingID:   bookingID,
	}

	if err := w.repo.RentHistory.Create(ctx, history); err != nil {
		return err
	}

	// Kafka is best effort: the event stays sent even if the broker is down,
	// because the durable projection above already happened.
	if w.publisher != nil {
		if err := w.publisher.Publish(w.topic, payload.BookingID, event.Payload); err != nil {
			w.log.Warn("Failed to publish booking event to Kafka",
				zap.Error(err),
				zap.String("booking_ref", payload.BookingRef),
			)
		}
	}

	w.log.Info("Projected booking into rent history",
		zap.String("booking_ref", payload.BookingRef),
		zap.String("user_id", payload.GuestID),
	)
	return nil
}

func (w *OutboxWorker) retryOrBury(ctx context.Context, event *entity.OutboxEvent, cause error) {
	if event.Attempts >= w.maxAttempts {
		w.log.Error("Outbox event exhausted retries",
			zap.Error(cause),
			zap.String("event_id", event.ID.String()),
			zap.Int("attempts", event.Attempts),
		)
		if err := w.repo.Outbox.MarkDead(ctx, event.ID, cause.Error()); err != nil {
			w.log.Error("Failed to bury outbox event", zap.Error(err))
		}
		return
	}

	nextRetry := time.Now().UTC().Add(backoff(event.Attempts))
	w.log.Warn("Outbox event failed, scheduling retry",
		zap.Error(cause),
		zap.String("event_id", event.ID.String()),
		zap.Int("attempts", event.Attempts),
		zap.Time("next_retry_at", nextRetry),
	)
	if err := w.repo.Outbox.MarkFailed(ctx, event.ID, nextRetry, cause.Error()); err != nil {
		w.log.Error("Failed to schedule outbox retry", zap.Error(err))
	}
}

// backoff doubles per attempt, capped at one minute.
func backoff(attempts int) time.Duration {
	d := time.Second
	for i := 1; i < attempts && d < time.Minute; i++ {
		d *= 2
	}
	if d > time.Minute {
		return time.Minute
	}
	return d
}
