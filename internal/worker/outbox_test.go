package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrly/internal/data/entity"
	"agrly/internal/data/repository"
	"agrly/pkg/utils"
)

type fakeOutboxRepo struct {
	queue  []*entity.OutboxEvent
	sent   []uuid.UUID
	failed []uuid.UUID
	dead   []uuid.UUID
}

func (f *fakeOutboxRepo) ClaimNext(_ context.Context) (*entity.OutboxEvent, error) {
	if len(f.queue) == 0 {
		return nil, nil
	}
	event := f.queue[0]
	f.queue = f.queue[1:]
	event.Attempts++
	return event, nil
}

func (f *fakeOutboxRepo) MarkSent(_ context.Context, id uuid.UUID) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(_ context.Context, id uuid.UUID, _ time.Time, _ string) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeOutboxRepo) MarkDead(_ context.Context, id uuid.UUID, _ string) error {
	f.dead = append(f.dead, id)
	return nil
}

type fakeHistoryRepo struct {
	created  []*entity.RentHistory
	failWith error
}

func (f *fakeHistoryRepo) Create(_ context.Context, history *entity.RentHistory) error {
	if f.failWith != nil {
		return f.failWith
	}
	// the real table has a unique index on booking_id
	for _, existing := range f.created {
		if existing.BookingID == history.BookingID {
			return nil
		}
	}
	f.created = append(f.created, history)
	return nil
}

func (f *fakeHistoryRepo) FindByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*entity.RentHistory, error) {
	var matched []*entity.RentHistory
	for _, h := range f.created {
		if h.UserID == userID {
			matched = append(matched, h)
		}
	}
	return matched, nil
}

func (f *fakeHistoryRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	entries, _ := f.FindByUserID(context.Background(), userID, 0, 0)
	return int64(len(entries)), nil
}

type fakePublisher struct {
	published []string
	failWith  error
}

func (f *fakePublisher) Publish(_ string, key string, _ []byte) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.published = append(f.published, key)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type workerFixture struct {
	worker    *OutboxWorker
	outbox    *fakeOutboxRepo
	history   *fakeHistoryRepo
	publisher *fakePublisher
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	outbox := &fakeOutboxRepo{}
	history := &fakeHistoryRepo{}
	publisher := &fakePublisher{}

	repo := &repository.Repository{
		RentHistory: history,
		Outbox:      outbox,
	}
	config := &utils.Config{
		Kafka:  utils.KafkaConfig{Topic: "booking.events.v1"},
		Outbox: utils.OutboxConfig{PollInterval: time.Millisecond, MaxAttempts: 3},
	}

	return &workerFixture{
		worker:    NewOutboxWorker(repo, publisher, config, zap.NewNop()),
		outbox:    outbox,
		history:   history,
		publisher: publisher,
	}
}

func bookingCreatedEvent(t *testing.T) (*entity.OutboxEvent, entity.BookingCreatedEvent) {
	t.Helper()

	payload := entity.BookingCreatedEvent{
		BookingID:   uuid.NewString(),
		BookingRef:  "BK-20260601-120000-0042",
		ApartmentID: uuid.NewString(),
		GuestID:     uuid.NewString(),
		HostID:      uuid.NewString(),
		CheckIn:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:    time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC),
		Status:      "pending",
		TotalAmount: "395.00",
		CreatedAt:   time.Now().UTC(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	return &entity.OutboxEvent{
		BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: payload.CreatedAt},
		Name:        entity.EventBookingCreated,
		AggregateID: payload.BookingID,
		Payload:     raw,
		Status:      entity.OutboxStatusPending,
	}, payload
}

func TestOutboxProjectsHistoryAndPublishes(t *testing.T) {
	fx := newWorkerFixture(t)
	event, payload := bookingCreatedEvent(t)
	fx.outbox.queue = append(fx.outbox.queue, event)

	processed, err := fx.worker.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne returned error: %v", err)
	}
	if !processed {
		t.Fatal("ProcessOne = false, want true")
	}

	if len(fx.history.created) != 1 {
		t.Fatalf("history rows = %d, want 1", len(fx.history.created))
	}
	row := fx.history.created[0]
	if row.BookingID.String() != payload.BookingID {
		t.Errorf("history booking_id = %s, want %s", row.BookingID, payload.BookingID)
	}
	if row.UserID.String() != payload.GuestID {
		t.Errorf("history user_id = %s, want %s", row.UserID, payload.GuestID)
	}
	if !row.StartDate.Equal(payload.CheckIn) || !row.EndDate.Equal(payload.CheckOut) {
		t.Errorf("history window = [%v, %v), want [%v, %v)", row.StartDate, row.EndDate, payload.CheckIn, payload.CheckOut)
	}

	if len(fx.outbox.sent) != 1 || fx.outbox.sent[0] != event.ID {
		t.Errorf("sent = %v, want [%s]", fx.outbox.sent, event.ID)
	}
	if len(fx.publisher.published) != 1 || fx.publisher.published[0] != payload.BookingID {
		t.Errorf("published keys = %v, want [%s]", fx.publisher.published, payload.BookingID)
	}
}

func TestOutboxPublishFailureStillSent(t *testing.T) {
	fx := newWorkerFixture(t)
	fx.publisher.failWith = errors.New("broker unreachable")

	event, _ := bookingCreatedEvent(t)
	fx.outbox.queue = append(fx.outbox.queue, event)

	if _, err := fx.worker.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne returned error: %v", err)
	}

	// the durable projection happened, so the event is done regardless of Kafka
	if len(fx.history.created) != 1 {
		t.Errorf("history rows = %d, want 1", len(fx.history.created))
	}
	if len(fx.outbox.sent) != 1 {
		t.Errorf("sent = %d, want 1", len(fx.outbox.sent))
	}
	if len(fx.outbox.failed) != 0 {
		t.Errorf("failed = %d, want 0", len(fx.outbox.failed))
	}
}

func TestOutboxRetriesProjectionFailure(t *testing.T) {
	fx := newWorkerFixture(t)
	fx.history.failWith = errors.New("deadlock detected")

	event, _ := bookingCreatedEvent(t)
	fx.outbox.queue = append(fx.outbox.queue, event)

	if _, err := fx.worker.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne returned error: %v", err)
	}

	if len(fx.outbox.failed) != 1 {
		t.Errorf("failed = %d, want 1", len(fx.outbox.failed))
	}
	if len(fx.outbox.sent) != 0 {
		t.Errorf("sent = %d, want 0", len(fx.outbox.sent))
	}
}

func TestOutboxBuriesAfterMaxAttempts(t *testing.T) {
	fx := newWorkerFixture(t)
	fx.history.failWith = errors.New("deadlock detected")

	event, _ := bookingCreatedEvent(t)
	event.Attempts = 2 // ClaimNext bumps to 3, the configured max
	fx.outbox.queue = append(fx.outbox.queue, event)

	if _, err := fx.worker.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne returned error: %v", err)
	}

	if len(fx.outbox.dead) != 1 {
		t.Errorf("dead = %d, want 1", len(fx.outbox.dead))
	}
	if len(fx.outbox.failed) != 0 {
		t.Errorf("failed = %d, want 0", len(fx.outbox.failed))
	}
}

func TestOutboxProjectionIdempotent(t *testing.T) {
	fx := newWorkerFixture(t)

	event, _ := bookingCreatedEvent(t)
	duplicate := *event
	fx.outbox.queue = append(fx.outbox.queue, event, &duplicate)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := fx.worker.ProcessOne(ctx); err != nil {
			t.Fatalf("ProcessOne pass %d returned error: %v", i+1, err)
		}
	}

	if len(fx.history.created) != 1 {
		t.Errorf("history rows = %d, want 1 after duplicate delivery", len(fx.history.created))
	}
}

func TestOutboxEmptyQueue(t *testing.T) {
	fx := newWorkerFixture(t)

	processed, err := fx.worker.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne returned error: %v", err)
	}
	if processed {
		t.Error("ProcessOne = true on empty queue, want false")
	}
}

func TestBackoffCapped(t *testing.T) {
	if got := backoff(1); got != time.Second {
		t.Errorf("backoff(1) = %v, want 1s", got)
	}
	if got := backoff(3); got != 4*time.Second {
		t.Errorf("backoff(3) = %v, want 4s", got)
	}
	if got := backoff(30); got > time.Minute {
		t.Errorf("backoff(30) = %v, want <= 1m", got)
	}
}
