package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	appoutbox "immo/internal/app/outbox"
)

type stubStore struct {
	entry    *appoutbox.Entry
	attempts int

	sent     []string
	failed   []string
	nextAt   time.Time
	lastErr  string
	claimErr error
}

func (s *stubStore) Claim(ctx context.Context, workerID string) (*appoutbox.Entry, int, error) {
	if s.claimErr != nil {
		return nil, 0, s.claimErr
	}
	entry := s.entry
	s.entry = nil
	return entry, s.attempts, nil
}

func (s *stubStore) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *stubStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.failed = append(s.failed, id)
	s.nextAt = next
	s.lastErr = errMsg
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type stubProducer struct {
	messages []published
	err      error
}

func (p *stubProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func testEntry() *appoutbox.Entry {
	return &appoutbox.Entry{
		ID:         "e-1",
		Name:       "booking.requested",
		Aggregate:  "b-1",
		Payload:    []byte(`{"booking_id":"b-1"}`),
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
		OccurredAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestProcessOncePublishesCloudEvent(t *testing.T) {
	store := &stubStore{entry: testEntry()}
	producer := &stubProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "w-1", Source: "app://immo-test"}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(producer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(producer.messages))
	}
	msg := producer.messages[0]
	if msg.topic != "booking.events.v1" {
		t.Errorf("topic = %s, want booking.events.v1", msg.topic)
	}
	if msg.key != "b-1" {
		t.Errorf("key = %s, want the aggregate id", msg.key)
	}
	if msg.headers["content-type"] != "application/cloudevents+json" {
		t.Errorf("unexpected headers: %v", msg.headers)
	}

	var evt map[string]any
	if err := json.Unmarshal(msg.payload, &evt); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if evt["specversion"] != "1.0" || evt["type"] != "booking.requested.v1" {
		t.Errorf("bad envelope: %v", evt)
	}
	if evt["source"] != "app://immo-test" {
		t.Errorf("source = %v", evt["source"])
	}
	if evt["traceparent"] != "00-abc-def-01" {
		t.Errorf("trace context should pass through, got %v", evt["traceparent"])
	}
	data, ok := evt["data"].(map[string]any)
	if !ok || data["booking_id"] != "b-1" {
		t.Errorf("bad data: %v", evt["data"])
	}

	if len(store.sent) != 1 || store.sent[0] != "e-1" {
		t.Errorf("entry should be marked sent, got %v", store.sent)
	}
}

func TestProcessOnceTopicPrefix(t *testing.T) {
	store := &stubStore{entry: testEntry()}
	producer := &stubProducer{}
	w := &Worker{Store: store, Producer: producer, TopicPrefix: "staging."}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := producer.messages[0].topic; got != "staging.booking.events.v1" {
		t.Errorf("topic = %s, want staging.booking.events.v1", got)
	}
}

func TestProcessOnceEmptyStore(t *testing.T) {
	store := &stubStore{}
	producer := &stubProducer{}
	w := &Worker{Store: store, Producer: producer}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("an empty store is not an error: %v", err)
	}
	if len(producer.messages) != 0 {
		t.Errorf("nothing should be published, got %d", len(producer.messages))
	}
}

func TestProcessOncePublishFailure(t *testing.T) {
	store := &stubStore{entry: testEntry(), attempts: 1}
	producer := &stubProducer{err: errors.New("broker down")}
	w := &Worker{Store: store, Producer: producer, Backoff: []time.Duration{time.Second, time.Minute}}

	before := time.Now()
	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("publish failures are retried, not fatal: %v", err)
	}
	if len(store.failed) != 1 || store.failed[0] != "e-1" {
		t.Fatalf("entry should be marked failed, got %v", store.failed)
	}
	if store.lastErr != "broker down" {
		t.Errorf("lastErr = %s", store.lastErr)
	}
	// attempts=1 picks the second backoff step.
	if wait := store.nextAt.Sub(before); wait < 30*time.Second {
		t.Errorf("retry scheduled too soon: %v", wait)
	}
}

func TestProcessOnceBadPayload(t *testing.T) {
	entry := testEntry()
	entry.Payload = []byte("not json")
	store := &stubStore{entry: entry}
	producer := &stubProducer{}
	w := &Worker{Store: store, Producer: producer}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("a bad payload is retried, not fatal: %v", err)
	}
	if len(producer.messages) != 0 {
		t.Error("malformed entries must not be published")
	}
	if len(store.failed) != 1 {
		t.Errorf("entry should be marked failed, got %v", store.failed)
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	w := &Worker{}
	if err := w.Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Errorf("expected ErrWorkerNotConfigured, got %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{Store: &stubStore{}, Producer: &stubProducer{}, Interval: time.Millisecond}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
