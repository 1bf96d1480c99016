package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"immo/internal/domain/shared/events"
)

// Entry is one stored domain event waiting for publication.
type Entry struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
}

// Outbox persists entries inside the request that produced them; a
// background worker drains the store, so a broker outage never fails
// the originating operation.
type Outbox interface {
	Append(ctx context.Context, entry Entry) error
}

// EventEncoder turns a domain event into a payload.
type EventEncoder interface {
	Encode(event events.DomainEvent) ([]byte, error)
}

// JSONEventEncoder marshals the event struct as-is.
type JSONEventEncoder struct{}

func (JSONEventEncoder) Encode(event events.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// RecordDomainEvents encodes and appends every pending event.
func RecordDomainEvents(ctx context.Context, ob Outbox, encoder EventEncoder, pending []events.DomainEvent) error {
	if ob == nil || len(pending) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, event := range pending {
		payload, err := encoder.Encode(event)
		if err != nil {
			return err
		}
		entry := Entry{
			ID:         uuid.NewString(),
			Name:       event.EventName(),
			Aggregate:  event.AggregateID(),
			Payload:    payload,
			OccurredAt: event.OccurredAt(),
		}
		if err := ob.Append(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// Drain moves the pending events off a recorder into the outbox.
func Drain(ctx context.Context, ob Outbox, recorder interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}) error {
	pending := recorder.PendingEvents()
	recorder.ClearEvents()
	return RecordDomainEvents(ctx, ob, nil, pending)
}
