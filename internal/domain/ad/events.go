package ad

import (
	"time"

	"immo/internal/domain/property"
)

type Created struct {
	AdID       ID
	PropertyID property.ID
	Type       Type
	At         time.Time
}

func (e Created) EventName() string     { return "ad.created" }
func (e Created) AggregateID() string   { return string(e.AdID) }
func (e Created) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	AdID ID
	From Status
	To   Status
	At   time.Time
}

func (e StatusChanged) EventName() string     { return "ad.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.AdID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

type Completed struct {
	AdID       ID
	PropertyID property.ID
	Type       Type
	At         time.Time
}

func (e Completed) EventName() string     { return "ad.completed" }
func (e Completed) AggregateID() string   { return string(e.AdID) }
func (e Completed) OccurredAt() time.Time { return e.At }

type Deleted struct {
	AdID       ID
	PropertyID property.ID
	At         time.Time
}

func (e Deleted) EventName() string     { return "ad.deleted" }
func (e Deleted) AggregateID() string   { return string(e.AdID) }
func (e Deleted) OccurredAt() time.Time { return e.At }
