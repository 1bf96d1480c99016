package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainad "immo/internal/domain/ad"
	domainbooking "immo/internal/domain/booking"
	domainproperty "immo/internal/domain/property"
	domainuser "immo/internal/domain/user"
)

const bookingsCollection = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

type slotDocument struct {
	Start string `bson:"start"`
	End   string `bson:"end"`
}

type clientFeedbackDocument struct {
	Rating  int    `bson:"rating"`
	Comment string `bson:"comment"`
}

type ownerFeedbackDocument struct {
	Comment string `bson:"comment"`
}

type bookingDocument struct {
	ID             string                  `bson:"_id"`
	PropertyID     string                  `bson:"property_id"`
	AdID           string                  `bson:"ad_id"`
	ClientID       string                  `bson:"client_id"`
	OwnerID        string                  `bson:"owner_id"`
	Date           time.Time               `bson:"date"`
	Slot           slotDocument            `bson:"slot"`
	Status         string                  `bson:"status"`
	Message        string                  `bson:"message"`
	Notes          string                  `bson:"notes"`
	ClientFeedback *clientFeedbackDocument `bson:"client_feedback,omitempty"`
	OwnerFeedback  *ownerFeedbackDocument  `bson:"owner_feedback,omitempty"`
	CreatedAt      time.Time               `bson:"created_at"`
	UpdatedAt      time.Time               `bson:"updated_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		AdID:       string(b.AdID),
		ClientID:   string(b.ClientID),
		OwnerID:    string(b.OwnerID),
		Date:       b.Date,
		Slot:       slotDocument{Start: b.Slot.Start, End: b.Slot.End},
		Status:     string(b.Status),
		Message:    b.Message,
		Notes:      b.Notes,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	if b.ClientFeedback != nil {
		doc.ClientFeedback = &clientFeedbackDocument{Rating: b.ClientFeedback.Rating, Comment: b.ClientFeedback.Comment}
	}
	if b.OwnerFeedback != nil {
		doc.OwnerFeedback = &ownerFeedbackDocument{Comment: b.OwnerFeedback.Comment}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	b := &domainbooking.Booking{
		ID:         domainbooking.ID(d.ID),
		PropertyID: domainproperty.ID(d.PropertyID),
		AdID:       domainad.ID(d.AdID),
		ClientID:   domainuser.ID(d.ClientID),
		OwnerID:    domainuser.ID(d.OwnerID),
		Date:       d.Date.UTC(),
		Slot:       domainbooking.TimeSlot{Start: d.Slot.Start, End: d.Slot.End},
		Status:     domainbooking.Status(d.Status),
		Message:    d.Message,
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
	if d.ClientFeedback != nil {
		b.ClientFeedback = &domainbooking.ClientFeedback{Rating: d.ClientFeedback.Rating, Comment: d.ClientFeedback.Comment}
	}
	if d.OwnerFeedback != nil {
		b.OwnerFeedback = &domainbooking.OwnerFeedback{Comment: d.OwnerFeedback.Comment}
	}
	return b
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts the booking. A duplicate-key error means another
// non-terminal booking already holds the slot: the partial unique index
// turns the check-then-insert race into ErrSlotTaken.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, opts)
	if mongo.IsDuplicateKeyError(err) {
		return domainbooking.ErrSlotTaken
	}
	return err
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.ListFilter) (domainbooking.ListResult, error) {
	f := filter.Normalized()
	query := bson.M{}
	if f.ClientID != "" {
		query["client_id"] = string(f.ClientID)
	}
	if f.OwnerID != "" {
		query["owner_id"] = string(f.OwnerID)
	}
	if f.PropertyID != "" {
		query["property_id"] = string(f.PropertyID)
	}
	if f.Status != "" {
		query["status"] = string(f.Status)
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return domainbooking.ListResult{}, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.Limit))
	cursor, err := r.col.Find(ctx, query, findOpts)
	if err != nil {
		return domainbooking.ListResult{}, err
	}
	defer cursor.Close(ctx)

	var items []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainbooking.ListResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainbooking.ListResult{}, err
	}
	return domainbooking.ListResult{Items: items, Total: total}, nil
}

func (r *BookingRepository) FindActiveSlot(ctx context.Context, propertyID domainproperty.ID, date time.Time, slotStart string) (*domainbooking.Booking, error) {
	filter := bson.M{
		"property_id": string(propertyID),
		"date":        date,
		"slot.start":  slotStart,
		"status":      bson.M{"$in": []string{string(domainbooking.StatusPending), string(domainbooking.StatusConfirmed)}},
	}
	var doc bookingDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}
