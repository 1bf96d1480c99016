package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainad "immo/internal/domain/ad"
	domainproperty "immo/internal/domain/property"
	domainuser "immo/internal/domain/user"
)

const adsCollection = "ads"

type AdRepository struct {
	col *mongo.Collection
}

func NewAdRepository(db *mongo.Database) *AdRepository {
	return &AdRepository{col: db.Collection(adsCollection)}
}

type rentalDetailsDocument struct {
	Duration      string    `bson:"duration"`
	DepositAmount int64     `bson:"deposit_amount"`
	Availability  time.Time `bson:"availability"`
}

type contactInfoDocument struct {
	UseOwnerInfo bool   `bson:"use_owner_info"`
	Phone        string `bson:"phone"`
	Email        string `bson:"email"`
}

type adDocument struct {
	ID            string                `bson:"_id"`
	PropertyID    string                `bson:"property_id"`
	OwnerID       string                `bson:"owner_id"`
	Title         string                `bson:"title"`
	Description   string                `bson:"description"`
	Type          string                `bson:"type"`
	Price         int64                 `bson:"price"`
	Status        string                `bson:"status"`
	RentalDetails rentalDetailsDocument `bson:"rental_details"`
	ContactInfo   contactInfoDocument   `bson:"contact_info"`
	Highlighted   bool                  `bson:"highlighted"`
	ViewCount     int64                 `bson:"view_count"`
	ExpiresAt     time.Time             `bson:"expires_at"`
	CreatedAt     time.Time             `bson:"created_at"`
	UpdatedAt     time.Time             `bson:"updated_at"`
}

func newAdDocument(a *domainad.Ad) adDocument {
	return adDocument{
		ID:          string(a.ID),
		PropertyID:  string(a.PropertyID),
		OwnerID:     string(a.OwnerID),
		Title:       a.Title,
		Description: a.Description,
		Type:        string(a.Type),
		Price:       a.Price,
		Status:      string(a.Status),
		RentalDetails: rentalDetailsDocument{
			Duration:      a.RentalDetails.Duration,
			DepositAmount: a.RentalDetails.DepositAmount,
			Availability:  a.RentalDetails.Availability,
		},
		ContactInfo: contactInfoDocument{
			UseOwnerInfo: a.ContactInfo.UseOwnerInfo,
			Phone:        a.ContactInfo.Phone,
			Email:        a.ContactInfo.Email,
		},
		Highlighted: a.Highlighted,
		ViewCount:   a.ViewCount,
		ExpiresAt:   a.ExpiresAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (d adDocument) toAggregate() *domainad.Ad {
	return &domainad.Ad{
		ID:          domainad.ID(d.ID),
		PropertyID:  domainproperty.ID(d.PropertyID),
		OwnerID:     domainuser.ID(d.OwnerID),
		Title:       d.Title,
		Description: d.Description,
		Type:        domainad.Type(d.Type),
		Price:       d.Price,
		Status:      domainad.Status(d.Status),
		RentalDetails: domainad.RentalDetails{
			Duration:      d.RentalDetails.Duration,
			DepositAmount: d.RentalDetails.DepositAmount,
			Availability:  d.RentalDetails.Availability.UTC(),
		},
		ContactInfo: domainad.ContactInfo{
			UseOwnerInfo: d.ContactInfo.UseOwnerInfo,
			Phone:        d.ContactInfo.Phone,
			Email:        d.ContactInfo.Email,
		},
		Highlighted: d.Highlighted,
		ViewCount:   d.ViewCount,
		ExpiresAt:   d.ExpiresAt.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *AdRepository) ByID(ctx context.Context, id domainad.ID) (*domainad.Ad, error) {
	var doc adDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainad.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *AdRepository) Save(ctx context.Context, a *domainad.Ad) error {
	doc := newAdDocument(a)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, opts)
	return err
}

func (r *AdRepository) Delete(ctx context.Context, id domainad.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainad.ErrNotFound
	}
	return nil
}

func (r *AdRepository) Search(ctx context.Context, params domainad.SearchParams) (domainad.SearchResult, error) {
	opts := params.Normalized()
	filter := adFilter(opts)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainad.SearchResult{}, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "highlighted", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainad.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	var items []*domainad.Ad
	for cursor.Next(ctx) {
		var doc adDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainad.SearchResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainad.SearchResult{}, err
	}
	return domainad.SearchResult{Items: items, Total: total}, nil
}

func (r *AdRepository) ActiveByProperty(ctx context.Context, propertyID domainproperty.ID, exclude domainad.ID) ([]*domainad.Ad, error) {
	filter := bson.M{
		"property_id": string(propertyID),
		"status":      string(domainad.StatusActive),
	}
	if exclude != "" {
		filter["_id"] = bson.M{"$ne": string(exclude)}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*domainad.Ad
	for cursor.Next(ctx) {
		var doc adDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toAggregate())
	}
	return items, cursor.Err()
}

func (r *AdRepository) IncrementViews(ctx context.Context, id domainad.ID) error {
	res, err := r.col.UpdateByID(ctx, string(id), bson.M{"$inc": bson.M{"view_count": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainad.ErrNotFound
	}
	return nil
}

func adFilter(params domainad.SearchParams) bson.M {
	filter := bson.M{}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}
	if params.Type != "" {
		filter["type"] = string(params.Type)
	}
	if minMax := rangeFilter(params.MinPrice, params.MaxPrice); minMax != nil {
		filter["price"] = minMax
	}
	if params.PropertyIDs != nil {
		ids := make([]string, 0, len(params.PropertyIDs))
		for _, id := range params.PropertyIDs {
			ids = append(ids, string(id))
		}
		filter["property_id"] = bson.M{"$in": ids}
	}
	return filter
}
