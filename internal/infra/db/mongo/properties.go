package mongo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "immo/internal/domain/property"
	domainuser "immo/internal/domain/user"
)

const propertiesCollection = "properties"

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection(propertiesCollection)}
}

type locationDocument struct {
	Lat float64 `bson:"lat"`
	Lon float64 `bson:"lon"`
}

type addressDocument struct {
	Street   string            `bson:"street"`
	City     string            `bson:"city"`
	ZipCode  string            `bson:"zip_code"`
	Country  string            `bson:"country"`
	Location *locationDocument `bson:"location,omitempty"`
}

type propertyDocument struct {
	ID          string          `bson:"_id"`
	OwnerID     string          `bson:"owner_id"`
	Title       string          `bson:"title"`
	Description string          `bson:"description"`
	Type        string          `bson:"type"`
	Price       int64           `bson:"price"`
	Surface     float64         `bson:"surface"`
	Rooms       int             `bson:"rooms"`
	Address     addressDocument `bson:"address"`
	Features    []string        `bson:"features"`
	Images      []string        `bson:"images"`
	Status      string          `bson:"status"`
	CreatedAt   time.Time       `bson:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	doc := propertyDocument{
		ID:          string(p.ID),
		OwnerID:     string(p.OwnerID),
		Title:       p.Title,
		Description: p.Description,
		Type:        string(p.Type),
		Price:       p.Price,
		Surface:     p.Surface,
		Rooms:       p.Rooms,
		Address: addressDocument{
			Street:  p.Address.Street,
			City:    p.Address.City,
			ZipCode: p.Address.ZipCode,
			Country: p.Address.Country,
		},
		Features:  p.Features,
		Images:    p.Images,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Address.Location != nil {
		doc.Address.Location = &locationDocument{Lat: p.Address.Location.Lat, Lon: p.Address.Location.Lon}
	}
	return doc
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	address := domainproperty.Address{
		Street:  d.Address.Street,
		City:    d.Address.City,
		ZipCode: d.Address.ZipCode,
		Country: d.Address.Country,
	}
	if d.Address.Location != nil {
		address.Location = &domainproperty.Location{Lat: d.Address.Location.Lat, Lon: d.Address.Location.Lon}
	}
	return &domainproperty.Property{
		ID:          domainproperty.ID(d.ID),
		OwnerID:     domainuser.ID(d.OwnerID),
		Title:       d.Title,
		Description: d.Description,
		Type:        domainproperty.Type(d.Type),
		Price:       d.Price,
		Surface:     d.Surface,
		Rooms:       d.Rooms,
		Address:     address,
		Features:    d.Features,
		Images:      d.Images,
		Status:      domainproperty.Status(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainproperty.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, opts)
	return err
}

func (r *PropertyRepository) Delete(ctx context.Context, id domainproperty.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainproperty.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) Search(ctx context.Context, params domainproperty.SearchParams) (domainproperty.SearchResult, error) {
	opts := params.Normalized()
	filter := propertyFilter(opts)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainproperty.SearchResult{}, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainproperty.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	var items []*domainproperty.Property
	for cursor.Next(ctx) {
		var doc propertyDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainproperty.SearchResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainproperty.SearchResult{}, err
	}
	return domainproperty.SearchResult{Items: items, Total: total}, nil
}

func propertyFilter(params domainproperty.SearchParams) bson.M {
	filter := bson.M{}
	if params.Type != "" {
		filter["type"] = string(params.Type)
	}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}
	if params.Rooms > 0 {
		filter["rooms"] = params.Rooms
	}
	if params.City != "" {
		filter["address.city"] = primitive.Regex{Pattern: regexp.QuoteMeta(params.City), Options: "i"}
	}
	if minMax := rangeFilter(params.MinPrice, params.MaxPrice); minMax != nil {
		filter["price"] = minMax
	}
	if minMax := floatRangeFilter(params.MinSurface, params.MaxSurface); minMax != nil {
		filter["surface"] = minMax
	}
	return filter
}

func rangeFilter(min, max int64) bson.M {
	if min <= 0 && max <= 0 {
		return nil
	}
	out := bson.M{}
	if min > 0 {
		out["$gte"] = min
	}
	if max > 0 {
		out["$lte"] = max
	}
	return out
}

func floatRangeFilter(min, max float64) bson.M {
	if min <= 0 && max <= 0 {
		return nil
	}
	out := bson.M{}
	if min > 0 {
		out["$gte"] = min
	}
	if max > 0 {
		out["$lte"] = max
	}
	return out
}
