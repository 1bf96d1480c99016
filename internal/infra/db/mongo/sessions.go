package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainauth "immo/internal/domain/auth"
	domainuser "immo/internal/domain/user"
)

const sessionsCollection = "sessions"

// SessionStore keeps opaque bearer tokens. The TTL index on expires_at
// garbage-collects stale sessions; Get still checks expiry because the
// Mongo reaper runs on a coarse schedule.
type SessionStore struct {
	col *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{col: db.Collection(sessionsCollection)}
}

type sessionDocument struct {
	Token     string    `bson:"token"`
	UserID    string    `bson:"user_id"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (r *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	doc := sessionDocument{
		Token:     string(session.Token),
		UserID:    string(session.UserID),
		Role:      string(session.Role),
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	var doc sessionDocument
	if err := r.col.FindOne(ctx, bson.M{"token": string(token)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	return &domainauth.Session{
		Token:     domainauth.Token(doc.Token),
		UserID:    domainuser.ID(doc.UserID),
		Role:      domainuser.Role(doc.Role),
		CreatedAt: doc.CreatedAt.UTC(),
		ExpiresAt: doc.ExpiresAt.UTC(),
	}, nil
}

func (r *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"token": string(token)})
	return err
}

func (r *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_id": string(userID)})
	return err
}
