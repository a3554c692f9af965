package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mboutique/backoffice/internal/core/ports"
)

const (
	sessionCollection = "sessions"
	defaultSessionTTL = 7 * 24 * time.Hour
)

// SessionKV keeps one document per browser session:
//
//	{_id: <session_id>, values: {<key>: <value>}, updated_at: <time>}
//
// A TTL index on updated_at drops sessions idle for longer than ttl.
type SessionKV struct {
	coll *mongo.Collection
}

var _ ports.KeyValueOpener = (*SessionKV)(nil)

type sessionDoc struct {
	ID        string            `bson:"_id"`
	Values    map[string]string `bson:"values"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// NewSessionKV ensures the TTL index and returns the store.
func NewSessionKV(ctx context.Context, db *mongo.Database, ttl time.Duration) (*SessionKV, error) {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	coll := db.Collection(sessionCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("create session ttl index: %w", err)
	}
	return &SessionKV{coll: coll}, nil
}

func (s *SessionKV) Open(sessionID string) ports.KeyValueStore {
	return &sessionScope{coll: s.coll, id: sessionID}
}

func (s *SessionKV) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

type sessionScope struct {
	coll *mongo.Collection
	id   string
}

func field(key string) string { return "values." + key }

func (s *sessionScope) Get(ctx context.Context, key string) (string, bool, error) {
	var doc sessionDoc
	err := s.coll.FindOne(ctx,
		bson.M{"_id": s.id},
		options.FindOne().SetProjection(bson.M{field(key): 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get %s: %w", key, err)
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

func (s *sessionScope) Set(ctx context.Context, key, value string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": s.id},
		bson.M{"$set": bson.M{field(key): value, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

func (s *sessionScope) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	unset := make(bson.M, len(keys))
	for _, k := range keys {
		unset[field(k)] = ""
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": s.id},
		bson.M{"$unset": unset, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
