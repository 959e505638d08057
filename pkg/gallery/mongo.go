package gallery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/mondrian/pkg/config"
)

// DefaultMongoCollection is the collection used when none is given.
const DefaultMongoCollection = "compositions"

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// mongoRecord is the stored document. BSON has no unsigned 64-bit integer,
// so the seed is kept as a decimal string.
type mongoRecord struct {
	ID        string        `bson:"_id"`
	CreatedAt time.Time     `bson:"created_at"`
	Config    config.Config `bson:"config"`
	Seed      string        `bson:"seed"`
	Leaves    int           `bson:"leaves"`
	Border    uint32        `bson:"border"`
}

func toDocument(r *Record) mongoRecord {
	cfg := r.Config
	cfg.Seed = 0
	return mongoRecord{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Config:    cfg,
		Seed:      strconv.FormatUint(r.Seed, 10),
		Leaves:    r.Leaves,
		Border:    r.Border,
	}
}

func (d mongoRecord) record() (*Record, error) {
	seed, err := strconv.ParseUint(d.Seed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("record %s: bad seed %q: %w", d.ID, d.Seed, err)
	}
	return &Record{
		ID:        d.ID,
		CreatedAt: d.CreatedAt,
		Config:    d.Config,
		Seed:      seed,
		Leaves:    d.Leaves,
		Border:    d.Border,
	}, nil
}

// NewMongoStore connects to uri and uses database/collection. An empty
// collection uses [DefaultMongoCollection]. An index on created_at backs
// List.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := NewMongoStoreFromClient(client, database, collection)
	s.owned = true

	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

// NewMongoStoreFromClient uses an existing client. Close does not
// disconnect it.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

func (s *MongoStore) Put(ctx context.Context, r *Record) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, toDocument(r), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	var doc mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return doc.record()
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(clampLimit(limit)))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	var docs []mongoRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	out := make([]*Record, 0, len(docs))
	for _, d := range docs {
		r, err := d.record()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
