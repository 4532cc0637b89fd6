// Package mongostore keeps documents in MongoDB, one collection per kind.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JorgeHRP/renato-bi/pkg/store"
)

const defaultDatabase = "renato_bi"

// Collection is the part of *mongo.Collection the store uses.
type Collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

type CollectionProvider interface {
	Collection(name string) Collection
}

// MongoProvider adapts a database of *mongo.Client to CollectionProvider.
type MongoProvider struct {
	db *mongo.Database
}

func NewMongoProvider(client *mongo.Client, database string) *MongoProvider {
	if database == "" {
		database = defaultDatabase
	}
	return &MongoProvider{db: client.Database(database)}
}

func (p *MongoProvider) Collection(name string) Collection {
	return p.db.Collection(name)
}

type document struct {
	ID        string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Store struct {
	provider CollectionProvider
	close    func() error
}

func New(provider CollectionProvider) *Store {
	return &Store{provider: provider, close: func() error { return nil }}
}

// Connect dials uri and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := New(NewMongoProvider(client, database))
	s.close = func() error { return client.Disconnect(context.Background()) }
	return s, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var doc document
	err := s.provider.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return []byte(doc.Body), nil
}

func (s *Store) Put(ctx context.Context, collection, id string, data []byte) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}
	doc := document{ID: id, Body: string(data), UpdatedAt: time.Now().UTC()}
	_, err := s.provider.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to perform ReplaceOne: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.provider.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to perform DeleteOne: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.provider.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to perform Find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	out := make([][]byte, len(docs))
	for i, d := range docs {
		out[i] = []byte(d.Body)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.close()
}

var _ store.Documents = (*Store)(nil)
