package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// updateRetries bounds the optimistic-concurrency retry loop in Update
const updateRetries = 5

// MongoStore implements Store over a mongo database, one collection per
// record collection. Records keep the same shape as the file store: a flat
// document keyed by "id" with a "version" counter. Updates replace the
// document filtered on {id, version} and retry on conflict, so concurrent
// writers cannot lose each other's changes.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore connects to the given URI and database name
func NewMongoStore(ctx context.Context, uri, name string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &MongoStore{db: client.Database(name)}, nil
}

// noObjectID hides mongo's internal _id so records round-trip unchanged
var noObjectID = bson.M{"_id": 0}

// List returns every record of the collection
func (m *MongoStore) List(ctx context.Context, collection string) ([]Record, error) {
	cursor, err := m.db.Collection(collection).Find(ctx, bson.M{},
		options.Find().SetProjection(noObjectID).SetSort(bson.M{"id": 1}))
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	records := []Record{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", collection, err)
	}
	return records, nil
}

// Get returns the record carrying the given identifier
func (m *MongoStore) Get(ctx context.Context, collection string, id int) (Record, error) {
	var rec Record
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"id": id},
		options.FindOne().SetProjection(noObjectID)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read record %s/%d: %w", collection, id, err)
	}
	return rec, nil
}

// Create assigns the next identifier and inserts the record
func (m *MongoStore) Create(ctx context.Context, collection string, build func(id int) Record) (Record, error) {
	var top Record
	err := m.db.Collection(collection).FindOne(ctx, bson.M{},
		options.FindOne().SetProjection(noObjectID).SetSort(bson.M{"id": -1})).Decode(&top)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	id := 101
	if tid, ok := RecordID(top); ok && tid >= id {
		id = tid + 1
	}
	rec := build(id)
	rec["id"] = id
	rec["version"] = 1
	if _, err := m.db.Collection(collection).InsertOne(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert record %s/%d: %w", collection, id, err)
	}
	return rec, nil
}

// Update applies the mutation against the current record and replaces the
// document, filtered on the version read, retrying on conflict
func (m *MongoStore) Update(ctx context.Context, collection string, id int, apply func(Record) (Record, error)) (Record, error) {
	for attempt := 0; attempt < updateRetries; attempt++ {
		rec, err := m.Get(ctx, collection, id)
		if err != nil {
			return nil, err
		}
		version := recordVersion(rec)
		updated, err := apply(rec)
		if err != nil {
			return nil, err
		}
		updated["id"] = id
		updated["version"] = version + 1
		res, err := m.db.Collection(collection).ReplaceOne(ctx,
			bson.M{"id": id, "version": version}, updated)
		if err != nil {
			return nil, fmt.Errorf("update record %s/%d: %w", collection, id, err)
		}
		if res.MatchedCount == 1 {
			return updated, nil
		}
		// version moved under us, re-read and retry
	}
	return nil, fmt.Errorf("update record %s/%d: too many conflicting writes", collection, id)
}

// Delete removes the record carrying the given identifier
func (m *MongoStore) Delete(ctx context.Context, collection string, id int) error {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete record %s/%d: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
