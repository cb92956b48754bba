package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/reconcile"
)

// Collection names.
const (
	looksCollection      = "looks"
	placementsCollection = "look_items"
)

// MongoStore persists looks and placements in MongoDB.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// MongoConfig holds connection settings for a Mongo store.
type MongoConfig struct {
	URI      string
	Database string
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping MongoDB")
	}
	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

func (s *MongoStore) looks() *mongo.Collection {
	return s.db.Collection(looksCollection)
}

func (s *MongoStore) placements() *mongo.Collection {
	return s.db.Collection(placementsCollection)
}

// CreateLook stores a new look, assigning an id if none is set.
func (s *MongoStore) CreateLook(ctx context.Context, look *Look) error {
	if look.ID == "" {
		look.ID = uuid.NewString()
	}
	now := time.Now()
	look.CreatedAt = now
	look.UpdatedAt = now

	if _, err := s.looks().InsertOne(ctx, look); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create look")
	}
	return nil
}

// GetLook retrieves a look by id.
func (s *MongoStore) GetLook(ctx context.Context, id string) (*Look, error) {
	var look Look
	err := s.looks().FindOne(ctx, bson.M{"_id": id}).Decode(&look)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeLookNotFound, "look %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "get look %s", id)
	}
	return &look, nil
}

// ListLooks returns a user's looks, most recently updated first.
func (s *MongoStore) ListLooks(ctx context.Context, userID string) ([]Look, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := s.looks().Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list looks")
	}
	defer cur.Close(ctx)

	var out []Look
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode looks")
	}
	return out, nil
}

// DeleteLook removes a look and its placement records.
func (s *MongoStore) DeleteLook(ctx context.Context, id string) error {
	res, err := s.looks().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete look %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeLookNotFound, "look %s not found", id)
	}
	if _, err := s.placements().DeleteMany(ctx, bson.M{"look_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete placements for look %s", id)
	}
	return nil
}

// UpdateLookComposite stores the rendered composite on a look.
func (s *MongoStore) UpdateLookComposite(ctx context.Context, id, dataURI string) error {
	update := bson.M{"$set": bson.M{
		"composite_image": dataURI,
		"updated_at":      time.Now(),
	}}
	res, err := s.looks().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "update composite for look %s", id)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeLookNotFound, "look %s not found", id)
	}
	return nil
}

// CreatePlacements creates all records in one batch with assigned ids.
func (s *MongoStore) CreatePlacements(ctx context.Context, lookID string, creates []reconcile.Create) ([]reconcile.Record, error) {
	if len(creates) == 0 {
		return nil, nil
	}

	records := make([]reconcile.Record, 0, len(creates))
	docs := make([]any, 0, len(creates))
	for _, c := range creates {
		r := reconcile.Record{
			ID:        uuid.NewString(),
			LookID:    lookID,
			ItemID:    c.ItemID,
			ItemType:  c.ItemType,
			SortOrder: c.SortOrder,
			Pos:       c.Pos,
			Scale:     c.Scale,
		}
		records = append(records, r)
		docs = append(docs, r)
	}

	if _, err := s.placements().InsertMany(ctx, docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create %d placements", len(creates))
	}
	return records, nil
}

// UpdatePlacement overwrites position and scale on one record.
func (s *MongoStore) UpdatePlacement(ctx context.Context, recordID string, upd reconcile.Update) error {
	update := bson.M{"$set": bson.M{
		"pos":   upd.Pos,
		"scale": upd.Scale,
	}}
	res, err := s.placements().UpdateOne(ctx, bson.M{"_id": recordID}, update)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "update placement %s", recordID)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeRecordNotFound, "placement %s not found", recordID)
	}
	return nil
}

// DeletePlacement removes one record. Absent records are not an error.
func (s *MongoStore) DeletePlacement(ctx context.Context, recordID string) error {
	if _, err := s.placements().DeleteOne(ctx, bson.M{"_id": recordID}); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete placement %s", recordID)
	}
	return nil
}

// ListPlacements returns a look's records ordered by SortOrder.
func (s *MongoStore) ListPlacements(ctx context.Context, lookID string) ([]reconcile.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})
	cur, err := s.placements().Find(ctx, bson.M{"look_id": lookID}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list placements for look %s", lookID)
	}
	defer cur.Close(ctx)

	var out []reconcile.Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode placements")
	}
	return out, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
