package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri and pings the primary.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return NewMongo(client.Database(database)), nil
}

// NewMongo wraps an already connected database handle.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{client: db.Client(), db: db}
}

func (m *Mongo) Collection(name string) Collection {
	return &mongoCollection{coll: m.db.Collection(name)}
}

func (m *Mongo) EnsureCollection(ctx context.Context, name string, unique ...string) error {
	if err := checkName(name); err != nil {
		return err
	}
	coll := m.db.Collection(name)
	for _, field := range unique {
		if err := checkPath(field); err != nil {
			return err
		}
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("mongo index %s.%s: %w", name, field, err)
		}
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter, s Sort, out any) error {
	opts := options.Find()
	if s.Field != "" {
		dir := 1
		if s.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: s.Field, Value: dir}, {Key: "_id", Value: dir}})
	}
	cur, err := c.coll.Find(ctx, toBSON(filter), opts)
	if err != nil {
		return fmt.Errorf("mongo find: %w", err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("mongo find: %w", err)
	}
	return nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	return c.findOne(ctx, toBSON(filter), out)
}

func (c *mongoCollection) FindByID(ctx context.Context, id string, out any) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	return c.findOne(ctx, bson.M{"_id": oid}, out)
}

func (c *mongoCollection) findOne(ctx context.Context, filter bson.M, out any) error {
	err := c.coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mongo find one: %w", err)
	}
	return nil
}

func (c *mongoCollection) Insert(ctx context.Context, doc Document) error {
	stamp(doc)
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

func (c *mongoCollection) UpdateByID(ctx context.Context, id string, set Fields) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(set)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("mongo update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) DeleteByID(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func toBSON(filter Filter) bson.M {
	out := bson.M{}
	for k, v := range filter {
		out[k] = v
	}
	return out
}
