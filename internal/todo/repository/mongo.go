package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogotex/todo-service/internal/todo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const todoSequence = "todo"

// MongoRepo keeps todos in a Mongo collection. Integer ids come from a
// per-collection counter document incremented atomically with $inc.
type MongoRepo struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

// NewMongoRepo uses db.todo for records and db.counters for the id sequence.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{col: db.Collection("todo"), counters: db.Collection("counters")}
}

// Migrate ensures the content index exists, mirroring the relational schema.
func (m *MongoRepo) Migrate(ctx context.Context) error {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "content", Value: 1}}}
	if _, err := m.col.Indexes().CreateOne(ctx, idx); err != nil {
		return fmt.Errorf("create todo content index: %w", err)
	}
	return nil
}

func (m *MongoRepo) nextID(ctx context.Context) (int64, error) {
	var seq struct {
		Value int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": todoSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&seq)
	if err != nil {
		return 0, fmt.Errorf("next todo id: %w", err)
	}
	return seq.Value, nil
}

func (m *MongoRepo) Create(ctx context.Context, t *todo.Todo) error {
	id, err := m.nextID(ctx)
	if err != nil {
		return err
	}
	t.ID = id
	if _, err := m.col.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (m *MongoRepo) List(ctx context.Context) ([]todo.Todo, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer cur.Close(ctx)
	out := []todo.Todo{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}
	return out, nil
}

func (m *MongoRepo) Get(ctx context.Context, id int64) (*todo.Todo, error) {
	var t todo.Todo
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, todo.ErrNotFound
		}
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	return &t, nil
}

func (m *MongoRepo) Update(ctx context.Context, id int64, content string) (*todo.Todo, error) {
	var t todo.Todo
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content}},
		opts,
	).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, todo.ErrNotFound
		}
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}
	return &t, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id int64) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return todo.ErrNotFound
	}
	return nil
}
