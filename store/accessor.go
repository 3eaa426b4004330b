package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/chapter-directory-go/models"
)

// ErrNotFound is returned when an id matches no active document.
var ErrNotFound = errors.New("not found")

// Accessor is the typed query surface over one collection. Every read and
// write is scoped to the model's active-record predicate.
type Accessor[T models.Document] struct {
	col *mongo.Collection
	now func() time.Time
}

// For returns the accessor for T's collection in db.
func For[T models.Document](db *mongo.Database) *Accessor[T] {
	var zero T
	return &Accessor[T]{col: db.Collection(zero.CollectionName()), now: time.Now}
}

func (a *Accessor[T]) Name() string {
	return a.col.Name()
}

// Scope ANDs the active-record predicate into filter.
func Scope[T models.Document](filter bson.M) bson.M {
	var zero T
	active := zero.ActiveFilter()
	switch {
	case len(active) == 0:
		if filter == nil {
			return bson.M{}
		}
		return filter
	case len(filter) == 0:
		return active
	}
	return bson.M{"$and": bson.A{filter, active}}
}

func (a *Accessor[T]) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := a.col.Find(ctx, Scope[T](filter), opts...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", a.Name(), err)
	}

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.Name(), err)
	}
	return out, nil
}

func (a *Accessor[T]) FindOne(ctx context.Context, filter bson.M) (T, error) {
	var doc T
	err := a.col.FindOne(ctx, Scope[T](filter)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("find %s: %w", a.Name(), err)
	}
	return doc, nil
}

func (a *Accessor[T]) FindByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	return a.FindOne(ctx, bson.M{"_id": id})
}

func (a *Accessor[T]) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := a.col.CountDocuments(ctx, Scope[T](bson.M{"_id": id}), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count %s: %w", a.Name(), err)
	}
	return n > 0, nil
}

func (a *Accessor[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := a.col.CountDocuments(ctx, Scope[T](filter))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", a.Name(), err)
	}
	return n, nil
}

func (a *Accessor[T]) Insert(ctx context.Context, doc T) error {
	if _, err := a.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s: %w", a.Name(), err)
	}
	return nil
}

// Update applies a partial $set and returns the updated document.
func (a *Accessor[T]) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (T, error) {
	var doc T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := a.col.FindOneAndUpdate(ctx, Scope[T](bson.M{"_id": id}), bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("update %s: %w", a.Name(), err)
	}
	return doc, nil
}

// Delete soft-deletes when the model defines a soft-delete payload and
// removes the document otherwise.
func (a *Accessor[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	var zero T
	filter := Scope[T](bson.M{"_id": id})

	if set := zero.SoftDelete(a.now()); set != nil {
		res, err := a.col.UpdateOne(ctx, filter, bson.M{"$set": set})
		if err != nil {
			return fmt.Errorf("soft delete %s: %w", a.Name(), err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	}

	res, err := a.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete %s: %w", a.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Contains builds a case-insensitive substring match. User text is quoted
// so it can never be interpreted as a pattern.
func Contains(text string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(text), "$options": "i"}
}

// Between matches values inside the inclusive interval [start, end].
func Between(start, end time.Time) bson.M {
	return bson.M{"$gte": start, "$lte": end}
}
