package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OperatorRepo handles the persistence of operators.
type OperatorRepo struct {
	collection *mongo.Collection
}

// NewOperatorRepo creates a new OperatorRepo with the given MongoDB client, database name, and collection name.
func NewOperatorRepo(client *mongo.Client, dbName, collectionName string) *OperatorRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &OperatorRepo{
		collection: collection,
	}
}

// EnsureIndexes creates the unique index on operator names.
func (o *OperatorRepo) EnsureIndexes(ctx context.Context) error {
	_, err := o.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Save inserts or updates an operator in the repository.
// If the operator already exists, it updates the existing record.
// If the operator does not exist, it adds a new record.
func (o *OperatorRepo) Save(ctx context.Context, operator *dmn.Operator) error {
	filter := bson.M{"_id": operator.ID}
	update := bson.M{
		"$set": bson.M{
			"name":      operator.Name,
			"keyHash":   operator.KeyHash,
			"createdAt": operator.CreatedAt,
			"updatedAt": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := o.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return dmn.ErrOperatorConflict
		}
		return fmt.Errorf("unexpected error: %w", err)
	}

	return nil
}

// ByName retrieves an operator by name.
// Returns an error if the operator is not found or if an unexpected error occurs.
func (o *OperatorRepo) ByName(ctx context.Context, name string) (*dmn.Operator, error) {
	filter := bson.M{"name": name}
	var operator dmn.Operator
	if err := o.collection.FindOne(ctx, filter).Decode(&operator); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrOperatorNotFound
		}
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	return &operator, nil
}
