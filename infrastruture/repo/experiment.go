package repo

import (
	"context"
	"errors"
	"fmt"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExperimentRepo handles the persistence of experiments.
type ExperimentRepo struct {
	collection *mongo.Collection
}

// NewExperimentRepo creates a new ExperimentRepo with the given MongoDB client, database name, and collection name.
func NewExperimentRepo(client *mongo.Client, dbName, collectionName string) *ExperimentRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &ExperimentRepo{
		collection: collection,
	}
}

// Save inserts the experiment or replaces the stored version.
func (r *ExperimentRepo) Save(ctx context.Context, e *dmn.Experiment) error {
	filter := bson.M{"_id": e.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, e, opts); err != nil {
		return fmt.Errorf("saving experiment %s: %w", e.ID, err)
	}
	return nil
}

// ByID retrieves an experiment by its ID.
func (r *ExperimentRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Experiment, error) {
	filter := bson.M{"_id": id}
	var e dmn.Experiment
	if err := r.collection.FindOne(ctx, filter).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrExperimentNotFound
		}
		return nil, fmt.Errorf("loading experiment %s: %w", id, err)
	}
	return &e, nil
}

// Recent lists the latest experiments, newest first, without their trials.
func (r *ExperimentRepo) Recent(ctx context.Context, limit int64) ([]*dmn.Experiment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"trials": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing experiments: %w", err)
	}
	defer cursor.Close(ctx)

	var experiments []*dmn.Experiment
	if err := cursor.All(ctx, &experiments); err != nil {
		return nil, fmt.Errorf("decoding experiments: %w", err)
	}
	return experiments, nil
}
