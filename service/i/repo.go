package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/google/uuid"
)

// ExperimentRepo defines the interface for experiment persistence operations.
type ExperimentRepo interface {
	// Save inserts or replaces an experiment.
	Save(ctx context.Context, e *dmn.Experiment) error

	// ByID retrieves an experiment by its ID.
	// Returns dmn.ErrExperimentNotFound if there is no such experiment.
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Experiment, error)

	// Recent lists the latest experiments without their trials, newest first.
	Recent(ctx context.Context, limit int64) ([]*dmn.Experiment, error)
}

// OperatorRepo defines the interface for operator persistence operations.
type OperatorRepo interface {
	// Save inserts or updates an operator.
	// Returns dmn.ErrOperatorConflict when the name is taken.
	Save(ctx context.Context, o *dmn.Operator) error

	// ByName retrieves an operator by name.
	// Returns dmn.ErrOperatorNotFound if there is no such operator.
	ByName(ctx context.Context, name string) (*dmn.Operator, error)
}
