package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/google/uuid"
)

// ExperimentManager runs experiments in the background and reports on them.
type ExperimentManager interface {
	// Start validates spec and launches it, returning its ID immediately.
	Start(spec dmn.ExperimentSpec) (uuid.UUID, error)

	// Experiment returns a running or finished experiment.
	Experiment(ctx context.Context, id uuid.UUID) (*dmn.Experiment, error)

	// Recent lists the latest stored experiments without their trials.
	Recent(ctx context.Context, limit int64) ([]*dmn.Experiment, error)
}

// EpisodeRunner runs a single episode synchronously.
type EpisodeRunner interface {
	RunEpisode(ctx context.Context, spec dmn.EpisodeSpec) (*dmn.Episode, error)
}
