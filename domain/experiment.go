package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/beka-birhanu/vinom-search/search"
	"github.com/google/uuid"
)

const (
	maxExperimentDim    = 512
	maxExperimentTrials = 10000
)

var (
	ErrExperimentNotFound = errors.New("experiment not found")
	ErrInvalidExperiment  = errors.New("invalid experiment")
)

// ExperimentStatus is the lifecycle state of an experiment.
type ExperimentStatus string

const (
	ExperimentRunning   ExperimentStatus = "running"
	ExperimentCompleted ExperimentStatus = "completed"
	ExperimentFailed    ExperimentStatus = "failed"
	ExperimentCancelled ExperimentStatus = "cancelled"
)

// ExperimentSpec describes a batch of episodes: Trials ground-truth grids are
// generated, and every strategy in Strategies searches its own copy of each grid.
type ExperimentSpec struct {
	Name           string                    `json:"name" yaml:"name" bson:"name"`
	Dim            int                       `json:"dim" yaml:"dim" bson:"dim"`
	Density        float64                   `json:"density" yaml:"density" bson:"density"`
	Trials         int                       `json:"trials" yaml:"trials" bson:"trials"`
	StepBudget     int                       `json:"step_budget" yaml:"step_budget" bson:"stepBudget"`
	Strategies     []search.Strategy         `json:"strategies" yaml:"strategies" bson:"strategies"`
	Rates          search.FalseNegativeRates `json:"rates" yaml:"rates" bson:"rates"`
	TerrainWeights [3]float64                `json:"terrain_weights" yaml:"terrain_weights" bson:"terrainWeights"`
	Seed           int64                     `json:"seed" yaml:"seed" bson:"seed"`
}

// Validate checks the spec before any grid is generated.
func (s ExperimentSpec) Validate() error {
	if s.Dim < 2 || s.Dim > maxExperimentDim {
		return fmt.Errorf("%w: dim %d not in [2, %d]", ErrInvalidExperiment, s.Dim, maxExperimentDim)
	}
	if s.Density < 0 || s.Density >= 1 {
		return fmt.Errorf("%w: %w: got %v", ErrInvalidExperiment, maze.ErrInvalidDensity, s.Density)
	}
	if s.Trials <= 0 || s.Trials > maxExperimentTrials {
		return fmt.Errorf("%w: trials %d not in [1, %d]", ErrInvalidExperiment, s.Trials, maxExperimentTrials)
	}
	if s.StepBudget <= 0 {
		return fmt.Errorf("%w: step budget must be positive", ErrInvalidExperiment)
	}
	if len(s.Strategies) == 0 {
		return fmt.Errorf("%w: no strategies", ErrInvalidExperiment)
	}
	seen := make(map[search.Strategy]bool, len(s.Strategies))
	for _, st := range s.Strategies {
		if _, err := search.PolicyFor(st); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidExperiment, err)
		}
		if seen[st] {
			return fmt.Errorf("%w: strategy %s listed twice", ErrInvalidExperiment, st)
		}
		seen[st] = true
	}
	if err := s.Rates.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExperiment, err)
	}
	return nil
}

// Trial is one episode of an experiment.
type Trial struct {
	Index  int           `json:"index" bson:"index"`
	Seed   int64         `json:"seed" bson:"seed"`
	Result search.Result `json:"result" bson:"result"`
}

// SummaryRow aggregates the trials of one strategy, optionally restricted to
// the terrain under the target. Terrain is "All" for the unrestricted row.
type SummaryRow struct {
	Strategy         string  `json:"strategy" bson:"strategy"`
	Terrain          string  `json:"terrain" bson:"terrain"`
	Trials           int     `json:"trials" bson:"trials"`
	Found            int     `json:"found" bson:"found"`
	MeanSteps        float64 `json:"mean_steps" bson:"meanSteps"`
	MeanTrajectory   float64 `json:"mean_trajectory" bson:"meanTrajectory"`
	MeanExaminations float64 `json:"mean_examinations" bson:"meanExaminations"`
	MeanReplans      float64 `json:"mean_replans" bson:"meanReplans"`
}

// Experiment is a submitted spec together with its outcome.
type Experiment struct {
	ID         uuid.UUID        `json:"id" bson:"_id"`
	Spec       ExperimentSpec   `json:"spec" bson:"spec"`
	Status     ExperimentStatus `json:"status" bson:"status"`
	Error      string           `json:"error,omitempty" bson:"error,omitempty"`
	Trials     []Trial          `json:"trials,omitempty" bson:"trials"`
	Summary    []SummaryRow     `json:"summary" bson:"summary"`
	CreatedAt  time.Time        `json:"created_at" bson:"createdAt"`
	FinishedAt time.Time        `json:"finished_at,omitempty" bson:"finishedAt"`
}

// NewExperiment validates spec and wraps it in a running experiment.
func NewExperiment(spec ExperimentSpec) (*Experiment, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Experiment{
		ID:        uuid.New(),
		Spec:      spec,
		Status:    ExperimentRunning,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Finish records the terminal state of the experiment.
func (e *Experiment) Finish(trials []Trial, summary []SummaryRow, err error) {
	e.Trials = trials
	e.Summary = summary
	e.FinishedAt = time.Now().UTC()
	switch {
	case err == nil:
		e.Status = ExperimentCompleted
	case errors.Is(err, context.Canceled):
		e.Status = ExperimentCancelled
		e.Error = err.Error()
	default:
		e.Status = ExperimentFailed
		e.Error = err.Error()
	}
}

// Done reports whether the experiment reached a terminal state.
func (e *Experiment) Done() bool {
	return e.Status != ExperimentRunning
}
