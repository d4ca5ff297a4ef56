package domain

import (
	"fmt"

	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/beka-birhanu/vinom-search/search"
)

// EpisodeSpec describes a single episode. When Layout is set the grid is
// parsed from it and Dim, Density and TerrainWeights are ignored.
type EpisodeSpec struct {
	Dim            int                       `json:"dim"`
	Density        float64                   `json:"density"`
	StepBudget     int                       `json:"step_budget"`
	Strategy       search.Strategy           `json:"strategy"`
	Rates          search.FalseNegativeRates `json:"rates"`
	TerrainWeights [3]float64                `json:"terrain_weights"`
	Seed           int64                     `json:"seed"`
	Start          maze.CellPosition         `json:"start"`
	Layout         string                    `json:"layout,omitempty"`
}

// Validate checks the parameters that do not depend on the grid. A
// non-positive maxSteps leaves the step budget uncapped.
func (s EpisodeSpec) Validate(maxDim, maxSteps int) error {
	if s.Layout == "" && (s.Dim < 2 || s.Dim > maxDim) {
		return fmt.Errorf("%w: dim %d not in [2, %d]", ErrInvalidExperiment, s.Dim, maxDim)
	}
	if s.StepBudget <= 0 {
		return fmt.Errorf("%w: step budget must be positive", ErrInvalidExperiment)
	}
	if maxSteps > 0 && s.StepBudget > maxSteps {
		return fmt.Errorf("%w: step budget %d exceeds %d", ErrInvalidExperiment, s.StepBudget, maxSteps)
	}
	if _, err := search.PolicyFor(s.Strategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExperiment, err)
	}
	if err := s.Rates.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExperiment, err)
	}
	return nil
}

// Episode is a finished episode with the final knowledge grid rendered and
// the trajectory overlaid.
type Episode struct {
	Spec   EpisodeSpec   `json:"spec"`
	Result search.Result `json:"result"`
	Grid   string        `json:"grid"`
}
