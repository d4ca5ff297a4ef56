package search

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/beka-birhanu/vinom-search/maze"
)

var (
	ErrInvalidRate     = errors.New("false-negative rate must be in [0, 1]")
	ErrUnknownTerrain  = errors.New("terrain has no false-negative rate")
	ErrExamineObstacle = errors.New("cannot examine a blocked cell")
)

// FalseNegativeRates holds the probability that examining the target fails, per terrain.
type FalseNegativeRates struct {
	Flat   float64 `yaml:"flat" json:"flat" bson:"flat"`
	Hilly  float64 `yaml:"hilly" json:"hilly" bson:"hilly"`
	Forest float64 `yaml:"forest" json:"forest" bson:"forest"`
}

// DefaultRates are the rates used by the reference experiments.
func DefaultRates() FalseNegativeRates {
	return FalseNegativeRates{Flat: 0.2, Hilly: 0.5, Forest: 0.8}
}

// Validate checks that every rate is a probability.
func (r FalseNegativeRates) Validate() error {
	for _, v := range []float64{r.Flat, r.Hilly, r.Forest} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: got %v", ErrInvalidRate, v)
		}
	}
	return nil
}

// Rate returns the false-negative rate of an open terrain.
func (r FalseNegativeRates) Rate(t maze.Terrain) (float64, error) {
	switch t {
	case maze.TerrainFlat:
		return r.Flat, nil
	case maze.TerrainHilly:
		return r.Hilly, nil
	case maze.TerrainForest:
		return r.Forest, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownTerrain, t)
	}
}

// Confidence returns the detection probability of t relative to the mean
// detection probability of all terrains: (1-fnr_t) / mean(1-fnr).
// When no terrain can ever detect the target the factor is 1.
func (r FalseNegativeRates) Confidence(t maze.Terrain) (float64, error) {
	rate, err := r.Rate(t)
	if err != nil {
		return 0, err
	}
	mean := ((1 - r.Flat) + (1 - r.Hilly) + (1 - r.Forest)) / 3
	if mean == 0 {
		return 1, nil
	}
	return (1 - rate) / mean, nil
}

// Sensor answers the agent's questions about the ground truth.
type Sensor struct {
	world *maze.Grid
	rates FalseNegativeRates
	rng   *rand.Rand
}

// NewSensor creates a sensor over world.
func NewSensor(world *maze.Grid, rates FalseNegativeRates, rng *rand.Rand) (*Sensor, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return &Sensor{world: world, rates: rates, rng: rng}, nil
}

// Move reveals whether pos is blocked, and its terrain when it is not.
// The target is indistinguishable from an empty cell when moving.
func (s *Sensor) Move(pos maze.CellPosition) (maze.Status, maze.Terrain, error) {
	c, err := s.world.Cell(pos)
	if err != nil {
		return maze.StatusUnconfirmed, maze.TerrainUnknown, err
	}
	if c.IsBlocked() {
		return maze.StatusBlocked, maze.TerrainBlocked, nil
	}
	return maze.StatusEmpty, c.Terrain, nil
}

// Examine searches pos for the target. It succeeds only when the target is
// there and a uniform draw exceeds the terrain's false-negative rate.
func (s *Sensor) Examine(pos maze.CellPosition) (bool, error) {
	c, err := s.world.Cell(pos)
	if err != nil {
		return false, err
	}
	if c.IsBlocked() {
		return false, fmt.Errorf("%w: %s", ErrExamineObstacle, pos)
	}
	rate, err := s.rates.Rate(c.Terrain)
	if err != nil {
		return false, err
	}
	if !c.IsTarget() {
		return false, nil
	}
	return s.rng.Float64() > rate, nil
}

// NearTarget reports whether the target occupies one of the 8 neighbours of pos.
func (s *Sensor) NearTarget(pos maze.CellPosition) bool {
	for _, n := range s.world.AllNeighbors(pos) {
		if c, err := s.world.Cell(n); err == nil && c.IsTarget() {
			return true
		}
	}
	return false
}

// Rates returns the configured false-negative rates.
func (s *Sensor) Rates() FalseNegativeRates {
	return s.rates
}
