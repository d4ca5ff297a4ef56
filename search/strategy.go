package search

import (
	"fmt"
	"math/rand"

	"github.com/beka-birhanu/vinom-search/maze"
)

// Strategy names one of the agent variants.
type Strategy int

const (
	// StrategyBaseline keeps a normalized posterior over a static target.
	StrategyBaseline Strategy = iota
	// StrategyConfidence weighs cells by terrain detectability and abandons
	// routes when a better cell shows up on the way.
	StrategyConfidence
	// StrategyMovingTarget chases a target that drifts every step, using
	// neighbour sensing and repeated examines.
	StrategyMovingTarget
)

var strategyNames = map[Strategy]string{
	StrategyBaseline:     "baseline",
	StrategyConfidence:   "confidence",
	StrategyMovingTarget: "moving-target",
}

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{StrategyBaseline, StrategyConfidence, StrategyMovingTarget}
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStrategy resolves a strategy by name.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, name)
}

// AbandonFunc decides, for a freshly revealed cell, whether the rest of the
// route should be dropped. terminal is the belief of the route's last cell
// when the route was planned.
type AbandonFunc func(revealed, terminal float64) bool

// EnvironmentHook mutates the ground truth between steps and returns the new
// target position.
type EnvironmentHook func(world *maze.Grid, rng *rand.Rand) (maze.CellPosition, error)

// Policy is the set of knobs the control loop consults. Strategies differ
// only in their Policy.
type Policy struct {
	Discipline      Discipline
	Reweight        bool                   // scale revealed cells by terrain confidence
	Abandon         AbandonFunc            // nil never abandons
	PartialSensing  bool                   // sense the 8 neighbours before examining
	ExamineAttempts func(maze.Terrain) int // examines per arrival
	Environment     EnvironmentHook        // nil keeps the target still
}

// PolicyFor returns the policy of s.
func PolicyFor(s Strategy) (Policy, error) {
	switch s {
	case StrategyBaseline:
		return Policy{
			Discipline:      Normalized,
			ExamineAttempts: singleExamine,
		}, nil
	case StrategyConfidence:
		return Policy{
			Discipline:      Confidence,
			Reweight:        true,
			Abandon:         abandonWhenAtLeastTerminal,
			ExamineAttempts: singleExamine,
		}, nil
	case StrategyMovingTarget:
		return Policy{
			Discipline:      Confidence,
			Reweight:        true,
			Abandon:         abandonWhenAtLeastTerminal,
			PartialSensing:  true,
			ExamineAttempts: terrainExamines,
			Environment:     driftTarget,
		}, nil
	default:
		return Policy{}, fmt.Errorf("%w: unknown strategy %d", ErrInvalidConfig, int(s))
	}
}

func singleExamine(maze.Terrain) int {
	return 1
}

// terrainExamines makes harder terrain worth more tries.
func terrainExamines(t maze.Terrain) int {
	switch t {
	case maze.TerrainFlat:
		return 2
	case maze.TerrainHilly:
		return 3
	case maze.TerrainForest:
		return 4
	default:
		return 1
	}
}

func abandonWhenAtLeastTerminal(revealed, terminal float64) bool {
	return revealed > terminal || Close(revealed, terminal)
}

func driftTarget(world *maze.Grid, rng *rand.Rand) (maze.CellPosition, error) {
	return world.MoveTarget(rng)
}
