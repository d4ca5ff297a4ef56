/*
Package search implements an agent hunting a hidden target on a partially
known grid.

Each step of an episode selects the nearest cell of maximum belief, plans an
A* route to it over the agent's knowledge grid, walks the route while the
ground truth reveals obstacles, and examines the last cell. Observations flow
back into the knowledge grid and the belief until the target is found or the
step budget runs out.
*/
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/sirupsen/logrus"
)

const (
	defaultNeighborhoodRadius = 1
)

var (
	ErrInvalidConfig = errors.New("invalid search configuration")
	ErrNoProgress    = errors.New("unreachable goal did not shrink the candidate set")
)

// Status is the terminal status of an episode.
type Status int

const (
	StatusNotFound Status = iota // step budget exhausted
	StatusFound                  // target confirmed by an examine
)

func (s Status) String() string {
	if s == StatusFound {
		return "found"
	}
	return "not-found-in-budget"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	switch name {
	case StatusFound.String():
		return StatusFound, nil
	case StatusNotFound.String():
		return StatusNotFound, nil
	}
	return StatusNotFound, fmt.Errorf("unknown status %q", name)
}

// Config describes one episode.
type Config struct {
	World              *maze.Grid         // Ground truth; only the environment hook mutates it
	Start              maze.CellPosition  // Start cell of the agent
	Rates              FalseNegativeRates // Examine false-negative rates per terrain
	Strategy           Strategy           // Agent variant
	StepBudget         int                // Maximum number of steps
	NeighborhoodRadius int                // Half-width of the partial-sensing window; defaults to 1
	Prior              []float64          // Optional initial belief weights, row-major
	Rand               *rand.Rand         // Random source; seeded from the clock when nil
	Logger             logrus.FieldLogger // Debug trace of the episode; discarded when nil
}

// Result summarises an episode.
type Result struct {
	Status                Status              `json:"status" bson:"status"`
	Strategy              Strategy            `json:"strategy" bson:"strategy"`
	Steps                 int                 `json:"steps" bson:"steps"`
	Examinations          int                 `json:"examinations" bson:"examinations"`
	ExaminationsByTerrain map[string]int      `json:"examinations_by_terrain" bson:"examinationsByTerrain"`
	Trajectory            []maze.CellPosition `json:"trajectory" bson:"-"`
	TrajectoryLength      int                 `json:"trajectory_length" bson:"trajectoryLength"`
	Replans               int                 `json:"replans" bson:"replans"`
	UnreachableGoals      int                 `json:"unreachable_goals" bson:"unreachableGoals"`
	TargetTerrain         maze.Terrain        `json:"target_terrain" bson:"targetTerrain"`
	FinalTarget           maze.CellPosition   `json:"final_target" bson:"finalTarget"`
	FinalPosition         maze.CellPosition   `json:"final_position" bson:"finalPosition"`
}

// Found reports whether the target was confirmed.
func (r Result) Found() bool {
	return r.Status == StatusFound
}

// stepKind classifies how a step ended.
type stepKind int

const (
	stepBlocked stepKind = iota
	stepAbandoned
	stepRedirected
	stepExamineFailed
	stepFound
)

func (k stepKind) String() string {
	return [...]string{"blocked", "abandoned", "redirected", "examine failed", "found"}[k]
}

// Agent runs one search episode. It owns its knowledge grid and belief and
// must not be shared between goroutines.
type Agent struct {
	world     *maze.Grid
	knowledge *maze.Grid
	belief    *Belief
	sensor    *Sensor
	policy    Policy
	rng       *rand.Rand
	log       logrus.FieldLogger
	radius    int
	budget    int

	pos     maze.CellPosition
	pending *maze.CellPosition
	result  Result
}

// NewAgent validates c and prepares a fresh episode.
func NewAgent(c Config) (*Agent, error) {
	if c.World == nil {
		return nil, fmt.Errorf("%w: no world", ErrInvalidConfig)
	}
	if c.StepBudget <= 0 {
		return nil, fmt.Errorf("%w: step budget must be positive, got %d", ErrInvalidConfig, c.StepBudget)
	}
	if c.NeighborhoodRadius < 0 {
		return nil, fmt.Errorf("%w: negative neighborhood radius", ErrInvalidConfig)
	}

	start, err := c.World.Cell(c.Start)
	if err != nil {
		return nil, err
	}
	if start.IsBlocked() {
		return nil, fmt.Errorf("%w: start %s is blocked", ErrInvalidConfig, c.Start)
	}
	target, err := c.World.Target()
	if err != nil {
		return nil, err
	}
	targetCell, _ := c.World.Cell(target)

	policy, err := PolicyFor(c.Strategy)
	if err != nil {
		return nil, err
	}

	rng := c.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	sensor, err := NewSensor(c.World, c.Rates, rng)
	if err != nil {
		return nil, err
	}

	knowledge, err := maze.NewKnowledge(c.World.Dim())
	if err != nil {
		return nil, err
	}

	var belief *Belief
	if c.Prior != nil {
		belief, err = NewBeliefWithPrior(c.World.Dim(), policy.Discipline, c.Prior)
	} else {
		belief, err = NewBelief(c.World.Dim(), policy.Discipline)
	}
	if err != nil {
		return nil, err
	}

	logger := c.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	radius := c.NeighborhoodRadius
	if radius == 0 {
		radius = defaultNeighborhoodRadius
	}

	return &Agent{
		world:     c.World,
		knowledge: knowledge,
		belief:    belief,
		sensor:    sensor,
		policy:    policy,
		rng:       rng,
		log:       logger.WithField("strategy", c.Strategy.String()),
		radius:    radius,
		budget:    c.StepBudget,
		pos:       c.Start,
		result: Result{
			Strategy:              c.Strategy,
			ExaminationsByTerrain: make(map[string]int),
			TargetTerrain:         targetCell.Terrain,
		},
	}, nil
}

// Knowledge returns the agent's knowledge grid.
func (a *Agent) Knowledge() *maze.Grid {
	return a.knowledge
}

// Belief returns the agent's belief.
func (a *Agent) Belief() *Belief {
	return a.belief
}

// Position returns the cell the agent stands on.
func (a *Agent) Position() maze.CellPosition {
	return a.pos
}

// Solve runs the episode to completion. Running out of steps is not an
// error; logic errors (corrupted belief, no progress on unreachable goals)
// are returned together with the partial result.
func (a *Agent) Solve() (Result, error) {
	return a.SolveContext(context.Background())
}

// SolveContext is Solve with cancellation checked before every step. A
// cancelled episode returns ctx.Err() with the partial result.
func (a *Agent) SolveContext(ctx context.Context) (Result, error) {
	err := a.run(ctx)
	a.result.FinalPosition = a.pos
	a.result.TrajectoryLength = len(a.result.Trajectory)
	if target, terr := a.world.Target(); terr == nil {
		a.result.FinalTarget = target
	}
	return a.result, err
}

func (a *Agent) run(ctx context.Context) error {
	for a.result.Steps < a.budget {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.result.Steps++

		route, err := a.plan()
		if err != nil {
			return err
		}

		kind, err := a.execute(route)
		if err != nil {
			return err
		}
		a.log.WithFields(logrus.Fields{
			"step":     a.result.Steps,
			"outcome":  kind.String(),
			"position": a.pos.String(),
		}).Debug("step finished")

		if kind == stepFound {
			a.result.Status = StatusFound
			return nil
		}

		if err := a.stepEnvironment(); err != nil {
			return err
		}
	}

	a.result.Status = StatusNotFound
	return nil
}

// plan selects goals until one is reachable under current knowledge. Each
// unreachable goal is recorded as blocked, which zeroes its belief and so
// strictly shrinks the set of candidates.
func (a *Agent) plan() (Route, error) {
	for {
		goal, err := a.nextGoal()
		if err != nil {
			return nil, fmt.Errorf("selecting target from %s: %w", a.pos, err)
		}

		route, ok, err := FindRoute(a.knowledge, a.pos, goal)
		if err != nil {
			return nil, err
		}
		if ok {
			a.log.WithFields(logrus.Fields{
				"from": a.pos.String(),
				"goal": goal.String(),
				"hops": len(route) - 1,
			}).Debug("route planned")
			return route, nil
		}

		if err := a.markUnreachable(goal); err != nil {
			return nil, err
		}
	}
}

func (a *Agent) nextGoal() (maze.CellPosition, error) {
	if a.pending != nil {
		goal := *a.pending
		a.pending = nil
		if a.belief.At(goal) > 0 {
			return goal, nil
		}
	}
	return SelectTarget(a.belief, a.pos, a.rng)
}

func (a *Agent) markUnreachable(goal maze.CellPosition) error {
	before := a.belief.Positive()

	if err := a.knowledge.MarkBlocked(goal); err != nil {
		return fmt.Errorf("marking unreachable goal %s: %w", goal, err)
	}
	if err := a.belief.Update(goal, OutcomeBlocked, 0); err != nil {
		return fmt.Errorf("marking unreachable goal %s: %w", goal, err)
	}

	if after := a.belief.Positive(); after >= before {
		return fmt.Errorf("%w: %d candidates before, %d after %s", ErrNoProgress, before, after, goal)
	}

	a.result.UnreachableGoals++
	a.log.WithField("goal", goal.String()).Debug("goal unreachable, marked blocked")
	return a.stepEnvironment()
}

// execute walks route cell by cell and classifies the outcome.
func (a *Agent) execute(route Route) (stepKind, error) {
	terminal := route.Terminal()
	terminalBelief := a.belief.At(terminal)

	for i, pos := range route {
		cell, err := a.knowledge.Cell(pos)
		if err != nil {
			return 0, err
		}

		revealed := !cell.Visited
		if revealed {
			cell.Visited = true
			blocked, err := a.reveal(pos)
			if err != nil {
				return 0, err
			}
			if blocked {
				if i == 0 {
					return 0, fmt.Errorf("%w: agent stands on blocked cell %s", ErrInvalidConfig, pos)
				}
				a.result.Replans++
				a.log.WithField("cell", pos.String()).Debug("blocked cell encountered")
				return stepBlocked, nil
			}
		}

		if i > 0 {
			a.pos = pos
			a.result.Trajectory = append(a.result.Trajectory, pos)
		}

		if revealed && i < len(route)-1 && a.policy.Abandon != nil &&
			a.policy.Abandon(a.belief.At(pos), terminalBelief) {
			a.result.Replans++
			a.log.WithFields(logrus.Fields{
				"cell":     pos.String(),
				"terminal": terminal.String(),
			}).Debug("route abandoned for a better cell")
			return stepAbandoned, nil
		}
	}

	return a.arrive(terminal)
}

// reveal senses pos on first entry and records the observation.
func (a *Agent) reveal(pos maze.CellPosition) (blocked bool, err error) {
	status, terrain, err := a.sensor.Move(pos)
	if err != nil {
		return false, err
	}

	if status == maze.StatusBlocked {
		if err := a.knowledge.MarkBlocked(pos); err != nil {
			return false, err
		}
		return true, a.belief.Update(pos, OutcomeBlocked, 0)
	}

	if err := a.knowledge.MarkEmpty(pos, terrain); err != nil {
		return false, err
	}
	if err := a.belief.Update(pos, OutcomeEmpty, 0); err != nil {
		return false, err
	}
	if a.policy.Reweight {
		factor, err := a.sensor.Rates().Confidence(terrain)
		if err != nil {
			return false, err
		}
		if err := a.belief.Reweight(pos, factor); err != nil {
			return false, err
		}
	}
	return false, nil
}

// arrive handles the terminal cell of a fully walked route.
func (a *Agent) arrive(terminal maze.CellPosition) (stepKind, error) {
	if a.policy.PartialSensing && a.sensor.NearTarget(terminal) {
		if goal, ok := a.localizedGoal(terminal); ok {
			a.pending = &goal
			a.log.WithField("goal", goal.String()).Debug("target sensed nearby")
			return stepRedirected, nil
		}
	}

	cell, err := a.knowledge.Cell(terminal)
	if err != nil {
		return 0, err
	}
	rate, err := a.sensor.Rates().Rate(cell.Terrain)
	if err != nil {
		return 0, err
	}

	attempts := a.policy.ExamineAttempts(cell.Terrain)
	for n := 0; n < attempts; n++ {
		a.result.Examinations++
		a.result.ExaminationsByTerrain[cell.Terrain.String()]++

		found, err := a.sensor.Examine(terminal)
		if err != nil {
			return 0, err
		}
		if found {
			return stepFound, nil
		}
	}

	if err := a.belief.Update(terminal, OutcomeExamine, rate); err != nil {
		return 0, err
	}
	return stepExamineFailed, nil
}

// localizedGoal picks the best cell of a scratch belief restricted to the
// window around center, excluding center itself.
func (a *Agent) localizedGoal(center maze.CellPosition) (maze.CellPosition, bool) {
	scratch := a.belief.Clone()
	scratch.Mask(center)

	dim := scratch.Dim()
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			if abs(row-center.Row) > a.radius || abs(col-center.Col) > a.radius {
				scratch.Mask(maze.CellPosition{Row: row, Col: col})
			}
		}
	}

	goal, err := SelectTarget(scratch, center, a.rng)
	if err != nil {
		return maze.CellPosition{}, false
	}
	return goal, true
}

func (a *Agent) stepEnvironment() error {
	if a.policy.Environment == nil {
		return nil
	}
	moved, err := a.policy.Environment(a.world, a.rng)
	if err != nil {
		return fmt.Errorf("moving target: %w", err)
	}
	a.log.WithField("target", moved.String()).Debug("target moved")
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
