package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/logger"
	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/beka-birhanu/vinom-search/search"
	"github.com/sirupsen/logrus"
)

// EpisodeService runs single episodes on demand.
type EpisodeService struct {
	maxDim   int
	maxSteps int
	colors   bool
	logger   logrus.FieldLogger
}

// NewEpisodeService creates an EpisodeService refusing grids, generated or
// parsed, larger than maxDim.
func NewEpisodeService(maxDim int, log logrus.FieldLogger) *EpisodeService {
	if log == nil {
		log = logger.Discard()
	}
	return &EpisodeService{maxDim: maxDim, logger: log}
}

// MaxSteps refuses episodes asking for more than n steps; zero disables the cap.
func (s *EpisodeService) MaxSteps(n int) *EpisodeService {
	s.maxSteps = n
	return s
}

// Colored makes rendered grids use ANSI colours.
func (s *EpisodeService) Colored(on bool) *EpisodeService {
	s.colors = on
	return s
}

// RunEpisode builds the ground truth for spec and searches it. A zero seed
// is replaced by a time-based one, which is reported back in the episode.
// ctx is checked before every step of the search.
func (s *EpisodeService) RunEpisode(ctx context.Context, spec dmn.EpisodeSpec) (*dmn.Episode, error) {
	if err := spec.Validate(s.maxDim, s.maxSteps); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Seed == 0 {
		spec.Seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(spec.Seed))

	world, err := buildWorld(spec, rng)
	if err != nil {
		return nil, err
	}
	if world.Dim() > s.maxDim {
		return nil, fmt.Errorf("%w: layout dim %d exceeds %d", dmn.ErrInvalidExperiment, world.Dim(), s.maxDim)
	}

	agent, err := search.NewAgent(search.Config{
		World:      world,
		Start:      spec.Start,
		Rates:      spec.Rates,
		Strategy:   spec.Strategy,
		StepBudget: spec.StepBudget,
		Rand:       rng,
		Logger:     s.logger,
	})
	if err != nil {
		return nil, err
	}

	result, err := agent.SolveContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("solving episode: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"strategy": spec.Strategy.String(),
		"status":   result.Status.String(),
		"steps":    result.Steps,
	}).Info("episode finished")

	return &dmn.Episode{
		Spec:   spec,
		Result: result,
		Grid:   maze.Render(world, maze.RenderOptions{Colors: s.colors, Path: result.Trajectory, Agent: &result.FinalPosition}),
	}, nil
}

func buildWorld(spec dmn.EpisodeSpec, rng *rand.Rand) (*maze.Grid, error) {
	if spec.Layout != "" {
		return maze.Parse(spec.Layout)
	}
	return maze.Generate(maze.GeneratorConfig{
		Dim:            spec.Dim,
		Density:        spec.Density,
		Start:          spec.Start,
		TerrainWeights: spec.TerrainWeights,
	}, rng)
}
