package service

import (
	"context"
	"fmt"
	"math/rand"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/logger"
	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/beka-birhanu/vinom-search/search"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers = 4
)

// RunnerConfig configures an ExperimentRunner.
type RunnerConfig struct {
	Workers int                // Trials searched concurrently; defaults to 4
	Logger  logrus.FieldLogger // Progress log; discarded when nil
}

// ExperimentRunner executes the episodes of an experiment on a bounded pool
// of goroutines. Each trial generates one ground-truth grid and every
// strategy searches its own clone of it, so strategies are compared on
// identical layouts and never share mutable state.
type ExperimentRunner struct {
	workers int
	logger  logrus.FieldLogger
}

// NewExperimentRunner creates a runner.
func NewExperimentRunner(c RunnerConfig) *ExperimentRunner {
	workers := c.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	var log logrus.FieldLogger = logger.Discard()
	if c.Logger != nil {
		log = c.Logger
	}
	return &ExperimentRunner{workers: workers, logger: log}
}

// Run executes every trial of spec. Trials are returned ordered by trial
// index, then by the order of spec.Strategies, regardless of scheduling.
// The first failing episode cancels the rest.
func (r *ExperimentRunner) Run(ctx context.Context, spec dmn.ExperimentSpec) ([]dmn.Trial, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	strategies := len(spec.Strategies)
	trials := make([]dmn.Trial, spec.Trials*strategies)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for t := 0; t < spec.Trials; t++ {
		if gctx.Err() != nil {
			break
		}
		t := t
		g.Go(func() error {
			seed := trialSeed(spec.Seed, t)
			world, err := maze.Generate(maze.GeneratorConfig{
				Dim:            spec.Dim,
				Density:        spec.Density,
				TerrainWeights: spec.TerrainWeights,
			}, rand.New(rand.NewSource(seed)))
			if err != nil {
				return fmt.Errorf("trial %d: %w", t, err)
			}

			for s, strategy := range spec.Strategies {
				if err := gctx.Err(); err != nil {
					return err
				}
				agent, err := search.NewAgent(search.Config{
					World:      world.Clone(),
					Rates:      spec.Rates,
					Strategy:   strategy,
					StepBudget: spec.StepBudget,
					Rand:       rand.New(rand.NewSource(episodeSeed(seed, s))),
					Logger:     r.logger.WithField("trial", t),
				})
				if err != nil {
					return fmt.Errorf("trial %d %s: %w", t, strategy, err)
				}
				result, err := agent.SolveContext(gctx)
				if err != nil {
					return fmt.Errorf("trial %d %s: %w", t, strategy, err)
				}
				trials[t*strategies+s] = dmn.Trial{Index: t, Seed: seed, Result: result}
			}

			r.logger.WithField("trial", t).Debug("trial finished")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return trials, nil
}

func trialSeed(base int64, trial int) int64 {
	return base*1_000_003 + int64(trial)
}

func episodeSeed(trial int64, strategy int) int64 {
	return trial*31 + int64(strategy) + 1
}
