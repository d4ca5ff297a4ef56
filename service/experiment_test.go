package service

import (
	"context"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/beka-birhanu/vinom-search/search"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallSpec() dmn.ExperimentSpec {
	return dmn.ExperimentSpec{
		Name:       "small",
		Dim:        8,
		Density:    0.2,
		Trials:     6,
		StepBudget: 2000,
		Strategies: search.Strategies(),
		Rates:      search.DefaultRates(),
		Seed:       5,
	}
}

func TestExperimentRunner(t *testing.T) {
	t.Run("results are ordered and reproducible", func(t *testing.T) {
		spec := smallSpec()

		serial, err := NewExperimentRunner(RunnerConfig{Workers: 1}).Run(context.Background(), spec)
		require.NoError(t, err)
		parallel, err := NewExperimentRunner(RunnerConfig{Workers: 4}).Run(context.Background(), spec)
		require.NoError(t, err)

		require.Len(t, serial, spec.Trials*len(spec.Strategies))
		for idx, trial := range serial {
			assert.Equal(t, idx/len(spec.Strategies), trial.Index)
			assert.Equal(t, spec.Strategies[idx%len(spec.Strategies)], trial.Result.Strategy)
		}
		if diff := cmp.Diff(serial, parallel); diff != "" {
			t.Errorf("parallel run differs from serial run (-serial +parallel):\n%s", diff)
		}
	})

	t.Run("strategies share the layout of a trial", func(t *testing.T) {
		spec := smallSpec()
		spec.Strategies = []search.Strategy{search.StrategyBaseline, search.StrategyConfidence}

		trials, err := NewExperimentRunner(RunnerConfig{}).Run(context.Background(), spec)
		require.NoError(t, err)
		for idx := 0; idx < len(trials); idx += 2 {
			assert.Equal(t, trials[idx].Seed, trials[idx+1].Seed)
			assert.Equal(t, trials[idx].Result.FinalTarget, trials[idx+1].Result.FinalTarget)
			assert.Equal(t, trials[idx].Result.TargetTerrain, trials[idx+1].Result.TargetTerrain)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewExperimentRunner(RunnerConfig{}).Run(ctx, smallSpec())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid spec", func(t *testing.T) {
		spec := smallSpec()
		spec.Trials = 0
		_, err := NewExperimentRunner(RunnerConfig{}).Run(context.Background(), spec)
		assert.ErrorIs(t, err, dmn.ErrInvalidExperiment)
	})
}

func TestSummarize(t *testing.T) {
	trial := func(s search.Strategy, terrain maze.Terrain, found bool, steps, traj, exams, replans int) dmn.Trial {
		status := search.StatusNotFound
		if found {
			status = search.StatusFound
		}
		return dmn.Trial{Result: search.Result{
			Status:           status,
			Strategy:         s,
			Steps:            steps,
			TrajectoryLength: traj,
			Examinations:     exams,
			Replans:          replans,
			TargetTerrain:    terrain,
		}}
	}

	got := Summarize([]dmn.Trial{
		trial(search.StrategyBaseline, maze.TerrainForest, false, 10, 6, 10, 2),
		trial(search.StrategyConfidence, maze.TerrainFlat, true, 4, 8, 1, 1),
		trial(search.StrategyBaseline, maze.TerrainFlat, true, 2, 4, 2, 0),
	})

	want := []dmn.SummaryRow{
		{Strategy: "baseline", Terrain: "All", Trials: 2, Found: 1, MeanSteps: 6, MeanTrajectory: 5, MeanExaminations: 6, MeanReplans: 1},
		{Strategy: "baseline", Terrain: "Flat", Trials: 1, Found: 1, MeanSteps: 2, MeanTrajectory: 4, MeanExaminations: 2},
		{Strategy: "baseline", Terrain: "Forest", Trials: 1, MeanSteps: 10, MeanTrajectory: 6, MeanExaminations: 10, MeanReplans: 2},
		{Strategy: "confidence", Terrain: "All", Trials: 1, Found: 1, MeanSteps: 4, MeanTrajectory: 8, MeanExaminations: 1, MeanReplans: 1},
		{Strategy: "confidence", Terrain: "Flat", Trials: 1, Found: 1, MeanSteps: 4, MeanTrajectory: 8, MeanExaminations: 1, MeanReplans: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, Summarize(nil))
}

func TestExperimentManager(t *testing.T) {
	t.Run("missing dependencies", func(t *testing.T) {
		_, err := NewExperimentManager(&ManagerConfig{Repo: newMemoryRepo()})
		assert.ErrorIs(t, err, ErrMissingDependency)
		_, err = NewExperimentManager(&ManagerConfig{Runner: NewExperimentRunner(RunnerConfig{})})
		assert.ErrorIs(t, err, ErrMissingDependency)
	})

	t.Run("runs and persists an experiment", func(t *testing.T) {
		repo := newMemoryRepo()
		board := &memoryLeaderboard{}
		m, err := NewExperimentManager(&ManagerConfig{
			Runner:      NewExperimentRunner(RunnerConfig{Workers: 2}),
			Repo:        repo,
			Leaderboard: board,
		})
		require.NoError(t, err)

		spec := smallSpec()
		spec.Strategies = []search.Strategy{search.StrategyBaseline}
		id, err := m.Start(spec)
		require.NoError(t, err)

		m.Wait()

		e, err := m.Experiment(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, dmn.ExperimentCompleted, e.Status)
		assert.Len(t, e.Trials, spec.Trials)
		require.NotEmpty(t, e.Summary)
		assert.Equal(t, "All", e.Summary[0].Terrain)
		assert.Equal(t, 2, repo.saves, "saved when started and when finished")

		found := 0
		for _, trial := range e.Trials {
			if trial.Result.Found() {
				found++
			}
		}
		top, err := board.Top(context.Background(), "baseline", 100)
		require.NoError(t, err)
		assert.Len(t, top, found)
	})

	t.Run("zero seed is replaced", func(t *testing.T) {
		repo := newMemoryRepo()
		m, err := NewExperimentManager(&ManagerConfig{Runner: NewExperimentRunner(RunnerConfig{}), Repo: repo})
		require.NoError(t, err)

		spec := smallSpec()
		spec.Seed = 0
		spec.Trials = 1
		id, err := m.Start(spec)
		require.NoError(t, err)
		m.Wait()

		e, err := m.Experiment(context.Background(), id)
		require.NoError(t, err)
		assert.NotZero(t, e.Spec.Seed)

		recent, err := m.Recent(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, id, recent[0].ID)
	})

	t.Run("stopped experiments are cancelled", func(t *testing.T) {
		repo := newMemoryRepo()
		m, err := NewExperimentManager(&ManagerConfig{
			Runner:  NewExperimentRunner(RunnerConfig{Workers: 1}),
			Repo:    repo,
			Timeout: time.Minute,
		})
		require.NoError(t, err)

		spec := smallSpec()
		spec.Dim = 40
		spec.Trials = 500
		id, err := m.Start(spec)
		require.NoError(t, err)

		m.StopAll()
		m.Wait()

		e, err := m.Experiment(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, dmn.ExperimentCancelled, e.Status)
	})

	t.Run("unknown and invalid experiments", func(t *testing.T) {
		m, err := NewExperimentManager(&ManagerConfig{Runner: NewExperimentRunner(RunnerConfig{}), Repo: newMemoryRepo()})
		require.NoError(t, err)

		_, err = m.Experiment(context.Background(), uuid.New())
		assert.ErrorIs(t, err, dmn.ErrExperimentNotFound)

		_, err = m.Start(dmn.ExperimentSpec{})
		assert.ErrorIs(t, err, dmn.ErrInvalidExperiment)
	})
}
