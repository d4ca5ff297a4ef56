package main

import (
	"testing"

	"github.com/beka-birhanu/vinom-search/config"
	"github.com/beka-birhanu/vinom-search/search"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSearchEnv(t *testing.T) {
	t.Helper()
	savedEnvs, savedRun, savedEpisode := envs, runFlags, episodeFlags
	t.Cleanup(func() {
		envs, runFlags, episodeFlags = savedEnvs, savedRun, savedEpisode
	})

	envs = config.Config{Search: config.SearchDefaults{
		Dim:        20,
		Density:    0.3,
		StepBudget: 500,
		Rates:      search.DefaultRates(),
	}}
}

func TestExperimentSpecsFlags(t *testing.T) {
	withSearchEnv(t)

	t.Run("unset flags keep the environment", func(t *testing.T) {
		cmd := &cobra.Command{Use: "run"}
		registerRunFlags(cmd)

		specs, err := experimentSpecs(cmd)
		require.NoError(t, err)
		require.Len(t, specs, 1)
		assert.Equal(t, 20, specs[0].Dim)
		assert.Equal(t, 0.3, specs[0].Density)
		assert.Equal(t, 500, specs[0].StepBudget)
		assert.Equal(t, search.Strategies(), specs[0].Strategies)
	})

	t.Run("explicit flags override the environment", func(t *testing.T) {
		cmd := &cobra.Command{Use: "run"}
		registerRunFlags(cmd)
		require.NoError(t, cmd.Flags().Set("density", "0"))
		require.NoError(t, cmd.Flags().Set("dim", "8"))
		require.NoError(t, cmd.Flags().Set("budget", "40"))
		require.NoError(t, cmd.Flags().Set("strategies", "confidence"))

		specs, err := experimentSpecs(cmd)
		require.NoError(t, err)
		require.Len(t, specs, 1)
		assert.Equal(t, 8, specs[0].Dim)
		assert.Equal(t, 0.0, specs[0].Density)
		assert.Equal(t, 40, specs[0].StepBudget)
		assert.Equal(t, []search.Strategy{search.StrategyConfidence}, specs[0].Strategies)
	})

	t.Run("explicit zero budget is rejected", func(t *testing.T) {
		cmd := &cobra.Command{Use: "run"}
		registerRunFlags(cmd)
		require.NoError(t, cmd.Flags().Set("budget", "0"))

		_, err := experimentSpecs(cmd)
		assert.Error(t, err)
	})
}

func TestEpisodeSpecFlags(t *testing.T) {
	withSearchEnv(t)

	t.Run("unset flags keep the environment", func(t *testing.T) {
		cmd := &cobra.Command{Use: "episode"}
		registerEpisodeFlags(cmd)

		spec, err := episodeSpec(cmd)
		require.NoError(t, err)
		assert.Equal(t, 20, spec.Dim)
		assert.Equal(t, 0.3, spec.Density)
		assert.Equal(t, 500, spec.StepBudget)
		assert.Equal(t, search.StrategyBaseline, spec.Strategy)
	})

	t.Run("explicit zero density overrides the environment", func(t *testing.T) {
		cmd := &cobra.Command{Use: "episode"}
		registerEpisodeFlags(cmd)
		require.NoError(t, cmd.Flags().Set("density", "0"))
		require.NoError(t, cmd.Flags().Set("strategy", "moving-target"))

		spec, err := episodeSpec(cmd)
		require.NoError(t, err)
		assert.Equal(t, 0.0, spec.Density)
		assert.Equal(t, 20, spec.Dim)
		assert.Equal(t, search.StrategyMovingTarget, spec.Strategy)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		cmd := &cobra.Command{Use: "episode"}
		registerEpisodeFlags(cmd)
		require.NoError(t, cmd.Flags().Set("strategy", "psychic"))

		_, err := episodeSpec(cmd)
		assert.Error(t, err)
	})
}
