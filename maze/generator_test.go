package maze

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("exactly one reachable target and an open start", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 20; i++ {
			g, err := Generate(GeneratorConfig{Dim: 15, Density: 0.3}, rng)
			require.NoError(t, err)

			start, _ := g.Cell(CellPosition{0, 0})
			assert.False(t, start.IsBlocked())

			target, err := g.Target()
			require.NoError(t, err)
			assert.True(t, g.Reachable(CellPosition{0, 0}, target))

			targets := 0
			for idx := 0; idx < g.Len(); idx++ {
				c := g.At(idx)
				if c.IsTarget() {
					targets++
				}
				if c.IsBlocked() {
					assert.Equal(t, TerrainBlocked, c.Terrain)
				} else {
					assert.True(t, c.Terrain.IsOpen())
				}
			}
			assert.Equal(t, 1, targets)
		}
	})

	t.Run("zero density yields no obstacles", func(t *testing.T) {
		g, err := Generate(GeneratorConfig{Dim: 8}, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		for idx := 0; idx < g.Len(); idx++ {
			assert.False(t, g.At(idx).IsBlocked())
		}
	})

	t.Run("terrain weights are honoured", func(t *testing.T) {
		g, err := Generate(GeneratorConfig{Dim: 10, TerrainWeights: [3]float64{0, 0, 1}}, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		for idx := 0; idx < g.Len(); idx++ {
			assert.Equal(t, TerrainForest, g.At(idx).Terrain)
		}
	})

	t.Run("configuration errors", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))

		_, err := Generate(GeneratorConfig{Dim: 0}, rng)
		assert.ErrorIs(t, err, ErrInvalidDimension)

		for _, d := range []float64{-0.1, 1, 1.5, math.NaN()} {
			_, err = Generate(GeneratorConfig{Dim: 5, Density: d}, rng)
			assert.ErrorIs(t, err, ErrInvalidDensity)
		}

		_, err = Generate(GeneratorConfig{Dim: 5, Start: CellPosition{5, 0}}, rng)
		assert.ErrorIs(t, err, ErrOutOfBounds)

		_, err = Generate(GeneratorConfig{Dim: 5, TerrainWeights: [3]float64{-1, 1, 1}}, rng)
		assert.ErrorIs(t, err, ErrInvalidTerrain)
	})

	t.Run("gives up on hopeless densities", func(t *testing.T) {
		_, err := Generate(GeneratorConfig{Dim: 30, Density: 0.99, MaxAttempts: 1}, rand.New(rand.NewSource(5)))
		assert.ErrorIs(t, err, ErrUnreachableLayout)
	})
}
