package repo

import (
	"testing"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/beka-birhanu/vinom-search/search"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestExperimentDocument(t *testing.T) {
	e := &dmn.Experiment{
		ID:     uuid.New(),
		Status: dmn.ExperimentCompleted,
		Spec: dmn.ExperimentSpec{
			Dim:        10,
			Strategies: []search.Strategy{search.StrategyConfidence},
			Rates:      search.DefaultRates(),
		},
		Trials: []dmn.Trial{{
			Index: 1,
			Seed:  42,
			Result: search.Result{
				Status:                search.StatusFound,
				Strategy:              search.StrategyConfidence,
				Trajectory:            []maze.CellPosition{{Row: 0, Col: 1}, {Row: 1, Col: 1}},
				TrajectoryLength:      2,
				ExaminationsByTerrain: map[string]int{"Hilly": 3},
				TargetTerrain:         maze.TerrainHilly,
				FinalTarget:           maze.CellPosition{Row: 1, Col: 1},
			},
		}},
	}

	raw, err := bson.Marshal(e)
	require.NoError(t, err)

	t.Run("trajectories are not stored", func(t *testing.T) {
		doc := bson.Raw(raw)
		_, err := doc.LookupErr("_id")
		assert.NoError(t, err)

		result := doc.Lookup("trials", "0", "result").Document()
		_, err = result.LookupErr("trajectory")
		assert.Error(t, err)
		assert.EqualValues(t, 2, result.Lookup("trajectoryLength").AsInt64())
	})

	t.Run("round trip", func(t *testing.T) {
		var back dmn.Experiment
		require.NoError(t, bson.Unmarshal(raw, &back))
		assert.Equal(t, e.ID, back.ID)
		assert.Equal(t, e.Spec, back.Spec)
		assert.Equal(t, dmn.ExperimentCompleted, back.Status)
		require.Len(t, back.Trials, 1)

		got := back.Trials[0].Result
		assert.Nil(t, got.Trajectory)
		assert.Equal(t, search.StrategyConfidence, got.Strategy)
		assert.Equal(t, maze.TerrainHilly, got.TargetTerrain)
		assert.Equal(t, e.Trials[0].Result.FinalTarget, got.FinalTarget)
		assert.Equal(t, map[string]int{"Hilly": 3}, got.ExaminationsByTerrain)
	})
}
