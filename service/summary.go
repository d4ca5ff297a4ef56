package service

import (
	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/maze"
)

// TerrainAll labels summary rows that cover every target terrain.
const TerrainAll = "All"

// Summarize aggregates trials per strategy, first over all trials and then
// stratified by the terrain the target started on. Strategies keep the order
// in which they first appear; terrains follow Flat, Hilly, Forest and empty
// strata are omitted.
func Summarize(trials []dmn.Trial) []dmn.SummaryRow {
	type key struct{ strategy, terrain string }
	acc := make(map[key]*dmn.SummaryRow)
	var strategies []string

	add := func(k key, t dmn.Trial) {
		row, ok := acc[k]
		if !ok {
			row = &dmn.SummaryRow{Strategy: k.strategy, Terrain: k.terrain}
			acc[k] = row
		}
		row.Trials++
		if t.Result.Found() {
			row.Found++
		}
		row.MeanSteps += float64(t.Result.Steps)
		row.MeanTrajectory += float64(t.Result.TrajectoryLength)
		row.MeanExaminations += float64(t.Result.Examinations)
		row.MeanReplans += float64(t.Result.Replans)
	}

	for _, t := range trials {
		strategy := t.Result.Strategy.String()
		if _, seen := acc[key{strategy, TerrainAll}]; !seen {
			strategies = append(strategies, strategy)
		}
		add(key{strategy, TerrainAll}, t)
		add(key{strategy, t.Result.TargetTerrain.String()}, t)
	}

	terrains := []string{TerrainAll}
	for _, t := range maze.OpenTerrains {
		terrains = append(terrains, t.String())
	}

	rows := make([]dmn.SummaryRow, 0, len(acc))
	for _, strategy := range strategies {
		for _, terrain := range terrains {
			row, ok := acc[key{strategy, terrain}]
			if !ok {
				continue
			}
			n := float64(row.Trials)
			row.MeanSteps /= n
			row.MeanTrajectory /= n
			row.MeanExaminations /= n
			row.MeanReplans /= n
			rows = append(rows, *row)
		}
	}
	return rows
}
