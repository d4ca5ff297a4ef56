// Package report renders experiment results as an HTML page of charts.
package report

import (
	"fmt"
	"io"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Chart titles, in page order.
const (
	TitleTrajectory       = "Trajectory length per trial"
	TitleExaminations     = "Examinations per trial"
	TitleTargetTerrain    = "Target terrain"
	TitleTrajectoryByType = "Mean trajectory length by target terrain"
	TitleExamsByType      = "Mean examinations by target terrain"
)

const theme = "shine"

// Render writes the report page for an experiment to w. summary is expected
// to be the summary of trials.
func Render(w io.Writer, name string, trials []dmn.Trial, summary []dmn.SummaryRow) error {
	page := components.NewPage()
	page.PageTitle = name
	page.AddCharts(
		perTrial(TitleTrajectory, name, trials, func(t dmn.Trial) int { return t.Result.TrajectoryLength }),
		perTrial(TitleExaminations, name, trials, func(t dmn.Trial) int { return t.Result.Examinations }),
		targetTerrain(name, trials),
		byTerrain(TitleTrajectoryByType, name, summary, func(r dmn.SummaryRow) float64 { return r.MeanTrajectory }),
		byTerrain(TitleExamsByType, name, summary, func(r dmn.SummaryRow) float64 { return r.MeanExaminations }),
	)
	return page.Render(w)
}

func globalOpts(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{Theme: theme}),
	}
}

// perTrial draws one line per strategy with metric plotted against the trial index.
func perTrial(title, subtitle string, trials []dmn.Trial, metric func(dmn.Trial) int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts(title, subtitle)...)

	strategies, byStrategy := groupByStrategy(trials)
	numTrials := 0
	for _, t := range trials {
		numTrials = max(numTrials, t.Index+1)
	}

	xs := make([]string, numTrials)
	for idx := range xs {
		xs[idx] = fmt.Sprintf("%d", idx)
	}
	line.SetXAxis(xs)

	for _, s := range strategies {
		items := make([]opts.LineData, numTrials)
		for _, t := range byStrategy[s] {
			items[t.Index] = opts.LineData{Value: metric(t)}
		}
		line.AddSeries(s, items)
	}
	return line
}

// targetTerrain counts the trials whose target sat on each terrain.
// Strategies of one trial share the grid, so each trial counts once.
func targetTerrain(subtitle string, trials []dmn.Trial) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOpts(TitleTargetTerrain, subtitle)...)

	counted := make(map[int]bool)
	counts := make(map[maze.Terrain]int)
	for _, t := range trials {
		if counted[t.Index] {
			continue
		}
		counted[t.Index] = true
		counts[t.Result.TargetTerrain]++
	}

	names := make([]string, 0, len(maze.OpenTerrains))
	items := make([]opts.BarData, 0, len(maze.OpenTerrains))
	for _, terrain := range maze.OpenTerrains {
		names = append(names, terrain.String())
		items = append(items, opts.BarData{Value: counts[terrain]})
	}
	bar.SetXAxis(names).AddSeries("trials", items)
	return bar
}

// byTerrain plots metric of the per-terrain summary rows, one series per strategy.
func byTerrain(title, subtitle string, summary []dmn.SummaryRow, metric func(dmn.SummaryRow) float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOpts(title, subtitle)...)

	names := make([]string, 0, len(maze.OpenTerrains))
	for _, terrain := range maze.OpenTerrains {
		names = append(names, terrain.String())
	}
	bar.SetXAxis(names)

	var strategies []string
	values := make(map[string]map[string]float64)
	for _, row := range summary {
		if _, ok := values[row.Strategy]; !ok {
			strategies = append(strategies, row.Strategy)
			values[row.Strategy] = make(map[string]float64)
		}
		values[row.Strategy][row.Terrain] = metric(row)
	}

	for _, s := range strategies {
		items := make([]opts.BarData, 0, len(names))
		for _, terrain := range names {
			items = append(items, opts.BarData{Value: values[s][terrain]})
		}
		bar.AddSeries(s, items)
	}
	return bar
}

func groupByStrategy(trials []dmn.Trial) ([]string, map[string][]dmn.Trial) {
	var order []string
	groups := make(map[string][]dmn.Trial)
	for _, t := range trials {
		name := t.Result.Strategy.String()
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], t)
	}
	return order, groups
}
