package main

import (
	"fmt"
	"os"

	"github.com/beka-birhanu/vinom-search/config"
	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/beka-birhanu/vinom-search/search"
	"github.com/beka-birhanu/vinom-search/service"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
)

const maxEpisodeDim = 512

var episodeFlags struct {
	layout   string
	dim      int
	density  float64
	strategy string
	budget   int
	seed     int64
	startRow int
	startCol int
	noColor  bool
}

// episodeCmd runs one episode and draws its final knowledge.
var episodeCmd = &cobra.Command{
	Use:   "episode",
	Short: "Run a single episode and draw the grid",
	Long: `Run one episode on a generated grid, or on a layout file using the
'.', 'h', 'w', '#' alphabet with exactly one target marked 'T', 'H' or 'W'.

The ground truth is drawn with the trajectory overlaid. Use -v to log every step.`,
	RunE: runEpisode,
}

func init() {
	registerEpisodeFlags(episodeCmd)
}

func registerEpisodeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&episodeFlags.layout, "layout", "", "layout file instead of a generated grid")
	f.IntVar(&episodeFlags.dim, "dim", 0, "grid dimension")
	f.Float64Var(&episodeFlags.density, "density", 0, "obstacle density in [0, 1)")
	f.StringVarP(&episodeFlags.strategy, "strategy", "s", search.StrategyBaseline.String(), "agent strategy")
	f.IntVar(&episodeFlags.budget, "budget", 0, "step budget")
	f.Int64Var(&episodeFlags.seed, "seed", 0, "seed; 0 picks one from the clock")
	f.IntVar(&episodeFlags.startRow, "start-row", 0, "start row")
	f.IntVar(&episodeFlags.startCol, "start-col", 0, "start column")
	f.BoolVar(&episodeFlags.noColor, "no-color", false, "disable colours")
}

func runEpisode(cmd *cobra.Command, _ []string) error {
	spec, err := episodeSpec(cmd)
	if err != nil {
		return err
	}

	svc := service.NewEpisodeService(maxEpisodeDim, componentLogger("EPISODE", config.ColorBlue)).
		Colored(!episodeFlags.noColor)
	episode, err := svc.RunEpisode(cmd.Context(), spec)
	if err != nil {
		return err
	}

	printEpisode(cmd, episode)
	return nil
}

// episodeSpec builds the episode from the environment and the flags. Grid
// flags override the environment only when given on the command line.
func episodeSpec(cmd *cobra.Command) (dmn.EpisodeSpec, error) {
	strategy, err := search.ParseStrategy(episodeFlags.strategy)
	if err != nil {
		return dmn.EpisodeSpec{}, err
	}

	spec := dmn.EpisodeSpec{
		Dim:        envs.Search.Dim,
		Density:    envs.Search.Density,
		StepBudget: envs.Search.StepBudget,
		Strategy:   strategy,
		Rates:      envs.Search.Rates,
		Seed:       episodeFlags.seed,
		Start:      maze.CellPosition{Row: episodeFlags.startRow, Col: episodeFlags.startCol},
	}
	f := cmd.Flags()
	if f.Changed("dim") {
		spec.Dim = episodeFlags.dim
	}
	if f.Changed("density") {
		spec.Density = episodeFlags.density
	}
	if f.Changed("budget") {
		spec.StepBudget = episodeFlags.budget
	}
	if episodeFlags.layout != "" {
		data, err := os.ReadFile(episodeFlags.layout)
		if err != nil {
			return dmn.EpisodeSpec{}, err
		}
		spec.Layout = string(data)
	}
	return spec, nil
}

func printEpisode(cmd *cobra.Command, episode *dmn.Episode) {
	au := aurora.NewAurora(!episodeFlags.noColor)
	out := cmd.OutOrStdout()
	r := episode.Result

	status := au.Red(r.Status.String())
	if r.Found() {
		status = au.Green(r.Status.String())
	}

	fmt.Fprintln(out, episode.Grid)
	fmt.Fprintf(out, "%s %s  seed=%d\n", au.Bold("strategy"), r.Strategy, episode.Spec.Seed)
	fmt.Fprintf(out, "%s %s  target=%s on %s\n", au.Bold("status"), status, r.FinalTarget, r.TargetTerrain)
	fmt.Fprintf(out, "%s %d  trajectory=%d  examinations=%d  replans=%d  unreachable=%d\n",
		au.Bold("steps"), r.Steps, r.TrajectoryLength, r.Examinations, r.Replans, r.UnreachableGoals)
	for _, terrain := range maze.OpenTerrains {
		if n := r.ExaminationsByTerrain[terrain.String()]; n > 0 {
			fmt.Fprintf(out, "  examined %s cells %d times\n", au.Cyan(terrain), n)
		}
	}
}
