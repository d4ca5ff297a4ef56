package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/beka-birhanu/vinom-search/config"
	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/infrastruture/csvstore"
	"github.com/beka-birhanu/vinom-search/report"
	"github.com/beka-birhanu/vinom-search/search"
	"github.com/beka-birhanu/vinom-search/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runFlags struct {
	plan       string
	name       string
	dim        int
	density    float64
	trials     int
	budget     int
	strategies []string
	seed       int64
	workers    int
	out        string
}

// runCmd runs experiments locally and writes their trials and reports.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch experiment",
	Long: `Run one experiment described by flags, or every experiment of a YAML plan.

Each experiment generates --trials grids; every strategy searches its own copy
of each grid. Trials are written to <out>/<name>.csv and charts to
<out>/<name>.html. Flags left unset fall back to the SEARCH_* environment.`,
	RunE: runExperiments,
}

func init() {
	registerRunFlags(runCmd)
}

func registerRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&runFlags.plan, "plan", "", "YAML experiment plan")
	f.StringVar(&runFlags.name, "name", "experiment", "experiment name when no plan is given")
	f.IntVar(&runFlags.dim, "dim", 0, "grid dimension")
	f.Float64Var(&runFlags.density, "density", 0, "obstacle density in [0, 1)")
	f.IntVar(&runFlags.trials, "trials", 10, "number of generated grids")
	f.IntVar(&runFlags.budget, "budget", 0, "step budget per episode")
	f.StringSliceVar(&runFlags.strategies, "strategies", nil, "strategies to compare (default all)")
	f.Int64Var(&runFlags.seed, "seed", 0, "base seed; 0 picks one from the clock")
	f.IntVar(&runFlags.workers, "workers", 0, "concurrent episodes")
	f.StringVarP(&runFlags.out, "out", "o", "results", "output directory")
}

func runExperiments(cmd *cobra.Command, _ []string) error {
	specs, err := experimentSpecs(cmd)
	if err != nil {
		return err
	}

	workers := runFlags.workers
	if workers <= 0 {
		workers = envs.Search.Workers
	}
	runner := service.NewExperimentRunner(service.RunnerConfig{
		Workers: workers,
		Logger:  componentLogger("RUNNER", config.ColorCyan),
	})

	if err := os.MkdirAll(runFlags.out, 0o755); err != nil {
		return err
	}

	for _, spec := range specs {
		if spec.Seed == 0 {
			spec.Seed = time.Now().UnixNano()
		}
		log := appLogger.WithFields(logrus.Fields{"experiment": spec.Name, "seed": spec.Seed})
		log.Info("experiment started")

		started := time.Now()
		trials, err := runner.Run(cmd.Context(), spec)
		if err != nil {
			return fmt.Errorf("experiment %q: %w", spec.Name, err)
		}
		summary := service.Summarize(trials)
		log.WithField("elapsed", time.Since(started).Round(time.Millisecond).String()).Info("experiment finished")

		if err := writeResults(spec.Name, trials, summary); err != nil {
			return err
		}
		printSummary(cmd, spec.Name, summary)
	}
	return nil
}

// experimentSpecs resolves the plan, or builds a single spec from the flags.
// Grid flags override the environment only when given on the command line.
func experimentSpecs(cmd *cobra.Command) ([]dmn.ExperimentSpec, error) {
	if runFlags.plan != "" {
		plan, err := config.LoadPlan(runFlags.plan, envs.Search)
		if err != nil {
			return nil, err
		}
		return plan.Experiments, nil
	}

	spec := dmn.ExperimentSpec{
		Name:       runFlags.name,
		Dim:        envs.Search.Dim,
		Density:    envs.Search.Density,
		Trials:     runFlags.trials,
		StepBudget: envs.Search.StepBudget,
		Strategies: search.Strategies(),
		Rates:      envs.Search.Rates,
		Seed:       runFlags.seed,
	}
	f := cmd.Flags()
	if f.Changed("dim") {
		spec.Dim = runFlags.dim
	}
	if f.Changed("density") {
		spec.Density = runFlags.density
	}
	if f.Changed("budget") {
		spec.StepBudget = runFlags.budget
	}
	if len(runFlags.strategies) > 0 {
		spec.Strategies = spec.Strategies[:0:0]
		for _, name := range runFlags.strategies {
			s, err := search.ParseStrategy(name)
			if err != nil {
				return nil, err
			}
			spec.Strategies = append(spec.Strategies, s)
		}
	}
	return []dmn.ExperimentSpec{spec}, spec.Validate()
}

func writeResults(name string, trials []dmn.Trial, summary []dmn.SummaryRow) error {
	csvFile, err := os.Create(filepath.Join(runFlags.out, name+".csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()
	if err := csvstore.WriteTrials(csvFile, trials); err != nil {
		return fmt.Errorf("writing trials: %w", err)
	}

	htmlFile, err := os.Create(filepath.Join(runFlags.out, name+".html"))
	if err != nil {
		return err
	}
	defer htmlFile.Close()
	if err := report.Render(htmlFile, name, trials, summary); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func printSummary(cmd *cobra.Command, name string, summary []dmn.SummaryRow) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t\t\t\t\t\t\t\n", name)
	fmt.Fprintln(w, "strategy\tterrain\ttrials\tfound\tsteps\ttrajectory\texaminations\treplans\t")
	for _, r := range summary {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t\n",
			r.Strategy, r.Terrain, r.Trials, r.Found, r.MeanSteps, r.MeanTrajectory, r.MeanExaminations, r.MeanReplans)
	}
	_ = w.Flush()
}
