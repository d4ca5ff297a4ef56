package config

import (
	"errors"
	"fmt"
	"os"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/search"
	"gopkg.in/yaml.v3"
)

var ErrEmptyPlan = errors.New("plan has no experiments")

// Plan is a YAML file listing experiments to run in one batch.
//
//	name: density-sweep
//	defaults:
//	  dim: 51
//	  trials: 20
//	  strategies: [baseline, confidence]
//	experiments:
//	  - name: sparse
//	    density: 0.1
//	  - name: dense
//	    density: 0.4
//
// Fields an experiment leaves at zero are taken from defaults, then from the
// environment's SearchDefaults.
type Plan struct {
	Name        string               `yaml:"name"`
	Defaults    dmn.ExperimentSpec   `yaml:"defaults"`
	Experiments []dmn.ExperimentSpec `yaml:"experiments"`
}

// LoadPlan reads and resolves the plan at path.
func LoadPlan(path string, fallback SearchDefaults) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return ParsePlan(data, fallback)
}

// ParsePlan decodes a plan and fills every experiment from the defaults.
// Each resolved experiment is validated.
func ParsePlan(data []byte, fallback SearchDefaults) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	if len(p.Experiments) == 0 {
		return nil, ErrEmptyPlan
	}

	base := mergeSpec(p.Defaults, dmn.ExperimentSpec{
		Dim:        fallback.Dim,
		Density:    fallback.Density,
		Trials:     1,
		StepBudget: fallback.StepBudget,
		Strategies: search.Strategies(),
		Rates:      fallback.Rates,
	})

	for i := range p.Experiments {
		spec := mergeSpec(p.Experiments[i], base)
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("%s-%d", p.Name, i+1)
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("experiment %q: %w", spec.Name, err)
		}
		p.Experiments[i] = spec
	}
	return &p, nil
}

// mergeSpec fills zero fields of s from def.
func mergeSpec(s, def dmn.ExperimentSpec) dmn.ExperimentSpec {
	if s.Dim == 0 {
		s.Dim = def.Dim
	}
	if s.Density == 0 {
		s.Density = def.Density
	}
	if s.Trials == 0 {
		s.Trials = def.Trials
	}
	if s.StepBudget == 0 {
		s.StepBudget = def.StepBudget
	}
	if len(s.Strategies) == 0 {
		s.Strategies = def.Strategies
	}
	if s.Rates == (search.FalseNegativeRates{}) {
		s.Rates = def.Rates
	}
	if s.TerrainWeights == ([3]float64{}) {
		s.TerrainWeights = def.TerrainWeights
	}
	if s.Seed == 0 {
		s.Seed = def.Seed
	}
	return s
}
