package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/beka-birhanu/vinom-search/search"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() ExperimentSpec {
	return ExperimentSpec{
		Name:       "smoke",
		Dim:        10,
		Density:    0.3,
		Trials:     3,
		StepBudget: 1000,
		Strategies: search.Strategies(),
		Rates:      search.DefaultRates(),
	}
}

func TestExperimentSpecValidate(t *testing.T) {
	assert.NoError(t, validSpec().Validate())

	for name, mutate := range map[string]func(*ExperimentSpec){
		"tiny grid":          func(s *ExperimentSpec) { s.Dim = 1 },
		"huge grid":          func(s *ExperimentSpec) { s.Dim = maxExperimentDim + 1 },
		"full density":       func(s *ExperimentSpec) { s.Density = 1 },
		"no trials":          func(s *ExperimentSpec) { s.Trials = 0 },
		"no budget":          func(s *ExperimentSpec) { s.StepBudget = 0 },
		"no strategies":      func(s *ExperimentSpec) { s.Strategies = nil },
		"unknown strategy":   func(s *ExperimentSpec) { s.Strategies = []search.Strategy{7} },
		"duplicate strategy": func(s *ExperimentSpec) { s.Strategies = []search.Strategy{0, 0} },
		"bad rate":           func(s *ExperimentSpec) { s.Rates.Hilly = 2 },
	} {
		t.Run(name, func(t *testing.T) {
			spec := validSpec()
			mutate(&spec)
			assert.ErrorIs(t, spec.Validate(), ErrInvalidExperiment)
		})
	}

	t.Run("density keeps the grid error", func(t *testing.T) {
		spec := validSpec()
		spec.Density = -0.1
		assert.ErrorIs(t, spec.Validate(), maze.ErrInvalidDensity)
	})
}

func TestExperimentLifecycle(t *testing.T) {
	e, err := NewExperiment(validSpec())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, ExperimentRunning, e.Status)
	assert.False(t, e.Done())

	t.Run("completed", func(t *testing.T) {
		c := *e
		c.Finish([]Trial{{Index: 0}}, nil, nil)
		assert.Equal(t, ExperimentCompleted, c.Status)
		assert.Empty(t, c.Error)
		assert.True(t, c.Done())
		assert.False(t, c.FinishedAt.IsZero())
	})

	t.Run("cancelled", func(t *testing.T) {
		c := *e
		c.Finish(nil, nil, fmt.Errorf("trial 3: %w", context.Canceled))
		assert.Equal(t, ExperimentCancelled, c.Status)
	})

	t.Run("failed", func(t *testing.T) {
		c := *e
		c.Finish(nil, nil, errors.New("boom"))
		assert.Equal(t, ExperimentFailed, c.Status)
		assert.Equal(t, "boom", c.Error)
	})

	t.Run("invalid spec", func(t *testing.T) {
		_, err := NewExperiment(ExperimentSpec{})
		assert.ErrorIs(t, err, ErrInvalidExperiment)
	})
}

func TestNewOperator(t *testing.T) {
	const strongKey = "violet-Harbor-tangent-91-quartz"

	t.Run("valid operator", func(t *testing.T) {
		op, err := NewOperator(OperatorConfig{ID: uuid.New(), Name: "lab_runner", PlainKey: strongKey})
		require.NoError(t, err)
		assert.Equal(t, "lab_runner", op.Name)
		assert.NotEqual(t, strongKey, op.KeyHash)
		assert.True(t, op.VerifyKey(strongKey))
		assert.False(t, op.VerifyKey("wrong"))
	})

	t.Run("invalid names and keys", func(t *testing.T) {
		for name, tc := range map[string]struct {
			cfg  OperatorConfig
			want error
		}{
			"short name":  {OperatorConfig{Name: "ab", PlainKey: strongKey}, ErrOperatorNameTooShort},
			"long name":   {OperatorConfig{Name: "abcdefghijklmnopqrstuvwxyz", PlainKey: strongKey}, ErrOperatorNameTooLong},
			"bad format":  {OperatorConfig{Name: "lab runner", PlainKey: strongKey}, ErrOperatorNameFormat},
			"weak key":    {OperatorConfig{Name: "lab_runner", PlainKey: "password"}, ErrWeakKey},
			"numeric key": {OperatorConfig{Name: "lab_runner", PlainKey: "123456"}, ErrWeakKey},
		} {
			t.Run(name, func(t *testing.T) {
				_, err := NewOperator(tc.cfg)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})
}
