package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/logger"
	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultExperimentTimeout = 30 * time.Minute
	persistTimeout           = 5 * time.Second
)

var (
	ErrMissingDependency = errors.New("missing dependency")
)

type session struct {
	experiment *dmn.Experiment
	cancel     context.CancelFunc
}

// ExperimentManager runs experiments in the background, keeps the running
// ones in memory and persists every experiment when it starts and when it
// finishes.
type ExperimentManager struct {
	runner      *ExperimentRunner
	repo        i.ExperimentRepo
	leaderboard i.Leaderboard
	logger      logrus.FieldLogger
	timeout     time.Duration
	sessions    map[uuid.UUID]*session
	wg          sync.WaitGroup
	sync.RWMutex
}

// ManagerConfig configures an ExperimentManager.
type ManagerConfig struct {
	Runner      *ExperimentRunner
	Repo        i.ExperimentRepo
	Leaderboard i.Leaderboard // optional
	Logger      logrus.FieldLogger
	Timeout     time.Duration // per experiment; defaults to 30 minutes
}

// NewExperimentManager creates a manager.
func NewExperimentManager(c *ManagerConfig) (*ExperimentManager, error) {
	if c.Runner == nil {
		return nil, fmt.Errorf("%w: experiment runner", ErrMissingDependency)
	}
	if c.Repo == nil {
		return nil, fmt.Errorf("%w: experiment repository", ErrMissingDependency)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultExperimentTimeout
	}
	var log logrus.FieldLogger = logger.Discard()
	if c.Logger != nil {
		log = c.Logger
	}

	return &ExperimentManager{
		runner:      c.Runner,
		repo:        c.Repo,
		leaderboard: c.Leaderboard,
		logger:      log,
		timeout:     timeout,
		sessions:    make(map[uuid.UUID]*session),
	}, nil
}

// Start validates spec, persists the new experiment and runs it in the
// background. A zero seed is replaced so that every stored experiment can be
// reproduced.
func (m *ExperimentManager) Start(spec dmn.ExperimentSpec) (uuid.UUID, error) {
	if spec.Seed == 0 {
		spec.Seed = time.Now().UnixNano()
	}
	e, err := dmn.NewExperiment(spec)
	if err != nil {
		return uuid.Nil, err
	}

	saveCtx, cancelSave := context.WithTimeout(context.Background(), persistTimeout)
	defer cancelSave()
	if err := m.repo.Save(saveCtx, e); err != nil {
		return uuid.Nil, fmt.Errorf("saving experiment: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	m.Lock()
	m.sessions[e.ID] = &session{experiment: e, cancel: cancel}
	m.Unlock()

	m.wg.Add(1)
	go m.run(ctx, cancel, e)

	m.logger.WithFields(logrus.Fields{
		"id":     e.ID.String(),
		"name":   spec.Name,
		"trials": spec.Trials,
	}).Info("experiment started")
	return e.ID, nil
}

// Experiment returns a snapshot of a running experiment, or the stored one.
func (m *ExperimentManager) Experiment(ctx context.Context, id uuid.UUID) (*dmn.Experiment, error) {
	m.RLock()
	if s, ok := m.sessions[id]; ok {
		snapshot := *s.experiment
		m.RUnlock()
		return &snapshot, nil
	}
	m.RUnlock()

	return m.repo.ByID(ctx, id)
}

// Recent lists the latest stored experiments.
func (m *ExperimentManager) Recent(ctx context.Context, limit int64) ([]*dmn.Experiment, error) {
	return m.repo.Recent(ctx, limit)
}

// Wait blocks until every started experiment has finished.
func (m *ExperimentManager) Wait() {
	m.wg.Wait()
}

// StopAll cancels every running experiment.
func (m *ExperimentManager) StopAll() {
	m.Lock()
	defer m.Unlock()

	for _, s := range m.sessions {
		s.cancel()
	}
}

func (m *ExperimentManager) run(ctx context.Context, cancel context.CancelFunc, e *dmn.Experiment) {
	defer m.wg.Done()
	defer cancel()

	log := m.logger.WithField("id", e.ID.String())

	trials, err := m.runner.Run(ctx, e.Spec)
	summary := Summarize(trials)

	m.Lock()
	e.Finish(trials, summary, err)
	m.Unlock()

	if err != nil {
		log.WithError(err).Error("experiment failed")
	} else {
		m.record(e)
		log.WithField("trials", len(trials)).Info("experiment finished")
	}

	saveCtx, cancelSave := context.WithTimeout(context.Background(), persistTimeout)
	defer cancelSave()
	if err := m.repo.Save(saveCtx, e); err != nil {
		log.WithError(err).Error("saving finished experiment")
	}

	m.clean(e.ID)
}

// record pushes successful episodes to the leaderboard.
func (m *ExperimentManager) record(e *dmn.Experiment) {
	if m.leaderboard == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	for _, t := range e.Trials {
		if !t.Result.Found() {
			continue
		}
		entry := i.LeaderboardEntry{
			Member:           fmt.Sprintf("%s/%d", e.ID, t.Index),
			TrajectoryLength: float64(t.Result.TrajectoryLength),
		}
		if err := m.leaderboard.Record(ctx, t.Result.Strategy.String(), entry); err != nil {
			m.logger.WithError(err).Warn("recording leaderboard entry")
			return
		}
	}
}

func (m *ExperimentManager) clean(id uuid.UUID) {
	m.Lock()
	defer m.Unlock()
	delete(m.sessions, id)
}
