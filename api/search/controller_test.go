package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beka-birhanu/vinom-search/api"
	apii "github.com/beka-birhanu/vinom-search/api/i"
	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/logger"
	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/beka-birhanu/vinom-search/search"
	"github.com/beka-birhanu/vinom-search/service"
	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeManager struct {
	experiments map[uuid.UUID]*dmn.Experiment
	started     []dmn.ExperimentSpec
	failRecent  bool
}

func (m *fakeManager) Start(spec dmn.ExperimentSpec) (uuid.UUID, error) {
	e, err := dmn.NewExperiment(spec)
	if err != nil {
		return uuid.Nil, err
	}
	m.started = append(m.started, spec)
	m.experiments[e.ID] = e
	return e.ID, nil
}

func (m *fakeManager) Experiment(_ context.Context, id uuid.UUID) (*dmn.Experiment, error) {
	e, ok := m.experiments[id]
	if !ok {
		return nil, dmn.ErrExperimentNotFound
	}
	return e, nil
}

func (m *fakeManager) Recent(_ context.Context, limit int64) ([]*dmn.Experiment, error) {
	if m.failRecent {
		return nil, errors.New("mongo down")
	}
	var out []*dmn.Experiment
	for _, e := range m.experiments {
		if int64(len(out)) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeBoard struct{}

func (fakeBoard) Record(context.Context, string, i.LeaderboardEntry) error { return nil }

func (fakeBoard) Top(_ context.Context, strategy string, n int64) ([]i.LeaderboardEntry, error) {
	if strategy != "confidence" {
		return nil, nil
	}
	entries := []i.LeaderboardEntry{{Member: "a/0", TrajectoryLength: 4}, {Member: "a/3", TrajectoryLength: 9}}
	if int64(len(entries)) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func allow(c *gin.Context) { c.Next() }

func newServer(t *testing.T, m *fakeManager) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	experiments, err := NewExperimentController(m, logger.Discard())
	require.NoError(t, err)

	return api.NewRouter(api.Config{
		BaseURL: "/api",
		Controllers: []apii.Controller{
			experiments,
			NewEpisodeController(service.NewEpisodeService(16, nil)),
			NewLeaderboardController(fakeBoard{}),
		},
		AuthorizationMiddleware: allow,
		Logger:                  logger.Discard(),
	}).Engine()
}

func request(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func validSpec() dmn.ExperimentSpec {
	return dmn.ExperimentSpec{
		Name:       "api",
		Dim:        6,
		Density:    0.2,
		Trials:     2,
		StepBudget: 100,
		Strategies: []search.Strategy{search.StrategyBaseline, search.StrategyMovingTarget},
		Rates:      search.DefaultRates(),
		Seed:       9,
	}
}

func TestExperimentController(t *testing.T) {
	m := &fakeManager{experiments: make(map[uuid.UUID]*dmn.Experiment)}
	h := newServer(t, m)

	var accepted ExperimentAccepted
	t.Run("start", func(t *testing.T) {
		w := request(h, http.MethodPost, "/api/v1/experiments", validSpec())
		require.Equal(t, http.StatusAccepted, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
		assert.Equal(t, "/api/v1/experiments/"+accepted.ID.String(), accepted.Location)
		require.Len(t, m.started, 1)
		assert.Equal(t, validSpec(), m.started[0])
	})

	t.Run("strategies are names on the wire", func(t *testing.T) {
		body := `{"dim":4,"trials":1,"step_budget":10,"strategies":["confidence"],"rates":{"flat":0.1,"hilly":0.2,"forest":0.3}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/experiments", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, []search.Strategy{search.StrategyConfidence}, m.started[len(m.started)-1].Strategies)

		bad := strings.Replace(body, "confidence", "psychic", 1)
		req = httptest.NewRequest(http.MethodPost, "/api/v1/experiments", strings.NewReader(bad))
		req.Header.Set("Content-Type", "application/json")
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid spec", func(t *testing.T) {
		spec := validSpec()
		spec.Trials = 0
		w := request(h, http.MethodPost, "/api/v1/experiments", spec)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w := request(h, http.MethodGet, "/api/v1/experiments/"+accepted.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "running", got["status"])
	})

	t.Run("unknown and malformed ids", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, request(h, http.MethodGet, "/api/v1/experiments/"+uuid.NewString(), nil).Code)
		assert.Equal(t, http.StatusBadRequest, request(h, http.MethodGet, "/api/v1/experiments/42", nil).Code)
	})

	t.Run("report of a running experiment", func(t *testing.T) {
		w := request(h, http.MethodGet, "/api/v1/experiments/"+accepted.ID.String()+"/report", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("report of a finished experiment", func(t *testing.T) {
		e := m.experiments[accepted.ID]
		e.Finish([]dmn.Trial{{Result: search.Result{Status: search.StatusFound, TargetTerrain: maze.TerrainHilly}}}, nil, nil)

		w := request(h, http.MethodGet, "/api/v1/experiments/"+accepted.ID.String()+"/report", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Target terrain")
	})

	t.Run("list", func(t *testing.T) {
		w := request(h, http.MethodGet, "/api/v1/experiments?limit=1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var items []ExperimentListItem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		assert.Len(t, items, 1)

		assert.Equal(t, http.StatusBadRequest, request(h, http.MethodGet, "/api/v1/experiments?limit=0", nil).Code)
		assert.Equal(t, http.StatusBadRequest, request(h, http.MethodGet, "/api/v1/experiments?limit=x", nil).Code)

		m.failRecent = true
		defer func() { m.failRecent = false }()
		assert.Equal(t, http.StatusInternalServerError, request(h, http.MethodGet, "/api/v1/experiments", nil).Code)
	})
}

func TestEpisodeController(t *testing.T) {
	h := newServer(t, &fakeManager{experiments: make(map[uuid.UUID]*dmn.Experiment)})

	t.Run("runs a layout", func(t *testing.T) {
		w := request(h, http.MethodPost, "/api/v1/episodes", dmn.EpisodeSpec{
			StepBudget: 50,
			Strategy:   search.StrategyConfidence,
			Seed:       1,
			Layout:     ". .\nT .",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var got dmn.Episode
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.True(t, got.Result.Found())
		assert.Equal(t, search.StrategyConfidence, got.Result.Strategy)
		assert.NotEmpty(t, got.Grid)
	})

	t.Run("grid too large", func(t *testing.T) {
		w := request(h, http.MethodPost, "/api/v1/episodes", dmn.EpisodeSpec{Dim: 17, StepBudget: 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/episodes", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLeaderboardController(t *testing.T) {
	h := newServer(t, &fakeManager{experiments: make(map[uuid.UUID]*dmn.Experiment)})

	t.Run("top entries", func(t *testing.T) {
		w := request(h, http.MethodGet, "/api/v1/leaderboard/confidence?n=1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got LeaderboardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, LeaderboardResponse{
			Strategy: "confidence",
			Entries:  []i.LeaderboardEntry{{Member: "a/0", TrajectoryLength: 4}},
		}, got)
	})

	t.Run("empty board", func(t *testing.T) {
		w := request(h, http.MethodGet, "/api/v1/leaderboard/baseline", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"strategy":"baseline","entries":[]}`, w.Body.String())
	})

	t.Run("unknown strategy", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, request(h, http.MethodGet, "/api/v1/leaderboard/psychic", nil).Code)
	})

	t.Run("bad n", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, request(h, http.MethodGet, "/api/v1/leaderboard/baseline?n=-1", nil).Code)
	})
}
