package searchapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/beka-birhanu/vinom-search/api/identity"
	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/report"
	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// ExperimentController manages experiment submissions and results.
type ExperimentController struct {
	manager i.ExperimentManager
	logger  logrus.FieldLogger
}

// NewExperimentController initializes an ExperimentController.
func NewExperimentController(m i.ExperimentManager, log logrus.FieldLogger) (*ExperimentController, error) {
	if m == nil {
		return nil, errors.New("nil experiment manager")
	}
	return &ExperimentController{manager: m, logger: log}, nil
}

// RegisterPublic registers public routes.
func (ec *ExperimentController) RegisterPublic(route *gin.RouterGroup) {}

// RegisterProtected registers protected routes.
func (ec *ExperimentController) RegisterProtected(route *gin.RouterGroup) {
	experiments := route.Group("/experiments")
	{
		experiments.POST("", ec.start)
		experiments.GET("", ec.list)
		experiments.GET("/:ID", ec.experiment)
		experiments.GET("/:ID/report", ec.report)
	}
}

// start launches an experiment and answers before it has run.
func (ec *ExperimentController) start(ctx *gin.Context) {
	var spec dmn.ExperimentSpec
	if err := ctx.ShouldBindJSON(&spec); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := ec.manager.Start(spec)
	if err != nil {
		if errors.Is(err, dmn.ErrInvalidExperiment) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while starting experiment"})
		return
	}

	if ec.logger != nil {
		ec.logger.WithFields(logrus.Fields{
			"id":       id.String(),
			"operator": identity.Operator(ctx),
		}).Info("experiment submitted")
	}

	ctx.JSON(http.StatusAccepted, &ExperimentAccepted{
		ID:       id,
		Location: fmt.Sprintf("%s/%s", ctx.Request.URL.Path, id),
	})
}

// list returns the latest experiments.
func (ec *ExperimentController) list(ctx *gin.Context) {
	limit := int64(defaultListLimit)
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 || parsed > maxListLimit {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be in [1, 200]"})
			return
		}
		limit = parsed
	}

	experiments, err := ec.manager.Recent(ctx.Request.Context(), limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while listing experiments"})
		return
	}

	items := make([]ExperimentListItem, 0, len(experiments))
	for _, e := range experiments {
		items = append(items, ExperimentListItem{
			ID:     e.ID,
			Name:   e.Spec.Name,
			Status: e.Status,
			Trials: e.Spec.Trials,
		})
	}
	ctx.JSON(http.StatusOK, items)
}

// experiment returns a running or finished experiment.
func (ec *ExperimentController) experiment(ctx *gin.Context) {
	e, ok := ec.lookup(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, e)
}

// report renders the charts of a finished experiment.
func (ec *ExperimentController) report(ctx *gin.Context) {
	e, ok := ec.lookup(ctx)
	if !ok {
		return
	}
	if !e.Done() {
		ctx.JSON(http.StatusConflict, gin.H{"error": "experiment is still running"})
		return
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, e.Spec.Name, e.Trials, e.Summary); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while rendering report"})
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (ec *ExperimentController) lookup(ctx *gin.Context) (*dmn.Experiment, bool) {
	ID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid experiment id"})
		return nil, false
	}

	e, err := ec.manager.Experiment(ctx.Request.Context(), ID)
	if errors.Is(err, dmn.ErrExperimentNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while loading experiment"})
		return nil, false
	}
	return e, true
}
