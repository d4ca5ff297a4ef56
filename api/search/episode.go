package searchapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/gin-gonic/gin"
)

const episodeTimeout = 10 * time.Second

// EpisodeController runs single episodes synchronously. Episodes are public
// and bounded by the runner's grid limit.
type EpisodeController struct {
	runner i.EpisodeRunner
}

// NewEpisodeController initializes an EpisodeController.
func NewEpisodeController(r i.EpisodeRunner) *EpisodeController {
	return &EpisodeController{runner: r}
}

// RegisterPublic registers public routes.
func (c *EpisodeController) RegisterPublic(route *gin.RouterGroup) {
	route.POST("/episodes", c.run)
}

// RegisterProtected registers protected routes.
func (c *EpisodeController) RegisterProtected(route *gin.RouterGroup) {}

func (c *EpisodeController) run(ctx *gin.Context) {
	var spec dmn.EpisodeSpec
	if err := ctx.ShouldBindJSON(&spec); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Request.Context(), episodeTimeout)
	defer cancel()

	episode, err := c.runner.RunEpisode(timeoutCtx, spec)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, episode)
	case errors.Is(err, context.DeadlineExceeded):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "episode timed out"})
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
