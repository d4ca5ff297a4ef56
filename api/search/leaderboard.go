package searchapi

import (
	"net/http"
	"strconv"

	"github.com/beka-birhanu/vinom-search/search"
	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/gin-gonic/gin"
)

const defaultTop = 10

// LeaderboardController serves the shortest successful trajectories per strategy.
type LeaderboardController struct {
	board i.Leaderboard
}

// NewLeaderboardController initializes a LeaderboardController.
func NewLeaderboardController(b i.Leaderboard) *LeaderboardController {
	return &LeaderboardController{board: b}
}

// RegisterPublic registers public routes.
func (c *LeaderboardController) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/leaderboard/:strategy", c.top)
}

// RegisterProtected registers protected routes.
func (c *LeaderboardController) RegisterProtected(route *gin.RouterGroup) {}

func (c *LeaderboardController) top(ctx *gin.Context) {
	strategy, err := search.ParseStrategy(ctx.Params.ByName("strategy"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	n := int64(defaultTop)
	if raw := ctx.Query("n"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		n = parsed
	}

	entries, err := c.board.Top(ctx.Request.Context(), strategy.String(), n)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading leaderboard"})
		return
	}
	if entries == nil {
		entries = []i.LeaderboardEntry{}
	}

	ctx.JSON(http.StatusOK, &LeaderboardResponse{Strategy: strategy.String(), Entries: entries})
}
