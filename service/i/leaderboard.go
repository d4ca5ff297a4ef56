package i

import "context"

// LeaderboardEntry is one successful episode ranked by trajectory length.
type LeaderboardEntry struct {
	Member           string  `json:"member"`
	TrajectoryLength float64 `json:"trajectory_length"`
}

// Leaderboard keeps the shortest successful trajectories per strategy.
type Leaderboard interface {
	// Record adds an entry for strategy, keeping only the best entries.
	Record(ctx context.Context, strategy string, entry LeaderboardEntry) error

	// Top returns up to n entries with the shortest trajectories first.
	Top(ctx context.Context, strategy string, n int64) ([]LeaderboardEntry, error)
}
