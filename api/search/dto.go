// Package searchapi exposes experiments, single episodes and the leaderboard over HTTP.
package searchapi

import (
	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/google/uuid"
)

// ExperimentAccepted is returned once an experiment has been started.
type ExperimentAccepted struct {
	ID       uuid.UUID `json:"id"`
	Location string    `json:"location"`
}

// ExperimentListItem describes one experiment without its trials.
type ExperimentListItem struct {
	ID     uuid.UUID            `json:"id"`
	Name   string               `json:"name"`
	Status dmn.ExperimentStatus `json:"status"`
	Trials int                  `json:"trials"`
}

// LeaderboardResponse lists the best episodes of one strategy.
type LeaderboardResponse struct {
	Strategy string               `json:"strategy"`
	Entries  []i.LeaderboardEntry `json:"entries"`
}
