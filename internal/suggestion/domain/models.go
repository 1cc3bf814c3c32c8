package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Scope priorities, most specific first. A broadcaster already matched
// through a more specific scope is never suggested again through a wider
// one.
const (
	PrioritySeason      = 1
	PriorityCompetition = 2
	PrioritySport       = 3
)

type Suggestion struct {
	BroadcasterID   snowflake.ID `json:"broadcasterId"`
	BroadcasterName string       `json:"broadcasterName"`
	PackageID       snowflake.ID `json:"packageId"`
	PackageName     string       `json:"packageName"`
	MatchType       string       `json:"matchType"`
	Priority        int          `json:"priority"`
}

type SuggestRequest struct {
	SportID   string
	LeagueID  string
	EventDate time.Time
}

type Service interface {
	SuggestBroadcasters(ctx context.Context, req SuggestRequest) ([]Suggestion, error)
}

var ErrMissingScope = errors.New("missing_scope")
